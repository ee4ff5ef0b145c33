package service

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/questionstore"
	"docqa/internal/session"
)

// AddCategoryInput is the DTO for creating a category.
type AddCategoryInput struct {
	Name string `json:"name" binding:"required"`
}

// AddRecordInput is the DTO for appending a question record.
type AddRecordInput struct {
	Label    string `json:"label" binding:"required"`
	Question string `json:"question" binding:"required"`
	Prompt   string `json:"prompt" binding:"required"`
}

// RemoveRecordsInput is the DTO for deleting records by position.
type RemoveRecordsInput struct {
	Indices []int `json:"indices" binding:"required"`
}

// QuestionService defines the question-set editing contract.
type QuestionService interface {
	List(state *session.State) []domain.Category
	Records(state *session.State, category string) ([]domain.QuestionRecord, error)
	AddCategory(state *session.State, input AddCategoryInput) error
	RemoveCategory(state *session.State, name string) error
	AddRecord(state *session.State, category string, input AddRecordInput) error
	RemoveRecords(state *session.State, category string, input RemoveRecordsInput) error
	Import(state *session.State, r io.Reader, format domain.ExportFormat) (*questionstore.ImportResult, error)
	Export(state *session.State, w io.Writer, format domain.ExportFormat) error
}

type questionService struct{}

// NewQuestionService creates a new QuestionService implementation.
func NewQuestionService() QuestionService {
	return &questionService{}
}

func (s *questionService) List(state *session.State) []domain.Category {
	return state.Questions.Export()
}

func (s *questionService) Records(state *session.State, category string) ([]domain.QuestionRecord, error) {
	return state.Questions.Records(category)
}

func (s *questionService) AddCategory(state *session.State, input AddCategoryInput) error {
	if err := state.Questions.AddCategory(input.Name); err != nil {
		logrus.Warnf("question.AddCategory: session %s: %v", state.ID, err)
		return err
	}
	return nil
}

func (s *questionService) RemoveCategory(state *session.State, name string) error {
	return state.Questions.RemoveCategory(name)
}

func (s *questionService) AddRecord(state *session.State, category string, input AddRecordInput) error {
	return state.Questions.AddRecord(category, domain.QuestionRecord{
		Label:    input.Label,
		Question: input.Question,
		Prompt:   input.Prompt,
	})
}

func (s *questionService) RemoveRecords(state *session.State, category string, input RemoveRecordsInput) error {
	return state.Questions.RemoveRecords(category, input.Indices)
}

func (s *questionService) Import(state *session.State, r io.Reader, format domain.ExportFormat) (*questionstore.ImportResult, error) {
	cats, err := questionstore.Decode(r, format)
	if err != nil {
		logrus.Warnf("question.Import: session %s: %v", state.ID, err)
		return nil, err
	}
	result, err := state.Questions.Import(cats)
	if err != nil {
		return nil, err
	}
	logrus.Infof("question.Import: session %s: %d categories created, %d records added, %d duplicates dropped",
		state.ID, result.CategoriesCreated, result.RecordsAdded, result.DuplicatesDropped)
	return result, nil
}

func (s *questionService) Export(state *session.State, w io.Writer, format domain.ExportFormat) error {
	if err := questionstore.Encode(w, state.Questions.Export(), format); err != nil {
		return fmt.Errorf("question.Export: %w", err)
	}
	return nil
}
