package service_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/session"
)

func TestQuestionService_EditFlow(t *testing.T) {
	svc := service.NewQuestionService()
	state := session.New(time.Now())

	require.NoError(t, svc.AddCategory(state, service.AddCategoryInput{Name: "Contrato"}))
	assert.ErrorIs(t, svc.AddCategory(state, service.AddCategoryInput{Name: "Contrato"}), domain.ErrCategoryExists)

	for _, label := range []string{"Valor", "Prazo", "Partes"} {
		require.NoError(t, svc.AddRecord(state, "Contrato", service.AddRecordInput{
			Label: label, Question: label + "?", Prompt: "extract " + label,
		}))
	}
	assert.ErrorIs(t, svc.AddRecord(state, "Contrato", service.AddRecordInput{Label: "x"}), domain.ErrIncompleteRecord)
	assert.ErrorIs(t, svc.AddRecord(state, "Missing", service.AddRecordInput{
		Label: "a", Question: "b", Prompt: "c",
	}), domain.ErrCategoryNotFound)

	require.NoError(t, svc.RemoveRecords(state, "Contrato", service.RemoveRecordsInput{Indices: []int{0, 2}}))
	records, err := svc.Records(state, "Contrato")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Prazo", records[0].Label)

	require.NoError(t, svc.RemoveCategory(state, "Contrato"))
	assert.Empty(t, svc.List(state))
}

func TestQuestionService_ImportExportJSON(t *testing.T) {
	svc := service.NewQuestionService()
	state := session.New(time.Now())

	input := `{"Peticao": [
		{"label": "Autor", "question": "Quem e o autor?", "prompt": "Nome do autor"},
		{"label": "Autor", "question": "Quem e o autor?", "prompt": "Nome do autor"}
	]}`

	result, err := svc.Import(state, strings.NewReader(input), domain.ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CategoriesCreated)
	assert.Equal(t, 1, result.RecordsAdded)
	assert.Equal(t, 1, result.DuplicatesDropped)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(state, &buf, domain.ExportFormatJSON))
	assert.Contains(t, buf.String(), `"label": "Autor"`)
	assert.Contains(t, buf.String(), `"Peticao"`)
}

func TestQuestionService_Import_InvalidLeavesStoreUntouched(t *testing.T) {
	svc := service.NewQuestionService()
	state := session.New(time.Now())
	require.NoError(t, svc.AddCategory(state, service.AddCategoryInput{Name: "Existing"}))

	_, err := svc.Import(state, strings.NewReader(`["not", "a", "mapping"]`), domain.ExportFormatJSON)
	assert.ErrorIs(t, err, domain.ErrInvalidImport)
	assert.Equal(t, []string{"Existing"}, state.Questions.Names())
}

func TestQuestionService_Export_UnsupportedFormat(t *testing.T) {
	svc := service.NewQuestionService()
	state := session.New(time.Now())

	err := svc.Export(state, &bytes.Buffer{}, domain.ExportFormatXLSX)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
