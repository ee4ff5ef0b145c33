package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/handler"
	"docqa/internal/service"
)

func newQuestionHandler() *handler.QuestionHandler {
	return handler.NewQuestionHandler(service.NewQuestionService())
}

func jsonBody(c *gin.Context, body string) {
	c.Request, _ = http.NewRequest(c.Request.Method, c.Request.URL.String(), strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
}

func multipartBody(t *testing.T, c *gin.Context, filename, content string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	c.Request, _ = http.NewRequest(c.Request.Method, c.Request.URL.String(), &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
}

// --- CreateCategory ---

func TestQuestionHandler_CreateCategory_Success(t *testing.T) {
	h := newQuestionHandler()
	c, w, state := newSessionContext(http.MethodPost, "/api/v1/questions/categories")
	jsonBody(c, `{"name": "Contrato"}`)

	h.CreateCategory(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"Contrato"}, state.Questions.Names())
}

func TestQuestionHandler_CreateCategory_Duplicate(t *testing.T) {
	h := newQuestionHandler()
	c, w, state := newSessionContext(http.MethodPost, "/api/v1/questions/categories")
	require.NoError(t, state.Questions.AddCategory("Contrato"))
	jsonBody(c, `{"name": "Contrato"}`)

	h.CreateCategory(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CATEGORY_EXISTS", decodeResponse(t, w).Error.Code)
}

func TestQuestionHandler_CreateCategory_MissingName(t *testing.T) {
	h := newQuestionHandler()
	c, w, _ := newSessionContext(http.MethodPost, "/api/v1/questions/categories")
	jsonBody(c, `{}`)

	h.CreateCategory(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- AddRecord / RemoveRecords ---

func TestQuestionHandler_AddRecord_UnknownCategory(t *testing.T) {
	h := newQuestionHandler()
	c, w, _ := newSessionContext(http.MethodPost, "/api/v1/questions/categories/Nada/records")
	c.Params = gin.Params{{Key: "name", Value: "Nada"}}
	jsonBody(c, `{"label": "Valor", "question": "Qual?", "prompt": "Valor"}`)

	h.AddRecord(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuestionHandler_AddRecord_Incomplete(t *testing.T) {
	h := newQuestionHandler()
	c, w, state := newSessionContext(http.MethodPost, "/api/v1/questions/categories/Contrato/records")
	require.NoError(t, state.Questions.AddCategory("Contrato"))
	c.Params = gin.Params{{Key: "name", Value: "Contrato"}}
	jsonBody(c, `{"label": "Valor", "question": "Qual?"}`)

	h.AddRecord(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	recs, err := state.Questions.Records("Contrato")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestQuestionHandler_RemoveRecords_OutOfRange(t *testing.T) {
	h := newQuestionHandler()
	c, w, state := newSessionContext(http.MethodPost, "/api/v1/questions/categories/Contrato/records/remove")
	require.NoError(t, state.Questions.AddCategory("Contrato"))
	require.NoError(t, state.Questions.AddRecord("Contrato", domain.QuestionRecord{Label: "a", Question: "b", Prompt: "c"}))
	c.Params = gin.Params{{Key: "name", Value: "Contrato"}}
	jsonBody(c, `{"indices": [0, 5]}`)

	h.RemoveRecords(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INDEX_OUT_OF_RANGE", decodeResponse(t, w).Error.Code)
	recs, _ := state.Questions.Records("Contrato")
	assert.Len(t, recs, 1)
}

// --- Import / Export ---

func TestQuestionHandler_Import_YAMLByExtension(t *testing.T) {
	h := newQuestionHandler()
	c, w, state := newSessionContext(http.MethodPost, "/api/v1/questions/import")
	multipartBody(t, c, "questions.yml", "Contrato:\n  - label: Valor\n    question: Qual o valor?\n    prompt: Valor do contrato\n")

	h.Import(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recs, err := state.Questions.Records("Contrato")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Valor", recs[0].Label)
}

func TestQuestionHandler_Import_InvalidFileLeavesStore(t *testing.T) {
	h := newQuestionHandler()
	c, w, state := newSessionContext(http.MethodPost, "/api/v1/questions/import")
	require.NoError(t, state.Questions.AddCategory("Contrato"))
	multipartBody(t, c, "questions.json", `["not", "a", "mapping"]`)

	h.Import(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Contrato"}, state.Questions.Names())
}

func TestQuestionHandler_Import_MissingFile(t *testing.T) {
	h := newQuestionHandler()
	c, w, _ := newSessionContext(http.MethodPost, "/api/v1/questions/import")

	h.Import(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)
}

func TestQuestionHandler_Export_JSON(t *testing.T) {
	h := newQuestionHandler()
	c, w, state := newSessionContext(http.MethodGet, "/api/v1/questions/export")
	require.NoError(t, state.Questions.AddCategory("Contrato"))
	require.NoError(t, state.Questions.AddRecord("Contrato", domain.QuestionRecord{Label: "Valor", Question: "Qual?", Prompt: "Valor"}))

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="questions.json"`)
	assert.True(t, strings.HasPrefix(w.Body.String(), "{"))
	assert.Contains(t, w.Body.String(), `"Contrato"`)
}

func TestQuestionHandler_Export_UnsupportedFormat(t *testing.T) {
	h := newQuestionHandler()
	c, w, _ := newSessionContext(http.MethodGet, "/api/v1/questions/export?format=xlsx")

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
