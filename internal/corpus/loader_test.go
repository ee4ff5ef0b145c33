package corpus_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docqa/internal/corpus"
	"docqa/internal/domain"
)

var fields = domain.CorpusFields{
	Type:        "tipo_doc_rec",
	DisplayType: "tipo_doc",
	Text:        "texto_total",
	Identifier:  "numero_tj",
}

const header = "numero_tj,tipo_doc_rec,tipo_doc,texto_total\n"

func TestLoad_CSV(t *testing.T) {
	data := header +
		"0001,peticao,Petição,\"Texto, com vírgula\"\n" +
		"0002,sentenca,Sentença,Outro texto\n"

	c, err := corpus.Load(strings.NewReader(data), "docs.csv", fields)

	require.NoError(t, err)
	assert.Equal(t, []string{"numero_tj", "tipo_doc_rec", "tipo_doc", "texto_total"}, c.Columns)
	require.Len(t, c.Documents, 2)
	assert.Equal(t, "Texto, com vírgula", c.Documents[0]["texto_total"])
	assert.Equal(t, "Sentença", c.Documents[1]["tipo_doc"])
	assert.Equal(t, "docs.csv", c.SourceName)
}

func TestLoad_CSV_StripsBOM(t *testing.T) {
	data := "\xef\xbb\xbf" + header + "1,a,A,t\n"

	c, err := corpus.Load(strings.NewReader(data), "docs.csv", fields)

	require.NoError(t, err)
	assert.Equal(t, "numero_tj", c.Columns[0])
	assert.Len(t, c.Documents, 1)
}

func TestLoad_CSV_SkipsMalformedAndDropsEmpty(t *testing.T) {
	data := header +
		"1,a,A,t\n" +
		"2,a,A\n" +
		"3,a,A,t,extra\n" +
		"4,a,,t\n" +
		"5,a,A,t\n"

	c, err := corpus.Load(strings.NewReader(data), "docs.csv", fields)

	require.NoError(t, err)
	require.Len(t, c.Documents, 2)
	assert.Equal(t, "1", c.Documents[0]["numero_tj"])
	assert.Equal(t, "5", c.Documents[1]["numero_tj"])
	assert.Equal(t, 2, c.SkippedRows)
	assert.Equal(t, 1, c.DroppedRows)
}

func TestLoad_CSV_MissingColumns(t *testing.T) {
	_, err := corpus.Load(strings.NewReader("numero_tj,texto_total\n1,t\n"), "docs.csv", fields)

	require.ErrorIs(t, err, domain.ErrMissingColumns)
	assert.Contains(t, err.Error(), "tipo_doc_rec")
}

func TestLoad_CSV_InvalidEncoding(t *testing.T) {
	data := header + "1,a,A,caf\xe9\n"

	_, err := corpus.Load(strings.NewReader(data), "docs.csv", fields)

	assert.ErrorIs(t, err, domain.ErrInvalidEncoding)
}

func TestLoad_CSV_StrayQuoteKeepsRow(t *testing.T) {
	data := header +
		"1,a,A,primeiro\n" +
		"2,a,A,o reu disse \"nao\" em audiencia\n" +
		"3,a,A,terceiro\n"

	c, err := corpus.Load(strings.NewReader(data), "docs.csv", fields)

	require.NoError(t, err)
	require.Len(t, c.Documents, 3)
	assert.Equal(t, `o reu disse "nao" em audiencia`, c.Documents[1]["texto_total"])
	assert.Equal(t, "3", c.Documents[2]["numero_tj"])
	assert.Zero(t, c.SkippedRows)
}

func TestLoad_CSV_UnterminatedQuoteKeepsText(t *testing.T) {
	data := header + "1,a,A,\"unterminated\n"

	c, err := corpus.Load(strings.NewReader(data), "docs.csv", fields)

	require.NoError(t, err)
	require.Len(t, c.Documents, 1)
	assert.Equal(t, "unterminated", strings.TrimSpace(c.Documents[0]["texto_total"]))
}

func TestLoad_Empty(t *testing.T) {
	_, err := corpus.Load(strings.NewReader(""), "docs.csv", fields)

	assert.ErrorIs(t, err, domain.ErrMalformedUpload)
}

func TestLoad_DuplicateHeader(t *testing.T) {
	_, err := corpus.Load(strings.NewReader(header[:len(header)-1]+",numero_tj\n"), "docs.csv", fields)

	assert.ErrorIs(t, err, domain.ErrMalformedUpload)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"numero_tj", "tipo_doc_rec", "tipo_doc", "texto_total"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"1", "a", "A", "texto"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2", "a", "A"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	c, err := corpus.Load(bytes.NewReader(buf.Bytes()), "docs.xlsx", fields)

	require.NoError(t, err)
	require.Len(t, c.Documents, 1)
	assert.Equal(t, "texto", c.Documents[0]["texto_total"])
	assert.Equal(t, 1, c.DroppedRows)
}

func TestDetect_Unsupported(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	_, err := corpus.Detect(png, "image.png")

	assert.ErrorIs(t, err, domain.ErrUnsupportedUpload)
}

func TestAppend(t *testing.T) {
	a, err := corpus.Load(strings.NewReader(header+"1,a,A,t\n"), "a.csv", fields)
	require.NoError(t, err)
	b, err := corpus.Load(strings.NewReader(header+"2,a,A,t\n3,a,,t\n"), "b.csv", fields)
	require.NoError(t, err)

	require.NoError(t, corpus.Append(a, b))

	assert.Len(t, a.Documents, 2)
	assert.Equal(t, 1, a.DroppedRows)

	other, err := corpus.Load(strings.NewReader("tipo_doc_rec,numero_tj,tipo_doc,texto_total\na,1,A,t\n"), "c.csv", fields)
	require.NoError(t, err)
	assert.ErrorIs(t, corpus.Append(a, other), domain.ErrMalformedUpload)
}

func TestWriteJSON(t *testing.T) {
	c, err := corpus.Load(strings.NewReader(header+"1,a,Petição,<texto>\n"), "a.csv", fields)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, corpus.WriteJSON(&buf, c))

	want := `[
    {
        "numero_tj": "1",
        "tipo_doc_rec": "a",
        "tipo_doc": "Petição",
        "texto_total": "<texto>"
    }
]
`
	assert.Equal(t, want, buf.String())
}
