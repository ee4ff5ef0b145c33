package questionstore_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/corpus"
	"docqa/internal/domain"
	"docqa/internal/questionstore"
)

func rec(label string) domain.QuestionRecord {
	return domain.QuestionRecord{Label: label, Question: label + "?", Prompt: "answer " + label}
}

func TestStore_AddCategory(t *testing.T) {
	s := questionstore.New()

	require.NoError(t, s.AddCategory("petition"))
	assert.ErrorIs(t, s.AddCategory("petition"), domain.ErrCategoryExists)
	assert.ErrorIs(t, s.AddCategory("   "), domain.ErrEmptyCategoryName)
	assert.Equal(t, []string{"petition"}, s.Names())
}

func TestStore_RemoveCategory(t *testing.T) {
	s := questionstore.New()
	require.NoError(t, s.AddCategory("a"))
	require.NoError(t, s.AddCategory("b"))
	require.NoError(t, s.AddRecord("a", rec("x")))

	require.NoError(t, s.RemoveCategory("a"))

	assert.Equal(t, []string{"b"}, s.Names())
	_, ok := s.Lookup("a")
	assert.False(t, ok)
	assert.ErrorIs(t, s.RemoveCategory("a"), domain.ErrCategoryNotFound)
}

func TestStore_AddRecord(t *testing.T) {
	s := questionstore.New()
	require.NoError(t, s.AddCategory("a"))

	require.NoError(t, s.AddRecord("a", rec("x")))
	require.NoError(t, s.AddRecord("a", rec("x")))

	recs, err := s.Records("a")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.ErrorIs(t, s.AddRecord("missing", rec("x")), domain.ErrCategoryNotFound)
	assert.ErrorIs(t, s.AddRecord("a", domain.QuestionRecord{Label: "x"}), domain.ErrIncompleteRecord)
}

func TestStore_RemoveRecords_Reindexes(t *testing.T) {
	s := questionstore.New()
	require.NoError(t, s.AddCategory("a"))
	for _, l := range []string{"r0", "r1", "r2", "r3"} {
		require.NoError(t, s.AddRecord("a", rec(l)))
	}

	require.NoError(t, s.RemoveRecords("a", []int{1, 3}))

	recs, err := s.Records("a")
	require.NoError(t, err)
	assert.Equal(t, []domain.QuestionRecord{rec("r0"), rec("r2")}, recs)
}

func TestStore_RemoveRecords_OutOfRangeIsNoop(t *testing.T) {
	s := questionstore.New()
	require.NoError(t, s.AddCategory("a"))
	require.NoError(t, s.AddRecord("a", rec("r0")))
	require.NoError(t, s.AddRecord("a", rec("r1")))

	err := s.RemoveRecords("a", []int{0, 5})

	assert.ErrorIs(t, err, domain.ErrRecordIndexOutOfRange)
	recs, _ := s.Records("a")
	assert.Len(t, recs, 2)
}

func TestStore_Import_MergesAndDedupes(t *testing.T) {
	s := questionstore.New()
	require.NoError(t, s.AddCategory("a"))
	require.NoError(t, s.AddRecord("a", rec("x")))

	result, err := s.Import([]domain.Category{
		{Name: "a", Records: []domain.QuestionRecord{rec("x"), rec("y")}},
		{Name: "b", Records: []domain.QuestionRecord{rec("z"), rec("z")}},
	})

	require.NoError(t, err)
	assert.Equal(t, &questionstore.ImportResult{CategoriesCreated: 1, RecordsAdded: 2, DuplicatesDropped: 2}, result)
	a, _ := s.Records("a")
	assert.Equal(t, []domain.QuestionRecord{rec("x"), rec("y")}, a)
	b, _ := s.Records("b")
	assert.Equal(t, []domain.QuestionRecord{rec("z")}, b)
}

func TestStore_Import_IsIdempotent(t *testing.T) {
	m := []domain.Category{
		{Name: "a", Records: []domain.QuestionRecord{rec("x"), rec("y"), rec("x")}},
		{Name: "b", Records: []domain.QuestionRecord{rec("z")}},
	}

	once := questionstore.New()
	_, err := once.Import(m)
	require.NoError(t, err)

	twice := questionstore.New()
	_, err = twice.Import(m)
	require.NoError(t, err)
	_, err = twice.Import(twice.Export())
	require.NoError(t, err)
	_, err = twice.Import(m)
	require.NoError(t, err)

	assert.Equal(t, once.Export(), twice.Export())
}

func TestStore_Import_InvalidIsNoop(t *testing.T) {
	s := questionstore.New()

	_, err := s.Import([]domain.Category{
		{Name: "a", Records: []domain.QuestionRecord{rec("x")}},
		{Name: "b", Records: []domain.QuestionRecord{{Question: "no label"}}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidImport)
	assert.Equal(t, 0, s.Len())
}

func TestStore_NamesAreExact(t *testing.T) {
	s := questionstore.New()

	_, err := s.Import([]domain.Category{{Name: "Petição ", Records: []domain.QuestionRecord{rec("x")}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Petição "}, s.Names())
	_, ok := s.Snapshot().Lookup("Petição ")
	assert.True(t, ok)
	_, ok = s.Lookup("Petição")
	assert.False(t, ok)
	require.NoError(t, s.AddCategory(" Petição"))
	require.NoError(t, s.RemoveCategory("Petição "))
	assert.Equal(t, []string{" Petição"}, s.Names())
}

func TestStore_NamesAreNormalized(t *testing.T) {
	nfd := "petic\u0327a\u0303o"
	nfc := "petição"
	require.NotEqual(t, nfc, nfd)

	cats, err := questionstore.DecodeJSON(strings.NewReader(`{"` + nfd + `": [{"label": "autor", "question": "Quem?", "prompt": "Nome"}]}`))
	require.NoError(t, err)
	s := questionstore.New()
	_, err = s.Import(cats)
	require.NoError(t, err)

	data := "numero_tj,tipo_doc_rec,tipo_doc,texto_total\n1," + nfd + ",Peticao,texto\n"
	c, err := corpus.Load(strings.NewReader(data), "docs.csv", domain.CorpusFields{
		Type: "tipo_doc_rec", DisplayType: "tipo_doc", Text: "texto_total", Identifier: "numero_tj",
	})
	require.NoError(t, err)
	require.Len(t, c.Documents, 1)

	recs, ok := s.Snapshot().Lookup(c.Documents[0]["tipo_doc_rec"])
	require.True(t, ok)
	assert.Equal(t, "autor", recs[0].Label)
	assert.Equal(t, []string{nfc}, s.Names())

	require.NoError(t, s.AddRecord(nfd, rec("juiz")))
	assert.ErrorIs(t, s.AddCategory(nfd), domain.ErrCategoryExists)
	all, err := s.Records(nfc)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_Snapshot_IsIsolated(t *testing.T) {
	s := questionstore.New()
	require.NoError(t, s.AddCategory("a"))
	require.NoError(t, s.AddRecord("a", rec("x")))

	snap := s.Snapshot()
	require.NoError(t, s.AddRecord("a", rec("y")))
	require.NoError(t, s.RemoveCategory("a"))

	recs, ok := snap.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, []domain.QuestionRecord{rec("x")}, recs)
	assert.Equal(t, 1, snap.QuestionCount())
	assert.Equal(t, []string{"a"}, snap.Categories())
}

func TestStore_ConcurrentUse(t *testing.T) {
	s := questionstore.New()
	require.NoError(t, s.AddCategory("a"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.AddRecord("a", rec("x"))
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_ = s.Export()
		}()
	}
	wg.Wait()

	recs, _ := s.Records("a")
	assert.Len(t, recs, 20)
}
