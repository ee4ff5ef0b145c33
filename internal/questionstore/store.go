// Package questionstore keeps the per-document-type question sets of a
// session and converts them to and from their JSON and YAML file forms.
package questionstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"docqa/internal/domain"
)

// ImportResult summarizes the effect of an Import.
type ImportResult struct {
	CategoriesCreated int `json:"categories_created"`
	RecordsAdded      int `json:"records_added"`
	DuplicatesDropped int `json:"duplicates_dropped"`
}

// Store holds ordered categories of question records. It is safe for
// concurrent use. Records are never mutated in place.
type Store struct {
	mu      sync.RWMutex
	names   []string
	records map[string][]domain.QuestionRecord
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string][]domain.QuestionRecord)}
}

// canonical maps a category name to its stored key. Names are compared
// exactly, in NFC form, matching the normalization the corpus loader applies
// to document type values.
func canonical(name string) string {
	return norm.NFC.String(name)
}

// AddCategory creates an empty category.
func (s *Store) AddCategory(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrEmptyCategoryName
	}
	name = canonical(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrCategoryExists, name)
	}
	s.names = append(s.names, name)
	s.records[name] = []domain.QuestionRecord{}
	return nil
}

// RemoveCategory deletes a category and all its records.
func (s *Store) RemoveCategory(name string) error {
	name = canonical(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, name)
	}
	delete(s.records, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i:i], s.names[i+1:]...)
			break
		}
	}
	return nil
}

// AddRecord appends a record to an existing category. Labels are not
// required to be unique.
func (s *Store) AddRecord(category string, rec domain.QuestionRecord) error {
	if !rec.Complete() {
		return domain.ErrIncompleteRecord
	}
	category = canonical(category)
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[category]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, category)
	}
	next := make([]domain.QuestionRecord, len(current), len(current)+1)
	copy(next, current)
	s.records[category] = append(next, rec)
	return nil
}

// RemoveRecords deletes the records at the given positions and reindexes the
// rest contiguously. Every index is checked before anything is removed.
func (s *Store) RemoveRecords(category string, indices []int) error {
	category = canonical(category)
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[category]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, category)
	}

	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(current) {
			return fmt.Errorf("%w: %d (category has %d records)", domain.ErrRecordIndexOutOfRange, idx, len(current))
		}
		drop[idx] = true
	}

	kept := make([]domain.QuestionRecord, 0, len(current)-len(drop))
	for i, rec := range current {
		if !drop[i] {
			kept = append(kept, rec)
		}
	}
	s.records[category] = kept
	return nil
}

// Records returns a copy of a category's records.
func (s *Store) Records(category string) ([]domain.QuestionRecord, error) {
	category = canonical(category)
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, ok := s.records[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, category)
	}
	return cloneRecords(current), nil
}

// Lookup returns a copy of a category's records and whether it exists.
func (s *Store) Lookup(category string) ([]domain.QuestionRecord, bool) {
	category = canonical(category)
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, ok := s.records[category]
	if !ok {
		return nil, false
	}
	return cloneRecords(current), true
}

// Names returns the category names in creation order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of categories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Export returns every category with its records, in creation order. The
// result round-trips through Import.
func (s *Store) Export() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, len(s.names))
	for i, name := range s.names {
		out[i] = domain.Category{Name: name, Records: cloneRecords(s.records[name])}
	}
	return out
}

// Import merges categories into the store. New categories are created,
// existing ones get the incoming records appended. Exact duplicates (all
// three fields equal) are dropped from every merged sequence, keeping the
// first occurrence. Input is validated completely before anything changes.
func (s *Store) Import(categories []domain.Category) (*ImportResult, error) {
	for _, cat := range categories {
		if strings.TrimSpace(cat.Name) == "" {
			return nil, fmt.Errorf("%w: empty category name", domain.ErrInvalidImport)
		}
		for i, rec := range cat.Records {
			if rec.Label == "" {
				return nil, fmt.Errorf("%w: category %q record %d has no label", domain.ErrInvalidImport, cat.Name, i)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ImportResult{}
	for _, cat := range categories {
		name := canonical(cat.Name)
		current, exists := s.records[name]
		if !exists {
			s.names = append(s.names, name)
			result.CategoriesCreated++
		}

		merged := make([]domain.QuestionRecord, 0, len(current)+len(cat.Records))
		merged = append(merged, current...)
		merged = append(merged, cat.Records...)
		deduped := dedupe(merged)

		result.DuplicatesDropped += len(merged) - len(deduped)
		result.RecordsAdded += len(deduped) - len(current)
		s.records[name] = deduped
	}
	return result, nil
}

// Snapshot returns an immutable copy of the store for one extraction run.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.records))
	for name, recs := range s.records {
		snap[name] = cloneRecords(recs)
	}
	return snap
}

// Snapshot is a read-only view of the categories at one point in time.
type Snapshot map[string][]domain.QuestionRecord

// Lookup implements extraction.QuestionSource.
func (s Snapshot) Lookup(category string) ([]domain.QuestionRecord, bool) {
	recs, ok := s[canonical(category)]
	return recs, ok
}

// QuestionCount returns the total number of records across categories.
func (s Snapshot) QuestionCount() int {
	n := 0
	for _, recs := range s {
		n += len(recs)
	}
	return n
}

// Categories returns the category names sorted alphabetically.
func (s Snapshot) Categories() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func dedupe(recs []domain.QuestionRecord) []domain.QuestionRecord {
	seen := make(map[domain.QuestionRecord]bool, len(recs))
	out := make([]domain.QuestionRecord, 0, len(recs))
	for _, rec := range recs {
		if seen[rec] {
			continue
		}
		seen[rec] = true
		out = append(out, rec)
	}
	return out
}

func cloneRecords(recs []domain.QuestionRecord) []domain.QuestionRecord {
	out := make([]domain.QuestionRecord, len(recs))
	copy(out, recs)
	return out
}
