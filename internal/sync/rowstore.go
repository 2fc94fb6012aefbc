// Package sync keeps one client's in-memory view of the article list
// convergent with the authoritative server state and with broadcast
// notifications from other clients. Rendering is a separate concern: every
// view must be derivable from a RowStore snapshot alone.
package sync

import (
	"sort"
	"sync"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

// Draft holds the in-progress values of an open row edit. Broadcast upserts
// replace the authoritative fields underneath but never touch the draft; the
// edit's own commit path decides what is finally saved.
type Draft struct {
	Title    string
	Author   string
	Deadline string
}

// Row is one rendered article plus its transient, client-local UI state.
type Row struct {
	Article model.Article

	Editing bool
	Draft   Draft
}

// RowStore is the single in-memory authority for the rendered list: rows
// keyed by article id plus the display order. All mutations are guarded by a
// mutex because broadcast delivery and command completions arrive on
// different goroutines.
type RowStore struct {
	mu    sync.Mutex
	rows  map[int64]*Row
	order []int64
}

func NewRowStore() *RowStore {
	return &RowStore{rows: map[int64]*Row{}}
}

// Reset replaces the whole store with an authoritative listing (initial load).
func (s *RowStore) Reset(articles []model.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[int64]*Row, len(articles))
	s.order = make([]int64, 0, len(articles))
	for _, a := range articles {
		a := a
		s.rows[a.ID] = &Row{Article: a}
		s.order = append(s.order, a.ID)
	}
}

// Upsert inserts or replaces the row for a.ID. Authoritative fields are
// replaced wholesale; transient edit state (Editing, Draft) survives so a
// broadcast cannot silently overwrite an open input.
func (s *RowStore) Upsert(a model.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[a.ID]; ok {
		r.Article = a
		return
	}
	s.rows[a.ID] = &Row{Article: a}
	s.order = append(s.order, a.ID)
}

// Patch applies fn to the article fields of id, if present. Returns false for
// an unknown id (benign no-op for stale references).
func (s *RowStore) Patch(id int64, fn func(*model.Article)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return false
	}
	fn(&r.Article)
	return true
}

// Remove deletes the row if present. Idempotent.
func (s *RowStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return
	}
	delete(s.rows, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Reorder resequences the store to match ids. Ids not currently present are
// ignored. Rows present locally but missing from ids keep their previous
// relative order and are appended after the sequence; a client that has not
// yet seen an article must not lose it to someone else's shorter order.
// Reapplying the same sequence is a no-op.
func (s *RowStore) Reorder(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]bool, len(ids))
	next := make([]int64, 0, len(s.order))
	for _, id := range ids {
		if _, ok := s.rows[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	for _, id := range s.order {
		if !seen[id] {
			next = append(next, id)
		}
	}
	s.order = next
}

// Order returns a copy of the current display order.
func (s *RowStore) Order() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns a copy of the row for id.
func (s *RowStore) Get(id int64) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return Row{}, false
	}
	return *r, true
}

// Snapshot returns copies of all rows in display order.
func (s *RowStore) Snapshot() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, 0, len(s.order))
	for _, id := range s.order {
		if r, ok := s.rows[id]; ok {
			out = append(out, *r)
		}
	}
	return out
}

func (s *RowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// BeginEdit opens edit mode on a row, seeding the draft from the current
// authoritative fields. Multiple rows may be mid-edit concurrently.
func (s *RowStore) BeginEdit(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return false
	}
	if r.Editing {
		return true
	}
	r.Editing = true
	r.Draft = Draft{Title: r.Article.Title, Author: r.Article.Author, Deadline: r.Article.Deadline}
	return true
}

// SetDraft updates the open draft for id, if editing.
func (s *RowStore) SetDraft(id int64, d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok && r.Editing {
		r.Draft = d
	}
}

// EndEdit closes edit mode, discarding the draft.
func (s *RowStore) EndEdit(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		r.Editing = false
		r.Draft = Draft{}
	}
}

// SortedIDs returns all known ids ascending; test/debug helper.
func (s *RowStore) SortedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
