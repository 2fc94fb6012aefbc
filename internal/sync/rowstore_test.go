package sync

import (
	"reflect"
	"testing"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

func article(id int64, title string) model.Article {
	return model.Article{
		ID: id, Title: title, Author: "A. Writer",
		Cat: model.CategoryNews, Status: model.StatusNotStarted, StatusColor: model.ColorWhite,
	}
}

func storeWith(ids ...int64) *RowStore {
	s := NewRowStore()
	for _, id := range ids {
		s.Upsert(article(id, "t"))
	}
	return s
}

func TestUpsert_PreservesOpenDraft(t *testing.T) {
	s := storeWith(1)
	if !s.BeginEdit(1) {
		t.Fatalf("BeginEdit failed")
	}
	s.SetDraft(1, Draft{Title: "my half-typed title", Author: "me", Deadline: "2026-04-01"})

	// Another client's save lands mid-edit: authoritative fields move, the
	// open input keeps its draft.
	in := article(1, "their title")
	in.Author = "them"
	s.Upsert(in)

	r, ok := s.Get(1)
	if !ok {
		t.Fatalf("row vanished")
	}
	if r.Article.Title != "their title" || r.Article.Author != "them" {
		t.Fatalf("authoritative fields not applied: %+v", r.Article)
	}
	if !r.Editing || r.Draft.Title != "my half-typed title" {
		t.Fatalf("open draft was stomped: %+v", r)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	s := storeWith(1, 2)
	s.Remove(2)
	s.Remove(2)
	s.Remove(99)
	if got := s.Order(); !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("order after removes: %v", got)
	}
}

func TestReorder_UnknownIDAppendPolicy(t *testing.T) {
	// Broadcast {order:[5,3,9]} against local {3,5,9,12}: locally-known ids
	// missing from the broadcast keep their relative order, appended at the end.
	s := storeWith(3, 5, 9, 12)
	s.Reorder([]int64{5, 3, 9})
	want := []int64{5, 3, 9, 12}
	if got := s.Order(); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	// Ids we have never seen are ignored.
	s.Reorder([]int64{42, 9, 3})
	want = []int64{9, 3, 5, 12}
	if got := s.Order(); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestReorder_Idempotent(t *testing.T) {
	s := storeWith(1, 2, 3)
	s.Reorder([]int64{3, 1, 2})
	once := s.Order()
	s.Reorder([]int64{3, 1, 2})
	if got := s.Order(); !reflect.DeepEqual(got, once) {
		t.Fatalf("reapplying the same order changed the list: %v vs %v", got, once)
	}
}

func TestReset_ReplacesEverything(t *testing.T) {
	s := storeWith(1, 2)
	s.BeginEdit(1)
	s.Reset([]model.Article{article(7, "x"), article(8, "y")})
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	if got := s.Order(); !reflect.DeepEqual(got, []int64{7, 8}) {
		t.Fatalf("order = %v", got)
	}
	if _, ok := s.Get(1); ok {
		t.Fatalf("stale row survived reset")
	}
}

func TestSnapshot_FollowsOrder(t *testing.T) {
	s := storeWith(1, 2, 3)
	s.Reorder([]int64{2, 3, 1})
	snap := s.Snapshot()
	ids := make([]int64, len(snap))
	for i, r := range snap {
		ids[i] = r.Article.ID
	}
	if !reflect.DeepEqual(ids, []int64{2, 3, 1}) {
		t.Fatalf("snapshot order %v", ids)
	}
}
