package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "desk.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, title string) model.Article {
	t.Helper()
	a, err := s.CreateArticle(context.Background(), title, "A. Writer", "2026-04-01", "desk")
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return a
}

func TestCreateArticle_SeedsHistoryAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, s, "first")
	if a.Status != model.StatusNotStarted || a.StatusColor != model.ColorWhite {
		t.Fatalf("defaults wrong: %+v", a)
	}

	h, err := s.History(ctx, a.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 1 || h[0].Status != model.StatusNotStarted || h[0].UserName != "desk" {
		t.Fatalf("seeded history wrong: %+v", h)
	}

	b := mustCreate(t, s, "second")
	order, err := s.Order(ctx)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if !reflect.DeepEqual(order, []int64{a.ID, b.ID}) {
		t.Fatalf("order = %v", order)
	}
}

func TestHistory_InsertionOrderIsCurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "x")

	for _, st := range []model.Status{model.StatusInProgress, model.StatusEdited, model.StatusInProgress} {
		if err := s.AppendStatus(ctx, a.ID, st, "desk"); err != nil {
			t.Fatalf("AppendStatus(%s): %v", st, err)
		}
	}
	h, err := s.History(ctx, a.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 4 {
		t.Fatalf("history len = %d", len(h))
	}
	if h[len(h)-1].Status != model.StatusInProgress {
		t.Fatalf("last insert must be current: %+v", h)
	}
	got, err := s.GetArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got.Status != model.StatusInProgress {
		t.Fatalf("article status not moved: %v", got.Status)
	}
}

func TestPublishedLocks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "x")

	if err := s.UpdateCat(ctx, a.ID, model.CategorySports); err != nil {
		t.Fatalf("UpdateCat before publish: %v", err)
	}
	if err := s.AppendStatus(ctx, a.ID, model.StatusPublished, "desk"); err != nil {
		t.Fatalf("AppendStatus: %v", err)
	}

	if err := s.UpdateCat(ctx, a.ID, model.CategoryNews); !errors.Is(err, ErrPublishedLocked) {
		t.Fatalf("expected ErrPublishedLocked; got %v", err)
	}
	if err := s.UpdateEditor(ctx, a.ID, model.EditorCopley); !errors.Is(err, ErrPublishedLocked) {
		t.Fatalf("expected ErrPublishedLocked; got %v", err)
	}
	if err := s.UpdateStatusColor(ctx, a.ID, model.ColorRed); !errors.Is(err, ErrPublishedLocked) {
		t.Fatalf("expected ErrPublishedLocked; got %v", err)
	}

	// Title edits stay allowed; only cat/editor/color freeze.
	if err := s.UpdateFields(ctx, a.ID, "new title", "auth", ""); err != nil {
		t.Fatalf("UpdateFields after publish: %v", err)
	}
}

func TestArchiveAndActivate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "x")
	b := mustCreate(t, s, "y")

	if err := s.Archive(ctx, a.ID); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("archive before publish must fail; got %v", err)
	}
	if err := s.AppendStatus(ctx, a.ID, model.StatusPublished, "desk"); err != nil {
		t.Fatalf("AppendStatus: %v", err)
	}
	if err := s.Archive(ctx, a.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	active, err := s.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].ID != b.ID {
		t.Fatalf("active = %+v", active)
	}

	archived, err := s.ListArchived(ctx)
	if err != nil {
		t.Fatalf("ListArchived: %v", err)
	}
	if len(archived) != 1 || archived[0].Status != model.StatusPublished {
		t.Fatalf("archived row must keep its status: %+v", archived)
	}

	got, err := s.Activate(ctx, a.ID)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if got.Archived {
		t.Fatalf("still archived after activate")
	}
	order, _ := s.Order(ctx)
	if !reflect.DeepEqual(order, []int64{b.ID, a.ID}) {
		t.Fatalf("reactivated row must append to the order end: %v", order)
	}
}

func TestSaveOrder_Wholesale(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "a")
	b := mustCreate(t, s, "b")
	c := mustCreate(t, s, "c")

	if err := s.SaveOrder(ctx, []int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	list, err := s.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	ids := []int64{list[0].ID, list[1].ID, list[2].ID}
	if !reflect.DeepEqual(ids, []int64{c.ID, a.ID, b.ID}) {
		t.Fatalf("listing order = %v", ids)
	}
}

func TestDelete_RemovesEverything(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "a")

	if _, err := s.AddFile(ctx, a.ID, "draft.txt", []byte("body")); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, a.ID); err == nil {
		t.Fatalf("second delete must report not found")
	}
	var nf NotFoundError
	if _, err := s.GetArticle(ctx, a.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
}

func TestFiles_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "a")

	f, err := s.AddFile(ctx, a.ID, "draft.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	files, err := s.Files(ctx, a.ID)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0].Filename != "draft.txt" {
		t.Fatalf("files = %+v", files)
	}

	got, err := s.GetArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got.FileCount != 1 {
		t.Fatalf("file_count = %d", got.FileCount)
	}

	name, content, err := s.FileContent(ctx, f.ID)
	if err != nil || name != "draft.txt" || string(content) != "hello" {
		t.Fatalf("FileContent = %q %q %v", name, content, err)
	}

	owner, err := s.DeleteFile(ctx, f.ID)
	if err != nil || owner != a.ID {
		t.Fatalf("DeleteFile = %d %v", owner, err)
	}
	if _, err := s.DeleteFile(ctx, f.ID); err == nil {
		t.Fatalf("double delete must report not found")
	}
}
