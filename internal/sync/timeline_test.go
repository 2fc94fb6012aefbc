package sync

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/statusutil"
)

func newTimeline(ids ...int64) (*Timeline, *fakeService, *fakeBus) {
	svc := newFakeService()
	b := &fakeBus{}
	return NewTimeline(storeWith(ids...), svc, b), svc, b
}

func seedHistory(svc *fakeService, id int64, statuses ...model.Status) {
	for _, s := range statuses {
		svc.history[id] = append(svc.history[id], model.StatusHistoryEntry{
			ArticleID: id, Status: s, Timestamp: "2026-03-04 09:00:00", UserName: "desk",
		})
	}
}

func TestChangeStatus_RegressionPromptsAndDeclineAborts(t *testing.T) {
	tl, svc, b := newTimeline(7)
	seedHistory(svc, 7, model.StatusNotStarted, model.StatusInProgress)
	ctx := context.Background()

	prompted := 0
	decline := func(from, to model.Status) bool {
		prompted++
		if from != model.StatusInProgress || to != model.StatusNotStarted {
			t.Fatalf("confirm saw %q -> %q", from, to)
		}
		return false
	}

	out, err := tl.ChangeStatus(ctx, 7, model.StatusNotStarted, decline)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if prompted != 1 || !out.Declined {
		t.Fatalf("regression must prompt exactly once and honor decline: prompts=%d out=%+v", prompted, out)
	}
	if svc.callCount("update_status") != 0 {
		t.Fatalf("declined regression must not send a request")
	}
	if len(svc.history[7]) != 2 {
		t.Fatalf("history changed on decline")
	}
	if len(b.sent) != 0 {
		t.Fatalf("no broadcast on decline")
	}
}

func TestChangeStatus_EqualIndexNeverPrompts(t *testing.T) {
	tl, svc, _ := newTimeline(7)
	seedHistory(svc, 7, model.StatusInProgress)

	prompted := false
	confirm := func(from, to model.Status) bool { prompted = true; return true }

	// The boundary is strictly currentIndex > newIndex: re-selecting the
	// current stage proceeds without confirmation.
	if _, err := tl.ChangeStatus(context.Background(), 7, model.StatusInProgress, confirm); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if prompted {
		t.Fatalf("equal-index request must not prompt")
	}
	if svc.callCount("update_status") != 1 {
		t.Fatalf("request should have been sent")
	}
}

func TestChangeStatus_ConfirmedRegressionCommits(t *testing.T) {
	tl, svc, b := newTimeline(7)
	seedHistory(svc, 7, model.StatusNotStarted, model.StatusEdited)

	out, err := tl.ChangeStatus(context.Background(), 7, model.StatusInProgress,
		func(from, to model.Status) bool { return true })
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if out.Declined {
		t.Fatalf("confirmed regression must proceed")
	}
	row, _ := tl.Store.Get(7)
	if row.Article.Status != model.StatusInProgress {
		t.Fatalf("row status not propagated: %v", row.Article.Status)
	}
	if got := b.events(); !reflect.DeepEqual(got, []string{"status_updated"}) {
		t.Fatalf("broadcasts = %v", got)
	}
	// Refreshed stages come from the re-fetched, now 3-entry history.
	if !out.Stages[1].Current {
		t.Fatalf("In Progress should be current after commit: %+v", out.Stages)
	}
	if !out.Stages[3].Completed || out.Stages[3].Current {
		t.Fatalf("Edited keeps its visited mark: %+v", out.Stages[3])
	}
}

func TestChangeStatus_FailureLeavesEverything(t *testing.T) {
	tl, svc, b := newTimeline(7)
	seedHistory(svc, 7, model.StatusNotStarted)

	// First call re-fetches history (succeeds), then the update itself fails.
	svcErr := errors.New("boom")
	tl.Svc = &failingUpdateService{fakeService: svc, err: svcErr}

	_, err := tl.ChangeStatus(context.Background(), 7, model.StatusInProgress, nil)
	if !errors.Is(err, svcErr) {
		t.Fatalf("expected update failure; got %v", err)
	}
	row, _ := tl.Store.Get(7)
	if row.Article.Status != model.StatusNotStarted {
		t.Fatalf("no state may be pre-committed on failure: %v", row.Article.Status)
	}
	if len(b.sent) != 0 {
		t.Fatalf("no broadcast on failure")
	}
}

type failingUpdateService struct {
	*fakeService
	err error
}

func (f *failingUpdateService) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	return f.err
}

func TestChangeStatus_InvalidStatus(t *testing.T) {
	tl, svc, _ := newTimeline(7)
	if _, err := tl.ChangeStatus(context.Background(), 7, "Bogus", nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus; got %v", err)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("invalid status must not touch the boundary")
	}
}

func TestLoad_AlwaysRefetches(t *testing.T) {
	tl, svc, _ := newTimeline(7)
	seedHistory(svc, 7, model.StatusNotStarted)
	ctx := context.Background()

	if _, err := tl.Load(ctx, 7); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := tl.Load(ctx, 7); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if svc.callCount("history") != 2 {
		t.Fatalf("history must be re-fetched every time; got %d fetches", svc.callCount("history"))
	}
}

func TestDiffStages(t *testing.T) {
	old := statusutil.ClassifyStages([]model.StatusHistoryEntry{
		{Status: model.StatusNotStarted, Timestamp: "2026-03-04 09:00:00"},
	})
	cur := statusutil.ClassifyStages([]model.StatusHistoryEntry{
		{Status: model.StatusNotStarted, Timestamp: "2026-03-04 09:00:00"},
		{Status: model.StatusInProgress, Timestamp: "2026-03-04 10:00:00"},
	})

	changed := DiffStages(old, cur)
	if !reflect.DeepEqual(changed, []int{0, 1}) {
		t.Fatalf("changed = %v, want [0 1] (Not Started loses current, In Progress gains it)", changed)
	}
	if got := DiffStages(cur, cur); got != nil {
		t.Fatalf("identical classifications must diff empty; got %v", got)
	}
}
