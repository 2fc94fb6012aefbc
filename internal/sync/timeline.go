package sync

import (
	"context"
	"errors"

	"github.com/HunterLewis000/newspaper-app/internal/bus"
	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/statusutil"
)

var ErrInvalidStatus = errors.New("invalid status")

// Timeline drives the five-stage progress display for one article's status
// modal. History is append-only and written concurrently by other clients, so
// it is always re-fetched through the service boundary, never read from a
// local cache.
type Timeline struct {
	Store *RowStore
	Svc   Service
	Bus   Broadcaster
}

func NewTimeline(store *RowStore, svc Service, b Broadcaster) *Timeline {
	return &Timeline{Store: store, Svc: svc, Bus: b}
}

// Load fetches the current history and derives the stage display states.
func (t *Timeline) Load(ctx context.Context, articleID int64) ([]statusutil.StageState, error) {
	history, err := t.Svc.StatusHistory(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return statusutil.ClassifyStages(history), nil
}

// ChangeOutcome reports what a ChangeStatus call did.
type ChangeOutcome struct {
	// Declined: the change was a regression and the user refused the
	// confirmation; nothing was sent and nothing changed.
	Declined bool
	// Stages is the refreshed display state after a committed change.
	Stages []statusutil.StageState
}

// ChangeStatus requests a transition to next.
//
// The current stage is read from a fresh history fetch (insertion order, see
// statusutil.CurrentStatus). A strictly backwards move is a regression and
// requires confirm to return true before any server call; equal-index
// re-selection never prompts. On success the store row is patched, the new
// status is broadcast, and the refreshed stage states are returned so the
// modal can diff-patch in place.
func (t *Timeline) ChangeStatus(ctx context.Context, articleID int64, next model.Status, confirm func(from, to model.Status) bool) (ChangeOutcome, error) {
	if !statusutil.Valid(next) {
		return ChangeOutcome{}, ErrInvalidStatus
	}
	history, err := t.Svc.StatusHistory(ctx, articleID)
	if err != nil {
		return ChangeOutcome{}, err
	}
	if statusutil.IsRegression(history, next) {
		from, _ := statusutil.CurrentStatus(history)
		if confirm == nil || !confirm(from, next) {
			return ChangeOutcome{Declined: true}, nil
		}
	}

	if err := t.Svc.UpdateStatus(ctx, articleID, next); err != nil {
		return ChangeOutcome{}, err
	}

	t.Store.Patch(articleID, func(a *model.Article) { a.Status = next })
	if t.Bus != nil {
		_ = t.Bus.Publish(bus.Envelope{Event: bus.EventStatusUpdated, ID: articleID, Status: next})
	}

	stages, err := t.Load(ctx, articleID)
	if err != nil {
		// The change itself committed; a failed refresh only degrades the
		// modal, so report the stale classification of what we know.
		return ChangeOutcome{Stages: statusutil.ClassifyStages(append(history,
			model.StatusHistoryEntry{ArticleID: articleID, Status: next}))}, nil
	}
	return ChangeOutcome{Stages: stages}, nil
}

// DiffStages returns the indices whose display state differs between two
// classifications. The modal re-renders only these, preserving animation and
// focus state on untouched stages.
func DiffStages(old, cur []statusutil.StageState) []int {
	var changed []int
	for i := range cur {
		if i >= len(old) {
			changed = append(changed, i)
			continue
		}
		if !stageEqual(old[i], cur[i]) {
			changed = append(changed, i)
		}
	}
	return changed
}

func stageEqual(a, b statusutil.StageState) bool {
	if a.Status != b.Status || a.Completed != b.Completed || a.Skipped != b.Skipped ||
		a.Current != b.Current || a.PublishedTint != b.PublishedTint {
		return false
	}
	ae, be := a.Entry, b.Entry
	if (ae == nil) != (be == nil) {
		return false
	}
	if ae != nil && (ae.Timestamp != be.Timestamp || ae.UserName != be.UserName) {
		return false
	}
	return true
}
