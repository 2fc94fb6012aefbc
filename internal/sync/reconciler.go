package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/HunterLewis000/newspaper-app/internal/bus"
	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/statusutil"
)

// Service is the slice of the remote command client the reconciler needs.
// *api.Client satisfies it.
type Service interface {
	ListArticles(ctx context.Context) ([]model.Article, error)
	GetArticle(ctx context.Context, id int64) (model.Article, error)
	UpdateFields(ctx context.Context, id int64, title, author, deadline string) error
	UpdateCat(ctx context.Context, id int64, cat model.Category) error
	UpdateEditor(ctx context.Context, id int64, editor model.Editor) error
	UpdateStatusColor(ctx context.Context, id int64, color model.StatusColor) error
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	StatusHistory(ctx context.Context, id int64) ([]model.StatusHistoryEntry, error)
	UpdateOrder(ctx context.Context, order []int64) error
	Delete(ctx context.Context, id int64) error
	Archive(ctx context.Context, id int64) error
}

// Broadcaster publishes fire-and-forget notifications of changes already
// committed server-side. May be nil (offline tests).
type Broadcaster interface {
	Publish(bus.Envelope) error
}

var ErrUnknownArticle = errors.New("unknown article")

// Reconciler applies one logical change to exactly one authority: local
// mutations go to the service boundary and commit into the row store only on
// a confirmed success; inbound broadcasts merge into whatever local state
// exists, idempotently. The originating client receives its own broadcasts
// and must see them as no-ops.
type Reconciler struct {
	Store *RowStore
	Svc   Service
	Bus   Broadcaster
}

func NewReconciler(store *RowStore, svc Service, b Broadcaster) *Reconciler {
	return &Reconciler{Store: store, Svc: svc, Bus: b}
}

func (r *Reconciler) publish(env bus.Envelope) {
	if r.Bus == nil {
		return
	}
	// Fire and forget: a lost broadcast only delays convergence until the
	// next authoritative fetch, it never corrupts state.
	_ = r.Bus.Publish(env)
}

// Load replaces the store with the authoritative listing.
func (r *Reconciler) Load(ctx context.Context) error {
	articles, err := r.Svc.ListArticles(ctx)
	if err != nil {
		return err
	}
	r.Store.Reset(articles)
	return nil
}

// ApplyLocalEdit saves an edit of title/author/deadline. The store is only
// touched on a confirmed success, so a failure leaves the pre-edit values
// displayed; the caller surfaces the error and the user retries by hand.
func (r *Reconciler) ApplyLocalEdit(ctx context.Context, id int64, d Draft) error {
	if _, ok := r.Store.Get(id); !ok {
		return ErrUnknownArticle
	}
	if err := r.Svc.UpdateFields(ctx, id, d.Title, d.Author, d.Deadline); err != nil {
		return err
	}
	r.Store.Patch(id, func(a *model.Article) {
		a.Title = d.Title
		a.Author = d.Author
		a.Deadline = d.Deadline
	})
	r.Store.EndEdit(id)
	r.publish(bus.Envelope{
		Event: bus.EventArticleUpdated, ID: id,
		Title: &d.Title, Author: &d.Author, Deadline: &d.Deadline,
	})
	return nil
}

// SetCategory persists a category change. Silently refused once Published:
// no request is sent and no error is raised, the control is simply locked.
func (r *Reconciler) SetCategory(ctx context.Context, id int64, cat model.Category) error {
	row, ok := r.Store.Get(id)
	if !ok {
		return ErrUnknownArticle
	}
	if statusutil.IsPublished(row.Article.Status) {
		return nil
	}
	if err := r.Svc.UpdateCat(ctx, id, cat); err != nil {
		return err
	}
	r.Store.Patch(id, func(a *model.Article) { a.Cat = cat })
	r.publish(bus.Envelope{Event: bus.EventCatUpdated, ID: id, Cat: cat})
	return nil
}

// SetEditor persists an editor assignment, with the same Published lock as
// SetCategory.
func (r *Reconciler) SetEditor(ctx context.Context, id int64, editor model.Editor) error {
	row, ok := r.Store.Get(id)
	if !ok {
		return ErrUnknownArticle
	}
	if statusutil.IsPublished(row.Article.Status) {
		return nil
	}
	if err := r.Svc.UpdateEditor(ctx, id, editor); err != nil {
		return err
	}
	r.Store.Patch(id, func(a *model.Article) { a.Editor = editor })
	r.publish(bus.Envelope{Event: bus.EventEditorUpdated, ID: id, Editor: &editor})
	return nil
}

// CycleColor advances the status flag white -> red -> yellow -> white.
// The flip is optimistic; a failed confirmation reverts the displayed color.
// Blocked entirely on Published rows: no flip, no request.
func (r *Reconciler) CycleColor(ctx context.Context, id int64) error {
	row, ok := r.Store.Get(id)
	if !ok {
		return ErrUnknownArticle
	}
	if statusutil.IsPublished(row.Article.Status) {
		return nil
	}
	prev := row.Article.StatusColor
	next := model.NextColor(prev)

	r.Store.Patch(id, func(a *model.Article) { a.StatusColor = next })
	if err := r.Svc.UpdateStatusColor(ctx, id, next); err != nil {
		r.Store.Patch(id, func(a *model.Article) { a.StatusColor = prev })
		return err
	}
	r.publish(bus.Envelope{Event: bus.EventStatusColorUpdated, ID: id, StatusColor: next})
	return nil
}

// Delete removes the article permanently. Confirmation is the caller's job.
func (r *Reconciler) Delete(ctx context.Context, id int64) error {
	if err := r.Svc.Delete(ctx, id); err != nil {
		return err
	}
	r.Store.Remove(id)
	r.publish(bus.Envelope{Event: bus.EventArticleDeleted, ID: id})
	return nil
}

// Archive marks a Published article complete: the row leaves the active list,
// the status is retained server-side. The server announces article_archived
// to everyone, the originator included, so no publish happens here; a second
// emission would only be masked by Remove's idempotence.
func (r *Reconciler) Archive(ctx context.Context, id int64) error {
	if err := r.Svc.Archive(ctx, id); err != nil {
		return err
	}
	r.Store.Remove(id)
	return nil
}

// ApplyBroadcast merges one inbound event into local state. It is idempotent:
// every write is an absolute value, so reapplying the same payload converges
// to the same store state. Upsert-family events for unknown ids insert fresh
// rows; patch-family events for unknown ids are benign no-ops (the row is
// already gone or was never seen, and a later authoritative event will carry
// the full record).
func (r *Reconciler) ApplyBroadcast(ctx context.Context, env bus.Envelope) error {
	switch env.Event {
	case bus.EventArticleAdded:
		if env.Article != nil {
			r.upsertPreservingEdit(*env.Article)
			return nil
		}
		return r.refetch(ctx, env.ID)

	case bus.EventArticleActivated:
		// An archived article returning to the active list may have changed
		// fields not present in the minimal event; never trust the payload,
		// always re-fetch the full record.
		return r.refetch(ctx, env.ID)

	case bus.EventArticleUpdated:
		if _, ok := r.Store.Get(env.ID); !ok {
			if env.Article != nil {
				r.Store.Upsert(*env.Article)
				return nil
			}
			// Fresh insert from the patch fields alone.
			a := model.Article{ID: env.ID, Status: model.StatusNotStarted, StatusColor: model.ColorWhite}
			applyFieldPatch(&a, env)
			r.Store.Upsert(a)
			return nil
		}
		r.Store.Patch(env.ID, func(a *model.Article) { applyFieldPatch(a, env) })
		return nil

	case bus.EventStatusUpdated:
		r.Store.Patch(env.ID, func(a *model.Article) {
			if statusutil.Valid(env.Status) {
				a.Status = env.Status
			}
		})
		return nil

	case bus.EventStatusColorUpdated:
		r.Store.Patch(env.ID, func(a *model.Article) {
			c := env.StatusColor
			if c == "" {
				c = model.ColorWhite
			}
			a.StatusColor = c
		})
		return nil

	case bus.EventEditorUpdated:
		if env.Editor != nil {
			r.Store.Patch(env.ID, func(a *model.Article) { a.Editor = *env.Editor })
		}
		return nil

	case bus.EventCatUpdated:
		if env.Cat != "" {
			r.Store.Patch(env.ID, func(a *model.Article) { a.Cat = env.Cat })
		}
		return nil

	case bus.EventArticleDeleted, bus.EventArticleArchived:
		r.Store.Remove(env.ID)
		return nil

	case bus.EventOrderUpdated:
		r.Store.Reorder(env.Order)
		return nil

	case bus.EventFileUploaded, bus.EventFileDeleted:
		// File panel contents are owned by the panel, which re-fetches when
		// open. The row's derived file_count comes from a full re-fetch, an
		// absolute value, so reapplying stays idempotent (a +-1 would not).
		if _, ok := r.Store.Get(env.ArticleID); ok {
			return r.refetch(ctx, env.ArticleID)
		}
		return nil

	default:
		return fmt.Errorf("unrecognized broadcast event %q", env.Event)
	}
}

// upsertPreservingEdit routes an authoritative record through Upsert, which
// already preserves any open draft.
func (r *Reconciler) upsertPreservingEdit(a model.Article) {
	r.Store.Upsert(a)
}

func (r *Reconciler) refetch(ctx context.Context, id int64) error {
	a, err := r.Svc.GetArticle(ctx, id)
	if err != nil {
		return err
	}
	r.upsertPreservingEdit(a)
	return nil
}

func applyFieldPatch(a *model.Article, env bus.Envelope) {
	if env.Title != nil {
		a.Title = *env.Title
	}
	if env.Author != nil {
		a.Author = *env.Author
	}
	if env.Deadline != nil {
		a.Deadline = *env.Deadline
	}
}
