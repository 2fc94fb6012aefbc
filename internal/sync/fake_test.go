package sync

import (
	"context"
	"errors"
	"sync"

	"github.com/HunterLewis000/newspaper-app/internal/bus"
	"github.com/HunterLewis000/newspaper-app/internal/model"
)

// fakeService records calls and serves canned data, in the style of the
// handler fakes used for the server tests.
type fakeService struct {
	mu sync.Mutex

	articles []model.Article
	history  map[int64][]model.StatusHistoryEntry

	failNext error

	calls []string
	order []int64
}

func newFakeService() *fakeService {
	return &fakeService{history: map[int64][]model.StatusHistoryEntry{}}
}

func (f *fakeService) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	return nil
}

func (f *fakeService) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeService) ListArticles(ctx context.Context) ([]model.Article, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return f.articles, nil
}

func (f *fakeService) GetArticle(ctx context.Context, id int64) (model.Article, error) {
	if err := f.record("get"); err != nil {
		return model.Article{}, err
	}
	for _, a := range f.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Article{}, errors.New("not found")
}

func (f *fakeService) UpdateFields(ctx context.Context, id int64, title, author, deadline string) error {
	return f.record("update_fields")
}

func (f *fakeService) UpdateCat(ctx context.Context, id int64, cat model.Category) error {
	return f.record("update_cat")
}

func (f *fakeService) UpdateEditor(ctx context.Context, id int64, editor model.Editor) error {
	return f.record("update_editor")
}

func (f *fakeService) UpdateStatusColor(ctx context.Context, id int64, color model.StatusColor) error {
	return f.record("update_color")
}

func (f *fakeService) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	if err := f.record("update_status"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[id] = append(f.history[id], model.StatusHistoryEntry{
		ArticleID: id, Status: status, Timestamp: "2026-03-04 10:00:00", UserName: "desk",
	})
	return nil
}

func (f *fakeService) StatusHistory(ctx context.Context, id int64) ([]model.StatusHistoryEntry, error) {
	if err := f.record("history"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.StatusHistoryEntry, len(f.history[id]))
	copy(out, f.history[id])
	return out, nil
}

func (f *fakeService) UpdateOrder(ctx context.Context, order []int64) error {
	if err := f.record("update_order"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append([]int64(nil), order...)
	return nil
}

func (f *fakeService) Delete(ctx context.Context, id int64) error {
	return f.record("delete")
}

func (f *fakeService) Archive(ctx context.Context, id int64) error {
	return f.record("archive")
}

// fakeBus captures published envelopes.
type fakeBus struct {
	mu   sync.Mutex
	sent []bus.Envelope
}

func (b *fakeBus) Publish(env bus.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, env)
	return nil
}

func (b *fakeBus) events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.sent))
	for i, e := range b.sent {
		out[i] = e.Event
	}
	return out
}
