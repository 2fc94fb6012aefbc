package sync

import (
	"context"

	"github.com/HunterLewis000/newspaper-app/internal/bus"
)

// OrderSync captures local reorder gestures and applies inbound reorder
// broadcasts. The canonical sequence for a local gesture is always the
// store's current order (the gesture has already moved the row), never a
// pre-gesture snapshot.
type OrderSync struct {
	Store *RowStore
	Svc   Service
	Bus   Broadcaster
}

func NewOrderSync(store *RowStore, svc Service, b Broadcaster) *OrderSync {
	return &OrderSync{Store: store, Svc: svc, Bus: b}
}

// MoveRow shifts id by delta positions locally, then persists. The local move
// is kept even when persistence fails; the user retries by repeating the
// gesture, matching the drag behavior everywhere else in the system.
func (o *OrderSync) MoveRow(ctx context.Context, id int64, delta int) error {
	order := o.Store.Order()
	idx := -1
	for i, oid := range order {
		if oid == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownArticle
	}
	to := idx + delta
	if to < 0 {
		to = 0
	}
	if to >= len(order) {
		to = len(order) - 1
	}
	if to == idx {
		return nil
	}

	order = append(order[:idx], order[idx+1:]...)
	rest := make([]int64, 0, len(order)+1)
	rest = append(rest, order[:to]...)
	rest = append(rest, id)
	rest = append(rest, order[to:]...)
	o.Store.Reorder(rest)

	return o.PersistCurrent(ctx)
}

// PersistCurrent reads the store's current order as the new canonical
// sequence, persists it, and broadcasts it on success.
func (o *OrderSync) PersistCurrent(ctx context.Context) error {
	order := o.Store.Order()
	if err := o.Svc.UpdateOrder(ctx, order); err != nil {
		return err
	}
	if o.Bus != nil {
		_ = o.Bus.Publish(bus.Envelope{Event: bus.EventOrderUpdated, Order: order})
	}
	return nil
}

// ApplyRemote resequences the store to a broadcast order. Idempotent:
// reapplying the same target order leaves the list unchanged, so the
// originating client's own broadcast cannot thrash its view.
func (o *OrderSync) ApplyRemote(order []int64) {
	o.Store.Reorder(order)
}
