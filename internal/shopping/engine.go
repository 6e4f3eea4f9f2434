// Package shopping owns the current grocery list, the trip history and the
// add/edit modal and scanner state.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/grocerycalc/internal/model"
	"github.com/dukerupert/grocerycalc/internal/storage"
)

// ErrItemNotFound is returned by the Strict mutations when no current item
// has the given id. The plain mutations ignore unknown ids.
var ErrItemNotFound = errors.New("item not found")

// Persister receives state after each mutation. Implementations must not
// block; storage.Gateway queues the write.
type Persister interface {
	LoadAll(ctx context.Context) storage.Snapshot
	SaveCurrentItems(items []model.GroceryItem)
	SaveHistory(trips []model.ShoppingTrip)
}

// Change describes a state change for observers.
type Change struct {
	Entity string // "item", "items", "trip", "ui", "state"
	Action string
	ID     string
}

// ChangeFunc is called after each mutation, outside the engine lock.
type ChangeFunc func(Change)

// Options configures an Engine. Zero values pick sensible defaults.
type Options struct {
	Persister Persister
	Logger    *slog.Logger
	OnChange  ChangeFunc
	Now       func() time.Time
	NewID     func() string
}

// Engine is the single owner of the shopping state. All methods are safe for
// concurrent use; each mutation is applied atomically.
type Engine struct {
	mu          sync.Mutex
	items       []model.GroceryItem
	history     []model.ShoppingTrip
	ui          UIState
	initialized bool

	persister Persister
	logger    *slog.Logger
	onChange  ChangeFunc
	now       func() time.Time
	newID     func() string
}

func New(opts Options) *Engine {
	e := &Engine{
		items:     []model.GroceryItem{},
		history:   []model.ShoppingTrip{},
		persister: opts.Persister,
		logger:    opts.Logger,
		onChange:  opts.OnChange,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = model.Now
	}
	if e.newID == nil {
		e.newID = model.GenerateID
	}
	return e
}

// Load replaces in-memory state with what the persister holds and opens the
// save gate. Saves are skipped until Load has returned once, so the startup
// defaults can never overwrite stored data.
func (e *Engine) Load(ctx context.Context) {
	var snap storage.Snapshot
	if e.persister != nil {
		snap = e.persister.LoadAll(ctx)
	}

	e.mu.Lock()
	e.items = orEmptyItems(snap.CurrentItems)
	e.history = orEmptyTrips(snap.History)
	e.initialized = true
	n, h := len(e.items), len(e.history)
	e.mu.Unlock()

	e.logger.Info("state loaded", "items", n, "trips", h)
	e.notify(Change{Entity: "state", Action: "loaded"})
}

// Initialized reports whether the first Load has completed.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// Items returns a copy of the current list.
func (e *Engine) Items() []model.GroceryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneItems(e.items)
}

// History returns a copy of all trips, newest first.
func (e *Engine) History() []model.ShoppingTrip {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneTrips(e.history)
}

// Trip returns the trip with the given id.
func (e *Engine) Trip(id string) (model.ShoppingTrip, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.history {
		if t.ID == id {
			t.Items = model.CloneItems(t.Items)
			return t, true
		}
	}
	return model.ShoppingTrip{}, false
}

func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Total is the sum of current item prices, recomputed on every call.
func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.SumPrices(e.items)
}

// Snapshot returns list, count, total and UI state read under one lock.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Items:     model.CloneItems(e.items),
		ItemCount: len(e.items),
		Total:     model.SumPrices(e.items),
		UI:        e.ui.clone(),
	}
}

// State is a consistent read of the engine.
type State struct {
	Items     []model.GroceryItem
	ItemCount int
	Total     decimal.Decimal
	UI        UIState
}

// AddItem appends a new item, closes the modal and clears any scanned
// product. The price is stored as given; callers validate price > 0.
func (e *Engine) AddItem(name string, price decimal.Decimal, barcode model.Barcode) model.GroceryItem {
	e.mu.Lock()
	item := model.GroceryItem{
		ID:        e.newID(),
		Name:      model.NormalizeName(name),
		Price:     price,
		Barcode:   barcode,
		CreatedAt: e.now(),
	}
	e.items = append(e.items, item)
	e.ui.closeModal()
	e.saveItemsLocked()
	e.mu.Unlock()

	e.notify(Change{Entity: "item", Action: "created", ID: item.ID})
	return item
}

// UpdateItem changes the name and price of the item with id. Unknown ids are
// ignored. The editing selection is cleared and the modal closed either way.
func (e *Engine) UpdateItem(id, name string, price decimal.Decimal) {
	e.UpdateItemStrict(id, name, price)
}

// UpdateItemStrict is UpdateItem that reports ErrItemNotFound.
func (e *Engine) UpdateItemStrict(id, name string, price decimal.Decimal) (model.GroceryItem, error) {
	e.mu.Lock()
	e.ui.closeModal()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		e.notify(Change{Entity: "ui", Action: "modal_closed"})
		return model.GroceryItem{}, ErrItemNotFound
	}
	e.items[idx].Name = model.NormalizeName(name)
	e.items[idx].Price = price
	item := e.items[idx]
	e.saveItemsLocked()
	e.mu.Unlock()

	e.notify(Change{Entity: "item", Action: "updated", ID: id})
	return item, nil
}

// DeleteItem removes the item with id. Unknown ids are ignored.
func (e *Engine) DeleteItem(id string) {
	e.DeleteItemStrict(id)
}

// DeleteItemStrict is DeleteItem that reports ErrItemNotFound.
func (e *Engine) DeleteItemStrict(id string) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return ErrItemNotFound
	}
	items := make([]model.GroceryItem, 0, len(e.items)-1)
	items = append(items, e.items[:idx]...)
	items = append(items, e.items[idx+1:]...)
	e.items = items
	e.saveItemsLocked()
	e.mu.Unlock()

	e.notify(Change{Entity: "item", Action: "deleted", ID: id})
	return nil
}

// ClearAllItems empties the current list.
func (e *Engine) ClearAllItems() {
	e.mu.Lock()
	e.items = []model.GroceryItem{}
	e.saveItemsLocked()
	e.mu.Unlock()

	e.notify(Change{Entity: "items", Action: "cleared"})
}

// SaveTrip closes out the current list as a trip at the front of the
// history and empties the list. It returns false and changes nothing when
// the list is empty.
func (e *Engine) SaveTrip() (model.ShoppingTrip, bool) {
	e.mu.Lock()
	if len(e.items) == 0 {
		e.mu.Unlock()
		return model.ShoppingTrip{}, false
	}

	trip := model.ShoppingTrip{
		ID:    e.newID(),
		Date:  e.now(),
		Items: model.CloneItems(e.items),
		Total: model.SumPrices(e.items),
	}
	history := make([]model.ShoppingTrip, 0, len(e.history)+1)
	history = append(history, trip)
	history = append(history, e.history...)
	e.history = history
	e.items = []model.GroceryItem{}

	e.saveHistoryLocked()
	e.saveItemsLocked()
	e.mu.Unlock()

	e.logger.Info("trip saved", "trip_id", trip.ID, "items", len(trip.Items), "total", trip.Total.StringFixed(2))
	e.notify(Change{Entity: "trip", Action: "saved", ID: trip.ID})
	trip.Items = model.CloneItems(trip.Items)
	return trip, true
}

// pendingWriter is implemented by persisters that queue writes.
type pendingWriter interface {
	DiscardPending()
	Flush(ctx context.Context) error
}

// Restore drops queued saves, runs rewrite against the backing store with
// mutations held off, then reloads from it. Import and full reset use this.
func (e *Engine) Restore(ctx context.Context, rewrite func(ctx context.Context) error) error {
	e.mu.Lock()
	if pw, ok := e.persister.(pendingWriter); ok {
		pw.DiscardPending()
		if err := pw.Flush(ctx); err != nil {
			e.mu.Unlock()
			return fmt.Errorf("wait for pending saves: %w", err)
		}
	}
	if err := rewrite(ctx); err != nil {
		e.mu.Unlock()
		return err
	}
	var snap storage.Snapshot
	if e.persister != nil {
		snap = e.persister.LoadAll(ctx)
	}
	e.items = orEmptyItems(snap.CurrentItems)
	e.history = orEmptyTrips(snap.History)
	e.ui = UIState{}
	e.initialized = true
	n, h := len(e.items), len(e.history)
	e.mu.Unlock()

	e.logger.Info("state restored", "items", n, "trips", h)
	e.notify(Change{Entity: "state", Action: "restored"})
	return nil
}

func (e *Engine) indexLocked(id string) int {
	for i, item := range e.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) saveItemsLocked() {
	if !e.initialized || e.persister == nil {
		return
	}
	e.persister.SaveCurrentItems(model.CloneItems(e.items))
}

func (e *Engine) saveHistoryLocked() {
	if !e.initialized || e.persister == nil {
		return
	}
	e.persister.SaveHistory(model.CloneTrips(e.history))
}

func (e *Engine) notify(c Change) {
	if e.onChange != nil {
		e.onChange(c)
	}
}

func orEmptyItems(items []model.GroceryItem) []model.GroceryItem {
	if items == nil {
		return []model.GroceryItem{}
	}
	return items
}

func orEmptyTrips(trips []model.ShoppingTrip) []model.ShoppingTrip {
	if trips == nil {
		return []model.ShoppingTrip{}
	}
	return trips
}
