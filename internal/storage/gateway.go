package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/grocerycalc/internal/codec"
	"github.com/dukerupert/grocerycalc/internal/model"
)

// Snapshot is everything the engine persists.
type Snapshot struct {
	CurrentItems []model.GroceryItem
	History      []model.ShoppingTrip
}

// Gateway serializes engine state into the blob store. Reads degrade to
// empty collections and writes are best effort; neither reports failures
// to the caller.
type Gateway struct {
	store  Store
	writer *Writer
	logger *slog.Logger
}

func NewGateway(store Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		store:  store,
		writer: NewWriter(store, logger),
		logger: logger,
	}
}

// Store returns the underlying blob store.
func (g *Gateway) Store() Store {
	return g.store
}

// Start starts the background writer.
func (g *Gateway) Start(ctx context.Context) {
	g.writer.Start(ctx)
}

// Stop writes anything pending and stops the background writer.
func (g *Gateway) Stop() {
	g.writer.Stop()
}

// Flush waits for pending saves to reach the store.
func (g *Gateway) Flush(ctx context.Context) error {
	return g.writer.Flush(ctx)
}

// DiscardPending drops saves that have not been written yet.
func (g *Gateway) DiscardPending() {
	g.writer.Discard()
}

// LoadAll reads the current list and the history concurrently.
func (g *Gateway) LoadAll(ctx context.Context) Snapshot {
	var snap Snapshot
	var eg errgroup.Group
	eg.Go(func() error {
		snap.CurrentItems = g.loadCurrentItems(ctx)
		return nil
	})
	eg.Go(func() error {
		snap.History = g.loadHistory(ctx)
		return nil
	})
	eg.Wait()
	return snap
}

func (g *Gateway) loadCurrentItems(ctx context.Context) []model.GroceryItem {
	data, ok := g.read(ctx, KeyCurrentItems)
	if !ok {
		return []model.GroceryItem{}
	}
	items, err := codec.UnmarshalItems(data)
	if err != nil {
		g.logger.Error("load current items", "error", err)
		return []model.GroceryItem{}
	}
	return items
}

func (g *Gateway) loadHistory(ctx context.Context) []model.ShoppingTrip {
	data, ok := g.read(ctx, KeyHistory)
	if !ok {
		return []model.ShoppingTrip{}
	}
	trips, err := codec.UnmarshalTrips(data)
	if err != nil {
		g.logger.Error("load history", "error", err)
		return []model.ShoppingTrip{}
	}
	return trips
}

func (g *Gateway) read(ctx context.Context, key string) (string, bool) {
	data, err := g.store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		g.logger.Error("read key", "key", key, "error", err)
		return "", false
	}
	if data == "" {
		return "", false
	}
	return data, true
}

// SaveCurrentItems queues the current list for writing.
func (g *Gateway) SaveCurrentItems(items []model.GroceryItem) {
	data, err := codec.MarshalItems(items)
	if err != nil {
		g.logger.Error("save current items", "error", err)
		return
	}
	g.writer.Enqueue(KeyCurrentItems, data)
}

// SaveHistory queues the history for writing.
func (g *Gateway) SaveHistory(trips []model.ShoppingTrip) {
	data, err := codec.MarshalTrips(trips)
	if err != nil {
		g.logger.Error("save history", "error", err)
		return
	}
	g.writer.Enqueue(KeyHistory, data)
}

// ClearAll removes both keys from the store.
func (g *Gateway) ClearAll(ctx context.Context) error {
	if err := g.store.Remove(ctx, KeyCurrentItems, KeyHistory); err != nil {
		return fmt.Errorf("clear all data: %w", err)
	}
	return nil
}
