package codec

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/grocerycalc/internal/model"
)

func sampleItems() []model.GroceryItem {
	ts := time.Date(2026, 1, 15, 14, 30, 5, 123_000_000, time.UTC)
	return []model.GroceryItem{
		{ID: "i1", Name: "Milk", Price: decimal.RequireFromString("65.50"), CreatedAt: ts},
		{ID: "i2", Name: "Corned Beef", Price: decimal.RequireFromString("42.75"), Barcode: model.NewBarcode("4800016644290"), CreatedAt: ts.Add(time.Second)},
	}
}

func TestItemRoundTrip(t *testing.T) {
	for _, item := range sampleItems() {
		got, err := DecodeItem(EncodeItem(item))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !got.Equal(item) {
			t.Errorf("round trip = %+v, want %+v", got, item)
		}
	}
}

func TestTripRoundTrip(t *testing.T) {
	items := sampleItems()
	trip := model.ShoppingTrip{
		ID:    "t1",
		Date:  time.Date(2026, 1, 15, 15, 0, 0, 999_000_000, time.UTC),
		Items: items,
		Total: model.SumPrices(items),
	}

	data, err := MarshalTrips([]model.ShoppingTrip{trip})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalTrips(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(got))
	}
	if !got[0].Equal(trip) {
		t.Errorf("round trip = %+v, want %+v", got[0], trip)
	}
}

func TestRoundTripKeepsInstantFromOtherZones(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	item := model.GroceryItem{
		ID:        "i1",
		Name:      "Rice",
		Price:     decimal.NewFromInt(50),
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 5_000_000, manila),
	}
	got, err := DecodeItem(EncodeItem(item))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, item.CreatedAt)
	}
}

func TestWireFormat(t *testing.T) {
	items := sampleItems()
	data, err := MarshalItems(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw[0]["createdAt"] != "2026-01-15T14:30:05.123Z" {
		t.Errorf("createdAt = %v, want ISO-8601 with milliseconds", raw[0]["createdAt"])
	}
	if raw[0]["price"] != 65.5 {
		t.Errorf("price = %v (%T), want number 65.5", raw[0]["price"], raw[0]["price"])
	}
	if _, ok := raw[0]["barcode"]; ok {
		t.Error("absent barcode should not be written")
	}
	if raw[1]["barcode"] != "4800016644290" {
		t.Errorf("barcode = %v", raw[1]["barcode"])
	}
}

func TestUnmarshalAcceptsStoredRecords(t *testing.T) {
	stored := `[{"id":"1736951400000-k2j3h4g5f","name":"Eggs","price":120,"createdAt":"2026-01-15T14:30:00.000Z"}]`
	items, err := UnmarshalItems(stored)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Eggs" || !items[0].Price.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Barcode.Valid {
		t.Error("expected absent barcode")
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"wrong shape", `{"id":"x"}`},
		{"bad time", `[{"id":"1","name":"a","price":1,"createdAt":"yesterday"}]`},
		{"bad price", `[{"id":"1","name":"a","price":"one","createdAt":"2026-01-15T14:30:00.000Z"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalItems(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := UnmarshalTrips(`[{"id":"t","date":"2026-01-15T14:30:00.000Z","items":[{"id":"1","name":"a","price":1,"createdAt":"bad"}],"total":1}]`)
	if err == nil || !strings.Contains(err.Error(), "trip t") {
		t.Errorf("expected trip-scoped error, got %v", err)
	}
}

func TestEmptyCollections(t *testing.T) {
	data, err := MarshalItems(nil)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if data != "[]" {
		t.Errorf("MarshalItems(nil) = %s, want []", data)
	}
	trips, err := UnmarshalTrips("[]")
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("expected no trips, got %d", len(trips))
	}
}
