// Package codec maps items and trips to the plain JSON records kept in the
// blob store and back.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/grocerycalc/internal/model"
)

// TimeLayout is ISO-8601 in UTC with milliseconds, e.g. 2026-01-15T14:30:00.000Z.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

type Item struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Barcode   *string     `json:"barcode,omitempty"`
	CreatedAt string      `json:"createdAt"`
}

type Trip struct {
	ID    string      `json:"id"`
	Date  string      `json:"date"`
	Items []Item      `json:"items"`
	Total json.Number `json:"total"`
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts any RFC 3339 timestamp, with or without fractional seconds.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseNumber(n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", n, err)
	}
	return d, nil
}

func EncodeItem(item model.GroceryItem) Item {
	rec := Item{
		ID:        item.ID,
		Name:      item.Name,
		Price:     json.Number(item.Price.String()),
		CreatedAt: FormatTime(item.CreatedAt),
	}
	if item.Barcode.Valid {
		code := item.Barcode.Value
		rec.Barcode = &code
	}
	return rec
}

func DecodeItem(rec Item) (model.GroceryItem, error) {
	createdAt, err := ParseTime(rec.CreatedAt)
	if err != nil {
		return model.GroceryItem{}, fmt.Errorf("item %s: %w", rec.ID, err)
	}
	price, err := parseNumber(rec.Price)
	if err != nil {
		return model.GroceryItem{}, fmt.Errorf("item %s: %w", rec.ID, err)
	}
	item := model.GroceryItem{
		ID:        rec.ID,
		Name:      rec.Name,
		Price:     price,
		CreatedAt: createdAt,
	}
	if rec.Barcode != nil {
		item.Barcode = model.Barcode{Value: *rec.Barcode, Valid: true}
	}
	return item, nil
}

func EncodeTrip(trip model.ShoppingTrip) Trip {
	return Trip{
		ID:    trip.ID,
		Date:  FormatTime(trip.Date),
		Items: EncodeItems(trip.Items),
		Total: json.Number(trip.Total.String()),
	}
}

func DecodeTrip(rec Trip) (model.ShoppingTrip, error) {
	date, err := ParseTime(rec.Date)
	if err != nil {
		return model.ShoppingTrip{}, fmt.Errorf("trip %s: %w", rec.ID, err)
	}
	total, err := parseNumber(rec.Total)
	if err != nil {
		return model.ShoppingTrip{}, fmt.Errorf("trip %s: %w", rec.ID, err)
	}
	items, err := DecodeItems(rec.Items)
	if err != nil {
		return model.ShoppingTrip{}, fmt.Errorf("trip %s: %w", rec.ID, err)
	}
	return model.ShoppingTrip{
		ID:    rec.ID,
		Date:  date,
		Items: items,
		Total: total,
	}, nil
}

func EncodeItems(items []model.GroceryItem) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = EncodeItem(item)
	}
	return out
}

func DecodeItems(recs []Item) ([]model.GroceryItem, error) {
	out := make([]model.GroceryItem, len(recs))
	for i, rec := range recs {
		item, err := DecodeItem(rec)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

func EncodeTrips(trips []model.ShoppingTrip) []Trip {
	out := make([]Trip, len(trips))
	for i, trip := range trips {
		out[i] = EncodeTrip(trip)
	}
	return out
}

func DecodeTrips(recs []Trip) ([]model.ShoppingTrip, error) {
	out := make([]model.ShoppingTrip, len(recs))
	for i, rec := range recs {
		trip, err := DecodeTrip(rec)
		if err != nil {
			return nil, err
		}
		out[i] = trip
	}
	return out, nil
}

// MarshalItems encodes items as the JSON array stored under the current-items key.
func MarshalItems(items []model.GroceryItem) (string, error) {
	data, err := json.Marshal(EncodeItems(items))
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	return string(data), nil
}

func UnmarshalItems(data string) ([]model.GroceryItem, error) {
	var recs []Item
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return DecodeItems(recs)
}

// MarshalTrips encodes trips as the JSON array stored under the history key.
func MarshalTrips(trips []model.ShoppingTrip) (string, error) {
	data, err := json.Marshal(EncodeTrips(trips))
	if err != nil {
		return "", fmt.Errorf("marshal trips: %w", err)
	}
	return string(data), nil
}

func UnmarshalTrips(data string) ([]model.ShoppingTrip, error) {
	var recs []Trip
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		return nil, fmt.Errorf("unmarshal trips: %w", err)
	}
	return DecodeTrips(recs)
}
