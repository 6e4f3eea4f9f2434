package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// DefaultItemName replaces blank item names.
const DefaultItemName = "Item"

// Barcode is an optional scanned barcode. The zero value means the item was
// entered by hand.
type Barcode struct {
	Value string
	Valid bool
}

// NewBarcode returns a present barcode, or the absent value when code is blank.
func NewBarcode(code string) Barcode {
	code = strings.TrimSpace(code)
	if code == "" {
		return Barcode{}
	}
	return Barcode{Value: code, Valid: true}
}

func (b Barcode) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

func (b *Barcode) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*b = Barcode{}
		return nil
	}
	*b = NewBarcode(*s)
	return nil
}

type GroceryItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Barcode   Barcode         `json:"barcode,omitzero"`
	CreatedAt time.Time       `json:"created_at"`
}

// Equal reports whether two items hold the same values.
func (i GroceryItem) Equal(o GroceryItem) bool {
	return i.ID == o.ID &&
		i.Name == o.Name &&
		i.Price.Equal(o.Price) &&
		i.Barcode == o.Barcode &&
		i.CreatedAt.Equal(o.CreatedAt)
}

// ShoppingTrip is a closed-out list. Total is stored as it was at save time.
type ShoppingTrip struct {
	ID    string          `json:"id"`
	Date  time.Time       `json:"date"`
	Items []GroceryItem   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (t ShoppingTrip) Equal(o ShoppingTrip) bool {
	if t.ID != o.ID || !t.Date.Equal(o.Date) || !t.Total.Equal(o.Total) {
		return false
	}
	if len(t.Items) != len(o.Items) {
		return false
	}
	for i := range t.Items {
		if !t.Items[i].Equal(o.Items[i]) {
			return false
		}
	}
	return true
}

// ItemCount returns the number of items in the trip.
func (t ShoppingTrip) ItemCount() int {
	return len(t.Items)
}

// NormalizeName trims the name and composes it to NFC. Blank names become
// DefaultItemName.
func NormalizeName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return DefaultItemName
	}
	return name
}

// CloneItems returns a copy of items that shares no backing array with the input.
func CloneItems(items []GroceryItem) []GroceryItem {
	out := make([]GroceryItem, len(items))
	copy(out, items)
	return out
}

// CloneTrips copies trips along with each trip's items.
func CloneTrips(trips []ShoppingTrip) []ShoppingTrip {
	out := make([]ShoppingTrip, len(trips))
	for i, t := range trips {
		t.Items = CloneItems(t.Items)
		out[i] = t
	}
	return out
}

// SumPrices adds up item prices.
func SumPrices(items []GroceryItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}

// GenerateID returns a UUIDv7 string: a millisecond timestamp prefix followed
// by random bits. Falls back to a random v4 if the clock read fails.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Now returns the current UTC time truncated to the millisecond, which is
// the precision timestamps are persisted with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
