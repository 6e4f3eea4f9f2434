package grocery

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/grocerycalc/internal/model"
)

func TestCategorizeWholeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat & Seafood"},
		{"pandesal", "Bakery"},
		{"rice", "Pantry"},
		{"ice cream", "Frozen"},
		{"water", "Beverages"},
		{"chips", "Snacks"},
		{"detergent", "Household"},
		{"shampoo", "Personal Care"},
		{"saging", "Produce"},
		{"eggplant", "Produce"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"corned beef", "Pantry"},
		{"evaporated milk 370ml", "Dairy"},
		{"lucky me instant noodles", "Pantry"},
		{"frozen siomai", "Frozen"},
		{"pork belly 1kg", "Meat & Seafood"},
		{"safeguard soap bar", "Personal Care"},
		{"coca-cola 1.5l", "Beverages"},
		{"toilet roll 12s", "Household"},
		{"sweet potato", "Produce"},
		{"shampoo sachet", "Personal Care"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeNormalizesInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MILK", "Dairy"},
		{"  Pandesal  ", "Bakery"},
		{"Frozen Siomai", "Frozen"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeFallsBackToOther(t *testing.T) {
	for _, input := range []string{"", "   ", "Item", "xyzzy"} {
		if got := Categorize(input); got != Other {
			t.Errorf("Categorize(%q) = %q, want %q", input, got, Other)
		}
	}
}

func TestEveryCategoryIsOrdered(t *testing.T) {
	for _, s := range sections {
		if _, ok := order[s.category]; !ok {
			t.Errorf("category %q missing from Categories", s.category)
		}
	}
}

func TestBreakdown(t *testing.T) {
	items := []model.GroceryItem{
		{Name: "Milk", Price: decimal.RequireFromString("65.50")},
		{Name: "Pandesal", Price: decimal.RequireFromString("30")},
		{Name: "Fresh milk 1L", Price: decimal.RequireFromString("99.75")},
		{Name: "Item", Price: decimal.RequireFromString("10")},
	}

	got := Breakdown(items)
	want := []CategoryTotal{
		{Category: "Dairy", Count: 2, Total: decimal.RequireFromString("165.25")},
		{Category: "Bakery", Count: 1, Total: decimal.RequireFromString("30")},
		{Category: Other, Count: 1, Total: decimal.RequireFromString("10")},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Category != want[i].Category || got[i].Count != want[i].Count || !got[i].Total.Equal(want[i].Total) {
			t.Errorf("breakdown[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBreakdownEmpty(t *testing.T) {
	if got := Breakdown(nil); len(got) != 0 {
		t.Errorf("Breakdown(nil) = %+v, want empty", got)
	}
}
