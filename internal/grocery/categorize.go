// Package grocery groups shopping items into store sections by name.
package grocery

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/grocerycalc/internal/model"
)

const Other = "Other"

// Categories in aisle order. Breakdown sorts by this order.
var Categories = []string{
	"Produce", "Dairy", "Meat & Seafood", "Bakery", "Pantry", "Frozen",
	"Beverages", "Snacks", "Household", "Personal Care", Other,
}

// Categorize returns the store section for an item name. Whole-name matches
// win over keyword matches; keywords are tried longest first. Unknown names
// fall back to Other.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}
	if cat, ok := exact[name]; ok {
		return cat
	}
	for _, kw := range keywords {
		if strings.Contains(name, kw.word) {
			return kw.category
		}
	}
	return Other
}

// CategoryTotal is the subtotal of one section.
type CategoryTotal struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// Breakdown sums items per category, in aisle order, skipping empty sections.
func Breakdown(items []model.GroceryItem) []CategoryTotal {
	byCat := make(map[string]*CategoryTotal)
	for _, item := range items {
		cat := Categorize(item.Name)
		ct, ok := byCat[cat]
		if !ok {
			ct = &CategoryTotal{Category: cat, Total: decimal.Zero}
			byCat[cat] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(item.Price)
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		return order[out[i].Category] < order[out[j].Category]
	})
	return out
}

var order = func() map[string]int {
	m := make(map[string]int, len(Categories))
	for i, c := range Categories {
		m[c] = i
	}
	return m
}()

// section lists the whole names and keywords that map to one category.
type section struct {
	category string
	names    []string
	words    []string
}

var sections = []section{
	{
		category: "Produce",
		names:    []string{"apple", "apples", "banana", "bananas", "saging", "mango", "mangoes", "calamansi", "kalamansi", "onion", "onions", "sibuyas", "garlic", "bawang", "ginger", "luya", "tomato", "tomatoes", "kamatis", "potato", "potatoes", "patatas", "carrot", "carrots", "cabbage", "repolyo", "pechay", "kangkong", "ampalaya", "talong", "eggplant", "sitaw", "okra", "malunggay", "papaya", "pineapple", "lettuce"},
		words:    []string{"sweet potato", "kamote", "green onion", "bell pepper", "chili", "sili", "fruit", "vegetable", "gulay", "lettuce", "squash", "kalabasa", "banana"},
	},
	{
		category: "Dairy",
		names:    []string{"milk", "eggs", "egg", "itlog", "butter", "cheese", "yogurt", "cream"},
		words:    []string{"evaporated milk", "condensed milk", "powdered milk", "fresh milk", "cream cheese", "all-purpose cream", "yogurt", "cheese", "butter", "margarine", "milk", "itlog", "egg"},
	},
	{
		category: "Meat & Seafood",
		names:    []string{"chicken", "manok", "pork", "baboy", "beef", "baka", "fish", "isda", "shrimp", "hipon", "squid", "pusit", "tilapia", "bangus", "galunggong", "tuyo", "longganisa", "tocino", "hotdog", "bacon", "ham"},
		words:    []string{"ground pork", "ground beef", "pork belly", "liempo", "chicken", "pork", "beef", "bangus", "tilapia", "shrimp", "longganisa", "tocino", "hotdog", "hot dog", "bacon", "ham"},
	},
	{
		category: "Bakery",
		names:    []string{"bread", "tinapay", "pandesal", "ensaymada", "monay", "cake"},
		words:    []string{"loaf", "bread", "pandesal", "ensaymada", "bun", "cake", "roll"},
	},
	{
		category: "Pantry",
		names:    []string{"rice", "bigas", "sugar", "asukal", "salt", "asin", "flour", "oil", "mantika", "vinegar", "suka", "soy sauce", "toyo", "patis", "bagoong", "sardines", "sardinas", "noodles", "pasta", "spaghetti", "coffee", "kape"},
		words:    []string{"corned beef", "canned", "sardines", "sardinas", "tuna", "instant noodle", "pancit", "bihon", "canton", "sotanghon", "spaghetti", "pasta", "sauce", "ketchup", "rice", "sugar", "flour", "cooking oil", "vinegar", "toyo", "patis", "seasoning", "coffee", "3-in-1", "oats", "cereal"},
	},
	{
		category: "Frozen",
		names:    []string{"ice cream", "ice"},
		words:    []string{"frozen", "ice cream", "nuggets", "siomai", "dumpling"},
	},
	{
		category: "Beverages",
		names:    []string{"water", "tubig", "juice", "soda", "softdrinks", "beer", "tea"},
		words:    []string{"mineral water", "bottled water", "softdrink", "soft drink", "cola", "juice", "soda", "beer", "wine", "iced tea", "energy drink"},
	},
	{
		category: "Snacks",
		names:    []string{"chips", "chichirya", "crackers", "biscuits", "candy", "chocolate"},
		words:    []string{"chips", "chicharon", "cracker", "biscuit", "cookie", "candy", "chocolate", "popcorn", "peanut", "mani"},
	},
	{
		category: "Household",
		names:    []string{"detergent", "bleach", "sponge", "tissue", "trash bags", "batteries"},
		words:    []string{"dishwashing", "toilet paper", "toilet roll", "detergent", "fabric conditioner", "bleach", "zonrox", "tissue", "paper towel", "trash bag", "garbage bag", "sponge", "battery", "batteries", "insecticide", "light bulb"},
	},
	{
		category: "Personal Care",
		names:    []string{"soap", "sabon", "shampoo", "conditioner", "toothpaste", "toothbrush", "lotion", "deodorant", "diapers"},
		words:    []string{"shampoo", "conditioner", "body wash", "soap", "toothpaste", "toothbrush", "lotion", "deodorant", "diaper", "sanitary", "napkin", "alcohol", "razor"},
	},
}

type keyword struct {
	word     string
	category string
}

var exact, keywords = buildIndex(sections)

// buildIndex flattens sections into a whole-name map and a keyword list
// sorted longest first, so "corned beef" beats "beef".
func buildIndex(secs []section) (map[string]string, []keyword) {
	names := make(map[string]string)
	var kws []keyword
	for _, s := range secs {
		for _, n := range s.names {
			if _, dup := names[n]; !dup {
				names[n] = s.category
			}
		}
		for _, w := range s.words {
			kws = append(kws, keyword{word: w, category: s.category})
		}
	}
	sort.SliceStable(kws, func(i, j int) bool {
		return len(kws[i].word) > len(kws[j].word)
	})
	return names, kws
}
