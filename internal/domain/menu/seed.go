package menu

import "github.com/shopspring/decimal"

// Canonical size labels.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
	SizeFamily = "family"
)

// DefaultSizes returns the canonical size set with its prep-time bases.
func DefaultSizes() []Size {
	return []Size{
		{Label: SizeSmall, BasePrepMinutes: 15},
		{Label: SizeMedium, BasePrepMinutes: 20},
		{Label: SizeLarge, BasePrepMinutes: 25},
		{Label: SizeFamily, BasePrepMinutes: 30},
	}
}

// Default returns the seed catalog the pizzeria opens with.
func Default() *Catalog {
	c := New(DefaultSizes())

	flavors := []struct {
		name        string
		ingredients []string
		prices      [4]int64
	}{
		{"Margherita", []string{"tomato sauce", "mozzarella", "basil"}, [4]int64{30, 40, 52, 60}},
		{"Calabresa", []string{"tomato sauce", "mozzarella", "calabresa sausage", "onion"}, [4]int64{32, 42, 50, 62}},
		{"Chicken Catupiry", []string{"tomato sauce", "mozzarella", "chicken", "catupiry"}, [4]int64{35, 45, 58, 65}},
		{"Portuguesa", []string{"tomato sauce", "mozzarella", "ham", "eggs", "onion", "peas"}, [4]int64{38, 48, 55, 68}},
		{"Four Cheese", []string{"tomato sauce", "mozzarella", "parmesan", "provolone", "gorgonzola"}, [4]int64{40, 50, 60, 70}},
		{"Ham", []string{"tomato sauce", "ham", "mozzarella", "tomato slices"}, [4]int64{30, 35, 45, 50}},
		{"Bacon", []string{"tomato sauce", "mozzarella", "bacon", "tomato slices"}, [4]int64{35, 45, 55, 65}},
		{"Napolitana", []string{"tomato sauce", "mozzarella", "tomato slices", "grated parmesan"}, [4]int64{40, 50, 60, 70}},
	}
	labels := []string{SizeSmall, SizeMedium, SizeLarge, SizeFamily}
	for _, f := range flavors {
		prices := make(map[string]decimal.Decimal, len(labels))
		for i, label := range labels {
			prices[label] = decimal.NewFromInt(f.prices[i])
		}
		// Seed names are unique, AddFlavor cannot fail here.
		_ = c.AddFlavor(f.name, f.ingredients, prices)
	}

	addOns := []struct {
		name  string
		price int64
	}{
		{"Stuffed Crust", 8},
		{"Extra Catupiry", 5},
		{"Extra Cheddar", 5},
		{"Bacon", 6},
		{"Olives", 3},
		{"Hearts of Palm", 7},
	}
	for _, a := range addOns {
		_ = c.AddAddOn(a.name, decimal.NewFromInt(a.price))
	}

	return c
}
