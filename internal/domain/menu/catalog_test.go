package menu

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrices(amount int64) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal)
	for _, s := range DefaultSizes() {
		prices[s.Label] = decimal.NewFromInt(amount)
	}
	return prices
}

func TestAddFlavor(t *testing.T) {
	c := New(DefaultSizes())

	require.NoError(t, c.AddFlavor("Margherita", []string{"tomato sauce", "mozzarella"}, testPrices(40)))
	assert.True(t, c.HasFlavor("Margherita"))

	f, ok := c.Flavor("Margherita")
	require.True(t, ok)
	assert.Equal(t, []string{"tomato sauce", "mozzarella"}, f.Ingredients)
}

func TestAddFlavor_Duplicate(t *testing.T) {
	c := New(DefaultSizes())
	require.NoError(t, c.AddFlavor("Margherita", nil, testPrices(40)))

	err := c.AddFlavor("Margherita", nil, testPrices(50))

	var dupErr *DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "Margherita", dupErr.Name)
	assert.Equal(t, "flavor", dupErr.Kind)
}

func TestAddFlavor_MissingPrice(t *testing.T) {
	c := New(DefaultSizes())

	prices := testPrices(40)
	delete(prices, SizeFamily)
	err := c.AddFlavor("Margherita", nil, prices)

	var mpErr *MissingPriceError
	require.ErrorAs(t, err, &mpErr)
	assert.Equal(t, SizeFamily, mpErr.Size)
	assert.False(t, c.HasFlavor("Margherita"))
}

func TestRemoveFlavor(t *testing.T) {
	c := New(DefaultSizes())
	require.NoError(t, c.AddFlavor("Margherita", nil, testPrices(40)))

	require.NoError(t, c.RemoveFlavor("Margherita"))
	assert.False(t, c.HasFlavor("Margherita"))

	require.ErrorIs(t, c.RemoveFlavor("Margherita"), ErrFlavorNotFound)
}

func TestPrice_Strict(t *testing.T) {
	c := New(DefaultSizes())
	require.NoError(t, c.AddFlavor("Margherita", nil, testPrices(40)))

	p, err := c.Price("Margherita", SizeMedium)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(40)))

	_, err = c.Price("Diavola", SizeMedium)
	require.ErrorIs(t, err, ErrFlavorNotFound)

	_, err = c.Price("Margherita", "extra-large")
	var mpErr *MissingPriceError
	require.ErrorAs(t, err, &mpErr)
}

func TestRepriceFlavor(t *testing.T) {
	c := New(DefaultSizes())
	require.NoError(t, c.AddFlavor("Margherita", nil, testPrices(40)))

	require.NoError(t, c.RepriceFlavor("Margherita", SizeMedium, decimal.RequireFromString("42.50")))
	p, err := c.Price("Margherita", SizeMedium)
	require.NoError(t, err)
	assert.Equal(t, "42.50", p.StringFixed(2))

	require.ErrorIs(t, c.RepriceFlavor("Diavola", SizeMedium, decimal.NewFromInt(1)), ErrFlavorNotFound)

	var sizeErr *UnknownSizeError
	require.ErrorAs(t, c.RepriceFlavor("Margherita", "huge", decimal.NewFromInt(1)), &sizeErr)
}

func TestAddOns(t *testing.T) {
	c := New(DefaultSizes())

	require.NoError(t, c.AddAddOn("Olives", decimal.NewFromInt(3)))

	var dupErr *DuplicateNameError
	require.ErrorAs(t, c.AddAddOn("Olives", decimal.NewFromInt(4)), &dupErr)
	assert.Equal(t, "add-on", dupErr.Kind)

	p, ok := c.AddOnPrice("Olives")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.NewFromInt(3)))

	require.NoError(t, c.RepriceAddOn("Olives", decimal.NewFromInt(4)))
	require.NoError(t, c.RemoveAddOn("Olives"))
	require.ErrorIs(t, c.RemoveAddOn("Olives"), ErrAddOnNotFound)

	// Tolerant lookup: absence is not an error.
	_, ok = c.AddOnPrice("Olives")
	assert.False(t, ok)
}

func TestFlavors_InsertionOrder(t *testing.T) {
	c := New(DefaultSizes())
	for _, name := range []string{"Margherita", "Calabresa", "Bacon"} {
		require.NoError(t, c.AddFlavor(name, nil, testPrices(40)))
	}
	require.NoError(t, c.RemoveFlavor("Calabresa"))

	flavors := c.Flavors()
	require.Len(t, flavors, 2)
	assert.Equal(t, "Margherita", flavors[0].Name)
	assert.Equal(t, "Bacon", flavors[1].Name)
}

func TestFlavor_ReturnsCopy(t *testing.T) {
	c := New(DefaultSizes())
	require.NoError(t, c.AddFlavor("Margherita", []string{"basil"}, testPrices(40)))

	f, ok := c.Flavor("Margherita")
	require.True(t, ok)
	f.Ingredients[0] = "oregano"
	f.Prices[SizeMedium] = decimal.NewFromInt(999)

	orig, _ := c.Flavor("Margherita")
	assert.Equal(t, "basil", orig.Ingredients[0])
	assert.True(t, orig.Prices[SizeMedium].Equal(decimal.NewFromInt(40)))
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Len(t, c.Sizes(), 4)
	assert.Len(t, c.Flavors(), 8)
	assert.Len(t, c.AddOns(), 6)

	p, err := c.Price("Margherita", SizeMedium)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(40)))

	s, ok := c.SizeByLabel(SizeFamily)
	require.True(t, ok)
	assert.Equal(t, 30, s.BasePrepMinutes)
}

func TestSnapshotRoundTrip(t *testing.T) {
	orig := Default()

	restored, err := FromSnapshot(orig.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, orig.Sizes(), restored.Sizes())
	assert.Equal(t, orig.Flavors(), restored.Flavors())
	assert.Equal(t, orig.AddOns(), restored.AddOns())
}
