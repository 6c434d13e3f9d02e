package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want ProductID
	}{
		{"Rice", "RICE"},
		{"Basmati Rice Premium", "BASMATI_RICE_PREMIUM"},
		{"  toor-dal  (2024) ", "TOOR_DAL_2024"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.name))
		})
	}
}

func TestRegisterProduct(t *testing.T) {
	c := New()

	id, err := c.RegisterProduct("Rice", "", UnitKg)
	require.NoError(t, err)
	assert.Equal(t, ProductID("RICE"), id)

	p, err := c.Product(id)
	require.NoError(t, err)
	assert.Equal(t, "Rice", p.Name)
	assert.Equal(t, DefaultCategory, p.Category)
	assert.Equal(t, UnitKg, p.Unit)

	_, err = c.RegisterProduct("rice", "Rice", UnitKg)
	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestRegisterProduct_SlugCollisionGetsSyntheticID(t *testing.T) {
	c := New()
	first, err := c.RegisterProduct("Toor Dal", "Pulses", UnitKg)
	require.NoError(t, err)

	second, err := c.RegisterProduct("Toor-Dal", "Pulses", UnitKg)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^TOOR_DAL_[0-9A-F]{8}$`, string(second))
	assert.Len(t, c.Products(), 2)
}

func TestRegisterProduct_NameIsUniqueAcrossIDs(t *testing.T) {
	c := Seed()
	_, err := c.RegisterProduct("basmati rice PREMIUM", "Rice", UnitKg)
	assert.ErrorIs(t, err, ErrDuplicateProduct)
	assert.Len(t, c.Products(), 4)

	c = New()
	first, err := c.RegisterProduct("Toor-Dal", "Pulses", UnitKg)
	require.NoError(t, err)
	second, err := c.RegisterProduct("Toor Dal", "Pulses", UnitKg)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = c.RegisterProduct("Toor Dal", "Pulses", UnitKg)
	assert.ErrorIs(t, err, ErrDuplicateProduct)
	_, err = c.RegisterProduct("toor-dal", "Pulses", UnitKg)
	assert.ErrorIs(t, err, ErrDuplicateProduct)
	assert.Len(t, c.Products(), 2)

	// имя важнее слага: "toor dal" это второй товар, хотя его слаг занят первым
	p, err := c.FindProduct("toor dal")
	require.NoError(t, err)
	assert.Equal(t, second, p.ID)
	p, err = c.FindProduct("TOOR-DAL")
	require.NoError(t, err)
	assert.Equal(t, first, p.ID)
}

func TestRegisterProduct_Validation(t *testing.T) {
	c := New()

	_, err := c.RegisterProduct("   ", "Rice", UnitKg)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = c.RegisterProduct("Rice", "Rice", Unit("bushel"))
	assert.ErrorIs(t, err, ErrInvalidProduct)

	assert.Empty(t, c.Products())
}

func TestAddVariant(t *testing.T) {
	c := New()
	id, err := c.RegisterProduct("Rice", "Rice", UnitKg)
	require.NoError(t, err)

	v, err := c.AddVariant(id, "V1KG", decimal.NewFromInt(1), "", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "1kg Rice", v.Description)
	assert.True(t, v.UnitPrice.Equal(decimal.NewFromInt(100)))

	_, err = c.AddVariant(id, "V1KG", decimal.NewFromInt(2), "dup", decimal.Zero)
	assert.ErrorIs(t, err, ErrDuplicateVariant)

	_, err = c.AddVariant("NOPE", "V1KG", decimal.NewFromInt(1), "", decimal.Zero)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = c.AddVariant(id, "V0", decimal.Zero, "", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = c.AddVariant(id, "VNEG", decimal.NewFromInt(1), "", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	// 0.0004 округляется до нуля: это тоже недопустимый вес
	_, err = c.AddVariant(id, "VTINY", decimal.RequireFromString("0.0004"), "", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	vs, err := c.Variants(id)
	require.NoError(t, err)
	assert.Len(t, vs, 1)
}

func TestVariantLookups(t *testing.T) {
	c := Seed()

	_, err := c.Variant("RICE_BASMATI", "B07WHEAT1KG")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	_, err = c.Variant("NOPE", "B07WHEAT1KG")
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = c.Variants("NOPE")
	assert.ErrorIs(t, err, ErrUnknownProduct)

	vs, err := c.Variants("RICE_BASMATI")
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, VariantID("B07BASMATI1KG"), vs[0].ID)
	assert.Equal(t, VariantID("B07BASMATI5KG"), vs[1].ID)
}

func TestUpdateVariant(t *testing.T) {
	c := Seed()

	v, err := c.UpdateVariant("RICE_BASMATI", "B07BASMATI1KG", "", decimal.RequireFromString("125.505"))
	require.NoError(t, err)
	assert.Equal(t, "1kg Basmati Rice Pack", v.Description)
	assert.Equal(t, "125.51", v.UnitPrice.StringFixed(2))
	assert.True(t, v.WeightPerUnit.Equal(decimal.NewFromInt(1)))
}

func TestCloneIsIndependent(t *testing.T) {
	c := Seed()
	cp := c.Clone()

	_, err := cp.AddVariant("RICE_JASMINE", "B07JASMINE5KG", decimal.NewFromInt(5), "", decimal.NewFromInt(500))
	require.NoError(t, err)

	_, err = c.Variant("RICE_JASMINE", "B07JASMINE5KG")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestFromItems(t *testing.T) {
	seed := Seed()

	c, err := FromItems(seed.Items(), seed.VariantsByProduct())
	require.NoError(t, err)
	assert.Equal(t, seed.Products(), c.Products())

	variants := seed.VariantsByProduct()
	variants["GHOST"] = map[VariantID]PacketVariant{"X": {ID: "X", ParentID: "GHOST", WeightPerUnit: decimal.NewFromInt(1)}}
	_, err = FromItems(seed.Items(), variants)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	variants = seed.VariantsByProduct()
	bad := variants["RICE_BASMATI"]["B07BASMATI1KG"]
	bad.WeightPerUnit = decimal.Zero
	variants["RICE_BASMATI"]["B07BASMATI1KG"] = bad
	_, err = FromItems(seed.Items(), variants)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestFindProduct(t *testing.T) {
	c := Seed()

	p, err := c.FindProduct("toor dal premium")
	require.NoError(t, err)
	assert.Equal(t, ProductID("PULSES_TOOR"), p.ID)

	p, err = c.FindProduct("WHEAT_FLOUR")
	require.NoError(t, err)
	assert.Equal(t, "Wheat Flour Organic", p.Name)

	_, err = c.FindProduct("sugar")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}
