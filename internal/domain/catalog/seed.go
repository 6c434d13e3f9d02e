package catalog

import "github.com/shopspring/decimal"

type seedVariant struct {
	id     VariantID
	weight int64
	desc   string
	price  int64
}

type seedProduct struct {
	id       ProductID
	name     string
	category string
	variants []seedVariant
}

var sample = []seedProduct{
	{"RICE_BASMATI", "Basmati Rice Premium", "Rice", []seedVariant{
		{"B07BASMATI1KG", 1, "1kg Basmati Rice Pack", 120},
		{"B07BASMATI5KG", 5, "5kg Basmati Rice Pack", 580},
	}},
	{"RICE_JASMINE", "Jasmine Rice Fragrant", "Rice", []seedVariant{
		{"B07JASMINE1KG", 1, "1kg Jasmine Rice Pack", 110},
	}},
	{"WHEAT_FLOUR", "Wheat Flour Organic", "Flour", []seedVariant{
		{"B07WHEAT1KG", 1, "1kg Wheat Flour Pack", 45},
		{"B07WHEAT5KG", 5, "5kg Wheat Flour Pack", 220},
	}},
	{"PULSES_TOOR", "Toor Dal Premium", "Pulses", []seedVariant{
		{"B07TOOR1KG", 1, "1kg Toor Dal Pack", 85},
		{"B07TOOR2KG", 2, "2kg Toor Dal Pack", 165},
	}},
}

// Seed: демонстрационный каталог для первого запуска (только по явному флагу).
func Seed() *Catalog {
	c := New()
	for _, p := range sample {
		c.products[p.id] = ParentItem{ID: p.id, Name: p.name, Category: p.category, Unit: UnitKg}
		vs := make(map[VariantID]PacketVariant, len(p.variants))
		for _, v := range p.variants {
			vs[v.id] = PacketVariant{
				ID:            v.id,
				ParentID:      p.id,
				WeightPerUnit: decimal.NewFromInt(v.weight),
				Description:   v.desc,
				UnitPrice:     decimal.NewFromInt(v.price),
			}
		}
		c.variants[p.id] = vs
	}
	return c
}
