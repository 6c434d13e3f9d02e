package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// NewProduct: входные данные регистрации товара.
type NewProduct struct {
	Name     string `validate:"required,max=120"`
	Category string `validate:"max=60"`
	Unit     Unit   `validate:"required,oneof=kg gm ltr ml pcs packets"`
}

// Catalog хранит товары и их упаковки. Не потокобезопасен: владелец сериализует доступ.
type Catalog struct {
	products map[ProductID]ParentItem
	variants map[ProductID]map[VariantID]PacketVariant
}

func New() *Catalog {
	return &Catalog{
		products: map[ProductID]ParentItem{},
		variants: map[ProductID]map[VariantID]PacketVariant{},
	}
}

// FromItems собирает каталог из сохранённых коллекций, проверяя каждую запись.
func FromItems(products map[ProductID]ParentItem, variants map[ProductID]map[VariantID]PacketVariant) (*Catalog, error) {
	c := New()
	for id, p := range products {
		if p.ID != id {
			return nil, fmt.Errorf("%w: key %q holds product %q", ErrInvalidProduct, id, p.ID)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		c.products[id] = p
	}
	for pid, vs := range variants {
		if _, ok := c.products[pid]; !ok {
			return nil, fmt.Errorf("%w: variants reference %s", ErrUnknownProduct, pid)
		}
		for vid, v := range vs {
			if v.ID != vid || v.ParentID != pid {
				return nil, fmt.Errorf("%w: key %s/%s holds %s/%s", ErrInvalidVariant, pid, vid, v.ParentID, v.ID)
			}
			if err := v.Validate(); err != nil {
				return nil, err
			}
			if c.variants[pid] == nil {
				c.variants[pid] = map[VariantID]PacketVariant{}
			}
			c.variants[pid][vid] = v
		}
	}
	return c, nil
}

func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		products: maps.Clone(c.products),
		variants: make(map[ProductID]map[VariantID]PacketVariant, len(c.variants)),
	}
	for pid, vs := range c.variants {
		out.variants[pid] = maps.Clone(vs)
	}
	return out
}

// RegisterProduct создаёт товар. Имя уникально без учёта регистра, ID берётся из слага имени;
// если слаг уже занят, выдаётся синтетический ID.
func (c *Catalog) RegisterProduct(name, category string, unit Unit) (ProductID, error) {
	req := NewProduct{
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
		Unit:     Unit(strings.ToLower(strings.TrimSpace(string(unit)))),
	}
	if err := validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if req.Category == "" {
		req.Category = DefaultCategory
	}

	if existing, ok := c.byName(req.Name); ok {
		return "", fmt.Errorf("%w: %q is %s", ErrDuplicateProduct, req.Name, existing.ID)
	}

	id := Slug(req.Name)
	if _, ok := c.products[id]; ok {
		id = c.syntheticID(id)
	}
	if id == "" {
		id = c.syntheticID("PRODUCT")
	}

	c.products[id] = ParentItem{ID: id, Name: req.Name, Category: req.Category, Unit: req.Unit}
	return id, nil
}

func (c *Catalog) syntheticID(base ProductID) ProductID {
	for {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		id := ProductID(string(base) + "_" + suffix)
		if _, ok := c.products[id]; !ok {
			return id
		}
	}
}

// Slug: "Basmati Rice Premium" -> "BASMATI_RICE_PREMIUM".
func Slug(name string) ProductID {
	var b strings.Builder
	sep := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		sep = true
	}
	return ProductID(b.String())
}

func (c *Catalog) AddVariant(parentID ProductID, variantID VariantID, weightPerUnit decimal.Decimal, description string, unitPrice decimal.Decimal) (PacketVariant, error) {
	p, ok := c.products[parentID]
	if !ok {
		return PacketVariant{}, fmt.Errorf("%w: %s", ErrUnknownProduct, parentID)
	}
	variantID = VariantID(strings.TrimSpace(string(variantID)))
	if variantID == "" {
		return PacketVariant{}, fmt.Errorf("%w: empty id", ErrInvalidVariant)
	}
	if _, ok := c.variants[parentID][variantID]; ok {
		return PacketVariant{}, fmt.Errorf("%w: %s/%s", ErrDuplicateVariant, parentID, variantID)
	}

	weight := RoundWeight(weightPerUnit)
	if !weight.IsPositive() {
		return PacketVariant{}, fmt.Errorf("%w: %s", ErrInvalidWeight, weightPerUnit)
	}
	price := RoundPrice(unitPrice)
	if price.IsNegative() {
		return PacketVariant{}, fmt.Errorf("%w: %s", ErrInvalidPrice, unitPrice)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = fmt.Sprintf("%s%s %s", weight, p.Unit, p.Name)
	}

	v := PacketVariant{
		ID:            variantID,
		ParentID:      parentID,
		WeightPerUnit: weight,
		Description:   description,
		UnitPrice:     price,
	}
	if c.variants[parentID] == nil {
		c.variants[parentID] = map[VariantID]PacketVariant{}
	}
	c.variants[parentID][variantID] = v
	return v, nil
}

// UpdateVariant меняет только описание и цену; вес упаковки неизменен.
func (c *Catalog) UpdateVariant(parentID ProductID, variantID VariantID, description string, unitPrice decimal.Decimal) (PacketVariant, error) {
	v, err := c.Variant(parentID, variantID)
	if err != nil {
		return PacketVariant{}, err
	}
	price := RoundPrice(unitPrice)
	if price.IsNegative() {
		return PacketVariant{}, fmt.Errorf("%w: %s", ErrInvalidPrice, unitPrice)
	}
	if d := strings.TrimSpace(description); d != "" {
		v.Description = d
	}
	v.UnitPrice = price
	c.variants[parentID][variantID] = v
	return v, nil
}

func (c *Catalog) Product(id ProductID) (ParentItem, error) {
	p, ok := c.products[id]
	if !ok {
		return ParentItem{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	return p, nil
}

func (c *Catalog) Variant(parentID ProductID, variantID VariantID) (PacketVariant, error) {
	if _, ok := c.products[parentID]; !ok {
		return PacketVariant{}, fmt.Errorf("%w: %s", ErrUnknownProduct, parentID)
	}
	v, ok := c.variants[parentID][variantID]
	if !ok {
		return PacketVariant{}, fmt.Errorf("%w: %s/%s", ErrUnknownVariant, parentID, variantID)
	}
	return v, nil
}

// Variants возвращает упаковки товара, отсортированные по ID.
func (c *Catalog) Variants(parentID ProductID) ([]PacketVariant, error) {
	if _, ok := c.products[parentID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, parentID)
	}
	out := slices.Collect(maps.Values(c.variants[parentID]))
	slices.SortFunc(out, func(a, b PacketVariant) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out, nil
}

func (c *Catalog) Products() []ParentItem {
	out := slices.Collect(maps.Values(c.products))
	slices.SortFunc(out, func(a, b ParentItem) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

// FindProduct ищет товар по ID, затем по имени (без учёта регистра), затем по слагу.
func (c *Catalog) FindProduct(ref string) (ParentItem, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := c.products[ProductID(ref)]; ok {
		return p, nil
	}
	if p, ok := c.byName(ref); ok {
		return p, nil
	}
	if p, ok := c.products[Slug(ref)]; ok {
		return p, nil
	}
	return ParentItem{}, fmt.Errorf("%w: %s", ErrUnknownProduct, ref)
}

// byName обходит товары по возрастанию ID, чтобы результат не зависел от порядка map.
func (c *Catalog) byName(name string) (ParentItem, bool) {
	for _, p := range c.Products() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return ParentItem{}, false
}

// Items и VariantsByProduct отдают копии коллекций для сохранения.
func (c *Catalog) Items() map[ProductID]ParentItem { return maps.Clone(c.products) }

func (c *Catalog) VariantsByProduct() map[ProductID]map[VariantID]PacketVariant {
	out := make(map[ProductID]map[VariantID]PacketVariant, len(c.variants))
	for pid, vs := range c.variants {
		if len(vs) == 0 {
			continue
		}
		out[pid] = maps.Clone(vs)
	}
	return out
}
