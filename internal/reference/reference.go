package reference

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Catalog is the frozen reference data the pipeline runs against: the
// category table (with SKU prefixes and subcategories) and the condition
// grades. It is loaded once at startup and validated before first use so
// an unrecognized category can never reach the SKU allocator.
type Catalog struct {
	Categories      []Category `mapstructure:"categories"`
	ConditionGrades []string   `mapstructure:"condition_grades"`
}

type Category struct {
	ID            string   `mapstructure:"id" json:"id"`
	Name          string   `mapstructure:"name" json:"name"`
	SKUPrefix     string   `mapstructure:"sku_prefix" json:"skuPrefix"`
	Subcategories []string `mapstructure:"subcategories" json:"subcategories,omitempty"`
}

var (
	ErrInvalidCatalog = errors.New("invalid_catalog")

	prefixPattern = regexp.MustCompile(`^[A-Z]{3,4}$`)
)

// Default returns the built-in category and condition tables.
func Default() Catalog {
	return Catalog{
		Categories: []Category{
			{ID: "militaria", Name: "Militaria", SKUPrefix: "MILI", Subcategories: []string{"Helmets", "Uniforms", "Medals", "Field Gear"}},
			{ID: "collectibles", Name: "Collectibles", SKUPrefix: "COLL", Subcategories: []string{"Coins", "Stamps", "Toys", "Advertising"}},
			{ID: "books", Name: "Books", SKUPrefix: "BOOK", Subcategories: []string{"First Editions", "Maps", "Manuscripts"}},
			{ID: "fineart", Name: "Fine Art", SKUPrefix: "ART", Subcategories: []string{"Paintings", "Prints", "Sculpture"}},
		},
		ConditionGrades: []string{"Mint", "Excellent", "Very Good", "Good", "Fair", "Poor"},
	}
}

// Load reads the catalog from the YAML file at path, or returns the
// built-in tables when path is empty. The result is always validated.
func Load(path string) (Catalog, error) {
	cat := Default()
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Catalog{}, fmt.Errorf("read catalog config: %w", err)
		}
		if err := v.Unmarshal(&cat); err != nil {
			return Catalog{}, fmt.Errorf("parse catalog config: %w", err)
		}
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

// Validate checks the invariants the allocator and the ingest endpoint
// rely on: non-empty unique IDs, 3-4 uppercase-letter prefixes, unique
// prefixes, and a non-empty condition table.
func (c Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories defined", ErrInvalidCatalog)
	}
	seenID := make(map[string]bool, len(c.Categories))
	seenPrefix := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		id := strings.TrimSpace(cat.ID)
		if id == "" {
			return fmt.Errorf("%w: category with empty id", ErrInvalidCatalog)
		}
		if seenID[id] {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalidCatalog, id)
		}
		seenID[id] = true
		if !prefixPattern.MatchString(cat.SKUPrefix) {
			return fmt.Errorf("%w: category %q has invalid sku prefix %q", ErrInvalidCatalog, id, cat.SKUPrefix)
		}
		if seenPrefix[cat.SKUPrefix] {
			return fmt.Errorf("%w: duplicate sku prefix %q", ErrInvalidCatalog, cat.SKUPrefix)
		}
		seenPrefix[cat.SKUPrefix] = true
	}
	if len(c.ConditionGrades) == 0 {
		return fmt.Errorf("%w: no condition grades defined", ErrInvalidCatalog)
	}
	for _, grade := range c.ConditionGrades {
		if strings.TrimSpace(grade) == "" {
			return fmt.Errorf("%w: empty condition grade", ErrInvalidCatalog)
		}
	}
	return nil
}

// PrefixFor maps a category id to its SKU prefix.
func (c Catalog) PrefixFor(categoryID string) (string, bool) {
	for _, cat := range c.Categories {
		if cat.ID == categoryID {
			return cat.SKUPrefix, true
		}
	}
	return "", false
}

func (c Catalog) IsCategory(categoryID string) bool {
	_, ok := c.PrefixFor(categoryID)
	return ok
}

func (c Catalog) IsCondition(grade string) bool {
	for _, g := range c.ConditionGrades {
		if g == grade {
			return true
		}
	}
	return false
}

func (c Catalog) CategoryIDs() []string {
	ids := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		ids = append(ids, cat.ID)
	}
	return ids
}
