package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/snapshop/shopkit/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Catalog is the static product list the sandbox answers from
type Catalog struct {
	Products []Product `yaml:"products" validate:"required,min=1,dive"`
}

// Product is one catalog entry with its offers
type Product struct {
	Brand   string   `yaml:"brand"`
	Name    string   `yaml:"name" validate:"required"`
	Model   string   `yaml:"model"`
	UPC     string   `yaml:"upc"`
	Query   string   `yaml:"query" validate:"required"`
	Aliases []string `yaml:"aliases"`
	Offers  []Offer  `yaml:"offers" validate:"dive"`
}

// Offer is one catalog listing
type Offer struct {
	Title      string   `yaml:"title" validate:"required"`
	Price      string   `yaml:"price"`
	PriceValue *float64 `yaml:"price_value"`
	Source     string   `yaml:"source"`
	Link       string   `yaml:"link" validate:"omitempty,url"`
	Thumbnail  string   `yaml:"thumbnail" validate:"omitempty,url"`
	Delivery   string   `yaml:"delivery"`
	Rating     *float64 `yaml:"rating" validate:"omitempty,gte=0,lte=5"`
	Reviews    *int     `yaml:"reviews" validate:"omitempty,gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file; an empty path yields the built-in catalog
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

// Documents returns the searchable text of every product, in catalog order
func (c *Catalog) Documents() []string {
	docs := make([]string, len(c.Products))
	for i, p := range c.Products {
		parts := append([]string{p.Brand, p.Name, p.Model, p.Query}, p.Aliases...)
		docs[i] = strings.Join(parts, " ")
	}
	return docs
}

// Candidate converts the product into an identification candidate
func (p Product) Candidate(confidence float64) domain.ProductCandidate {
	return domain.ProductCandidate{
		Brand:          p.Brand,
		Name:           p.Name,
		Model:          p.Model,
		UPC:            p.UPC,
		CanonicalQuery: p.Query,
		Confidence:     confidence,
	}
}

// OfferItems converts the product's offers, deriving price_value from the
// price text when the catalog leaves it out
func (p Product) OfferItems() []domain.OfferItem {
	items := make([]domain.OfferItem, 0, len(p.Offers))
	for _, o := range p.Offers {
		item := domain.OfferItem{
			Title:      o.Title,
			Price:      o.Price,
			PriceValue: o.PriceValue,
			Source:     o.Source,
			Link:       o.Link,
			Thumbnail:  o.Thumbnail,
			Delivery:   o.Delivery,
			Rating:     o.Rating,
			Reviews:    o.Reviews,
		}
		if item.PriceValue == nil {
			if amount, ok := item.Amount(); ok {
				v := amount.InexactFloat64()
				item.PriceValue = &v
			}
		}
		items = append(items, item)
	}
	return items
}
