package domain

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var priceNumberRegex = regexp.MustCompile(`\d[\d,]*\.?\d*`)

// OfferItem is one merchant listing for the identified product
type OfferItem struct {
	Title      string   `json:"title"`
	Price      string   `json:"price,omitempty"`       // display price, e.g. "$599.99"
	PriceValue *float64 `json:"price_value,omitempty"` // numeric price when the backend parsed one
	Source     string   `json:"source,omitempty"`      // merchant name
	Link       string   `json:"link,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	Delivery   string   `json:"delivery,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Reviews    *int     `json:"reviews,omitempty"`
}

// Key derives the list identity: the link when present, else title/source/price.
func (o OfferItem) Key() string {
	if o.Link != "" {
		return "link:" + o.Link
	}
	return "tsp:" + strings.Join([]string{o.Title, o.Source, o.Price}, keySeparator)
}

// Amount returns the offer's numeric price. The backend's price_value wins;
// otherwise the first number in the display price is used ("From $1,402.58").
func (o OfferItem) Amount() (decimal.Decimal, bool) {
	if o.PriceValue != nil {
		return decimal.NewFromFloat(*o.PriceValue), true
	}
	m := priceNumberRegex.FindString(o.Price)
	if m == "" {
		return decimal.Zero, false
	}
	m = strings.TrimSuffix(strings.ReplaceAll(m, ",", ""), ".")
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OffersResult is the backend's answer to an offers call. Offers keep backend ranking order.
type OffersResult struct {
	Query  string          `json:"query"`
	Offers []OfferItem     `json:"offers"`
	Raw    json.RawMessage `json:"raw,omitempty"` // opaque upstream payload
}

// MarshalJSON writes a nil Offers slice as [] so the body still satisfies the
// wire contract, which requires the field.
func (r OffersResult) MarshalJSON() ([]byte, error) {
	type plain OffersResult
	if r.Offers == nil {
		r.Offers = []OfferItem{}
	}
	return json.Marshal(plain(r))
}

// OffersOptions tunes an offers lookup.
type OffersOptions struct {
	NumResults        int    // clamped before transmission; zero means the configured default
	Country           string // gl
	Language          string // hl
	IncludeMembership bool
}
