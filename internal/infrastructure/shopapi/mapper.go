package shopapi

import (
	"bytes"
	"encoding/json"

	"github.com/snapshop/shopkit/internal/domain"
)

// Wire shapes use pointers so that absent fields can be told apart from zero values.

type candidateWire struct {
	Brand          *string  `json:"brand"`
	Name           *string  `json:"name" validate:"required"`
	Model          *string  `json:"model"`
	UPC            *string  `json:"upc"`
	CanonicalQuery *string  `json:"canonical_query" validate:"required"`
	Confidence     *float64 `json:"confidence" validate:"required"`
}

type identifyWire struct {
	Primary        *candidateWire  `json:"primary" validate:"required"`
	Candidates     []candidateWire `json:"candidates" validate:"required,dive"`
	Notes          *string         `json:"notes"`
	RawModelOutput *string         `json:"raw_model_output"`
}

type offerWire struct {
	Title      *string  `json:"title" validate:"required"`
	Price      *string  `json:"price"`
	PriceValue *float64 `json:"price_value"`
	Source     *string  `json:"source"`
	Link       *string  `json:"link"`
	Thumbnail  *string  `json:"thumbnail"`
	Delivery   *string  `json:"delivery"`
	Rating     *float64 `json:"rating"`
	Reviews    *int     `json:"reviews"`
}

type offersWire struct {
	Query  *string         `json:"query" validate:"required"`
	Offers []offerWire     `json:"offers" validate:"required,dive"`
	Raw    json.RawMessage `json:"raw"`
}

type healthWire struct {
	OK *bool `json:"ok" validate:"required"`
}

type versionWire struct {
	Version *string `json:"version" validate:"required"`
	Build   *string `json:"build"`
}

func mapIdentify(w *identifyWire) *domain.IdentifyResult {
	candidates := make([]domain.ProductCandidate, 0, len(w.Candidates))
	for i := range w.Candidates {
		candidates = append(candidates, mapCandidate(&w.Candidates[i]))
	}
	return &domain.IdentifyResult{
		Primary:        mapCandidate(w.Primary),
		Candidates:     candidates,
		Notes:          deref(w.Notes),
		RawModelOutput: deref(w.RawModelOutput),
	}
}

func mapCandidate(w *candidateWire) domain.ProductCandidate {
	return domain.ProductCandidate{
		Brand:          deref(w.Brand),
		Name:           *w.Name,
		Model:          deref(w.Model),
		UPC:            deref(w.UPC),
		CanonicalQuery: *w.CanonicalQuery,
		Confidence:     *w.Confidence,
	}
}

func mapOffers(w *offersWire) *domain.OffersResult {
	offers := make([]domain.OfferItem, 0, len(w.Offers))
	for i := range w.Offers {
		o := &w.Offers[i]
		offers = append(offers, domain.OfferItem{
			Title:      *o.Title,
			Price:      deref(o.Price),
			PriceValue: o.PriceValue,
			Source:     deref(o.Source),
			Link:       deref(o.Link),
			Thumbnail:  deref(o.Thumbnail),
			Delivery:   deref(o.Delivery),
			Rating:     o.Rating,
			Reviews:    o.Reviews,
		})
	}

	var raw json.RawMessage
	if trimmed := bytes.TrimSpace(w.Raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		raw = append(json.RawMessage(nil), trimmed...)
	}

	return &domain.OffersResult{
		Query:  *w.Query,
		Offers: offers,
		Raw:    raw,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
