package domain

import (
	"encoding/json"
	"strings"
)

// keySeparator joins composite key fields. It is printable so keys can be
// passed back on a command line.
const keySeparator = "|"

// ProductCandidate is one possible identification of the photographed product
type ProductCandidate struct {
	Brand          string  `json:"brand,omitempty"`
	Name           string  `json:"name"`
	Model          string  `json:"model,omitempty"`
	UPC            string  `json:"upc,omitempty"`
	CanonicalQuery string  `json:"canonical_query"` // search string for offer lookup
	Confidence     float64 `json:"confidence"`      // 0..1
}

// Key derives the selection identity: the UPC when present, else brand/name/model.
func (p ProductCandidate) Key() string {
	if p.UPC != "" {
		return "upc:" + p.UPC
	}
	return "bnm:" + strings.Join([]string{p.Brand, p.Name, p.Model}, keySeparator)
}

// DisplayName joins brand, name and model for presentation.
func (p ProductCandidate) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Brand, p.Name, p.Model} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// IdentifyResult is the backend's answer to an identify call
type IdentifyResult struct {
	Primary        ProductCandidate   `json:"primary"`
	Candidates     []ProductCandidate `json:"candidates"`
	Notes          string             `json:"notes,omitempty"`
	RawModelOutput string             `json:"raw_model_output,omitempty"`
}

// MarshalJSON writes a nil Candidates slice as [] since the field is required on the wire.
func (r IdentifyResult) MarshalJSON() ([]byte, error) {
	type plain IdentifyResult
	if r.Candidates == nil {
		r.Candidates = []ProductCandidate{}
	}
	return json.Marshal(plain(r))
}

// All returns the primary followed by every candidate whose key differs from it,
// in backend ranking order.
func (r *IdentifyResult) All() []ProductCandidate {
	out := make([]ProductCandidate, 0, len(r.Candidates)+1)
	seen := map[string]bool{r.Primary.Key(): true}
	out = append(out, r.Primary)
	for _, c := range r.Candidates {
		k := c.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// Find returns the candidate (primary included) with the given derived key.
func (r *IdentifyResult) Find(key string) (ProductCandidate, bool) {
	for _, c := range r.All() {
		if c.Key() == key {
			return c, true
		}
	}
	return ProductCandidate{}, false
}
