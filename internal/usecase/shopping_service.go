package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/snapshop/shopkit/internal/domain"
	"go.uber.org/zap"
)

// SortOrder selects how offers are presented
type SortOrder string

const (
	// SortRelevance keeps the backend's order
	SortRelevance SortOrder = "relevance"
	// SortPrice puts priced offers first, cheapest first
	SortPrice SortOrder = "price"
	// SortRetailer puts preferred retailers first
	SortRetailer SortOrder = "retailer"
)

// ParseSortOrder maps a user supplied name to a SortOrder. Empty means relevance.
func ParseSortOrder(name string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(name))) {
	case "", SortRelevance:
		return SortRelevance, nil
	case SortPrice:
		return SortPrice, nil
	case SortRetailer:
		return SortRetailer, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want relevance, price or retailer)", name)
	}
}

// FindOffersOptions carries the request options plus presentation ordering
type FindOffersOptions struct {
	domain.OffersOptions
	Sort SortOrder
}

// Offer is an offer as shown to the user
type Offer struct {
	domain.OfferItem
	Retailer   string `json:"retailer,omitempty"`
	Membership bool   `json:"membership"`
}

// OfferList is the presented result of an offers lookup
type OfferList struct {
	Query  string          `json:"query"`
	Offers []Offer         `json:"offers"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// ShoppingService drives identify and offers lookups for a caller
type ShoppingService struct {
	api domain.ShopAPI
	log *zap.SugaredLogger
}

// NewShoppingService creates a shopping service on top of the backend client
func NewShoppingService(api domain.ShopAPI, log *zap.SugaredLogger) *ShoppingService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ShoppingService{api: api, log: log}
}

// Identify sends the photo to the backend.
func (s *ShoppingService) Identify(
	ctx context.Context,
	image []byte,
	filename, mimeType string,
) (*domain.IdentifyResult, error) {
	result, err := s.api.Identify(ctx, image, filename, mimeType)
	if err != nil {
		return nil, err
	}
	s.log.Infow("product identified",
		"primary", result.Primary.DisplayName(),
		"confidence", result.Primary.Confidence,
		"candidates", len(result.Candidates),
	)
	return result, nil
}

// IdentifyFile reads the photo at path and identifies it.
func (s *ShoppingService) IdentifyFile(ctx context.Context, path, mimeType string) (*domain.IdentifyResult, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.EncodingError{Reason: "cannot read image file", Cause: err}
	}
	return s.Identify(ctx, image, filepath.Base(path), mimeType)
}

// SelectCandidate returns the candidate of result whose Key equals ref. A
// decimal ref picks by position in result.All() instead, 0 being the primary.
func SelectCandidate(result *domain.IdentifyResult, ref string) (domain.ProductCandidate, error) {
	if result == nil {
		return domain.ProductCandidate{}, domain.ErrCandidateNotFound
	}
	key := strings.TrimSpace(ref)
	if i, err := strconv.Atoi(key); err == nil {
		all := result.All()
		if i < 0 || i >= len(all) {
			return domain.ProductCandidate{}, fmt.Errorf("%w: index %d of %d", domain.ErrCandidateNotFound, i, len(all))
		}
		return all[i], nil
	}
	candidate, ok := result.Find(key)
	if !ok {
		return domain.ProductCandidate{}, fmt.Errorf("%w: %s", domain.ErrCandidateNotFound, key)
	}
	return candidate, nil
}

// FindOffers looks up offers for the candidate's canonical query.
func (s *ShoppingService) FindOffers(
	ctx context.Context,
	candidate domain.ProductCandidate,
	opts FindOffersOptions,
) (*OfferList, error) {
	return s.Search(ctx, candidate.CanonicalQuery, opts)
}

// Search looks up offers for a free text query.
func (s *ShoppingService) Search(ctx context.Context, query string, opts FindOffersOptions) (*OfferList, error) {
	result, err := s.api.FetchOffers(ctx, query, opts.OffersOptions)
	if err != nil {
		return nil, err
	}

	list := &OfferList{
		Query:  result.Query,
		Offers: present(result.Offers),
		Raw:    result.Raw,
	}
	sortOffers(list.Offers, opts.Sort)

	s.log.Infow("offers fetched", "query", result.Query, "count", len(list.Offers), "sort", string(opts.Sort))
	return list, nil
}

// present normalizes retailer names and flags membership retailers
func present(items []domain.OfferItem) []Offer {
	offers := make([]Offer, 0, len(items))
	for _, item := range items {
		retailer := domain.NormalizeRetailer(item.Source)
		offers = append(offers, Offer{
			OfferItem:  item,
			Retailer:   retailer,
			Membership: domain.IsMembershipRetailer(retailer),
		})
	}
	return offers
}

// sortOffers orders offers in place. Ties keep the backend's order.
func sortOffers(offers []Offer, order SortOrder) {
	switch order {
	case SortPrice:
		sort.SliceStable(offers, func(i, j int) bool {
			a, aok := offers[i].Amount()
			b, bok := offers[j].Amount()
			if aok != bok {
				return aok
			}
			return aok && a.LessThan(b)
		})
	case SortRetailer:
		sort.SliceStable(offers, func(i, j int) bool {
			return domain.PreferredRank(offers[i].Retailer) < domain.PreferredRank(offers[j].Retailer)
		})
	}
}
