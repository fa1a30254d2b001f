package http

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/snapshop/shopkit/internal/domain"
	"github.com/snapshop/shopkit/internal/infrastructure/catalog"
	"github.com/snapshop/shopkit/internal/usecase"
	"go.uber.org/zap"
)

const (
	defaultOffers    = 20
	maxCandidates    = 3
	costcoSearchURL  = "https://www.costco.com/CatalogSearch?keyword="
	costcoOfferTitle = "Costco (membership) - search results"
)

// Handler serves the sandbox shopping API from a static catalog
type Handler struct {
	catalog      *catalog.Catalog
	documents    []string
	matcher      *usecase.MatchingService
	preprocessor *usecase.QueryPreprocessor
	version      domain.VersionInfo
	log          *zap.SugaredLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cat *catalog.Catalog,
	matcher *usecase.MatchingService,
	preprocessor *usecase.QueryPreprocessor,
	version domain.VersionInfo,
	log *zap.SugaredLogger,
) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		catalog:      cat,
		documents:    cat.Documents(),
		matcher:      matcher,
		preprocessor: preprocessor,
		version:      version,
		log:          log,
	}
}

// offersQuery binds the offers query string
type offersQuery struct {
	Q                 string `form:"q" binding:"required"`
	Num               *int   `form:"num" binding:"omitempty,min=1,max=100"`
	IncludeMembership bool   `form:"include_membership"`
	Country           string `form:"gl"`
	Language          string `form:"hl"`
}

// Root describes the service
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Shopkit Sandbox API",
		"status":  "ok",
		"health":  "/health",
		"version": "/version",
	})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, domain.HealthStatus{OK: true})
}

// Version returns the sandbox build information
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.version)
}

// Identify ranks catalog products against the uploaded photo's filename
func (h *Handler) Identify(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		respondValidation(c, domain.ValidationItem{
			Location: []domain.PathSegment{domain.KeySegment("body"), domain.KeySegment("image")},
			Message:  "field required",
			Kind:     "value_error.missing",
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, fmt.Sprintf("cannot read image: %v", err))
		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		respondDetail(c, http.StatusUnprocessableEntity, fmt.Sprintf("cannot read image: %v", err))
		return
	}
	if size == 0 {
		respondDetail(c, http.StatusUnprocessableEntity, "image is empty")
		return
	}

	query := h.preprocessor.FromFilename(header.Filename)
	matches := h.matcher.Rank(query, h.documents)
	if len(matches) == 0 {
		h.log.Infow("no catalog match", "filename", header.Filename, "query", query)
		respondDetail(c, http.StatusNotFound, fmt.Sprintf("no catalog product matches %q", header.Filename))
		return
	}

	primary := h.catalog.Products[matches[0].Index].Candidate(confidence(matches[0].Score))
	candidates := make([]domain.ProductCandidate, 0, maxCandidates)
	for _, m := range matches[1:] {
		if len(candidates) == maxCandidates {
			break
		}
		candidates = append(candidates, h.catalog.Products[m.Index].Candidate(confidence(m.Score)))
	}

	h.log.Infow("identified",
		"filename", header.Filename,
		"primary", primary.DisplayName(),
		"confidence", primary.Confidence,
		"bytes", size,
	)

	c.JSON(http.StatusOK, domain.IdentifyResult{
		Primary:    primary,
		Candidates: candidates,
		Notes:      "sandbox match on filename tokens: " + strings.Join(matches[0].MatchedTokens, ", "),
	})
}

// Offers returns catalog offers for the product closest to q
func (h *Handler) Offers(c *gin.Context) {
	var req offersQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidation(c, queryValidationItems(err)...)
		return
	}

	num := defaultOffers
	if req.Num != nil {
		num = *req.Num
	}

	q := h.preprocessor.Normalize(req.Q)
	offers := []domain.OfferItem{}
	if matches := h.matcher.Rank(q, h.documents); len(matches) > 0 {
		offers = h.catalog.Products[matches[0].Index].OfferItems()
	}
	if len(offers) > num {
		offers = offers[:num]
	}

	if req.IncludeMembership && !hasCostco(offers) {
		offers = append(offers, costcoFallback(q))
	}

	h.log.Infow("offers", "query", q, "count", len(offers), "include_membership", req.IncludeMembership)

	c.JSON(http.StatusOK, domain.OffersResult{Query: req.Q, Offers: offers})
}

// confidence maps a 0-100 match score to a two-decimal confidence
func confidence(score float64) float64 {
	return math.Round(score) / 100
}

func hasCostco(offers []domain.OfferItem) bool {
	for _, o := range offers {
		if domain.NormalizeRetailer(o.Source) == "Costco" {
			return true
		}
	}
	return false
}

// costcoFallback links to a Costco search so membership shoppers always see Costco
func costcoFallback(q string) domain.OfferItem {
	keyword := strings.TrimSpace(q)
	if keyword == "" {
		keyword = "product"
	}
	return domain.OfferItem{
		Title:  costcoOfferTitle,
		Source: "Costco",
		Link:   costcoSearchURL + url.QueryEscape(keyword),
	}
}

// queryValidationItems converts binding errors into validation detail items
func queryValidationItems(err error) []domain.ValidationItem {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		items := make([]domain.ValidationItem, 0, len(verrs))
		for _, fe := range verrs {
			items = append(items, domain.ValidationItem{
				Location: []domain.PathSegment{domain.KeySegment("query"), domain.KeySegment(queryParamName(fe.Field()))},
				Message:  validationMessage(fe),
				Kind:     validationKind(fe),
			})
		}
		return items
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return []domain.ValidationItem{{
			Location: []domain.PathSegment{domain.KeySegment("query")},
			Message:  fmt.Sprintf("value is not a valid number: %q", numErr.Num),
			Kind:     "type_error.integer",
		}}
	}

	return []domain.ValidationItem{{
		Location: []domain.PathSegment{domain.KeySegment("query")},
		Message:  err.Error(),
		Kind:     "value_error",
	}}
}

// queryParamName maps a bound struct field back to its query parameter
func queryParamName(field string) string {
	switch field {
	case "Q":
		return "q"
	case "Num":
		return "num"
	case "IncludeMembership":
		return "include_membership"
	case "Country":
		return "gl"
	case "Language":
		return "hl"
	default:
		return strings.ToLower(field)
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return "ensure this value is greater than or equal to " + fe.Param()
	case "max":
		return "ensure this value is less than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

func validationKind(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value_error.missing"
	case "min":
		return "value_error.number.not_ge"
	case "max":
		return "value_error.number.not_le"
	default:
		return "value_error"
	}
}

func respondDetail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

func respondValidation(c *gin.Context, items ...domain.ValidationItem) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": items})
}
