package shopapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/snapshop/shopkit/internal/domain"
)

const (
	identifyPath = "v1/identify"
	offersPath   = "v1/offers"

	// imageField is the multipart part name the backend expects
	imageField      = "image"
	defaultFilename = "upload.jpg"

	// maxBoundaryAttempts bounds the search for a boundary absent from the payload
	maxBoundaryAttempts = 8

	DefaultNumResults = 20
	MinNumResults     = 1
	MaxNumResults     = 50
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Request is a fully built outbound call. Body is nil for GET requests.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Query returns the request's query parameters.
func (r *Request) Query() url.Values {
	u, err := url.Parse(r.URL)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}

// RequestBuilder constructs identify and offers requests against one base address.
// It holds no mutable state and is safe for concurrent use.
type RequestBuilder struct {
	baseURL     *url.URL
	defaultNum  int
	maxNum      int
	country     string
	language    string
	newBoundary func() string
	now         func() time.Time
}

// BuilderConfig holds the request defaults applied by a RequestBuilder
type BuilderConfig struct {
	DefaultNumResults int
	MaxNumResults     int
	Country           string
	Language          string
}

// NewRequestBuilder validates baseURL and returns a builder for it.
func NewRequestBuilder(baseURL string, cfg BuilderConfig) (*RequestBuilder, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, &domain.InvalidRequestError{Reason: fmt.Sprintf("parse base url %q", baseURL), Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &domain.InvalidRequestError{Reason: fmt.Sprintf("base url %q must be http or https", baseURL)}
	}
	if u.Host == "" {
		return nil, &domain.InvalidRequestError{Reason: fmt.Sprintf("base url %q has no host", baseURL)}
	}

	maxNum := cfg.MaxNumResults
	if maxNum < MinNumResults {
		maxNum = MaxNumResults
	}
	defaultNum := cfg.DefaultNumResults
	if defaultNum < MinNumResults {
		defaultNum = DefaultNumResults
	}

	return &RequestBuilder{
		baseURL:     u,
		defaultNum:  clamp(defaultNum, MinNumResults, maxNum),
		maxNum:      maxNum,
		country:     cfg.Country,
		language:    cfg.Language,
		newBoundary: newUUIDBoundary,
		now:         time.Now,
	}, nil
}

// Identify builds the multipart image upload. An empty mimeType is sniffed from the payload.
func (b *RequestBuilder) Identify(image []byte, filename, mimeType string) (*Request, error) {
	if len(image) == 0 {
		return nil, &domain.EncodingError{Reason: "image payload is empty"}
	}
	if strings.TrimSpace(filename) == "" {
		filename = defaultFilename
	}
	if strings.TrimSpace(mimeType) == "" {
		detected := mimetype.Detect(image)
		if !strings.HasPrefix(detected.String(), "image/") {
			return nil, &domain.EncodingError{Reason: fmt.Sprintf("payload is %s, not an image", detected.String())}
		}
		mimeType = detected.String()
	}

	boundary, err := b.boundaryFor(image)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, &domain.EncodingError{Reason: "set multipart boundary", Cause: err}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, imageField, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, &domain.EncodingError{Reason: "create image part", Cause: err}
	}
	if _, err := part.Write(image); err != nil {
		return nil, &domain.EncodingError{Reason: "write image part", Cause: err}
	}
	if err := w.Close(); err != nil {
		return nil, &domain.EncodingError{Reason: "close multipart body", Cause: err}
	}

	params := url.Values{}
	params.Set("ts", b.timestamp())

	header := make(http.Header)
	header.Set("Content-Type", w.FormDataContentType())
	header.Set("Accept", "application/json")

	return &Request{
		Method: http.MethodPost,
		URL:    b.endpoint(identifyPath, params),
		Header: header,
		Body:   body.Bytes(),
	}, nil
}

// Offers builds the offer search. NumResults is silently clamped to the configured range.
func (b *RequestBuilder) Offers(query string, opts domain.OffersOptions) (*Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.EncodingError{Reason: "canonical query is empty"}
	}

	num := opts.NumResults
	if num == 0 {
		num = b.defaultNum
	}
	num = clamp(num, MinNumResults, b.maxNum)

	country := firstNonEmpty(opts.Country, b.country)
	language := firstNonEmpty(opts.Language, b.language)

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	if country != "" {
		params.Set("gl", country)
	}
	if language != "" {
		params.Set("hl", language)
	}
	params.Set("include_membership", strconv.FormatBool(opts.IncludeMembership))
	params.Set("ts", b.timestamp())

	header := make(http.Header)
	header.Set("Accept", "application/json")

	return &Request{
		Method: http.MethodGet,
		URL:    b.endpoint(offersPath, params),
		Header: header,
	}, nil
}

// Meta builds a GET for one of the unversioned meta routes ("health", "version").
func (b *RequestBuilder) Meta(path string) *Request {
	header := make(http.Header)
	header.Set("Accept", "application/json")
	return &Request{
		Method: http.MethodGet,
		URL:    b.endpoint(path, nil),
		Header: header,
	}
}

// boundaryFor picks a boundary that does not occur inside the payload.
func (b *RequestBuilder) boundaryFor(payload []byte) (string, error) {
	for attempt := 0; attempt < maxBoundaryAttempts; attempt++ {
		candidate := b.newBoundary()
		if !bytes.Contains(payload, []byte(candidate)) {
			return candidate, nil
		}
	}
	return "", &domain.EncodingError{Reason: fmt.Sprintf("no collision-free multipart boundary after %d attempts", maxBoundaryAttempts)}
}

func (b *RequestBuilder) endpoint(path string, params url.Values) string {
	u := b.baseURL.JoinPath(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (b *RequestBuilder) timestamp() string {
	return strconv.FormatInt(b.now().UnixMilli(), 10)
}

func newUUIDBoundary() string {
	return "shopkit-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
