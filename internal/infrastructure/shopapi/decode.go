package shopapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/snapshop/shopkit/internal/domain"
)

const (
	endpointIdentify = "identify"
	endpointOffers   = "offers"
	endpointHealth   = "health"
	endpointVersion  = "version"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeIdentify decodes a 2xx identify body. Unknown fields are ignored;
// missing required fields and type mismatches yield *domain.DecodingError.
func DecodeIdentify(body []byte) (*domain.IdentifyResult, error) {
	var wire identifyWire
	if err := decodeStrict(endpointIdentify, body, &wire); err != nil {
		return nil, err
	}
	return mapIdentify(&wire), nil
}

// DecodeOffers decodes a 2xx offers body. The raw payload is kept opaque.
func DecodeOffers(body []byte) (*domain.OffersResult, error) {
	var wire offersWire
	if err := decodeStrict(endpointOffers, body, &wire); err != nil {
		return nil, err
	}
	return mapOffers(&wire), nil
}

// DecodeHealth decodes the /health body.
func DecodeHealth(body []byte) (*domain.HealthStatus, error) {
	var wire healthWire
	if err := decodeStrict(endpointHealth, body, &wire); err != nil {
		return nil, err
	}
	return &domain.HealthStatus{OK: *wire.OK}, nil
}

// DecodeVersion decodes the /version body.
func DecodeVersion(body []byte) (*domain.VersionInfo, error) {
	var wire versionWire
	if err := decodeStrict(endpointVersion, body, &wire); err != nil {
		return nil, err
	}
	info := &domain.VersionInfo{Version: *wire.Version}
	if wire.Build != nil {
		info.Build = *wire.Build
	}
	return info, nil
}

func decodeStrict(endpoint string, body []byte, dst interface{}) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return &domain.DecodingError{Endpoint: endpoint, Detail: describeJSONError(err), Cause: err}
	}
	if err := validate.Struct(dst); err != nil {
		return &domain.DecodingError{Endpoint: endpoint, Detail: describeValidationError(err), Cause: err}
	}
	return nil
}

func describeJSONError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return fmt.Sprintf("field %s: expected %s, got JSON %s", field, typeErr.Type, typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)
	}
	return err.Error()
}

func describeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		// Drop the wire struct's type name.
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("missing required field %s", path))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("field %s failed %s", path, fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
