package shopapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/snapshop/shopkit/internal/domain"
)

// IsSuccess reports whether status is in [200, 300).
func IsSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// Classify returns nil for a 2xx status and a typed failure otherwise:
// *domain.RateLimitError for 429, *domain.ServerError for everything else.
func Classify(status int, body []byte) error {
	if IsSuccess(status) {
		return nil
	}

	env := DecodeErrorEnvelope(status, body)
	msg := env.Text()
	if strings.TrimSpace(msg) == "" {
		msg = genericMessage(status)
	}

	if status == http.StatusTooManyRequests {
		var retry *int
		if s, ok := env.(domain.StructuredEnvelope); ok {
			retry = s.RetryAfterSeconds
		}
		return &domain.RateLimitError{Message: msg, RetryAfterSeconds: retry, Envelope: env}
	}
	return &domain.ServerError{StatusCode: status, Message: msg, Envelope: env}
}

// DecodeErrorEnvelope never fails. It tries, in order: a {"detail": ...} envelope,
// the body as UTF-8 text, and finally a generic message naming the status.
func DecodeErrorEnvelope(status int, body []byte) domain.ErrorEnvelope {
	if env, ok := decodeDetail(body); ok {
		return env
	}
	if utf8.Valid(body) && len(bytes.TrimSpace(body)) > 0 {
		return domain.SimpleEnvelope{Message: string(body)}
	}
	return domain.SimpleEnvelope{Message: genericMessage(status)}
}

func genericMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed with status %d (%s)", status, text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// decodeDetail recognizes the three detail shapes: string, object, validation array.
func decodeDetail(body []byte) (domain.ErrorEnvelope, bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, false
	}
	raw := bytes.TrimSpace(top["detail"])
	if len(raw) == 0 {
		return nil, false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		return domain.SimpleEnvelope{Message: s}, true
	case '{':
		return decodeStructured(raw)
	case '[':
		return decodeValidation(raw)
	}
	return nil, false
}

func decodeStructured(raw json.RawMessage) (domain.ErrorEnvelope, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}

	env := domain.StructuredEnvelope{
		Message: firstString(obj, "message", "error"),
		Kind:    firstString(obj, "type", "code", "kind"),
	}
	if v, ok := obj["retry_after_seconds"]; ok {
		env.RetryAfterSeconds = parseSeconds(v)
	}
	return env, true
}

// validationWire mirrors one validation item; msg is mandatory.
type validationWire struct {
	Loc  []domain.PathSegment `json:"loc"`
	Msg  *string              `json:"msg"`
	Type string               `json:"type"`
}

func decodeValidation(raw json.RawMessage) (domain.ErrorEnvelope, bool) {
	var wire []validationWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, false
	}
	items := make([]domain.ValidationItem, 0, len(wire))
	for _, w := range wire {
		if w.Msg == nil {
			return nil, false
		}
		items = append(items, domain.ValidationItem{Location: w.Loc, Message: *w.Msg, Kind: w.Type})
	}
	return domain.ValidationEnvelope{Items: items}, true
}

// firstString returns the first key holding a non-empty JSON string.
func firstString(obj map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// parseSeconds accepts a JSON number or numeric string, rounding fractions up.
func parseSeconds(v json.RawMessage) *int {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return nil
	}
	n := int(math.Ceil(f))
	return &n
}
