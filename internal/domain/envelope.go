package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ErrorEnvelope is the decoded backend error body. It is one of
// SimpleEnvelope, StructuredEnvelope or ValidationEnvelope.
type ErrorEnvelope interface {
	// Text renders the envelope as a human-readable message; empty when it carries none.
	Text() string
	envelope()
}

// SimpleEnvelope is a plain-string detail, or the raw body text when no envelope parsed.
type SimpleEnvelope struct {
	Message string
}

func (e SimpleEnvelope) Text() string { return e.Message }
func (SimpleEnvelope) envelope()      {}

// StructuredEnvelope is an object detail. Empty strings mean the field was absent.
type StructuredEnvelope struct {
	Message           string
	Kind              string
	RetryAfterSeconds *int
}

func (e StructuredEnvelope) Text() string { return e.Message }
func (StructuredEnvelope) envelope()      {}

// ValidationEnvelope is an array detail of per-field validation failures.
type ValidationEnvelope struct {
	Items []ValidationItem
}

// Text renders one "loc.path: message" line per item.
func (e ValidationEnvelope) Text() string {
	lines := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		lines = append(lines, item.String())
	}
	return strings.Join(lines, "\n")
}

func (ValidationEnvelope) envelope() {}

// ValidationItem is one entry of a validation detail array.
type ValidationItem struct {
	Location []PathSegment `json:"loc"`
	Message  string        `json:"msg"`
	Kind     string        `json:"type"`
}

func (v ValidationItem) String() string {
	if len(v.Location) == 0 {
		return v.Message
	}
	parts := make([]string, len(v.Location))
	for i, seg := range v.Location {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".") + ": " + v.Message
}

// PathSegment is a location component: an object key or an array index.
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment builds an object-key segment.
func KeySegment(key string) PathSegment { return PathSegment{Key: key} }

// IndexSegment builds an array-index segment.
func IndexSegment(i int) PathSegment { return PathSegment{Index: i, IsIndex: true} }

func (p PathSegment) String() string {
	if p.IsIndex {
		return strconv.Itoa(p.Index)
	}
	return p.Key
}

// UnmarshalJSON accepts a JSON string or an integral JSON number.
func (p *PathSegment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = KeySegment(s)
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("location segment %s is neither string nor integer", data)
	}
	*p = IndexSegment(n)
	return nil
}

// MarshalJSON writes the segment back in its wire form.
func (p PathSegment) MarshalJSON() ([]byte, error) {
	if p.IsIndex {
		return []byte(strconv.Itoa(p.Index)), nil
	}
	return json.Marshal(p.Key)
}
