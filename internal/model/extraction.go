package model

import "strings"

// AttributeValue is a single extracted value for a named attribute. The value
// is a string, bool, or number as produced by the vision model. The
// confidence is inherited from the observation that supplied it.
type AttributeValue struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ExtractionRecord is one observation of one item: a single video frame or a
// single candidate listing image. Immutable once produced by the vision
// model.
type ExtractionRecord struct {
	Source      string                    `json:"source"` // frame index or candidate id
	Category    string                    `json:"category"`
	Subcategory string                    `json:"subcategory"`
	Attributes  map[string]AttributeValue `json:"attributes"`
	Confidence  float64                   `json:"confidence"`
}

// placeholders are values the vision model emits when it cannot see
// an attribute. They are treated the same as an absent attribute.
var placeholders = map[string]bool{
	"unknown":     true,
	"not_visible": true,
	"not visible": true,
	"n/a":         true,
	"none":        true,
	"":            true,
}

// IsPlaceholder reports whether v carries no real information.
func IsPlaceholder(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}

// Lookup returns the attribute value for name, or false if the record does
// not carry a usable (non-placeholder) value for it.
func (r *ExtractionRecord) Lookup(name string) (AttributeValue, bool) {
	if r == nil {
		return AttributeValue{}, false
	}
	av, ok := r.Attributes[name]
	if !ok || IsPlaceholder(av.Value) {
		return AttributeValue{}, false
	}
	return av, true
}
