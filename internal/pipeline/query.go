package pipeline

import (
	"strings"

	"github.com/cliplens/match-cli/internal/model"
)

// queryAttributes are the fused attributes folded into the shopping query, in
// priority order. Color and material carry the most retrieval signal; fit and
// closure rarely appear in listing titles.
var queryAttributes = []string{
	"primary_color",
	"metal_color",
	"frame_color",
	"color",
	"material",
	"garment_type",
	"style",
	"pattern",
	"wash",
	"heel_height",
	"stone",
	"brand",
}

// BuildQuery assembles a shopping search query from the item name and the
// most distinctive fused attributes, capped at maxTerms attribute terms.
func BuildQuery(name string, profile *model.FusedProfile, maxTerms int) string {
	if profile == nil {
		return strings.TrimSpace(name)
	}
	if maxTerms <= 0 {
		maxTerms = defaultSearchTerms
	}

	terms := make([]string, 0, maxTerms+1)
	seen := map[string]bool{}

	lower := strings.ToLower(name)
	for _, attrName := range queryAttributes {
		if len(terms) >= maxTerms {
			break
		}
		fa, ok := profile.Known(attrName)
		if !ok {
			continue
		}
		s, ok := fa.Value.(string)
		if !ok {
			continue
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		// Skip terms already present in the product name itself.
		if strings.Contains(lower, s) {
			continue
		}
		seen[s] = true
		terms = append(terms, s)
	}

	parts := append(terms, strings.TrimSpace(name))
	return strings.Join(parts, " ")
}
