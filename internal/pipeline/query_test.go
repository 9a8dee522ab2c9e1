package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cliplens/match-cli/internal/model"
)

func profileWith(attrs map[string]any) *model.FusedProfile {
	fused := make(map[string]model.FusedAttribute, len(attrs))
	for k, v := range attrs {
		fused[k] = model.FusedAttribute{Value: v, Confidence: 0.9, Known: true}
	}
	return &model.FusedProfile{Attributes: fused}
}

func TestBuildQuery_FoldsDistinctiveAttributes(t *testing.T) {
	t.Parallel()

	profile := profileWith(map[string]any{
		"primary_color": "olive",
		"material":      "knit",
		"fit":           "oversized", // not a query attribute
	})

	query := BuildQuery("crew neck sweater", profile, 5)

	assert.Contains(t, query, "olive")
	assert.Contains(t, query, "knit")
	assert.Contains(t, query, "crew neck sweater")
	assert.NotContains(t, query, "oversized")
	// Item name comes last.
	assert.True(t, strings.HasSuffix(query, "crew neck sweater"))
}

func TestBuildQuery_SkipsTermsAlreadyInName(t *testing.T) {
	t.Parallel()

	profile := profileWith(map[string]any{"primary_color": "olive"})
	query := BuildQuery("olive cardigan", profile, 5)

	assert.Equal(t, "olive cardigan", query)
}

func TestBuildQuery_CapsTermCount(t *testing.T) {
	t.Parallel()

	profile := profileWith(map[string]any{
		"primary_color": "olive",
		"material":      "knit",
		"garment_type":  "sweater",
		"pattern":       "striped",
		"style":         "preppy",
	})

	query := BuildQuery("top", profile, 2)
	terms := strings.Fields(query)

	// 2 attribute terms plus the item name.
	assert.Len(t, terms, 3)
}

func TestBuildQuery_UnknownAndNonStringIgnored(t *testing.T) {
	t.Parallel()

	profile := profileWith(map[string]any{"heel_height": 3.5})
	profile.Attributes["primary_color"] = model.FusedAttribute{Known: false}

	query := BuildQuery("strappy heels", profile, 5)
	assert.Equal(t, "strappy heels", query)
}

func TestBuildQuery_NilProfile(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "red scarf", BuildQuery(" red scarf ", nil, 5))
}
