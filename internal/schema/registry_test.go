package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	t.Parallel()

	reg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Rubrics())
}

func TestLoad_AllRubricsSumTo100(t *testing.T) {
	t.Parallel()

	reg, err := Load()
	require.NoError(t, err)

	for _, r := range reg.Rubrics() {
		assert.InDelta(t, 100.0, r.Total(), 1e-9, "rubric %s", r.Key())
		assert.NoError(t, r.Validate(), "rubric %s", r.Key())
	}
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	reg, err := Load()
	require.NoError(t, err)

	r := reg.Get("fashion", "tops")
	require.NotNil(t, r)
	assert.Equal(t, "fashion/tops", r.Key())

	assert.Nil(t, reg.Get("fashion", "spacesuits"))
	assert.Nil(t, reg.Get("vehicles", "tops"))

	// Lookup is case-insensitive.
	assert.NotNil(t, reg.Get("Fashion", " Tops "))
}

func TestRegistry_GetOrDefault(t *testing.T) {
	t.Parallel()

	reg, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name        string
		category    string
		subcategory string
		wantKey     string
	}{
		{"exact match", "fashion", "dresses", "fashion/dresses"},
		{"unknown subcategory falls to category default", "fashion", "spacesuits", "fashion/tops"},
		{"unknown category falls to general", "vehicles", "sedans", "general/item"},
		{"empty falls to general", "", "", "general/item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reg.GetOrDefault(tt.category, tt.subcategory)
			require.NotNil(t, r)
			assert.Equal(t, tt.wantKey, r.Key())
		})
	}
}

func TestRegistry_InferSubcategory(t *testing.T) {
	t.Parallel()

	reg, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		item     string
		category string
		want     string
	}{
		{"dress keyword", "floral midi dress", "fashion", "dresses"},
		{"pant keyword", "high waisted mom jeans", "fashion", "pants"},
		{"outerwear keyword", "cropped denim jacket", "fashion", "outerwear"},
		{"boot keyword", "chelsea boots", "footwear", "boots"},
		{"no keyword falls to default", "mystery garment", "fashion", "tops"},
		{"unknown category falls to general default", "mystery thing", "vehicles", "item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.InferSubcategory(tt.item, tt.category))
		})
	}
}

func TestRegistry_FamiliesResolved(t *testing.T) {
	t.Parallel()

	reg, err := Load()
	require.NoError(t, err)

	r := reg.Get("fashion", "tops")
	require.NotNil(t, r)

	color := r.Attribute("primary_color")
	require.NotNil(t, color)
	assert.True(t, color.Critical)
	assert.NotEmpty(t, color.Family["green"])
}

func TestLoadFile_InvalidCatalogs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"weights do not sum",
			`
categories:
  - name: general
    default_subcategory: item
    rubrics:
      - subcategory: item
        attributes:
          - {name: type, max_points: 50, critical: true}
          - {name: color, max_points: 40}
`,
			"sum to",
		},
		{
			"unknown family reference",
			`
categories:
  - name: general
    default_subcategory: item
    rubrics:
      - subcategory: item
        attributes:
          - {name: color, max_points: 100, family: nonexistent}
`,
			"unknown family",
		},
		{
			"missing general fallback",
			`
categories:
  - name: fashion
    default_subcategory: tops
    rubrics:
      - subcategory: tops
        attributes:
          - {name: color, max_points: 100}
`,
			"general fallback",
		},
		{
			"duplicate rubric",
			`
categories:
  - name: general
    default_subcategory: item
    rubrics:
      - subcategory: item
        attributes:
          - {name: type, max_points: 100}
      - subcategory: item
        attributes:
          - {name: type, max_points: 100}
`,
			"duplicate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewRubric_Validates(t *testing.T) {
	t.Parallel()

	_, err := NewRubric("fashion", "tops", []Attribute{
		{Name: "color", MaxPoints: 60},
		{Name: "color", MaxPoints: 40},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}
