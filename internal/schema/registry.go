package schema

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed rubrics.yaml
var embeddedCatalog []byte

// defaultCategory is the fallback used when a category has no rubrics at all.
const defaultCategory = "general"

// catalogFile mirrors the YAML catalog layout.
type catalogFile struct {
	Families   map[string]map[string][]string `yaml:"families"`
	Categories []categoryEntry                `yaml:"categories"`
}

type categoryEntry struct {
	Name               string          `yaml:"name"`
	DefaultSubcategory string          `yaml:"default_subcategory"`
	Rules              []inferenceRule `yaml:"rules"`
	Rubrics            []rubricEntry   `yaml:"rubrics"`
}

type inferenceRule struct {
	Subcategory string   `yaml:"subcategory"`
	Keywords    []string `yaml:"keywords"`
}

type rubricEntry struct {
	Subcategory string           `yaml:"subcategory"`
	Attributes  []attributeEntry `yaml:"attributes"`
}

type attributeEntry struct {
	Name      string  `yaml:"name"`
	MaxPoints float64 `yaml:"max_points"`
	Critical  bool    `yaml:"critical"`
	Family    string  `yaml:"family,omitempty"`
}

// Registry is the read-only rubric catalog. Extending it to a new product
// type means adding a catalog entry, not code.
type Registry struct {
	rubrics  map[string]*Rubric
	ordered  []*Rubric
	defaults map[string]string // category -> default subcategory
	rules    map[string][]inferenceRule
}

// Load builds a Registry from the embedded catalog.
func Load() (*Registry, error) {
	return parse(embeddedCatalog)
}

// LoadFile builds a Registry from a YAML catalog on disk, overriding the
// embedded one.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "schema: read catalog")
	}
	return parse(data)
}

func parse(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "schema: unmarshal catalog")
	}

	reg := &Registry{
		rubrics:  make(map[string]*Rubric),
		defaults: make(map[string]string),
		rules:    make(map[string][]inferenceRule),
	}

	for _, cat := range file.Categories {
		if cat.Name == "" {
			return nil, eris.New("schema: category with empty name")
		}
		reg.defaults[cat.Name] = cat.DefaultSubcategory
		reg.rules[cat.Name] = cat.Rules

		for _, re := range cat.Rubrics {
			attrs := make([]Attribute, 0, len(re.Attributes))
			for _, ae := range re.Attributes {
				attr := Attribute{
					Name:      ae.Name,
					MaxPoints: ae.MaxPoints,
					Critical:  ae.Critical,
				}
				if ae.Family != "" {
					family, ok := file.Families[ae.Family]
					if !ok {
						return nil, eris.Errorf("schema: rubric %s/%s references unknown family %q",
							cat.Name, re.Subcategory, ae.Family)
					}
					attr.Family = family
				}
				attrs = append(attrs, attr)
			}
			rubric, err := NewRubric(cat.Name, re.Subcategory, attrs)
			if err != nil {
				return nil, err
			}
			if _, dup := reg.rubrics[rubric.Key()]; dup {
				return nil, eris.Errorf("schema: duplicate rubric %s", rubric.Key())
			}
			reg.rubrics[rubric.Key()] = rubric
			reg.ordered = append(reg.ordered, rubric)
		}

		if cat.DefaultSubcategory != "" {
			if _, ok := reg.rubrics[cat.Name+"/"+cat.DefaultSubcategory]; !ok {
				return nil, eris.Errorf("schema: category %s default subcategory %s has no rubric",
					cat.Name, cat.DefaultSubcategory)
			}
		}
	}

	if reg.Default() == nil {
		return nil, eris.New("schema: catalog has no general fallback rubric")
	}

	zap.L().Debug("schema: catalog loaded",
		zap.Int("rubrics", len(reg.ordered)),
		zap.Int("categories", len(reg.defaults)),
	)
	return reg, nil
}

// Get returns the rubric for (category, subcategory), or nil when the
// catalog has no entry. Callers that need a guaranteed rubric should use
// GetOrDefault.
func (reg *Registry) Get(category, subcategory string) *Rubric {
	return reg.rubrics[normalize(category)+"/"+normalize(subcategory)]
}

// GetOrDefault resolves a rubric with fallback: exact match, then the
// category's default subcategory, then the global general rubric. Never
// returns nil.
func (reg *Registry) GetOrDefault(category, subcategory string) *Rubric {
	category = normalize(category)
	subcategory = normalize(subcategory)

	if r := reg.rubrics[category+"/"+subcategory]; r != nil {
		return r
	}
	if def := reg.defaults[category]; def != "" {
		if r := reg.rubrics[category+"/"+def]; r != nil {
			zap.L().Debug("schema: falling back to category default",
				zap.String("category", category),
				zap.String("requested", subcategory),
				zap.String("default", def),
			)
			return r
		}
	}
	return reg.Default()
}

// InferSubcategory resolves a subcategory from free-text item name using the
// category's ordered keyword rules, falling back to the category default.
// Never fails: unknown categories resolve through the general rubric.
func (reg *Registry) InferSubcategory(name, category string) string {
	category = normalize(category)
	lower := strings.ToLower(name)

	for _, rule := range reg.rules[category] {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Subcategory
			}
		}
	}
	if def := reg.defaults[category]; def != "" {
		return def
	}
	return reg.defaults[defaultCategory]
}

// Default returns the global fallback rubric.
func (reg *Registry) Default() *Rubric {
	def := reg.defaults[defaultCategory]
	return reg.rubrics[defaultCategory+"/"+def]
}

// Rubrics returns all rubrics in catalog order.
func (reg *Registry) Rubrics() []*Rubric {
	return reg.ordered
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
