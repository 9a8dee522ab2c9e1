// Package schema holds the static rubric catalog: per-subcategory attribute
// lists, weights, critical flags, and fuzzy-family tables. The catalog is
// loaded once at startup and is safe for concurrent readers.
package schema

import (
	"math"

	"github.com/rotisserie/eris"
)

// rubricTotal is the declared point total every rubric must sum to.
const rubricTotal = 100.0

// Attribute is one scored attribute of a rubric.
type Attribute struct {
	Name      string
	MaxPoints float64
	Critical  bool
	// Family maps a semantic family name to its member values, e.g.
	// "green" -> [olive, sage, emerald]. Nil for attributes without
	// fuzzy matching.
	Family map[string][]string
}

// Rubric is the scoring contract for one (category, subcategory) pair.
// Attribute order is the declared weight order and is preserved from the
// catalog file.
type Rubric struct {
	Category    string
	Subcategory string
	Attributes  []Attribute

	byName map[string]*Attribute
}

// Key returns the "category/subcategory" lookup key.
func (r *Rubric) Key() string {
	return r.Category + "/" + r.Subcategory
}

// Attribute returns the named attribute, or nil.
func (r *Rubric) Attribute(name string) *Attribute {
	if r == nil {
		return nil
	}
	return r.byName[name]
}

// Total returns the sum of max points across all attributes.
func (r *Rubric) Total() float64 {
	var sum float64
	for _, a := range r.Attributes {
		sum += a.MaxPoints
	}
	return sum
}

// AttributeNames returns attribute names in declared order.
func (r *Rubric) AttributeNames() []string {
	names := make([]string, len(r.Attributes))
	for i, a := range r.Attributes {
		names[i] = a.Name
	}
	return names
}

// Validate checks the rubric invariants: non-empty attribute list, positive
// weights, unique names, and weights summing to the declared total.
func (r *Rubric) Validate() error {
	if len(r.Attributes) == 0 {
		return eris.Errorf("schema: rubric %s has no attributes", r.Key())
	}
	seen := make(map[string]bool, len(r.Attributes))
	for _, a := range r.Attributes {
		if a.Name == "" {
			return eris.Errorf("schema: rubric %s has an unnamed attribute", r.Key())
		}
		if seen[a.Name] {
			return eris.Errorf("schema: rubric %s lists %s twice", r.Key(), a.Name)
		}
		seen[a.Name] = true
		if a.MaxPoints <= 0 {
			return eris.Errorf("schema: rubric %s attribute %s has non-positive weight", r.Key(), a.Name)
		}
	}
	if total := r.Total(); math.Abs(total-rubricTotal) > 1e-9 {
		return eris.Errorf("schema: rubric %s weights sum to %.1f, want %.0f", r.Key(), total, rubricTotal)
	}
	return nil
}

// NewRubric builds a validated, indexed rubric from an attribute list. The
// catalog loader uses it; callers assembling rubrics programmatically can too.
func NewRubric(category, subcategory string, attrs []Attribute) (*Rubric, error) {
	r := &Rubric{
		Category:    category,
		Subcategory: subcategory,
		Attributes:  attrs,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.index()
	return r, nil
}

func (r *Rubric) index() {
	r.byName = make(map[string]*Attribute, len(r.Attributes))
	for i := range r.Attributes {
		r.byName[r.Attributes[i].Name] = &r.Attributes[i]
	}
}
