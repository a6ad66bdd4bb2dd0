package slugs

import "strings"

// Resolution describes where a category or subcategory page lives.
type Resolution struct {
	Slug          string
	CategorySlug  string
	IsSubcategory bool
	IsCustom      bool
}

// Resolver computes composite slugs and parent backlinks for
// category/subcategory pairs. The catalog distinguishes predefined
// subcategories from free-text ones; a custom subcategory only changes the
// editor UI, never the derived slug.
type Resolver struct {
	generator *Generator
	catalog   map[string][]string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCatalog replaces the predefined subcategory catalog. Keys are
// category slugs, values are subcategory display names.
func WithCatalog(catalog map[string][]string) ResolverOption {
	return func(r *Resolver) {
		if catalog != nil {
			r.catalog = catalog
		}
	}
}

// NewResolver returns a Resolver backed by the supplied generator. A nil
// generator falls back to the default.
func NewResolver(generator *Generator, opts ...ResolverOption) *Resolver {
	if generator == nil {
		generator = NewGenerator()
	}
	r := &Resolver{
		generator: generator,
		catalog:   DefaultCatalog(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve maps a category name, and optionally a subcategory name, to the
// canonical slug plus the parent backlink for subcategory records.
func (r *Resolver) Resolve(categoryName, subcategoryName string) (Resolution, error) {
	categorySlug, err := r.generator.Slugify(categoryName)
	if err != nil {
		return Resolution{}, err
	}
	if strings.TrimSpace(subcategoryName) == "" {
		return Resolution{Slug: categorySlug}, nil
	}
	composite, err := r.generator.CompositeSlug(categoryName, subcategoryName)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{
		Slug:          composite,
		CategorySlug:  categorySlug,
		IsSubcategory: true,
		IsCustom:      !r.inCatalog(categorySlug, subcategoryName),
	}, nil
}

// Subcategories returns the predefined subcategory names for a category
// slug, or nil when the category has no catalog entry.
func (r *Resolver) Subcategories(categorySlug string) []string {
	names, ok := r.catalog[categorySlug]
	if !ok {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func (r *Resolver) inCatalog(categorySlug, subcategoryName string) bool {
	names, ok := r.catalog[categorySlug]
	if !ok {
		return false
	}
	target := strings.ToLower(strings.TrimSpace(subcategoryName))
	for _, name := range names {
		if strings.ToLower(name) == target {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the predefined subcategories per category slug.
func DefaultCatalog() map[string][]string {
	return map[string][]string{
		"accountant-tasks": {
			"Financial Modelling",
			"Bookkeeping",
			"Payroll",
			"Tax Preparation",
			"Auditing",
		},
		"accounting": {
			"Financial Modelling",
			"Bookkeeping",
			"Payroll",
			"Tax Preparation",
			"Auditing",
		},
	}
}
