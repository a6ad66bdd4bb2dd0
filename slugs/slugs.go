package slugs

import (
	"errors"
	"strings"

	"github.com/goliatone/go-slug"
)

// ErrInvalidName indicates a name that produces an empty slug after
// normalization.
var ErrInvalidName = errors.New("slugs: invalid name")

// Normalizer exposes the slug normalizer interface.
type Normalizer = slug.Normalizer

// defaultSuffixTokens are trimmed from names when suffix stripping is
// enabled and when computing the display base name.
var defaultSuffixTokens = []string{"tasks"}

// Generator turns category and subcategory names into canonical URL slugs.
type Generator struct {
	normalizer   Normalizer
	stripSuffix  bool
	suffixTokens []string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithNormalizer replaces the default slug normalizer.
func WithNormalizer(n Normalizer) GeneratorOption {
	return func(g *Generator) {
		if n != nil {
			g.normalizer = n
		}
	}
}

// WithSuffixStripping makes Slugify drop a trailing display token such as
// "Tasks" before normalizing. The stored name keeps the token; only the
// slug changes. Supplying no tokens keeps the defaults.
func WithSuffixStripping(tokens ...string) GeneratorOption {
	return func(g *Generator) {
		g.stripSuffix = true
		if len(tokens) > 0 {
			g.suffixTokens = normalizeTokens(tokens)
		}
	}
}

// NewGenerator returns a Generator backed by the default normalizer.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		normalizer:   slug.Default(),
		suffixTokens: defaultSuffixTokens,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Slugify normalizes a display name into a URL slug.
func (g *Generator) Slugify(name string) (string, error) {
	candidate := strings.TrimSpace(name)
	if g.stripSuffix {
		candidate = trimSuffixToken(candidate, g.suffixTokens)
	}
	if candidate == "" {
		return "", ErrInvalidName
	}
	normalized, err := g.normalizer.Normalize(candidate)
	if err != nil {
		return "", errors.Join(ErrInvalidName, err)
	}
	if normalized == "" {
		return "", ErrInvalidName
	}
	return normalized, nil
}

// CompositeSlug produces the nested "category/subcategory" slug form.
func (g *Generator) CompositeSlug(categoryName, subcategoryName string) (string, error) {
	parent, err := g.Slugify(categoryName)
	if err != nil {
		return "", err
	}
	child, err := g.Slugify(subcategoryName)
	if err != nil {
		return "", err
	}
	return parent + "/" + child, nil
}

// BaseName strips the trailing display token ("Accountant Tasks" ->
// "Accountant") for use inside derivation templates. The full name is
// returned unchanged when no token matches.
func (g *Generator) BaseName(name string) string {
	trimmed := strings.TrimSpace(name)
	base := trimSuffixToken(trimmed, g.suffixTokens)
	if base == "" {
		return trimmed
	}
	return base
}

// IsValid reports whether value matches the wire slug format
// "segment" or "segment/segment" with lowercase alphanumerics and hyphens.
func IsValid(value string) bool {
	if value == "" {
		return false
	}
	segments := strings.Split(value, "/")
	if len(segments) > 2 {
		return false
	}
	for _, segment := range segments {
		if segment == "" || !slug.IsValid(segment) {
			return false
		}
	}
	return true
}

func trimSuffixToken(value string, tokens []string) string {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return value
	}
	last := strings.ToLower(fields[len(fields)-1])
	for _, token := range tokens {
		if last == token {
			return strings.Join(fields[:len(fields)-1], " ")
		}
	}
	return value
}

func normalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			out = append(out, token)
		}
	}
	if len(out) == 0 {
		return defaultSuffixTokens
	}
	return out
}
