package derive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/extrahand/taskpages/fields"
	"github.com/extrahand/taskpages/internal/logging"
	"github.com/extrahand/taskpages/pkg/interfaces"
)

var (
	// ErrEmptySpec indicates a derivation spec without templates.
	ErrEmptySpec = errors.New("derive: spec has no templates")
	// ErrDuplicatePath indicates two templates registered for one path.
	ErrDuplicatePath = errors.New("derive: duplicate template path")
	// ErrNilTemplate indicates a template entry without a function.
	ErrNilTemplate = errors.New("derive: nil template function")
	// ErrSynonymOrder indicates a single-word synonym listed before a
	// phrase that contains it, which would corrupt phrase substitution.
	ErrSynonymOrder = errors.New("derive: phrase synonym listed after component word")
)

// TemplateContext carries the naming inputs templates derive from.
// BaseName is the display name without the trailing "Tasks" token.
type TemplateContext struct {
	Name     string
	BaseName string
	Location string
}

// Base returns the best display form for templated copy.
func (c TemplateContext) Base() string {
	if b := strings.TrimSpace(c.BaseName); b != "" {
		return b
	}
	return strings.TrimSpace(c.Name)
}

// Place returns the location with the default market fallback.
func (c TemplateContext) Place() string {
	if l := strings.TrimSpace(c.Location); l != "" {
		return l
	}
	return DefaultLocation
}

// TemplateFn computes a field's derived value. A nil return means the
// value cannot be computed from the given context; the engine keeps the
// previous value and reports the path as skipped.
type TemplateFn func(ctx TemplateContext) any

// FieldTemplate binds a field path to its template function.
type FieldTemplate struct {
	Path string
	Fn   TemplateFn
}

// Spec is the ordered set of derivable fields. Order controls both the
// storage order of freshly derived maps and the rendered section order.
type Spec struct {
	templates []FieldTemplate
	byPath    map[string]TemplateFn
}

// NewSpec validates and builds a Spec.
func NewSpec(templates []FieldTemplate) (*Spec, error) {
	if len(templates) == 0 {
		return nil, ErrEmptySpec
	}
	byPath := make(map[string]TemplateFn, len(templates))
	for _, tpl := range templates {
		path := strings.TrimSpace(tpl.Path)
		if path == "" || tpl.Fn == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilTemplate, tpl.Path)
		}
		if _, exists := byPath[path]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, path)
		}
		byPath[path] = tpl.Fn
	}
	return &Spec{templates: templates, byPath: byPath}, nil
}

// Templates returns the ordered template list.
func (s *Spec) Templates() []FieldTemplate {
	out := make([]FieldTemplate, len(s.templates))
	copy(out, s.templates)
	return out
}

// Template returns the function registered for path.
func (s *Spec) Template(path string) (TemplateFn, bool) {
	fn, ok := s.byPath[path]
	return fn, ok
}

// Synonym is one substitution pattern. Phrase patterns span multiple words
// and must be listed before their component words.
type Synonym struct {
	Pattern string
	Phrase  bool
}

// ValidateSynonyms enforces the phrase-before-word ordering rule.
func ValidateSynonyms(list []Synonym) error {
	for i, candidate := range list {
		if candidate.Phrase {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(candidate.Pattern))
		for _, later := range list[i+1:] {
			if !later.Phrase {
				continue
			}
			for _, part := range strings.Fields(strings.ToLower(later.Pattern)) {
				if part == word {
					return fmt.Errorf("%w: %q before %q", ErrSynonymOrder, candidate.Pattern, later.Pattern)
				}
			}
		}
	}
	return nil
}

// Result reports which field paths a derivation pass touched and which it
// could not compute.
type Result struct {
	Changed []string
	Skipped []string
}

func (r *Result) changed(path string) { r.Changed = append(r.Changed, path) }
func (r *Result) skipped(path string) { r.Skipped = append(r.Skipped, path) }

// Engine recomputes derived fields on name changes without clobbering
// editor overrides.
type Engine struct {
	spec     *Spec
	synonyms []Synonym
	logger   interfaces.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger to the engine.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an Engine from a spec and an ordered synonym table.
func New(spec *Spec, synonyms []Synonym, opts ...Option) (*Engine, error) {
	if spec == nil {
		return nil, ErrEmptySpec
	}
	if err := ValidateSynonyms(synonyms); err != nil {
		return nil, err
	}
	e := &Engine{
		spec:     spec,
		synonyms: synonyms,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Initialize derives every templated field fresh, in spec order.
func (e *Engine) Initialize(m *fields.Map, ctx TemplateContext) Result {
	var result Result
	for _, tpl := range e.spec.templates {
		value := tpl.Fn(ctx)
		if value == nil {
			result.skipped(tpl.Path)
			continue
		}
		m.Set(tpl.Path, fields.Derived(value))
		result.changed(tpl.Path)
	}
	return result
}

// ApplyNameChange reconciles every templated field after the entity's name
// changed. Derived fields are recomputed from the new context; overridden
// fields receive a targeted substitution of the old name and its synonyms,
// never a wholesale replacement.
func (e *Engine) ApplyNameChange(m *fields.Map, oldCtx, newCtx TemplateContext) Result {
	var result Result
	sub := e.substituter(oldCtx, newCtx)
	for _, tpl := range e.spec.templates {
		current, exists := m.Get(tpl.Path)
		if !exists || !current.IsOverridden() {
			value := tpl.Fn(newCtx)
			if value == nil {
				result.skipped(tpl.Path)
				continue
			}
			if exists && fields.Equal(current.Data, value) {
				continue
			}
			m.Set(tpl.Path, fields.Derived(value))
			result.changed(tpl.Path)
			continue
		}
		replaced, changed := sub.apply(current.Data)
		if !changed {
			continue
		}
		m.Set(tpl.Path, fields.Overridden(replaced))
		result.changed(tpl.Path)
	}
	e.logger.Debug("derive.name_change",
		"changed", len(result.Changed),
		"skipped", len(result.Skipped),
	)
	return result
}

// ApplySubcategory re-runs the engine with the subcategory name as the
// substitution target, using the parent category's values as the baseline.
func (e *Engine) ApplySubcategory(m *fields.Map, parent, sub TemplateContext) Result {
	return e.ApplyNameChange(m, parent, sub)
}

// Override stores an editor-supplied value. Provenance flips to OVERRIDDEN
// only when the value differs from what the engine would derive; once
// overridden a field stays overridden.
func (e *Engine) Override(m *fields.Map, path string, value any, ctx TemplateContext) bool {
	if current, ok := m.Get(path); ok && current.IsOverridden() {
		m.Set(path, fields.Overridden(value))
		return true
	}
	if fn, ok := e.spec.Template(path); ok {
		if expected := fn(ctx); expected != nil && fields.Equal(value, expected) {
			m.Set(path, fields.Derived(value))
			return false
		}
	}
	m.Set(path, fields.Overridden(value))
	return true
}
