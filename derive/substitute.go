package derive

import (
	"regexp"
	"strings"

	"github.com/extrahand/taskpages/fields"
)

// replacement is one compiled substitution rule. Rules run in order, so
// longer patterns (full names, phrases) must be compiled first.
type replacement struct {
	pattern *regexp.Regexp
	with    string
}

type substituter struct {
	rules []replacement
}

// substituter builds the ordered rule set for a name change: the old full
// name maps to the new full name, the old base name and every synonym map
// to the new base name. Matching is case-insensitive on word boundaries,
// mirroring how the public page rewrote seeded copy.
func (e *Engine) substituter(oldCtx, newCtx TemplateContext) substituter {
	// An unchanged name has nothing to substitute. Building synonym rules
	// here would rewrite overrides even though no rename happened.
	if strings.EqualFold(oldCtx.Name, newCtx.Name) && strings.EqualFold(oldCtx.Base(), newCtx.Base()) {
		return substituter{}
	}

	var rules []replacement

	add := func(pattern, with string) {
		pattern = strings.TrimSpace(pattern)
		with = strings.TrimSpace(with)
		if pattern == "" || with == "" || strings.EqualFold(pattern, with) {
			return
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(pattern) + `\b`)
		if err != nil {
			return
		}
		rules = append(rules, replacement{pattern: re, with: with})
	}

	add(oldCtx.Name, newCtx.Name)
	for _, synonym := range e.synonyms {
		if synonym.Phrase {
			add(synonym.Pattern, newCtx.Base())
		}
	}
	add(oldCtx.Base(), newCtx.Base())
	for _, synonym := range e.synonyms {
		if !synonym.Phrase {
			add(synonym.Pattern, newCtx.Base())
		}
	}

	return substituter{rules: rules}
}

// apply substitutes inside strings and walks structured values
// element-wise. Values without occurrences are returned untouched.
func (s substituter) apply(data any) (any, bool) {
	return s.walk(fields.Normalize(data))
}

func (s substituter) walk(data any) (any, bool) {
	switch value := data.(type) {
	case string:
		return s.replace(value)
	case []any:
		changed := false
		out := make([]any, len(value))
		for i, item := range value {
			replaced, itemChanged := s.walk(item)
			out[i] = replaced
			changed = changed || itemChanged
		}
		if !changed {
			return value, false
		}
		return out, true
	case map[string]any:
		changed := false
		out := make(map[string]any, len(value))
		for key, item := range value {
			replaced, itemChanged := s.walk(item)
			out[key] = replaced
			changed = changed || itemChanged
		}
		if !changed {
			return value, false
		}
		return out, true
	default:
		return value, false
	}
}

func (s substituter) replace(value string) (string, bool) {
	out := value
	for _, rule := range s.rules {
		out = rule.pattern.ReplaceAllLiteralString(out, rule.with)
	}
	return out, out != value
}
