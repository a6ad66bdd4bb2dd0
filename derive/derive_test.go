package derive

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/extrahand/taskpages/fields"
)

func accountantCtx() TemplateContext {
	return TemplateContext{Name: "Accountant Tasks", BaseName: "Accountant"}
}

func plumberCtx() TemplateContext {
	return TemplateContext{Name: "Plumber Tasks", BaseName: "Plumber"}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New(DefaultSpec(), DefaultSynonyms())
	if err != nil {
		t.Fatalf("New engine: %v", err)
	}
	return engine
}

func TestInitializeDerivesSeedFields(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()

	result := engine.Initialize(m, accountantCtx())
	if len(result.Skipped) != 0 {
		t.Fatalf("expected no skipped paths, got %v", result.Skipped)
	}

	hero, ok := m.Get("heroTitle")
	if !ok {
		t.Fatal("expected heroTitle to be derived")
	}
	if got, _ := hero.String(); got != "Accountant tasks near you" {
		t.Fatalf("unexpected heroTitle %q", got)
	}
	if hero.IsOverridden() {
		t.Fatal("expected fresh derivation to be DERIVED")
	}

	title, _ := m.Get("staticTasksSectionTitle")
	if got, _ := title.String(); got != "Accountant tasks in India" {
		t.Fatalf("unexpected staticTasksSectionTitle %q", got)
	}

	keys := m.Keys()
	if keys[0] != "heroTitle" {
		t.Fatalf("expected template order to drive key order, got %v", keys[:3])
	}
}

func TestInitializeSkipsUncomputableFields(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()

	result := engine.Initialize(m, TemplateContext{})
	if len(result.Skipped) == 0 {
		t.Fatal("expected name-dependent paths to be skipped")
	}
	if _, ok := m.Get("heroTitle"); ok {
		t.Fatal("expected heroTitle to stay absent without a name")
	}
	// Static copy derives even without a name.
	if _, ok := m.Get("howToEarnTitle"); !ok {
		t.Fatal("expected static field to derive")
	}
}

func TestApplyNameChangeRecomputesDerivedFields(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	engine.Initialize(m, accountantCtx())

	result := engine.ApplyNameChange(m, accountantCtx(), plumberCtx())

	hero, _ := m.Get("heroTitle")
	if got, _ := hero.String(); got != "Plumber tasks near you" {
		t.Fatalf("unexpected heroTitle %q", got)
	}
	if hero.IsOverridden() {
		t.Fatal("expected recomputed field to stay DERIVED")
	}

	found := false
	for _, path := range result.Changed {
		if path == "heroTitle" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected heroTitle in changed paths, got %v", result.Changed)
	}
}

func TestApplyNameChangeSubstitutesInsideOverrides(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	engine.Initialize(m, accountantCtx())
	m.Set("heroTitle", fields.Overridden("Best accounting help in town"))

	engine.ApplyNameChange(m, accountantCtx(), plumberCtx())

	hero, _ := m.Get("heroTitle")
	if got, _ := hero.String(); got != "Best Plumber help in town" {
		t.Fatalf("expected targeted substitution, got %q", got)
	}
	if !hero.IsOverridden() {
		t.Fatal("expected provenance to stay OVERRIDDEN")
	}
}

func TestApplyNameChangeLeavesUnrelatedOverridesAlone(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	engine.Initialize(m, accountantCtx())
	m.Set("disclaimer", fields.Overridden("Custom legal wording with no category mention."))

	result := engine.ApplyNameChange(m, accountantCtx(), plumberCtx())

	disclaimer, _ := m.Get("disclaimer")
	if got, _ := disclaimer.String(); got != "Custom legal wording with no category mention." {
		t.Fatalf("expected override to be untouched, got %q", got)
	}
	for _, path := range result.Changed {
		if path == "disclaimer" {
			t.Fatal("expected disclaimer to not be reported as changed")
		}
	}
}

func TestApplyNameChangeWithSameNameIsIdempotent(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	engine.Initialize(m, accountantCtx())
	m.Set("heroTitle", fields.Overridden("Best accounting help in town"))

	before, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal before: %v", err)
	}

	result := engine.ApplyNameChange(m, accountantCtx(), accountantCtx())
	if len(result.Changed) != 0 {
		t.Fatalf("expected no changes for an unchanged name, got %v", result.Changed)
	}

	after, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal after: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("expected map to be untouched\nbefore: %s\nafter:  %s", before, after)
	}

	hero, _ := m.Get("heroTitle")
	if !hero.IsOverridden() {
		t.Fatal("expected provenance to stay OVERRIDDEN")
	}
}

func TestApplyNameChangeReplacesPhraseSynonymsFirst(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	engine.Initialize(m, accountantCtx())
	m.Set("heroDescription", fields.Overridden("Hire a bookkeeper or accountant today"))

	engine.ApplyNameChange(m, accountantCtx(), plumberCtx())

	desc, _ := m.Get("heroDescription")
	if got, _ := desc.String(); got != "Hire a Plumber today" {
		t.Fatalf("expected phrase-first substitution, got %q", got)
	}
}

func TestApplyNameChangeWalksStructuredFieldsElementWise(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	engine.Initialize(m, accountantCtx())
	m.Set("incomeOpportunitiesRows", fields.Overridden([]any{
		map[string]any{"jobType": "Accounting data entry", "1-2": "₹800", "3-5": "₹2,100", "5+": "₹3,200"},
		map[string]any{"jobType": "Editor-added row about gardening", "1-2": "₹500", "3-5": "₹900", "5+": "₹1,400"},
	}))

	engine.ApplyNameChange(m, accountantCtx(), plumberCtx())

	rows, _ := m.Get("incomeOpportunitiesRows")
	items := rows.Data.([]any)
	first := items[0].(map[string]any)
	if first["jobType"] != "Plumber data entry" {
		t.Fatalf("expected element-wise substitution, got %v", first["jobType"])
	}
	second := items[1].(map[string]any)
	if second["jobType"] != "Editor-added row about gardening" {
		t.Fatalf("expected appended row to survive, got %v", second["jobType"])
	}
	if !rows.IsOverridden() {
		t.Fatal("expected structured override to stay OVERRIDDEN")
	}
}

func TestApplySubcategoryUsesParentAsBaseline(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	engine.Initialize(m, accountantCtx())
	m.Set("questionsTitle", fields.Overridden("Everything about Accountant work"))

	sub := TemplateContext{Name: "Financial Modelling", BaseName: "Financial Modelling"}
	engine.ApplySubcategory(m, accountantCtx(), sub)

	hero, _ := m.Get("heroTitle")
	if got, _ := hero.String(); got != "Financial Modelling tasks near you" {
		t.Fatalf("unexpected heroTitle %q", got)
	}
	title, _ := m.Get("questionsTitle")
	if got, _ := title.String(); got != "Everything about Financial Modelling work" {
		t.Fatalf("unexpected questionsTitle %q", got)
	}
}

func TestOverrideFlipsProvenanceOnlyOnDifference(t *testing.T) {
	engine := newTestEngine(t)
	m := fields.NewMap()
	ctx := accountantCtx()
	engine.Initialize(m, ctx)

	if engine.Override(m, "heroTitle", "Accountant tasks near you", ctx) {
		t.Fatal("expected matching value to stay DERIVED")
	}
	hero, _ := m.Get("heroTitle")
	if hero.IsOverridden() {
		t.Fatal("expected provenance to stay DERIVED")
	}

	if !engine.Override(m, "heroTitle", "Custom title", ctx) {
		t.Fatal("expected differing value to flip provenance")
	}
	hero, _ = m.Get("heroTitle")
	if !hero.IsOverridden() {
		t.Fatal("expected provenance OVERRIDDEN after custom edit")
	}

	// Once overridden the flag is sticky, even for a derivable value.
	engine.Override(m, "heroTitle", "Accountant tasks near you", ctx)
	hero, _ = m.Get("heroTitle")
	if !hero.IsOverridden() {
		t.Fatal("expected provenance to stay OVERRIDDEN")
	}
}

func TestValidateSynonymsRejectsBadOrdering(t *testing.T) {
	bad := []Synonym{
		{Pattern: "accountant"},
		{Pattern: "bookkeeper or accountant", Phrase: true},
	}
	if err := ValidateSynonyms(bad); !errors.Is(err, ErrSynonymOrder) {
		t.Fatalf("expected ErrSynonymOrder, got %v", err)
	}
	if err := ValidateSynonyms(DefaultSynonyms()); err != nil {
		t.Fatalf("expected default synonyms to validate, got %v", err)
	}
}

func TestNewSpecValidation(t *testing.T) {
	if _, err := NewSpec(nil); !errors.Is(err, ErrEmptySpec) {
		t.Fatalf("expected ErrEmptySpec, got %v", err)
	}
	if _, err := NewSpec([]FieldTemplate{{Path: "a"}}); !errors.Is(err, ErrNilTemplate) {
		t.Fatalf("expected ErrNilTemplate, got %v", err)
	}
	tpl := func(TemplateContext) any { return "x" }
	if _, err := NewSpec([]FieldTemplate{{Path: "a", Fn: tpl}, {Path: "a", Fn: tpl}}); !errors.Is(err, ErrDuplicatePath) {
		t.Fatalf("expected ErrDuplicatePath, got %v", err)
	}
}
