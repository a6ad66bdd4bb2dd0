package slugs

import (
	"errors"
	"testing"
)

func TestSlugifyKeepsDisplaySuffix(t *testing.T) {
	g := NewGenerator()

	got, err := g.Slugify("Accountant Tasks")
	if err != nil {
		t.Fatalf("Slugify returned error: %v", err)
	}
	if got != "accountant-tasks" {
		t.Fatalf("expected accountant-tasks, got %q", got)
	}

	again, err := g.Slugify("Accountant Tasks")
	if err != nil {
		t.Fatalf("Slugify returned error: %v", err)
	}
	if again != got {
		t.Fatalf("expected idempotent result, got %q then %q", got, again)
	}
}

func TestSlugifyWithSuffixStripping(t *testing.T) {
	g := NewGenerator(WithSuffixStripping())

	got, err := g.Slugify("Accountant Tasks")
	if err != nil {
		t.Fatalf("Slugify returned error: %v", err)
	}
	if got != "accountant" {
		t.Fatalf("expected accountant, got %q", got)
	}

	plain, err := g.Slugify("Accountant")
	if err != nil {
		t.Fatalf("Slugify returned error: %v", err)
	}
	if plain != got {
		t.Fatalf("expected suffix variants to collapse, got %q and %q", got, plain)
	}
}

func TestSlugifyNormalizesMessyInput(t *testing.T) {
	g := NewGenerator()

	cases := map[string]string{
		"  Home   Cleaning  ": "home-cleaning",
		"Dog Walking":         "dog-walking",
	}
	for input, want := range cases {
		got, err := g.Slugify(input)
		if err != nil {
			t.Fatalf("Slugify(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugifyRejectsEmptyNames(t *testing.T) {
	g := NewGenerator(WithSuffixStripping())

	for _, input := range []string{"", "   ", "!!!"} {
		if _, err := g.Slugify(input); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("Slugify(%q): expected ErrInvalidName, got %v", input, err)
		}
	}
}

func TestCompositeSlug(t *testing.T) {
	g := NewGenerator()

	got, err := g.CompositeSlug("Accountant Tasks", "Financial Modelling")
	if err != nil {
		t.Fatalf("CompositeSlug returned error: %v", err)
	}
	if got != "accountant-tasks/financial-modelling" {
		t.Fatalf("expected accountant-tasks/financial-modelling, got %q", got)
	}

	if _, err := g.CompositeSlug("Accountant Tasks", "  "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for blank subcategory, got %v", err)
	}
}

func TestBaseName(t *testing.T) {
	g := NewGenerator()

	if got := g.BaseName("Accountant Tasks"); got != "Accountant" {
		t.Fatalf("expected Accountant, got %q", got)
	}
	if got := g.BaseName("Accountant"); got != "Accountant" {
		t.Fatalf("expected Accountant, got %q", got)
	}
	if got := g.BaseName("Tasks"); got != "Tasks" {
		t.Fatalf("expected bare token to survive, got %q", got)
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"accountant-tasks", "accountant-tasks/financial-modelling", "a1"}
	for _, v := range valid {
		if !IsValid(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}

	invalid := []string{"", "/", "accountant/", "/tasks", "a/b/c", "Accountant", "has space"}
	for _, v := range invalid {
		if IsValid(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}
