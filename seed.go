package taskpages

import (
	"context"

	"github.com/google/uuid"

	"github.com/extrahand/taskpages/categories"
	"github.com/extrahand/taskpages/internal/identity"
	"github.com/extrahand/taskpages/slugs"
)

// SeedCategory describes a category page registered by Seed.
type SeedCategory struct {
	Name            string
	SubcategoryName string
	Location        string
}

// DefaultSeedCategories returns the pages seeded on a fresh install.
func DefaultSeedCategories() []SeedCategory {
	return []SeedCategory{
		{Name: "Accountant Tasks"},
		{Name: "Accountant Tasks", SubcategoryName: "Financial Modelling"},
	}
}

// Seed registers the default category pages. Existing slugs are left
// untouched, so the seed can run on every start. Seeded records use
// deterministic identifiers derived from their slug.
func (m *Module) Seed(ctx context.Context, seeds ...SeedCategory) error {
	if len(seeds) == 0 {
		seeds = DefaultSeedCategories()
	}

	generator := slugs.NewGenerator()
	actor := identity.SeedActorUUID()

	for _, seed := range seeds {
		resolution, err := slugs.NewResolver(generator).Resolve(seed.Name, seed.SubcategoryName)
		if err != nil {
			return err
		}
		if _, err := m.categories.GetBySlug(ctx, resolution.Slug); err == nil {
			continue
		} else if !categories.IsNotFound(err) {
			return err
		}

		slug := resolution.Slug
		opts := append([]categories.ServiceOption{}, m.categoryOpts...)
		opts = append(opts, categories.WithIDGenerator(func() uuid.UUID {
			return identity.CategoryUUID(slug)
		}))
		seeded := categories.NewService(m.categoryRepo, opts...)

		if seed.SubcategoryName != "" {
			_, err = seeded.CreateSubcategory(ctx, categories.CreateSubcategoryRequest{
				CategoryName:    seed.Name,
				SubcategoryName: seed.SubcategoryName,
				Location:        seed.Location,
				CreatedBy:       actor,
			})
		} else {
			_, err = seeded.Create(ctx, categories.CreateCategoryRequest{
				Name:      seed.Name,
				Location:  seed.Location,
				CreatedBy: actor,
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}
