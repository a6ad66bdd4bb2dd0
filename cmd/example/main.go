package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	taskpages "github.com/extrahand/taskpages"
	"github.com/extrahand/taskpages/categories"
)

// Walks a category page through the full editorial flow on an in-memory
// sqlite database: create, review, publish, edit-as-shadow, republish.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	db, err := taskpages.OpenSQLite("file::memory:?cache=shared")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := taskpages.Migrate(ctx, db); err != nil {
		return err
	}

	cfg := taskpages.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "console"
	cfg.Storage.Provider = "bun"
	cfg.Location = "India"

	module, err := taskpages.New(cfg, taskpages.WithDB(db))
	if err != nil {
		return err
	}

	svc := module.Categories()
	editor := uuid.New()
	reviewer := uuid.New()

	page, err := svc.Create(ctx, categories.CreateCategoryRequest{
		Name:      "Accountant Tasks",
		CreatedBy: editor,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%s) at %s\n", page.Slug, page.Status, page.PublicURL)

	if page, err = svc.SubmitForApproval(ctx, categories.TransitionRequest{ID: page.ID, ActorID: editor}); err != nil {
		return err
	}
	if page, err = svc.Approve(ctx, categories.ReviewRequest{ID: page.ID, ReviewerID: reviewer}); err != nil {
		return err
	}
	if page, err = svc.Publish(ctx, categories.TransitionRequest{ID: page.ID, ActorID: reviewer}); err != nil {
		return err
	}
	fmt.Printf("published %s (%s)\n", page.Slug, page.Status)

	// Editing a published page never touches the live record: the change
	// lands in a shadow draft that replaces the original on publish.
	shadow, err := svc.Update(ctx, categories.UpdateCategoryRequest{
		ID:            page.ID,
		BaseUpdatedAt: page.UpdatedAt,
		FieldValues:   map[string]any{"heroTitle": "Custom title"},
		UpdatedBy:     editor,
	})
	if err != nil {
		return err
	}
	fmt.Printf("shadow draft %s links original %s\n", shadow.ID, *shadow.OriginalCategoryID)

	if shadow, err = svc.SubmitForApproval(ctx, categories.TransitionRequest{ID: shadow.ID, ActorID: editor}); err != nil {
		return err
	}
	if shadow, err = svc.Approve(ctx, categories.ReviewRequest{ID: shadow.ID, ReviewerID: reviewer}); err != nil {
		return err
	}
	promoted, err := svc.Publish(ctx, categories.TransitionRequest{ID: shadow.ID, ActorID: reviewer})
	if err != nil {
		return err
	}

	live, err := svc.GetPublishedBySlug(ctx, "accountant-tasks")
	if err != nil {
		return err
	}
	fmt.Printf("live page is now %s (%s)\n", live.ID, promoted.Status)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(live.Fields)
}
