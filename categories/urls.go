package categories

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// URLResolver computes the public URL for a category page.
type URLResolver interface {
	PublicURL(slug string) (string, error)
}

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager   *urlkit.RouteManager
	Group     string
	Route     string
	SlugParam string
}

// URLKitResolver resolves public page URLs through a go-urlkit
// RouteManager, so the admin surface and the public site stay in sync on
// route shapes.
type URLKitResolver struct {
	manager   *urlkit.RouteManager
	group     string
	route     string
	slugParam string
}

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	if opts.Group == "" {
		opts.Group = "public"
	}
	if opts.Route == "" {
		opts.Route = "category"
	}
	if opts.SlugParam == "" {
		opts.SlugParam = "slug"
	}
	return &URLKitResolver{
		manager:   opts.Manager,
		group:     opts.Group,
		route:     opts.Route,
		slugParam: opts.SlugParam,
	}
}

// PublicURL builds the public URL for slug.
func (r *URLKitResolver) PublicURL(slug string) (url string, err error) {
	if r == nil || r.manager == nil || strings.TrimSpace(slug) == "" {
		return "", nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			url = ""
			err = fmt.Errorf("categories: urlkit resolver panic: %v", rec)
		}
	}()
	return r.manager.Group(r.group).
		Builder(r.route).
		WithParam(r.slugParam, slug).
		Build()
}

// DefaultRouteManager returns a route manager for the public tasks site.
func DefaultRouteManager(baseURL string) *urlkit.RouteManager {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://extrahand.in"
	}
	return urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "public",
				BaseURL: baseURL,
				Paths: map[string]string{
					"category": "/tasks/:slug",
				},
			},
		},
	})
}
