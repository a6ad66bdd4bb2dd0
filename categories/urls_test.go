package categories

import "testing"

func TestURLKitResolverBuildsPublicURL(t *testing.T) {
	resolver := NewURLKitResolver(URLKitResolverOptions{
		Manager: DefaultRouteManager("https://extrahand.in"),
	})

	url, err := resolver.PublicURL("accountant-tasks")
	if err != nil {
		t.Fatalf("PublicURL returned error: %v", err)
	}
	if url != "https://extrahand.in/tasks/accountant-tasks" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestURLKitResolverToleratesMissingManager(t *testing.T) {
	resolver := NewURLKitResolver(URLKitResolverOptions{})

	url, err := resolver.PublicURL("accountant-tasks")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty url, got %q", url)
	}
}

func TestURLKitResolverRecoversFromUnknownRoute(t *testing.T) {
	resolver := NewURLKitResolver(URLKitResolverOptions{
		Manager: DefaultRouteManager(""),
		Group:   "missing-group",
	})

	if _, err := resolver.PublicURL("accountant-tasks"); err == nil {
		t.Fatal("expected an error for an unknown group")
	}
}
