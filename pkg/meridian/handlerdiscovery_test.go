package meridian

import (
	"testing"
	"testing/fstest"
)

func TestScanHandlersMapsConventionalActionsToRoutes(t *testing.T) {
	fsys := fstest.MapFS{
		"app/handlers/posts/index.go":   {Data: []byte("package handlers")},
		"app/handlers/posts/show.go":    {Data: []byte("package handlers")},
		"app/handlers/posts/create.go":  {Data: []byte("package handlers")},
		"app/handlers/posts/ignored.go": {Data: []byte("package handlers")},
	}

	host, err := ScanHandlers(fsys, "app/handlers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host.Pattern != "*" {
		t.Errorf("got pattern %q, want the global fallback host", host.Pattern)
	}
	if len(host.Routes) != 1 {
		t.Fatalf("got %d top-level resources, want 1 (posts)", len(host.Routes))
	}

	posts := host.Routes[0]
	if posts.Fragment != "posts" {
		t.Errorf("got fragment %q, want posts", posts.Fragment)
	}
	if _, ok := posts.Methods["GET"]; !ok {
		t.Errorf("expected index.go to map to a top-level GET")
	}
	if _, ok := posts.Methods["POST"]; !ok {
		t.Errorf("expected create.go to map to a top-level POST")
	}
	if len(posts.Children) != 1 || posts.Children[0].Fragment != ":id" {
		t.Fatalf("expected show.go to produce a :id child, got %+v", posts.Children)
	}
	if _, ok := posts.Children[0].Methods["GET"]; !ok {
		t.Errorf("expected show.go's child to register GET")
	}
}

func TestScanHandlersSkipsUnrecognizedActions(t *testing.T) {
	fsys := fstest.MapFS{
		"app/handlers/posts/frobnicate.go": {Data: []byte("package handlers")},
	}
	host, err := ScanHandlers(fsys, "app/handlers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(host.Routes) != 0 {
		t.Errorf("expected an unrecognized action to produce no routes, got %+v", host.Routes)
	}
}
