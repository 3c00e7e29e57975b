package routing

import (
	"errors"
	"testing"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
)

func TestRouter_Resolve_ExactMatch(t *testing.T) {
	entry := Entry{"method.get": nil}
	r := New(Table{"/users": entry}, nil, 0)

	got, err := r.Resolve("/users")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got["method.get"] == nil && len(got) != 1 {
		t.Errorf("Resolve() = %v, want entry with method.get key", got)
	}
}

func TestRouter_Resolve_SeparatorFallback(t *testing.T) {
	entry := Entry{"method.get": nil}
	r := New(Table{"/users": entry}, []string{"/"}, 0)

	got, err := r.Resolve("/users/42")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if _, ok := got["method.get"]; !ok {
		t.Errorf("Resolve() fallback didn't return parent entry: %v", got)
	}
}

func TestRouter_Resolve_NoMatch(t *testing.T) {
	r := New(Table{"/users": {}}, []string{"/"}, 0)

	_, err := r.Resolve("/widgets")
	var gwErr *gwerrors.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != gwerrors.KindNoRoute {
		t.Fatalf("Resolve() error = %v, want *gwerrors.Error{KindNoRoute}", err)
	}
	if gwErr.StatusCode() != 404 {
		t.Errorf("StatusCode() = %d, want 404", gwErr.StatusCode())
	}
}

func TestRouter_Resolve_CachesNegativeLookup(t *testing.T) {
	r := New(Table{}, nil, 0)

	_, err1 := r.Resolve("/missing")
	_, err2 := r.Resolve("/missing")
	if err1 == nil || err2 == nil {
		t.Fatal("expected errors on both calls")
	}
}

func TestRouter_Register_InvalidatesCache(t *testing.T) {
	r := New(Table{}, nil, 0)

	if _, err := r.Resolve("/new"); err == nil {
		t.Fatal("expected miss before Register")
	}

	entry := Entry{"method.get": nil}
	r.Register("/new", entry)

	got, err := r.Resolve("/new")
	if err != nil {
		t.Fatalf("Resolve() after Register error: %v", err)
	}
	if _, ok := got["method.get"]; !ok {
		t.Errorf("Resolve() after Register = %v, want registered entry", got)
	}
}

func TestRouter_Resolve_NestedParentsMostSpecificFirst(t *testing.T) {
	parent := Entry{"method.get": nil}
	grandparent := Entry{"method.post": nil}
	r := New(Table{"/a/b": parent, "/a": grandparent}, []string{"/"}, 0)

	got, err := r.Resolve("/a/b/c")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if _, ok := got["method.get"]; !ok {
		t.Errorf("Resolve() = %v, want the more specific /a/b entry", got)
	}
}
