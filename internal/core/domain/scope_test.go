package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestHasScopes(t *testing.T) {
	cases := []struct {
		name     string
		granted  []string
		required []string
		want     bool
	}{
		{"empty requirement", nil, nil, true},
		{"exact", []string{ScopeItemsRead}, []string{ScopeItemsRead}, true},
		{"superset granted", []string{ScopeItemsRead, ScopeItemsWrite}, []string{ScopeItemsWrite}, true},
		{"missing one", []string{ScopeItemsRead}, []string{ScopeItemsRead, ScopeItemsWrite}, false},
		{"nothing granted", nil, []string{ScopeItemsRead}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasScopes(tc.granted, tc.required); got != tc.want {
				t.Fatalf("HasScopes(%v, %v) = %v, want %v", tc.granted, tc.required, got, tc.want)
			}
		})
	}
}

func TestIntersectScopes(t *testing.T) {
	got := IntersectScopes(
		[]string{ScopeItemsWrite, ScopeUsersAdmin, ScopeItemsWrite, ScopeItemsRead},
		[]string{ScopeItemsRead, ScopeItemsWrite},
	)
	want := []string{ScopeItemsWrite, ScopeItemsRead}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseScopes(t *testing.T) {
	if got := ParseScopes("  "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
	got := ParseScopes("items:read  items:write")
	if !reflect.DeepEqual(got, []string{"items:read", "items:write"}) {
		t.Fatalf("unexpected scopes: %v", got)
	}
}

func TestErrorKinds(t *testing.T) {
	if !errors.Is(ErrItemNotFound, ErrNotFound) {
		t.Fatalf("ErrItemNotFound should unwrap to ErrNotFound")
	}
	if !errors.Is(ErrUserExists, ErrConflict) {
		t.Fatalf("ErrUserExists should unwrap to ErrConflict")
	}
	if !errors.Is(ErrTokenExpired, ErrUnauthenticated) {
		t.Fatalf("ErrTokenExpired should unwrap to ErrUnauthenticated")
	}

	var fe *ForbiddenError
	err := error(&ForbiddenError{Required: []string{ScopeItemsWrite}})
	if !errors.Is(err, ErrForbidden) || !errors.As(err, &fe) {
		t.Fatalf("ForbiddenError should unwrap to ErrForbidden")
	}

	ve := NewValidationError("", FieldError{Field: "name", Message: "too short"})
	if !errors.Is(ve, ErrValidation) {
		t.Fatalf("validation error should unwrap to ErrValidation")
	}
	if ve.Error() != "Request validation failed. (name: too short)" {
		t.Fatalf("unexpected message: %q", ve.Error())
	}
}

func TestItemPatchApply(t *testing.T) {
	it := &Item{ID: 1, Name: "Lamp", Price: 10, Tags: []string{"home"}, InStock: true}
	price := 12.5
	inStock := false
	ItemPatch{Price: &price, InStock: &inStock}.Apply(it)

	if it.Name != "Lamp" || !reflect.DeepEqual(it.Tags, []string{"home"}) {
		t.Fatalf("absent fields must be untouched: %+v", it)
	}
	if it.Price != 12.5 || it.InStock {
		t.Fatalf("present fields must be applied: %+v", it)
	}
}

func TestItemFilterMatches(t *testing.T) {
	it := &Item{Name: "Desk Lamp"}
	if !(ItemFilter{Query: "lamp"}).Matches(it) {
		t.Fatalf("expected case-insensitive match")
	}
	if (ItemFilter{Query: "chair"}).Matches(it) {
		t.Fatalf("unexpected match")
	}
}
