package models

import "testing"

func TestTagIsValidColor(t *testing.T) {
	for _, good := range []string{"#49B64E", "#fff", "#E26C2D", "#49B64EFF"} {
		tag := Tag{Color: good}
		if !tag.IsValidColor() {
			t.Errorf("%q rejected", good)
		}
	}
	for _, bad := range []string{"", "49B64E", "#49B64", "#GGGGGG", "green"} {
		tag := Tag{Color: bad}
		if tag.IsValidColor() {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestTagIsValidSlug(t *testing.T) {
	for _, good := range []string{"breakfast", "second-course", "dinner_2"} {
		tag := Tag{Slug: good}
		if !tag.IsValidSlug() {
			t.Errorf("%q rejected", good)
		}
	}
	for _, bad := range []string{"", "has space", "café", "slash/slug"} {
		tag := Tag{Slug: bad}
		if tag.IsValidSlug() {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestIsValidRelationKind(t *testing.T) {
	if !RelationFavorite.IsValidRelationKind() || !RelationShoppingCart.IsValidRelationKind() {
		t.Error("known relation kinds rejected")
	}
	if RelationKind("likes").IsValidRelationKind() {
		t.Error("unknown relation kind accepted")
	}
}
