package models

import (
	"errors"
	"testing"
)

func TestParseInteractionType(t *testing.T) {
	for _, valid := range []string{"view", "click", "bookmark", "share", "attend"} {
		parsed, err := ParseInteractionType(valid)
		if err != nil {
			t.Errorf("%q should parse, got %v", valid, err)
		}
		if string(parsed) != valid {
			t.Errorf("expected %q, got %q", valid, parsed)
		}
	}

	for _, invalid := range []string{"", "like", "VIEW", "views"} {
		if _, err := ParseInteractionType(invalid); !errors.Is(err, ErrInvalidInteractionType) {
			t.Errorf("%q should fail with ErrInvalidInteractionType, got %v", invalid, err)
		}
	}
}

func TestRemovable(t *testing.T) {
	if !InteractionBookmark.Removable() || !InteractionAttend.Removable() {
		t.Error("bookmark and attend must support toggle-off")
	}
	for _, appendOnly := range []InteractionType{InteractionView, InteractionClick, InteractionShare} {
		if appendOnly.Removable() {
			t.Errorf("%s must be append-only", appendOnly)
		}
	}
}
