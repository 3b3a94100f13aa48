package service

import (
	"errors"
	"testing"
)

func TestParseCommand_Valid(t *testing.T) {
	query, err := ParseCommand("!add 82 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query.Series != "82" {
		t.Errorf("expected series 82, got %s", query.Series)
	}
	if query.Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", query.Quantity)
	}
}

func TestParseCommand_CaseAndWhitespace(t *testing.T) {
	query, err := ParseCommand("  !ADD   82   5  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query.Series != "82" || query.Quantity != 5 {
		t.Errorf("unexpected query: %+v", query)
	}
}

func TestParseCommand_ZeroQuantity(t *testing.T) {
	query, err := ParseCommand("!add 82 0")
	if err != nil {
		t.Fatalf("expected zero quantity to parse, got: %v", err)
	}
	if query.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", query.Quantity)
	}
}

func TestParseCommand_CanonicalizesSeries(t *testing.T) {
	query, err := ParseCommand("!add 082 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query.Series != "82" {
		t.Errorf("expected series 82, got %s", query.Series)
	}
}

func TestParseCommand_Unrecognized(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"!add",
		"!add 82",
		"!add 82 5 extra",
		"!add eighty-two 5",
		"!add 82 five",
		"!add -1 5",
		"!add 82 -5",
		"!remove 82 5",
	}

	for _, input := range inputs {
		if _, err := ParseCommand(input); !errors.Is(err, ErrUnrecognizedCommand) {
			t.Errorf("input %q: expected ErrUnrecognizedCommand, got %v", input, err)
		}
	}
}
