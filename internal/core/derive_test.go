package core

import (
	"errors"
	"testing"

	"platebind/pkg/domain"
)

func TestDeriveJoinsValuesInOrder(t *testing.T) {
	rec := domain.Record{"batch": "B1", "plate": "P1", "well": "A1"}
	key, err := Derive(rec, []string{"batch", "plate"})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if got := key.ID(); got != "B1_P1" {
		t.Fatalf("expected B1_P1, got %s", got)
	}
	reversed, err := Derive(rec, []string{"plate", "batch"})
	if err != nil {
		t.Fatalf("derive reversed: %v", err)
	}
	if got := reversed.ID(); got != "P1_B1" {
		t.Fatalf("key order must follow configuration, got %s", got)
	}
}

func TestDeriveMissingKey(t *testing.T) {
	rec := domain.Record{"plate": "P1", "well": ""}
	for _, missing := range []string{"batch", "well"} {
		_, err := Derive(rec, []string{"plate", missing})
		var mk domain.MissingKeyError
		if !errors.As(err, &mk) {
			t.Fatalf("expected MissingKeyError for %s, got %v", missing, err)
		}
		if mk.Key != missing {
			t.Fatalf("expected key %s in error, got %s", missing, mk.Key)
		}
	}
}

func TestDeriveSubsetSkipsAbsentKeys(t *testing.T) {
	rec := domain.Record{"plate": "P1"}
	key, err := DeriveSubset(rec, []string{"batch", "plate"})
	if err != nil {
		t.Fatalf("derive subset: %v", err)
	}
	if got := key.ID(); got != "P1" {
		t.Fatalf("expected P1, got %s", got)
	}
	if len(key.Names) != 1 || key.Names[0] != "plate" {
		t.Fatalf("expected names [plate], got %v", key.Names)
	}
}

func TestDeriveSubsetAllAbsent(t *testing.T) {
	_, err := DeriveSubset(domain.Record{"well": "A1"}, []string{"batch", "plate"})
	var mk domain.MissingKeyError
	if !errors.As(err, &mk) {
		t.Fatalf("expected MissingKeyError, got %v", err)
	}
	if mk.Key != "batch" {
		t.Fatalf("expected first configured key in error, got %s", mk.Key)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	rec := domain.Record{"batch": "B1", "plate": "P1"}
	first, err := Derive(rec, []string{"batch", "plate"})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := Derive(rec.Clone(), []string{"batch", "plate"})
	if err != nil {
		t.Fatalf("derive clone: %v", err)
	}
	if first.ID() != second.ID() {
		t.Fatalf("derivation must be pure: %s != %s", first.ID(), second.ID())
	}
}
