package compliance

import (
	"strings"
	"testing"

	"vet-vaccination-tracker/internal/domain/protocol"
)

func TestCheckAge_EdgeCaseNeverBlocks(t *testing.T) {
	e := NewEvaluator(protocol.Default())

	res := e.CheckAge("rabia", 2, protocol.SpeciesDog)
	if !res.Allowed {
		t.Fatal("age gate must never block")
	}
	if !res.EdgeCase {
		t.Fatal("expected edge case for 2-month-old below threshold 5")
	}
	if strings.TrimSpace(res.Warning) == "" {
		t.Fatal("expected non-empty warning")
	}
	if !strings.Contains(res.Warning, "2") || !strings.Contains(res.Warning, "5") {
		t.Fatalf("warning should name age and threshold: %q", res.Warning)
	}
}

func TestCheckAge_NoThreshold(t *testing.T) {
	e := NewEvaluator(protocol.Default())

	res := e.CheckAge("puppy", 0, protocol.SpeciesDog)
	if !res.Allowed || res.EdgeCase || res.Warning != "" {
		t.Fatalf("expected clean pass without threshold, got %+v", res)
	}
}

func TestCheckAge_AtThreshold(t *testing.T) {
	e := NewEvaluator(protocol.Default())

	res := e.CheckAge("rabia", 5, protocol.SpeciesDog)
	if res.EdgeCase {
		t.Fatalf("age equal to threshold should pass, got %+v", res)
	}
}

func TestCheckAge_UnknownDoseOrSpecies(t *testing.T) {
	e := NewEvaluator(protocol.Default())

	if res := e.CheckAge("no-such-dose", 1, protocol.SpeciesDog); !res.Allowed || res.EdgeCase {
		t.Fatalf("unknown dose should pass clean, got %+v", res)
	}
	// Dosis de gato chequeada contra especie perro: no aplica el umbral.
	if res := e.CheckAge("rabia-gato", 1, protocol.SpeciesDog); res.EdgeCase {
		t.Fatalf("cross-species check should pass clean, got %+v", res)
	}
}
