package protocol

import "testing"

func TestDefaultCatalog_DosesFor(t *testing.T) {
	c := Default()

	dog := c.DosesFor(SpeciesDog)
	if len(dog) != 7 {
		t.Fatalf("expected 7 dog doses, got %d", len(dog))
	}
	if dog[0].ID != "puppy" || dog[len(dog)-1].ID != "rabia" {
		t.Fatalf("dog doses out of order: first=%s last=%s", dog[0].ID, dog[len(dog)-1].ID)
	}

	cat := c.DosesFor(SpeciesCat)
	if len(cat) != 4 {
		t.Fatalf("expected 4 cat doses, got %d", len(cat))
	}
	if cat[0].ID != "triple-felina" {
		t.Fatalf("expected triple-felina first, got %s", cat[0].ID)
	}
}

func TestDefaultCatalog_UnknownSpeciesEmpty(t *testing.T) {
	c := Default()
	if got := c.DosesFor(Species("bird")); len(got) != 0 {
		t.Fatalf("expected empty list for bird, got %d", len(got))
	}
	if got := c.Slots(Species("bird")); len(got) != 0 {
		t.Fatalf("expected no slots for bird, got %v", got)
	}
}

func TestDefaultCatalog_Resolve(t *testing.T) {
	c := Default()

	d, ok := c.Resolve("polivalente-rabia")
	if !ok {
		t.Fatal("expected to resolve polivalente-rabia")
	}
	if d.Slot != 3 || len(d.Replaces) != 1 || d.Replaces[0] != "rabia" {
		t.Fatalf("unexpected polivalente-rabia definition: %+v", d)
	}

	if _, ok := c.Resolve("no-such-dose"); ok {
		t.Fatal("expected not-found for unknown id")
	}
}

func TestDefaultCatalog_SlotsContiguous(t *testing.T) {
	c := Default()

	for _, sp := range []Species{SpeciesDog, SpeciesCat} {
		slots := c.Slots(sp)
		if len(slots) == 0 {
			t.Fatalf("%s: expected slots", sp)
		}
		for i, s := range slots {
			if s != i+1 {
				t.Fatalf("%s: slots not contiguous from 1: %v", sp, slots)
			}
		}
	}
}

func TestCatalog_InSlotAlternatives(t *testing.T) {
	c := Default()

	alts := c.InSlot(SpeciesDog, 3)
	if len(alts) != 2 {
		t.Fatalf("expected 2 alternatives in dog slot 3, got %d", len(alts))
	}
	if alts[0].ID != "polivalente" || alts[1].ID != "polivalente-rabia" {
		t.Fatalf("slot 3 alternatives out of catalog order: %s, %s", alts[0].ID, alts[1].ID)
	}
}
