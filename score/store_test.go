package score

import "testing"

func TestExtensionStore_AbsentKeys(t *testing.T) {
	store := NewExtensionStore()

	if _, ok := store.Articulation("n1"); ok {
		t.Error("empty store should hold no articulation")
	}
	if _, ok := store.Tuplet("t1"); ok {
		t.Error("empty store should hold no tuplet")
	}
	if store.IsChordRepetition("c1") {
		t.Error("empty store should mark no chord repetition")
	}
	if store.Has("n1") {
		t.Error("empty store should report no entries")
	}
	if ids := store.IDs(); len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestExtensionStore_SetAndGet(t *testing.T) {
	store := NewExtensionStore()

	up := DirectionUp
	store.SetArticulation("n1", ArticulationInfo{Kind: KindArticulation, Value: "acc", Direction: &up})
	store.SetOrnament("o1", OrnamentInfo{Name: "prallprall"})
	store.SetTremolo("b1", TremoloInfo{Subdivision: 32})
	store.SetTuplet("t1", TupletInfo{Num: 3, Den: 2, SpanDuration: &DurationInfo{Base: 4}})
	store.SetGrace("g1", GraceInfo{Role: GraceRoleAcciaccatura})
	count := 2
	store.SetRepeat("r1", RepeatInfo{RepeatType: "volta", Count: 2, AlternativeCount: &count})
	store.SetEnding("e1", EndingInfo{Index: 1})
	store.MarkChordRepetition("c1")

	artic, ok := store.Articulation("n1")
	if !ok || artic.Value != "acc" || *artic.Direction != DirectionUp {
		t.Errorf("unexpected articulation: %+v found %v", artic, ok)
	}
	orn, ok := store.Ornament("o1")
	if !ok || orn.Name != "prallprall" {
		t.Errorf("unexpected ornament: %+v", orn)
	}
	trem, ok := store.Tremolo("b1")
	if !ok || trem.Subdivision != 32 {
		t.Errorf("unexpected tremolo: %+v", trem)
	}
	tup, ok := store.Tuplet("t1")
	if !ok || tup.SpanDuration == nil || tup.SpanDuration.Base != 4 {
		t.Errorf("unexpected tuplet: %+v", tup)
	}
	rep, ok := store.Repeat("r1")
	if !ok || rep.AlternativeCount == nil || *rep.AlternativeCount != 2 {
		t.Errorf("unexpected repeat: %+v", rep)
	}
	if !store.IsChordRepetition("c1") {
		t.Error("expected chord repetition marker")
	}
	if !store.Has("g1") || !store.Has("e1") {
		t.Error("expected Has to see grace and ending entries")
	}
}

func TestExtensionStore_IDsSorted(t *testing.T) {
	store := NewExtensionStore()
	store.SetTremolo("b2", TremoloInfo{Subdivision: 16})
	store.SetGrace("a1", GraceInfo{Role: GraceRoleGrace})
	store.MarkChordRepetition("c3")
	store.SetGrace("a1", GraceInfo{Role: GraceRoleAppoggiatura}) // overwrite, no duplicate

	ids := store.IDs()
	want := []string{"a1", "b2", "c3"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("id %d: expected %s, got %s", i, id, ids[i])
		}
	}
}

func TestExtensionStore_EventSequence(t *testing.T) {
	store := NewExtensionStore()
	store.SetEventSequence("sd1", EventSequence{Events: []PositionedEvent{
		{Position: 1, Event: ControlEvent{Kind: EventBarCheck}},
		{Position: 2, Event: ControlEvent{Kind: EventBarLine, Style: "|."}},
	}})

	seq, ok := store.EventSequenceFor("sd1")
	if !ok {
		t.Fatal("expected an event sequence")
	}
	if len(seq.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(seq.Events))
	}
	if seq.Events[1].Event.Style != "|." {
		t.Errorf("unexpected bar style %q", seq.Events[1].Event.Style)
	}
}
