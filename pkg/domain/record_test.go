package domain

import (
	"reflect"
	"testing"
)

func TestRecordLookup(t *testing.T) {
	rec := Record{"plate": "P1", "well": "  ", "site": ""}
	if v, ok := rec.Lookup("plate"); !ok || v != "P1" {
		t.Fatalf("expected P1, got %q ok=%v", v, ok)
	}
	for _, key := range []string{"well", "site", "absent"} {
		if _, ok := rec.Lookup(key); ok {
			t.Fatalf("key %s must read as absent", key)
		}
	}
}

func TestRecordCloneIndependent(t *testing.T) {
	rec := Record{"plate": "P1"}
	dup := rec.Clone()
	dup["plate"] = "P2"
	if rec["plate"] != "P1" {
		t.Fatal("clone must not alias the original")
	}
	if Record(nil).Clone() != nil {
		t.Fatal("nil record clones to nil")
	}
}

func TestSplitChannels(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"DAPI", []string{"DAPI"}},
		{"DAPI,GFP", []string{"DAPI", "GFP"}},
		{" DAPI , GFP ,", []string{"DAPI", "GFP"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := SplitChannels(tc.raw)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%q: got %v want %v", tc.raw, got, tc.want)
		}
	}
}

func TestGroupKeyID(t *testing.T) {
	key := GroupKey{Names: []string{"batch", "plate"}, Values: []string{"B1", "P1"}}
	if key.ID() != "B1_P1" {
		t.Fatalf("unexpected id %s", key.ID())
	}
	if !(GroupKey{}).IsZero() {
		t.Fatal("empty key must be zero")
	}
	if key.IsZero() {
		t.Fatal("populated key must not be zero")
	}
}
