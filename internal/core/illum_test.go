package core

import "testing"

func TestParseIllumName(t *testing.T) {
	cases := []struct {
		file    string
		ok      bool
		group   string
		cycle   string
		channel string
	}{
		{"P1_IllumDAPI.npy", true, "P1", "", "DAPI"},
		{"Plate_Alpha_IllumGFP.npy", true, "Plate_Alpha", "", "GFP"},
		{"P1_Cycle01_IllumA.npy", true, "P1", "01", "A"},
		{"some/dir/P1_IllumDAPI.npy", true, "P1", "", "DAPI"},
		{"P1_DAPI.npy", false, "", "", ""},
		{"IllumDAPI.npy", false, "", "", ""},
		{"P1_Illum.npy", false, "", "", ""},
	}
	for _, tc := range cases {
		ref, ok := ParseIllumName(tc.file)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tc.file, tc.ok, ok)
		}
		if !ok {
			continue
		}
		if ref.Group != tc.group || ref.Cycle != tc.cycle || ref.Channel != tc.channel {
			t.Fatalf("%s: got %+v", tc.file, ref)
		}
	}
}
