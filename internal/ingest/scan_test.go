package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touchFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("touch %s: %v", name, err)
		}
	}
}

func TestScanImagesParsesAcquisitionNames(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir,
		"WellA1_PointA1_0000_ChannelDNA,GFP_Seq0000.ome.tiff",
		"WellA2_PointA2_0001_ChannelDNA,GFP_Seq0001.ome.tiff",
		"notes.txt",
	)
	meta := Metadata{Plate: "P1", Batch: "B1"}
	records, err := ScanImages(dir, meta)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("non-image files must be skipped, got %d records", len(records))
	}
	first := records[0]
	if first.Meta["plate"] != "P1" || first.Meta["batch"] != "B1" {
		t.Fatalf("base metadata missing: %v", first.Meta)
	}
	if first.Meta["channels"] != "DNA,GFP" {
		t.Fatalf("channels not parsed: %v", first.Meta)
	}
	if first.Meta["well"] != "A1" || first.Meta["site"] != "1" {
		t.Fatalf("well/site fallback parsing failed: %v", first.Meta)
	}
}

func TestScanImagesImageMetadataWins(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "WellA1_PointA1_0000_ChannelDNA_Seq0000.ome.tiff")
	meta := Metadata{
		Plate: "P1",
		Images: []ImageEntry{
			{Well: "C7", Site: 4, Filename: "WellA1_PointA1_0000_ChannelDNA_Seq0000.ome.tiff"},
		},
	}
	records, err := ScanImages(dir, meta)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if records[0].Meta["well"] != "C7" || records[0].Meta["site"] != "4" {
		t.Fatalf("metadata entries must override filename parsing: %v", records[0].Meta)
	}
}

func TestScanImagesPositionalEntries(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "a.tiff", "b.tiff")
	meta := Metadata{
		Plate:    "P1",
		Channels: []string{"DNA"},
		Images: []ImageEntry{
			{Well: "A1", Site: 0},
			{Well: "A1", Site: 1},
		},
	}
	records, err := ScanImages(dir, meta)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if records[0].Meta["site"] != "0" || records[1].Meta["site"] != "1" {
		t.Fatalf("positional matching failed: %v %v", records[0].Meta, records[1].Meta)
	}
	if records[0].Meta["channels"] != "DNA" {
		t.Fatalf("metadata channels fallback failed: %v", records[0].Meta)
	}
}

func TestScanImagesPreSplitMarker(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "a.tiff")
	meta := Metadata{
		Plate:    "P1",
		Channels: []string{"DNA", "GFP"},
		Images: []ImageEntry{
			{Well: "A1", Site: 0, Filename: "a.tiff", Channel: "DNA"},
		},
	}
	records, err := ScanImages(dir, meta)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	rec := records[0].Meta
	if rec["channels"] != "DNA" {
		t.Fatalf("per-image channel must win: %v", rec)
	}
	if rec["original_channels"] != "DNA,GFP" {
		t.Fatalf("pre-split records must carry the original channel list: %v", rec)
	}
}

func TestScanCorrections(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "P1_IllumDNA.npy", "P1_IllumGFP.npy", "ignore.tiff")
	site := 1
	meta := Metadata{Plate: "P1", Batch: "B1", Well: "A1", Site: &site}
	artifacts, err := ScanCorrections(dir, meta)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}
	if artifacts[0].Meta.Has("well") || artifacts[0].Meta.Has("site") {
		t.Fatalf("correction metadata must not carry well/site: %v", artifacts[0].Meta)
	}
	if artifacts[0].Meta["plate"] != "P1" || artifacts[0].Meta["batch"] != "B1" {
		t.Fatalf("plate/batch missing: %v", artifacts[0].Meta)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := ScanImages(filepath.Join(t.TempDir(), "absent"), Metadata{Plate: "P1"}); err == nil {
		t.Fatal("missing directory must error")
	}
}
