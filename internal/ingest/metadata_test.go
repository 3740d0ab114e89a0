package ingest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"platebind/pkg/domain"
)

func writeJSONFile(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	return path
}

func TestLoadMetadataFull(t *testing.T) {
	path := writeJSONFile(t, `{
		"plate": "P1",
		"batch": "B1",
		"well": "A1",
		"site": 2,
		"cycle": 1,
		"channels": ["DNA", "Phalloidin"],
		"arm": "cp"
	}`)
	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Plate != "P1" || meta.Batch != "B1" || meta.Well != "A1" || meta.Arm != "cp" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if meta.Site == nil || *meta.Site != 2 || meta.Cycle == nil || *meta.Cycle != 1 {
		t.Fatalf("numeric fields lost: %+v", meta)
	}
	if !reflect.DeepEqual(meta.Channels, []string{"DNA", "Phalloidin"}) {
		t.Fatalf("unexpected channels %v", meta.Channels)
	}
}

func TestLoadMetadataChannelsAsString(t *testing.T) {
	path := writeJSONFile(t, `{"plate": "P1", "channels": "DNA, GFP"}`)
	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(meta.Channels, []string{"DNA", "GFP"}) {
		t.Fatalf("comma string must split: %v", meta.Channels)
	}
}

func TestLoadMetadataCyclesScalarOrList(t *testing.T) {
	meta, err := LoadMetadata(writeJSONFile(t, `{"plate": "P1", "cycles": 3}`))
	if err != nil {
		t.Fatalf("load scalar: %v", err)
	}
	if !reflect.DeepEqual(meta.Cycles, []int{3}) {
		t.Fatalf("scalar cycles: %v", meta.Cycles)
	}
	meta, err = LoadMetadata(writeJSONFile(t, `{"plate": "P1", "cycles": [1, 2]}`))
	if err != nil {
		t.Fatalf("load list: %v", err)
	}
	if !reflect.DeepEqual(meta.Cycles, []int{1, 2}) {
		t.Fatalf("list cycles: %v", meta.Cycles)
	}
}

func TestLoadMetadataImageEntries(t *testing.T) {
	path := writeJSONFile(t, `{
		"plate": "P1",
		"image_metadata": [
			{"well": "A1", "site": 0},
			{"well": "A2", "site": 1, "filename": "img.tiff", "cycle": 2, "channel": "DNA"}
		]
	}`)
	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(meta.Images) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(meta.Images))
	}
	second := meta.Images[1]
	if second.Filename != "img.tiff" || second.Channel != "DNA" || second.Cycle == nil || *second.Cycle != 2 {
		t.Fatalf("entry fields lost: %+v", second)
	}
}

func TestLoadMetadataMissingPlate(t *testing.T) {
	if _, err := LoadMetadata(writeJSONFile(t, `{"well": "A1"}`)); err == nil {
		t.Fatal("plate is mandatory")
	}
}

func TestLoadMetadataMissingFile(t *testing.T) {
	if _, err := LoadMetadata(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestBaseRecord(t *testing.T) {
	site := 2
	meta := Metadata{Plate: "P1", Batch: "B1", Well: "A1", Site: &site}
	rec := meta.BaseRecord()
	want := domain.Record{"plate": "P1", "batch": "B1", "well": "A1", "site": "2"}
	if !reflect.DeepEqual(rec, want) {
		t.Fatalf("got %v want %v", rec, want)
	}
}
