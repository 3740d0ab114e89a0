package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"platebind/internal/blob/core"
)

func TestMockS3RoundTrip(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if store.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	if _, err := store.Put(ctx, "manifests/B1_P1.csv", strings.NewReader("Metadata_Well\n"), core.PutOptions{ContentType: "text/csv"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "manifests/B1_P1.csv", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatal("duplicate put must fail via head check")
	}

	info, rc, err := store.Get(ctx, "manifests/B1_P1.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	payload, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(payload) != "Metadata_Well\n" {
		t.Fatalf("unexpected payload %q", payload)
	}
	if info.Key != "manifests/B1_P1.csv" {
		t.Fatalf("unexpected info %+v", info)
	}

	infos, err := store.List(ctx, "manifests/")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %+v", err, infos)
	}

	existed, err := store.Delete(ctx, "manifests/B1_P1.csv")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := store.Head(ctx, "manifests/B1_P1.csv"); err == nil {
		t.Fatal("head after delete must fail")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("PLATEBIND_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without bucket")
	}
}
