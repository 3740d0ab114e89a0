package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"platebind/internal/blob/core"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()
	if store.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	if _, err := store.Put(ctx, "a/one", strings.NewReader("one"), core.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a/one", strings.NewReader("dup"), core.PutOptions{}); err == nil {
		t.Fatal("duplicate put must fail")
	}
	if _, err := store.Put(ctx, "b/two", strings.NewReader("two"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	info, rc, err := store.Get(ctx, "a/one")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	payload, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(payload) != "one" || info.ContentType != "text/plain" {
		t.Fatalf("unexpected get result %q %+v", payload, info)
	}

	infos, err := store.List(ctx, "a/")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list prefix: %v %+v", err, infos)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %v %+v", err, all)
	}
	if all[0].Key != "a/one" {
		t.Fatalf("listing must be sorted, got %s first", all[0].Key)
	}

	if _, err := store.PresignURL(ctx, "a/one", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	existed, err := store.Delete(ctx, "a/one")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := store.Head(ctx, "a/one"); err == nil {
		t.Fatal("head after delete must fail")
	}
}
