package filecache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Errorf("got %q, want v", got)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key: %v", err)
	}
}

func TestExpiry(t *testing.T) {
	c, err := New(t.TempDir(), time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(5 * time.Millisecond)

	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("expected expired miss, got ok=%v err=%v", ok, err)
	}
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c1, _ := New(dir, time.Hour)
	c1.Set(ctx, "k", []byte("persisted"))

	c2, _ := New(dir, time.Hour)
	got, ok, err := c2.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if string(got) != "persisted" {
		t.Errorf("got %q, want persisted", got)
	}
}
