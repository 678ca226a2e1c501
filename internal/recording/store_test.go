package recording

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testTensor(t, p, f int) *Tensor {
	x := NewTensor(t, p, f)
	for i := range x.data {
		x.data[i] = float32(i) * 0.5
	}
	return x
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.sqlite")
	store := NewStore(path)
	defer store.Close()

	ctx := context.Background()
	tensor := testTensor(2, 3, 4)
	timestamps := []float64{1700000000.5, 1700000001.12}

	if err := store.PutTensor(ctx, tensor); err != nil {
		t.Fatalf("PutTensor() failed: %v", err)
	}
	if err := store.PutTimestamps(ctx, timestamps); err != nil {
		t.Fatalf("PutTimestamps() failed: %v", err)
	}

	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	gt, gp, gf := rec.Intensity.Dims()
	if gt != 2 || gp != 3 || gf != 4 {
		t.Fatalf("loaded dims = (%d, %d, %d), want (2, 3, 4)", gt, gp, gf)
	}
	if diff := cmp.Diff(tensor.Raw(), rec.Intensity.Raw()); diff != "" {
		t.Errorf("tensor mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(timestamps, rec.Timestamps); diff != "" {
		t.Errorf("timestamps mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreSplitTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.sqlite")
	store := NewStore(path)
	defer store.Close()

	ctx := context.Background()
	if err := store.PutTensor(ctx, testTensor(2, 2, 2)); err != nil {
		t.Fatalf("PutTensor() failed: %v", err)
	}

	pairs := [][2]float64{
		{1700000000, 250},
		{1700000001, 500},
	}
	if err := store.PutSplitTimestamps(ctx, pairs); err != nil {
		t.Fatalf("PutSplitTimestamps() failed: %v", err)
	}

	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := []float64{1700000000.25, 1700000001.5}
	if diff := cmp.Diff(want, rec.Timestamps); diff != "" {
		t.Errorf("timestamps mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.sqlite")
	store := NewStore(path)
	defer store.Close()

	ctx := context.Background()
	if err := store.PutTensor(ctx, testTensor(2, 2, 2)); err != nil {
		t.Fatalf("PutTensor() failed: %v", err)
	}

	replacement := NewTensor(1, 2, 2)
	replacement.Set(0, 1, 1, 42)
	if err := store.PutTensor(ctx, replacement); err != nil {
		t.Fatalf("PutTensor() replacement failed: %v", err)
	}
	if err := store.PutTimestamps(ctx, []float64{1700000000}); err != nil {
		t.Fatalf("PutTimestamps() failed: %v", err)
	}

	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := rec.Intensity.At(0, 1, 1); got != 42 {
		t.Errorf("At(0, 1, 1) = %v, want 42", got)
	}
}

func TestStoreMissingContainer(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.sqlite"))
	defer store.Close()

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStoreMissingDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.sqlite")
	store := NewStore(path)
	defer store.Close()

	// Only the tensor, no timestamp axis.
	if err := store.PutTensor(context.Background(), testTensor(2, 2, 2)); err != nil {
		t.Fatalf("PutTensor() failed: %v", err)
	}

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStoreTimestampLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.sqlite")
	store := NewStore(path)
	defer store.Close()

	ctx := context.Background()
	if err := store.PutTensor(ctx, testTensor(3, 2, 2)); err != nil {
		t.Fatalf("PutTensor() failed: %v", err)
	}
	if err := store.PutTimestamps(ctx, []float64{1700000000}); err != nil {
		t.Fatalf("PutTimestamps() failed: %v", err)
	}

	if _, err := store.Load(ctx); err == nil {
		t.Error("Load() succeeded with a mismatched timestamp axis")
	}
}
