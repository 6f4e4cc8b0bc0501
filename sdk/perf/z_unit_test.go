package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunModes(t *testing.T) {
	for _, mode := range []string{"cpu", "heap", "allocs"} {
		dir := t.TempDir()
		calls := 0
		if err := Run(func() error { calls++; return nil }, mode, dir); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if calls != 1 {
			t.Fatalf("%s: exe called %d times", mode, calls)
		}
		info, err := os.Stat(filepath.Join(dir, mode+".pprof"))
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s: profile not written: %v", mode, err)
		}
	}
}

func TestRunPassesError(t *testing.T) {
	boom := errors.New("boom")
	dir := t.TempDir()
	if err := Run(func() error { return boom }, "", dir); !errors.Is(err, boom) {
		t.Fatalf("expected exe error, got %v", err)
	}
	if err := Run(func() error { return boom }, "heap", dir); !errors.Is(err, boom) {
		t.Fatalf("expected exe error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "heap.pprof")); !os.IsNotExist(err) {
		t.Fatalf("heap profile must not be written after a failure")
	}
	if err := Run(func() error { return nil }, "trace", dir); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}
