package guard

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestProbe_QuietDirectory(t *testing.T) {
	busy, err := Probe(t.TempDir(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Probe() returned error: %v", err)
	}
	if busy {
		t.Error("Probe() = true on an untouched directory")
	}
}

func TestProbe_DetectsWrite(t *testing.T) {
	dir := t.TempDir()

	done := make(chan error, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		done <- os.WriteFile(filepath.Join(dir, "storage.json"), []byte(`{}`), 0o644)
	}()

	busy, err := Probe(dir, 2*time.Second)
	if err != nil {
		t.Fatalf("Probe() returned error: %v", err)
	}
	if werr := <-done; werr != nil {
		t.Fatalf("background write failed: %v", werr)
	}
	if !busy {
		t.Error("Probe() = false while the directory was being written")
	}
}

func TestProbe_MissingDirectory(t *testing.T) {
	busy, err := Probe(filepath.Join(t.TempDir(), "absent"), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Probe() returned error: %v", err)
	}
	if busy {
		t.Error("Probe() = true on a missing directory")
	}
}
