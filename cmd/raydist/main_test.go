package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nwillc/raydist/pkg/pixel"
)

func TestEnvIntDefaultsWhenUnsetOrInvalid(t *testing.T) {
	os.Unsetenv("RAYDIST_TEST_VAR")
	if got := envInt("RAYDIST_TEST_VAR", 42); got != 42 {
		t.Fatalf("envInt(unset) = %d, want default 42", got)
	}

	os.Setenv("RAYDIST_TEST_VAR", "not-a-number")
	defer os.Unsetenv("RAYDIST_TEST_VAR")
	if got := envInt("RAYDIST_TEST_VAR", 42); got != 42 {
		t.Fatalf("envInt(invalid) = %d, want default 42", got)
	}
}

func TestEnvIntParsesPositiveValue(t *testing.T) {
	os.Setenv("RAYDIST_TEST_VAR", "7")
	defer os.Unsetenv("RAYDIST_TEST_VAR")
	if got := envInt("RAYDIST_TEST_VAR", 42); got != 7 {
		t.Fatalf("envInt() = %d, want 7", got)
	}
}

func TestWritePNGProducesNonEmptyFile(t *testing.T) {
	plane := pixel.NewPlane(4, 4)
	path := filepath.Join(t.TempDir(), "out.png")

	if err := writePNG(plane, path); err != nil {
		t.Fatalf("writePNG() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty PNG file")
	}
}
