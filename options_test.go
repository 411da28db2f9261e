package ffframe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOptions_SetDefaults(t *testing.T) {
	var o Options
	o.setDefaults()
	if o.BufferLength != 8 {
		t.Fatalf("expected default BufferLength 8, got %d", o.BufferLength)
	}
	if o.Accelerator != AccelSoftware {
		t.Fatalf("expected default Accelerator AccelSoftware, got %v", o.Accelerator)
	}
}

func TestOptions_SetDefaultsPreservesExplicitValues(t *testing.T) {
	o := Options{BufferLength: 32, Accelerator: AccelCUDA}
	o.setDefaults()
	if o.BufferLength != 32 || o.Accelerator != AccelCUDA {
		t.Fatalf("setDefaults overwrote explicit values: %+v", o)
	}
}

func TestOptions_ValidateRejectsBadBufferLength(t *testing.T) {
	o := Options{BufferLength: 0, Accelerator: AccelSoftware}
	if err := o.validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOptions_ValidateRejectsUnknownAccelerator(t *testing.T) {
	o := Options{BufferLength: 8, Accelerator: Accelerator("opencl")}
	if err := o.validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOptions_ValidateAcceptsDefaults(t *testing.T) {
	o := Options{BufferLength: 8, Accelerator: AccelSoftware}
	if err := o.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDetectAccelerator_FallsBackToSoftwareWithoutCUDA(t *testing.T) {
	tmp := t.TempDir()
	script := filepath.Join(tmp, "ffmpeg")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho none\nexit 0\n"), 0755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	origPath := os.Getenv("PATH")
	t.Cleanup(func() { _ = os.Setenv("PATH", origPath) })
	_ = os.Setenv("PATH", tmp+string(os.PathListSeparator)+origPath)

	got, err := DetectAccelerator(context.Background())
	if err != nil {
		t.Fatalf("DetectAccelerator: %v", err)
	}
	if got != AccelSoftware {
		t.Fatalf("expected AccelSoftware, got %v", got)
	}
}
