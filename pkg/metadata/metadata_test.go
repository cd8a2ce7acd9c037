package metadata_test

import (
	"errors"
	"testing"

	"github.com/kestrelmods/resolver/pkg/manifest"
	"github.com/kestrelmods/resolver/pkg/metadata"
	"github.com/kestrelmods/resolver/pkg/scanner"
	"github.com/kestrelmods/resolver/pkg/semver"
)

func TestNewFromFailedScan(t *testing.T) {
	entry := scanner.ScanEntry{DirectoryPath: "/mods/Broken", Err: errors.New("no manifest found")}
	m := metadata.New(entry, nil)

	if m.Status != metadata.StatusFailed {
		t.Fatalf("Status = %v, want Failed", m.Status)
	}
	if m.Error == nil || *m.Error != "no manifest found" {
		t.Errorf("Error = %v", m.Error)
	}
}

func TestNewFromFoundScan(t *testing.T) {
	v, _ := semver.Parse("1.0.0")
	man := &manifest.Manifest{Name: "Good Mod", UniqueID: "good.mod", Version: v}
	entry := scanner.ScanEntry{DirectoryPath: "/mods/Good", Manifest: man}
	m := metadata.New(entry, nil)

	if m.Status != metadata.StatusFound {
		t.Fatalf("Status = %v, want Found", m.Status)
	}
	if m.Error != nil {
		t.Errorf("Error = %v, want nil", m.Error)
	}
	if m.DisplayName != "Good Mod" {
		t.Errorf("DisplayName = %q, want Good Mod", m.DisplayName)
	}
	if !m.HasId("GOOD.MOD") {
		t.Error("HasId should match case-insensitively")
	}
}

func TestSetFailedIsIdempotent(t *testing.T) {
	v, _ := semver.Parse("1.0.0")
	man := &manifest.Manifest{Name: "Mod", UniqueID: "mod", Version: v}
	m := metadata.New(scanner.ScanEntry{DirectoryPath: "/mods/Mod", Manifest: man}, nil)

	m.SetFailed("first failure")
	if m.Error == nil || *m.Error != "first failure" {
		t.Fatalf("Error = %v, want 'first failure'", m.Error)
	}

	m.SetFailed("second failure")
	if *m.Error != "first failure" {
		t.Errorf("Error changed to %q, want it to stay 'first failure'", *m.Error)
	}
	if m.Status != metadata.StatusFailed {
		t.Errorf("Status = %v, want Failed", m.Status)
	}
}

func TestHasIdWithNilManifest(t *testing.T) {
	m := metadata.New(scanner.ScanEntry{DirectoryPath: "/mods/Broken", Err: errors.New("no manifest found")}, nil)
	if m.HasId("anything") {
		t.Error("HasId should be false when Manifest is nil")
	}
}
