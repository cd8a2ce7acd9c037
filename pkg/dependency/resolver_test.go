package dependency_test

import (
	"strings"
	"testing"

	"github.com/kestrelmods/resolver/pkg/dependency"
	"github.com/kestrelmods/resolver/pkg/manifest"
	"github.com/kestrelmods/resolver/pkg/metadata"
	"github.com/kestrelmods/resolver/pkg/scanner"
	"github.com/kestrelmods/resolver/pkg/semver"
)

type depSpec struct {
	id       string
	minVer   string
	required bool
}

func mustVersion(t *testing.T, s string) semver.Version {
	t.Helper()
	v, err := semver.Parse(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return v
}

func newRecord(t *testing.T, id, version string, deps ...depSpec) *metadata.ModMetadata {
	t.Helper()
	manifestDeps := make([]manifest.ManifestDependency, 0, len(deps))
	for _, d := range deps {
		md := manifest.ManifestDependency{UniqueID: d.id, Required: d.required}
		if d.minVer != "" {
			v := mustVersion(t, d.minVer)
			md.MinimumVersion = &v
		}
		manifestDeps = append(manifestDeps, md)
	}
	man := &manifest.Manifest{
		Name:         id,
		UniqueID:     id,
		Version:      mustVersion(t, version),
		EntryFile:    id + ".dll",
		Dependencies: manifestDeps,
	}
	return metadata.New(scanner.ScanEntry{DirectoryPath: "/mods/" + id, Manifest: man}, nil)
}

func idsOf(records []*metadata.ModMetadata) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.Manifest.UniqueID
	}
	return ids
}

func TestResolveEmptyInput(t *testing.T) {
	out := dependency.Resolve(nil, nil)
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", idsOf(out))
	}
}

func TestResolveSimpleChain(t *testing.T) {
	a := newRecord(t, "A", "1.0")
	b := newRecord(t, "B", "1.0", depSpec{id: "A", required: true})
	c := newRecord(t, "C", "1.0", depSpec{id: "B", required: true})

	out := dependency.Resolve([]*metadata.ModMetadata{c, a, b}, nil)

	got := idsOf(out)
	want := []string{"A", "B", "C"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveDiamond(t *testing.T) {
	a := newRecord(t, "A", "1.0")
	b := newRecord(t, "B", "1.0", depSpec{id: "A", required: true})
	c := newRecord(t, "C", "1.0", depSpec{id: "B", required: true})
	d := newRecord(t, "D", "1.0", depSpec{id: "C", required: true})
	e := newRecord(t, "E", "1.0", depSpec{id: "B", required: true})
	f := newRecord(t, "F", "1.0", depSpec{id: "C", required: true}, depSpec{id: "E", required: true})

	out := dependency.Resolve([]*metadata.ModMetadata{c, a, b, d, f, e}, nil)

	got := idsOf(out)
	want := []string{"A", "B", "C", "D", "E", "F"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveCycle(t *testing.T) {
	a := newRecord(t, "A", "1.0")
	b := newRecord(t, "B", "1.0", depSpec{id: "A", required: true})
	c := newRecord(t, "C", "1.0", depSpec{id: "B", required: true}, depSpec{id: "D", required: true})
	d := newRecord(t, "D", "1.0", depSpec{id: "E", required: true})
	e := newRecord(t, "E", "1.0", depSpec{id: "C", required: true})

	out := dependency.Resolve([]*metadata.ModMetadata{c, a, b, d, e}, nil)

	if len(out) != 5 {
		t.Fatalf("expected 5 records, got %d", len(out))
	}
	got := idsOf(out)
	if got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected A, B at positions 0,1, got %v", got)
	}
	for _, r := range out {
		switch r.Manifest.UniqueID {
		case "A", "B":
			if !r.IsFound() {
				t.Errorf("%s should be Found", r.Manifest.UniqueID)
			}
		case "C", "D", "E":
			if r.IsFound() {
				t.Errorf("%s should be Failed", r.Manifest.UniqueID)
			}
			if !strings.HasPrefix(*r.Error, "dependency cycle: ") {
				t.Errorf("%s error = %q, want dependency cycle lead phrase", r.Manifest.UniqueID, *r.Error)
			}
		}
	}
}

func TestResolveVersionGate(t *testing.T) {
	a := newRecord(t, "A", "1.0")
	b := newRecord(t, "B", "1.0", depSpec{id: "A", minVer: "1.1", required: true})

	out := dependency.Resolve([]*metadata.ModMetadata{a, b}, nil)

	var gotA, gotB *metadata.ModMetadata
	for _, r := range out {
		switch r.Manifest.UniqueID {
		case "A":
			gotA = r
		case "B":
			gotB = r
		}
	}
	if !gotA.IsFound() {
		t.Error("A should remain Found")
	}
	if gotB.IsFound() {
		t.Error("B should be Failed")
	}
}

func TestResolveVersionGateSatisfiedWithPrerelease(t *testing.T) {
	a := newRecord(t, "A", "1.0")
	b := newRecord(t, "B", "1.0", depSpec{id: "A", minVer: "1.0-beta", required: true})

	out := dependency.Resolve([]*metadata.ModMetadata{a, b}, nil)

	for _, r := range out {
		if !r.IsFound() {
			t.Errorf("%s should be Found, error: %v", r.Manifest.UniqueID, r.Error)
		}
	}
	got := idsOf(out)
	if strings.Join(got, ",") != "A,B" {
		t.Fatalf("got %v, want [A B]", got)
	}
}

func TestResolveOptionalMissing(t *testing.T) {
	b := newRecord(t, "B", "1.0", depSpec{id: "A", minVer: "1.0", required: false})

	out := dependency.Resolve([]*metadata.ModMetadata{b}, nil)

	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if !out[0].IsFound() {
		t.Errorf("B should be Found, error: %v", out[0].Error)
	}
}

func TestResolvePreservesFailedPreamble(t *testing.T) {
	broken := metadata.New(scanner.ScanEntry{DirectoryPath: "/mods/Broken", Err: errNoManifest{}}, nil)
	a := newRecord(t, "A", "1.0")

	out := dependency.Resolve([]*metadata.ModMetadata{broken, a}, nil)

	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0] != broken {
		t.Error("expected the pre-existing Failed record to lead the output")
	}
}

type errNoManifest struct{}

func (errNoManifest) Error() string { return "no manifest found" }
