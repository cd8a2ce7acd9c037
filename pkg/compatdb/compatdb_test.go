package compatdb_test

import (
	"testing"

	"github.com/kestrelmods/resolver/pkg/compatdb"
	"github.com/kestrelmods/resolver/pkg/semver"
)

const testDocument = `
version: 1
records:
  - uniqueId: Broken.Mod
    status: AssumeBroken
    upperVersion: 1.5.0
    alternativeUrl: "https://example.invalid/fixed"
  - uniqueId: obsolete.mod
    status: Obsolete
    upperVersion: 9.9.9
`

func mustParse(t *testing.T, s string) semver.Version {
	t.Helper()
	v, err := semver.Parse(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return v
}

func TestLookupMatchesCaseInsensitive(t *testing.T) {
	db, err := compatdb.Load([]byte(testDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := db.Lookup("broken.mod", mustParse(t, "1.0.0"))
	if rec == nil {
		t.Fatal("expected a match")
	}
	if rec.Status != compatdb.StatusAssumeBroken {
		t.Errorf("Status = %v, want AssumeBroken", rec.Status)
	}
	if rec.AlternativeURL == nil || *rec.AlternativeURL != "https://example.invalid/fixed" {
		t.Errorf("AlternativeURL = %v", rec.AlternativeURL)
	}
}

func TestLookupOutOfRange(t *testing.T) {
	db, err := compatdb.Load([]byte(testDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := db.Lookup("broken.mod", mustParse(t, "2.0.0"))
	if rec != nil {
		t.Fatalf("expected no match above the declared range, got %+v", rec)
	}
}

func TestLookupNoMatch(t *testing.T) {
	db, err := compatdb.Load([]byte(testDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec := db.Lookup("unknown.mod", mustParse(t, "1.0.0")); rec != nil {
		t.Fatalf("expected no match, got %+v", rec)
	}
}

func TestLoadMalformedRecordIsAggregatedNotFatal(t *testing.T) {
	doc := `
version: 1
records:
  - uniqueId: ""
    status: AssumeBroken
    upperVersion: 1.0.0
  - uniqueId: good.mod
    status: Obsolete
    upperVersion: 1.0.0
`
	db, err := compatdb.Load([]byte(doc))
	if err == nil {
		t.Fatal("expected an aggregated error for the malformed record")
	}
	if rec := db.Lookup("good.mod", mustParse(t, "1.0.0")); rec == nil {
		t.Fatal("expected the well-formed record to still have loaded")
	}
}

func TestLoadEmbedded(t *testing.T) {
	db, err := compatdb.LoadEmbedded()
	if err != nil {
		t.Fatalf("unexpected error loading bundled database: %v", err)
	}
	if rec := db.Lookup("example.legacy.crashmod", mustParse(t, "1.0.0")); rec == nil {
		t.Fatal("expected the bundled crashmod entry to match")
	}
}
