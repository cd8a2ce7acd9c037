// Package compatdb holds the bundled compatibility database: a versioned,
// embedded document mapping mod unique ids (plus a version range) to a
// known status, looked up once per candidate when its metadata record is
// built; the validator then consults the attached result.
package compatdb

import (
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/kestrelmods/resolver/pkg/semver"
)

//go:embed compatdb.yaml
var embeddedDocument []byte

// Status is the compatibility verdict a DB record carries for a mod.
type Status int

const (
	StatusAssumedOK Status = iota
	StatusAssumeBroken
	StatusObsolete
)

func (s Status) String() string {
	switch s {
	case StatusAssumeBroken:
		return "AssumeBroken"
	case StatusObsolete:
		return "Obsolete"
	default:
		return "AssumedOK"
	}
}

func parseStatus(raw string) (Status, error) {
	switch strings.ToLower(raw) {
	case "", "assumedok", "assumed-ok":
		return StatusAssumedOK, nil
	case "assumebroken":
		return StatusAssumeBroken, nil
	case "obsolete":
		return StatusObsolete, nil
	default:
		return StatusAssumedOK, fmt.Errorf("unknown status %q", raw)
	}
}

// ModDataRecord is the result of a successful DB lookup.
type ModDataRecord struct {
	Status Status
	// AlternativeURL, when set, names a replacement for a broken or
	// obsolete mod.
	AlternativeURL *string
	// StatusUpperVersion is the upper bound of the version range this
	// status applies to, as declared by the matching DB entry.
	StatusUpperVersion *semver.Version
}

type rawDocument struct {
	Version int         `yaml:"version"`
	Records []rawRecord `yaml:"records"`
}

type rawRecord struct {
	UniqueID       string `yaml:"uniqueId"`
	Status         string `yaml:"status"`
	LowerVersion   string `yaml:"lowerVersion"`
	UpperVersion   string `yaml:"upperVersion"`
	AlternativeURL string `yaml:"alternativeUrl"`
}

type entry struct {
	uniqueIDLower string
	lower, upper  semver.Version
	record        ModDataRecord
}

// DB is an immutable, loaded compatibility database.
type DB struct {
	entries []entry
}

// Load parses document into a DB. A record that cannot be parsed is
// skipped and its error is aggregated into the returned error rather than
// failing the whole load, so one malformed record does not hide the rest.
func Load(document []byte) (*DB, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(document, &raw); err != nil {
		return nil, fmt.Errorf("decoding compatibility database: %w", err)
	}
	if raw.Version != 1 {
		return nil, fmt.Errorf("unsupported compatibility database version %d, expected 1", raw.Version)
	}

	db := &DB{entries: make([]entry, 0, len(raw.Records))}
	var errs error
	for i, r := range raw.Records {
		e, err := buildEntry(r)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("compatibility record %d (%s): %w", i, r.UniqueID, err))
			continue
		}
		db.entries = append(db.entries, e)
	}
	return db, errs
}

// LoadEmbedded parses the compatibility database bundled with this module.
func LoadEmbedded() (*DB, error) {
	return Load(embeddedDocument)
}

func buildEntry(r rawRecord) (entry, error) {
	if r.UniqueID == "" {
		return entry{}, fmt.Errorf("missing uniqueId")
	}
	status, err := parseStatus(r.Status)
	if err != nil {
		return entry{}, err
	}

	lower := semver.Version{}
	if r.LowerVersion != "" {
		lower, err = semver.Parse(r.LowerVersion)
		if err != nil {
			return entry{}, fmt.Errorf("parsing lowerVersion: %w", err)
		}
	}
	if r.UpperVersion == "" {
		return entry{}, fmt.Errorf("missing upperVersion")
	}
	upper, err := semver.Parse(r.UpperVersion)
	if err != nil {
		return entry{}, fmt.Errorf("parsing upperVersion: %w", err)
	}

	record := ModDataRecord{Status: status, StatusUpperVersion: &upper}
	if r.AlternativeURL != "" {
		url := r.AlternativeURL
		record.AlternativeURL = &url
	}

	return entry{
		uniqueIDLower: strings.ToLower(r.UniqueID),
		lower:         lower,
		upper:         upper,
		record:        record,
	}, nil
}

// Lookup returns the record matching uniqueID (case-insensitive) whose
// declared range contains version, or nil if none applies.
func (db *DB) Lookup(uniqueID string, version semver.Version) *ModDataRecord {
	key := strings.ToLower(uniqueID)
	for _, e := range db.entries {
		if e.uniqueIDLower != key {
			continue
		}
		if semver.IsAtLeast(version, e.lower) && semver.IsAtLeast(e.upper, version) {
			rec := e.record
			return &rec
		}
	}
	return nil
}
