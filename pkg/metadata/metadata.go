// Package metadata holds ModMetadata, the resolver's single mutable
// per-mod record. Every other component in this module consumes and
// returns immutable values; ModMetadata is what they mutate in place as
// ownership passes from the scanner to the validator to the dependency
// resolver.
package metadata

import (
	"path/filepath"
	"strings"

	"github.com/kestrelmods/resolver/pkg/compatdb"
	"github.com/kestrelmods/resolver/pkg/logging"
	"github.com/kestrelmods/resolver/pkg/manifest"
	"github.com/kestrelmods/resolver/pkg/scanner"
)

// Status is a record's current lifecycle state.
type Status int

const (
	// StatusFound means the record currently has a usable Manifest.
	StatusFound Status = iota
	// StatusFailed is terminal: the record carries a non-empty Error and
	// is no longer reconsidered by later stages.
	StatusFailed
)

func (s Status) String() string {
	if s == StatusFailed {
		return "Failed"
	}
	return "Found"
}

// ModMetadata is the resolver's per-mod mutable state.
type ModMetadata struct {
	Manifest      *manifest.Manifest
	DataRecord    *compatdb.ModDataRecord
	DirectoryPath string
	DisplayName   string
	Status        Status
	Error         *string

	// Dependencies holds the records this one resolved its manifest
	// dependencies to, filled in by the dependency resolver. Only ever
	// non-empty for a record that reaches that stage still Found.
	Dependencies []*ModMetadata
}

// New builds a ModMetadata from a scan result. A scan entry that failed to
// produce a manifest yields a record that starts out Failed; otherwise the
// record starts out Found and dataRecord (which may be nil) is attached for
// the validator to consult.
func New(entry scanner.ScanEntry, dataRecord *compatdb.ModDataRecord) *ModMetadata {
	m := &ModMetadata{
		DirectoryPath: entry.DirectoryPath,
		DisplayName:   filepath.Base(entry.DirectoryPath),
	}

	if entry.Err != nil {
		msg := entry.Err.Error()
		m.Status = StatusFailed
		m.Error = &msg
		return m
	}

	m.Manifest = entry.Manifest
	m.DataRecord = dataRecord
	m.Status = StatusFound
	if entry.Manifest.Name != "" {
		m.DisplayName = entry.Manifest.Name
	}
	return m
}

// SetFailed transitions the record to Failed with the given message. The
// transition is one-way and idempotent: calling it again after the record
// is already Failed drops the new message and only logs it at debug level,
// so the first recorded failure reason always wins.
func (m *ModMetadata) SetFailed(message string) {
	if m.Status == StatusFailed {
		logging.Debugf(logging.StageMetadata, "%s already Failed (%q); dropping new failure %q", m.DisplayName, m.errorText(), message)
		return
	}
	m.Status = StatusFailed
	m.Error = &message
}

func (m *ModMetadata) errorText() string {
	if m.Error == nil {
		return ""
	}
	return *m.Error
}

// HasId reports whether this record's manifest declares uniqueId,
// compared case-insensitively. A record with no manifest never matches.
func (m *ModMetadata) HasId(uniqueID string) bool {
	if m.Manifest == nil {
		return false
	}
	return strings.EqualFold(m.Manifest.UniqueID, uniqueID)
}

// IsFound reports whether the record is still in the Found state.
func (m *ModMetadata) IsFound() bool {
	return m.Status == StatusFound
}
