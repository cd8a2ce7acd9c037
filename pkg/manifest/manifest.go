// Package manifest turns a manifest document on disk into a typed Manifest
// value, preserving every top-level key the document carries that this
// package does not recognize.
package manifest

import "github.com/kestrelmods/resolver/pkg/semver"

// ManifestDependency is one entry in a Manifest's dependency list.
type ManifestDependency struct {
	UniqueID       string
	MinimumVersion *semver.Version
	Required       bool
}

// ContentPackRef names the mod a content-pack manifest targets.
type ContentPackRef struct {
	UniqueID string
}

// Manifest is the parsed, typed form of a mod's manifest document.
type Manifest struct {
	Name              string
	Author            string
	Description       string
	UniqueID          string
	Version           semver.Version
	EntryFile         string
	MinimumAPIVersion *semver.Version
	Dependencies      []ManifestDependency
	ContentPackFor    *ContentPackRef

	// ExtraFields holds every top-level document key that does not
	// correspond to a recognized field above, keyed by its original
	// (source) casing, with scalar typing preserved from the decoder.
	ExtraFields map[string]interface{}
}

// IsContentPack reports whether this manifest declares no executable entry
// and instead targets another mod by id.
func (m *Manifest) IsContentPack() bool {
	return m.ContentPackFor != nil
}

// ErrorKind classifies why a manifest document failed to parse.
type ErrorKind int

const (
	// KindMissing means the folder contains no recognized manifest file.
	KindMissing ErrorKind = iota
	// KindMalformed means the manifest file exists but does not decode as
	// a mapping of string keys, or a recognized field has the wrong shape.
	KindMalformed
	// KindIncomplete means a required field is missing or empty.
	KindIncomplete
	// KindBadVersion means version or minimumApiVersion failed to parse.
	KindBadVersion
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissing:
		return "Missing"
	case KindMalformed:
		return "Malformed"
	case KindIncomplete:
		return "Incomplete"
	case KindBadVersion:
		return "BadVersion"
	default:
		return "Unknown"
	}
}

// ParseError is returned by Parse when a candidate folder's manifest
// document could not be turned into a Manifest.
type ParseError struct {
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}
