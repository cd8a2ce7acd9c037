// Package resolver exposes the three operations a host application drives
// to turn a mods root into an ordered, validated load plan: ReadManifests,
// ValidateManifests, and ProcessDependencies. It is the only surface this
// module exposes to its caller; everything else (scanning, parsing,
// validation rules, graph ordering) is an internal collaborator.
package resolver

import (
	"github.com/kestrelmods/resolver/pkg/compatdb"
	"github.com/kestrelmods/resolver/pkg/dependency"
	"github.com/kestrelmods/resolver/pkg/logging"
	"github.com/kestrelmods/resolver/pkg/manifest"
	"github.com/kestrelmods/resolver/pkg/metadata"
	"github.com/kestrelmods/resolver/pkg/scanner"
	"github.com/kestrelmods/resolver/pkg/semver"
	"github.com/kestrelmods/resolver/pkg/validator"
)

// ReadManifests runs the folder scanner and manifest parser over root and
// wraps every result in a metadata record. It never fails in aggregate: a
// root that cannot be read, or that contains no candidates, yields an
// empty slice rather than an error, and a candidate that could not be
// read is logged as a warning without dropping the other candidates.
func ReadManifests(root string, parse scanner.Parser, db *compatdb.DB) []*metadata.ModMetadata {
	entries, err := scanner.Scan(root, parse)
	if err != nil {
		logging.Warnf(logging.StageResolver, "scanning %s: %v", root, err)
	}

	records := make([]*metadata.ModMetadata, 0, len(entries))
	for _, entry := range entries {
		var dataRecord *compatdb.ModDataRecord
		if entry.Manifest != nil && db != nil {
			dataRecord = db.Lookup(entry.Manifest.UniqueID, entry.Manifest.Version)
		}
		records = append(records, metadata.New(entry, dataRecord))
	}
	return records
}

// ValidateManifests runs the validator over records in place.
func ValidateManifests(records []*metadata.ModMetadata, hostAPIVersion semver.Version, getUpdateURL validator.UpdateURLLookup) {
	validator.Validate(records, hostAPIVersion, getUpdateURL)
}

// ProcessDependencies runs the dependency resolver, returning records in
// topological load order with a Failed preamble ahead of it.
func ProcessDependencies(records []*metadata.ModMetadata, db *compatdb.DB) []*metadata.ModMetadata {
	return dependency.Resolve(records, db)
}

// DefaultParser is the manifest.Parse function, usable directly as the
// scanner.Parser argument to ReadManifests.
var DefaultParser scanner.Parser = manifest.Parse
