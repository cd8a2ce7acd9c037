// Package validator enforces the per-mod preconditions that must hold
// before a record is allowed to participate in dependency resolution:
// compatibility DB status, the host's minimum API version, entry-file
// existence, and uniqueness of the mod id.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrelmods/resolver/pkg/compatdb"
	"github.com/kestrelmods/resolver/pkg/metadata"
	"github.com/kestrelmods/resolver/pkg/semver"
)

// UpdateURLLookup resolves an update key to a URL. The validator calls it
// with the mod's unique id when a broken or obsolete DB record carries no
// alternative URL. Returning nil means no update URL is known.
type UpdateURLLookup func(key string) *string

// Validate mutates records in place, failing any whose manifest does not
// satisfy the rules below. Records already Failed on entry are skipped.
// Rules run in order for every record still Found, then the duplicate-id
// rule runs once over the whole list.
func Validate(records []*metadata.ModMetadata, hostAPIVersion semver.Version, getUpdateURL UpdateURLLookup) {
	for _, record := range records {
		if !record.IsFound() {
			continue
		}
		checkCompatibilityStatus(record, getUpdateURL)
	}
	for _, record := range records {
		if !record.IsFound() {
			continue
		}
		checkHostAPIFloor(record, hostAPIVersion)
	}
	for _, record := range records {
		if !record.IsFound() {
			continue
		}
		checkEntryFile(record)
	}
	checkDuplicateUniqueIDs(records)
}

func checkCompatibilityStatus(record *metadata.ModMetadata, getUpdateURL UpdateURLLookup) {
	if record.DataRecord == nil {
		return
	}
	switch record.DataRecord.Status {
	case compatdb.StatusAssumeBroken, compatdb.StatusObsolete:
		url := record.DataRecord.AlternativeURL
		if url == nil && getUpdateURL != nil {
			url = getUpdateURL(record.Manifest.UniqueID)
		}
		msg := fmt.Sprintf("broken: %s is marked %s", record.Manifest.UniqueID, record.DataRecord.Status)
		if url != nil {
			msg = fmt.Sprintf("%s (see %s)", msg, *url)
		}
		record.SetFailed(msg)
	}
}

func checkHostAPIFloor(record *metadata.ModMetadata, hostAPIVersion semver.Version) {
	floor := record.Manifest.MinimumAPIVersion
	if floor == nil {
		return
	}
	if semver.Compare(*floor, hostAPIVersion) != semver.Greater {
		return
	}
	record.SetFailed(fmt.Sprintf("needs newer SMAPI version: requires %s, host is %s", floor, hostAPIVersion))
}

func checkEntryFile(record *metadata.ModMetadata) {
	m := record.Manifest
	if m.IsContentPack() {
		if m.EntryFile != "" {
			record.SetFailed(fmt.Sprintf("missing DLL: content pack %s must not declare an entryFile", m.UniqueID))
		}
		return
	}

	entryPath := filepath.Join(record.DirectoryPath, m.EntryFile)
	if _, err := os.Stat(entryPath); err != nil {
		record.SetFailed(fmt.Sprintf("missing DLL: %s not found in %s", m.EntryFile, record.DirectoryPath))
	}
}

func checkDuplicateUniqueIDs(records []*metadata.ModMetadata) {
	groups := make(map[string][]*metadata.ModMetadata)
	for _, record := range records {
		if !record.IsFound() {
			continue
		}
		key := normalizedID(record.Manifest.UniqueID)
		groups[key] = append(groups[key], record)
	}

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		folders := make([]string, 0, len(group))
		for _, record := range group {
			folders = append(folders, record.DirectoryPath)
		}
		for _, record := range group {
			record.SetFailed(fmt.Sprintf("duplicate unique ID: %s also claimed by %s", record.Manifest.UniqueID, joinOthers(folders, record.DirectoryPath)))
		}
	}
}

func joinOthers(folders []string, self string) string {
	result := ""
	for _, f := range folders {
		if f == self {
			continue
		}
		if result != "" {
			result += ", "
		}
		result += f
	}
	return result
}

func normalizedID(id string) string {
	return strings.ToLower(id)
}
