// Package scanner walks a mods root directory and emits one candidate per
// folder reachable from it, classifying each by whether (and where) a
// manifest document was found.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/kestrelmods/resolver/pkg/logging"
	"github.com/kestrelmods/resolver/pkg/manifest"
	"github.com/kestrelmods/resolver/pkg/sets"
)

// maxDescentDepth bounds how far the scanner will descend into a candidate
// folder looking for a substitute manifest. The source scanner this is
// modeled on uses a loose, undocumented heuristic; a small fixed bound
// keeps behavior predictable without materially limiting real mod layouts.
const maxDescentDepth = 4

// Parser produces a Manifest (or an error) from a candidate folder. It is
// satisfied by manifest.Parse.
type Parser func(dirPath string) (*manifest.Manifest, error)

// ScanEntry is one candidate folder discovered under the mods root.
type ScanEntry struct {
	DirectoryPath string
	Manifest      *manifest.Manifest
	Err           error
}

// Scan enumerates root's immediate subdirectories and, for each, either
// parses its manifest directly, substitutes a single reachable nested
// manifest, splits into one entry per sibling manifest, or reports that
// none was found. A subdirectory that cannot be read during the
// bounded-depth descent (e.g. a permission error) does not abort the scan:
// its error is aggregated into the returned error with the rest, so one
// unreadable candidate never hides the others. Only an unreadable root
// itself is fatal.
func Scan(root string, parse Parser) ([]ScanEntry, error) {
	topEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading mods root %q: %w", root, err)
	}

	names := sets.Set{}
	for _, e := range topEntries {
		if e.IsDir() {
			names[e.Name()] = struct{}{}
		}
	}
	candidateNames := sets.MakeSlice(names)

	var results []ScanEntry
	var errs error
	for _, name := range candidateNames {
		entries, err := scanCandidate(filepath.Join(root, name), parse)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		results = append(results, entries...)
	}
	return results, errs
}

func scanCandidate(dir string, parse Parser) ([]ScanEntry, error) {
	if manifest.DocumentExists(dir) {
		return []ScanEntry{parseInto(dir, parse)}, nil
	}

	reachable, err := findReachableManifests(dir, 1)
	switch len(reachable) {
	case 0:
		logging.Debugf(logging.StageScanner, "no manifest reachable from %s", dir)
		return []ScanEntry{{DirectoryPath: dir, Err: errors.New("no manifest found")}}, err
	case 1:
		logging.Debugf(logging.StageScanner, "substituting %s for candidate %s", reachable[0], dir)
		return []ScanEntry{parseInto(reachable[0], parse)}, err
	default:
		entries := make([]ScanEntry, 0, len(reachable))
		for _, sub := range reachable {
			entries = append(entries, parseInto(sub, parse))
		}
		return entries, err
	}
}

func parseInto(dir string, parse Parser) ScanEntry {
	m, err := parse(dir)
	if err != nil {
		return ScanEntry{DirectoryPath: dir, Err: err}
	}
	return ScanEntry{DirectoryPath: dir, Manifest: m}
}

// findReachableManifests returns, in lexical order, every directory within
// maxDescentDepth of dir (dir itself excluded) that directly contains a
// manifest document. It does not descend past a directory once that
// directory itself contains one. A directory that cannot be read is
// skipped (treated as containing nothing reachable) and its error is
// aggregated into the returned error rather than discarded.
func findReachableManifests(dir string, depth int) ([]string, error) {
	if depth > maxDescentDepth {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	names := sets.Set{}
	for _, e := range entries {
		if e.IsDir() {
			names[e.Name()] = struct{}{}
		}
	}
	subdirNames := sets.MakeSlice(names)

	var found []string
	var errs error
	for _, name := range subdirNames {
		sub := filepath.Join(dir, name)
		if manifest.DocumentExists(sub) {
			found = append(found, sub)
			continue
		}
		nested, err := findReachableManifests(sub, depth+1)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		found = append(found, nested...)
	}
	return found, errs
}
