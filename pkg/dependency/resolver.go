// Package dependency builds the dependency graph between Found metadata
// records, fails records whose required dependencies are missing or
// version-incompatible, detects cycles, and emits a load order in which
// every record follows everything it depends on.
package dependency

import (
	"fmt"
	"strings"

	"github.com/kestrelmods/resolver/pkg/compatdb"
	"github.com/kestrelmods/resolver/pkg/manifest"
	"github.com/kestrelmods/resolver/pkg/metadata"
	"github.com/kestrelmods/resolver/pkg/semver"
)

// color marks a node's state during a depth-first walk.
type color int

const (
	white color = iota
	gray
	black
)

// Resolve partitions records into a Failed preamble (original relative
// order preserved) and a topologically ordered tail built from the
// remaining records. db is accepted for interface parity with the
// component this package implements, which names the compatibility
// database among its inputs; the ordering algorithm itself consults only
// manifest dependency declarations and each record's own Status, so db is
// otherwise unused here — compatibility-driven failures are already
// applied upstream by the validator.
func Resolve(records []*metadata.ModMetadata, db *compatdb.DB) []*metadata.ModMetadata {
	_ = db

	var preamble, found []*metadata.ModMetadata
	for _, r := range records {
		if r.IsFound() {
			found = append(found, r)
		} else {
			preamble = append(preamble, r)
		}
	}

	index := buildIndex(found)
	resolveReferences(found, index)

	for {
		changed := propagateFailures(found)
		if detectCycles(found) {
			changed = true
		}
		if !changed {
			break
		}
	}

	tail := topologicalEmit(found)

	result := make([]*metadata.ModMetadata, 0, len(records))
	result = append(result, preamble...)
	result = append(result, tail...)
	return result
}

func buildIndex(found []*metadata.ModMetadata) map[string]*metadata.ModMetadata {
	index := make(map[string]*metadata.ModMetadata, len(found))
	for _, r := range found {
		index[strings.ToLower(r.Manifest.UniqueID)] = r
	}
	return index
}

// resolveReferences is step 2: turn each Found record's textual
// dependency ids into pointers to sibling records, failing the record on
// a missing required dependency or an unmet minimum version.
func resolveReferences(found []*metadata.ModMetadata, index map[string]*metadata.ModMetadata) {
	for _, r := range found {
		if !r.IsFound() {
			continue
		}
		for _, d := range effectiveDependencies(r.Manifest) {
			target, ok := index[strings.ToLower(d.UniqueID)]
			if !ok {
				if d.Required {
					r.SetFailed(fmt.Sprintf("missing dependencies: %s requires %s, which was not found", r.Manifest.UniqueID, d.UniqueID))
				}
				continue
			}
			if d.MinimumVersion != nil && semver.Compare(target.Manifest.Version, *d.MinimumVersion) == semver.Less {
				r.SetFailed(fmt.Sprintf("missing dependencies: %s requires %s >= %s, found %s", r.Manifest.UniqueID, d.UniqueID, d.MinimumVersion, target.Manifest.Version))
				continue
			}
			r.Dependencies = append(r.Dependencies, target)
		}
	}
}

// effectiveDependencies appends the implicit contentPackFor reference, if
// any, to the manifest's declared dependency list.
func effectiveDependencies(m *manifest.Manifest) []manifest.ManifestDependency {
	deps := m.Dependencies
	if m.ContentPackFor != nil {
		deps = append(append([]manifest.ManifestDependency{}, deps...), manifest.ManifestDependency{
			UniqueID: m.ContentPackFor.UniqueID,
			Required: true,
		})
	}
	return deps
}

// propagateFailures is step 3: fail any Found record with a Failed direct
// dependency. Returns whether any record newly failed this pass.
func propagateFailures(found []*metadata.ModMetadata) bool {
	changed := false
	for _, r := range found {
		if !r.IsFound() {
			continue
		}
		for _, dep := range r.Dependencies {
			if !dep.IsFound() {
				r.SetFailed(fmt.Sprintf("missing dependencies: %s depends on failed mod %s", r.Manifest.UniqueID, dep.Manifest.UniqueID))
				changed = true
				break
			}
		}
	}
	return changed
}

// detectCycles is step 4: a white/gray/black DFS over the Found subset.
// Re-encountering a gray node means every record on the path from that
// node to the current one forms a cycle; all of them are failed.
func detectCycles(found []*metadata.ModMetadata) bool {
	colors := make(map[*metadata.ModMetadata]color, len(found))
	var stack []*metadata.ModMetadata
	changed := false

	var visit func(r *metadata.ModMetadata)
	visit = func(r *metadata.ModMetadata) {
		if !r.IsFound() {
			colors[r] = black
			return
		}
		colors[r] = gray
		stack = append(stack, r)
		for _, dep := range r.Dependencies {
			if !dep.IsFound() {
				continue
			}
			switch colors[dep] {
			case white:
				visit(dep)
			case gray:
				if failCycle(stack, dep) {
					changed = true
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[r] = black
	}

	for _, r := range found {
		if r.IsFound() && colors[r] == white {
			visit(r)
		}
	}
	return changed
}

func failCycle(stack []*metadata.ModMetadata, start *metadata.ModMetadata) bool {
	idx := -1
	for i, r := range stack {
		if r == start {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	members := stack[idx:]
	ids := make([]string, 0, len(members)+1)
	for _, r := range members {
		ids = append(ids, r.Manifest.UniqueID)
	}
	ids = append(ids, start.Manifest.UniqueID)
	msg := fmt.Sprintf("dependency cycle: %s", strings.Join(ids, " -> "))

	any := false
	for _, r := range members {
		if r.IsFound() {
			any = true
		}
		r.SetFailed(msg)
	}
	return any
}

// topologicalEmit is step 5: DFS over the records still Found once the
// propagate/cycle fixpoint has settled, emitting a node only once every
// dependency it has has itself been emitted, then appends the records that
// became Failed during this same pass (cycle members, transitive failures)
// in their original relative order. Surviving Found records therefore
// always lead the output, matching the preamble/tail split the caller
// expects; a record already Failed before this stage started never reaches
// this function at all (Resolve filters it into the preamble).
func topologicalEmit(found []*metadata.ModMetadata) []*metadata.ModMetadata {
	colors := make(map[*metadata.ModMetadata]color, len(found))
	output := make([]*metadata.ModMetadata, 0, len(found))

	var visit func(r *metadata.ModMetadata)
	visit = func(r *metadata.ModMetadata) {
		if colors[r] == black {
			return
		}
		colors[r] = gray
		for _, dep := range r.Dependencies {
			if colors[dep] != black {
				visit(dep)
			}
		}
		colors[r] = black
		output = append(output, r)
	}

	for _, r := range found {
		if r.IsFound() && colors[r] == white {
			visit(r)
		}
	}

	for _, r := range found {
		if !r.IsFound() {
			output = append(output, r)
		}
	}
	return output
}
