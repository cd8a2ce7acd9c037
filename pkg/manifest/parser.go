package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrelmods/resolver/pkg/logging"
	"github.com/kestrelmods/resolver/pkg/semver"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// recognizedManifestNames maps a lowercased manifest file name to the
// decoder it should be read with. json5 is tried for both the teacher's
// native .json and the looser .json5 extension; yaml covers .yaml/.yml.
var recognizedManifestNames = map[string]func([]byte, interface{}) error{
	"manifest.json":  json5.Unmarshal,
	"manifest.json5": json5.Unmarshal,
	"manifest.yaml":  yaml.Unmarshal,
	"manifest.yml":   yaml.Unmarshal,
}

// recognizedFieldKeys enumerates the canonical (lowercased) field names
// consumed by Parse; anything else found in the document is preserved in
// ExtraFields instead.
var recognizedFieldKeys = map[string]struct{}{
	"name":              {},
	"author":            {},
	"description":       {},
	"uniqueid":          {},
	"version":           {},
	"entryfile":         {},
	"minimumapiversion": {},
	"dependencies":      {},
	"contentpackfor":    {},
}

// Parse reads the manifest document in dirPath and turns it into a
// Manifest, or a *ParseError describing why it could not.
func Parse(dirPath string) (*Manifest, error) {
	fileName, decode, err := locateManifestFile(dirPath)
	if err != nil {
		return nil, &ParseError{Kind: KindMissing, Message: fmt.Sprintf("no manifest document in %s", dirPath)}
	}

	data, err := os.ReadFile(filepath.Join(dirPath, fileName))
	if err != nil {
		return nil, &ParseError{Kind: KindMissing, Message: fmt.Sprintf("reading manifest %s: %v", fileName, err)}
	}

	var raw map[string]interface{}
	if err := decode(data, &raw); err != nil {
		return nil, &ParseError{Kind: KindMalformed, Message: fmt.Sprintf("decoding %s: %v", fileName, err)}
	}
	if raw == nil {
		return nil, &ParseError{Kind: KindMalformed, Message: fmt.Sprintf("%s does not decode as a mapping", fileName)}
	}

	return build(raw)
}

// DocumentExists reports whether dirPath directly contains a recognized
// manifest file, without attempting to decode it.
func DocumentExists(dirPath string) bool {
	_, _, err := locateManifestFile(dirPath)
	return err == nil
}

// locateManifestFile returns the first recognized manifest file name found
// directly inside dirPath (case-insensitive) and the decoder to use for it.
func locateManifestFile(dirPath string) (string, func([]byte, interface{}) error, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return "", nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		decode, ok := recognizedManifestNames[strings.ToLower(entry.Name())]
		if ok {
			return entry.Name(), decode, nil
		}
	}
	return "", nil, fmt.Errorf("no recognized manifest file")
}

// build classifies every key of raw into either a recognized field or
// ExtraFields, then validates and assembles the Manifest.
func build(raw map[string]interface{}) (*Manifest, error) {
	m := &Manifest{ExtraFields: make(map[string]interface{})}

	var (
		nameVal, authorVal, descVal, idVal, entryVal interface{}
		versionVal, apiVersionVal, depsVal, cpForVal interface{}
		haveName, haveAuthor, haveDesc, haveID, haveEntry bool
		haveVersion, haveAPIVersion, haveDeps, haveCPFor   bool
	)

	for key, value := range raw {
		switch strings.ToLower(key) {
		case "name":
			nameVal, haveName = value, true
		case "author":
			authorVal, haveAuthor = value, true
		case "description":
			descVal, haveDesc = value, true
		case "uniqueid":
			idVal, haveID = value, true
		case "version":
			versionVal, haveVersion = value, true
		case "entryfile":
			entryVal, haveEntry = value, true
		case "minimumapiversion":
			apiVersionVal, haveAPIVersion = value, true
		case "dependencies":
			depsVal, haveDeps = value, true
		case "contentpackfor":
			cpForVal, haveCPFor = value, true
		default:
			if _, recognized := recognizedFieldKeys[strings.ToLower(key)]; !recognized {
				m.ExtraFields[key] = value
			}
		}
	}

	if haveName {
		s, ok := asString(nameVal)
		if !ok {
			return nil, &ParseError{Kind: KindMalformed, Message: "field 'name' must be a string"}
		}
		m.Name = s
	}
	if haveAuthor {
		s, ok := asString(authorVal)
		if !ok {
			return nil, &ParseError{Kind: KindMalformed, Message: "field 'author' must be a string"}
		}
		m.Author = s
	}
	if haveDesc {
		s, ok := asString(descVal)
		if !ok {
			return nil, &ParseError{Kind: KindMalformed, Message: "field 'description' must be a string"}
		}
		m.Description = s
	}
	if haveID {
		s, ok := asString(idVal)
		if !ok {
			return nil, &ParseError{Kind: KindMalformed, Message: "field 'uniqueId' must be a string"}
		}
		m.UniqueID = s
	}
	if haveEntry {
		s, ok := asString(entryVal)
		if !ok {
			return nil, &ParseError{Kind: KindMalformed, Message: "field 'entryFile' must be a string"}
		}
		m.EntryFile = s
	}

	if m.Name == "" {
		return nil, &ParseError{Kind: KindIncomplete, Message: "missing required field 'name'"}
	}
	if m.UniqueID == "" {
		return nil, &ParseError{Kind: KindIncomplete, Message: "missing required field 'uniqueId'"}
	}
	if m.EntryFile == "" && !haveCPFor {
		return nil, &ParseError{Kind: KindIncomplete, Message: "missing required field 'entryFile'"}
	}
	if !haveVersion {
		return nil, &ParseError{Kind: KindIncomplete, Message: "missing required field 'version'"}
	}

	versionStr, ok := asString(versionVal)
	if !ok {
		return nil, &ParseError{Kind: KindMalformed, Message: "field 'version' must be a string"}
	}
	if versionStr == "" {
		return nil, &ParseError{Kind: KindIncomplete, Message: "missing required field 'version'"}
	}
	version, err := semver.Parse(versionStr)
	if err != nil {
		return nil, &ParseError{Kind: KindBadVersion, Message: fmt.Sprintf("parsing 'version': %v", err)}
	}
	m.Version = version

	if haveAPIVersion {
		apiStr, ok := asString(apiVersionVal)
		if !ok {
			return nil, &ParseError{Kind: KindMalformed, Message: "field 'minimumApiVersion' must be a string"}
		}
		apiVersion, err := semver.Parse(apiStr)
		if err != nil {
			return nil, &ParseError{Kind: KindBadVersion, Message: fmt.Sprintf("parsing 'minimumApiVersion': %v", err)}
		}
		m.MinimumAPIVersion = &apiVersion
	}

	if haveCPFor {
		ref, err := buildContentPackRef(cpForVal)
		if err != nil {
			return nil, err
		}
		m.ContentPackFor = ref
	}

	if haveDeps {
		deps, err := buildDependencies(depsVal)
		if err != nil {
			return nil, err
		}
		m.Dependencies = deps
	}

	logging.Debugf(logging.StageManifest, "parsed %q (%s)", m.UniqueID, m.Version)
	return m, nil
}

func buildContentPackRef(raw interface{}) (*ContentPackRef, error) {
	asMap, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &ParseError{Kind: KindMalformed, Message: "field 'contentPackFor' must be a mapping"}
	}
	var id string
	for key, value := range asMap {
		if strings.ToLower(key) == "uniqueid" {
			s, ok := asString(value)
			if !ok {
				return nil, &ParseError{Kind: KindMalformed, Message: "field 'contentPackFor.uniqueId' must be a string"}
			}
			id = s
		}
	}
	if id == "" {
		return nil, &ParseError{Kind: KindIncomplete, Message: "missing required field 'contentPackFor.uniqueId'"}
	}
	return &ContentPackRef{UniqueID: id}, nil
}

func buildDependencies(raw interface{}) ([]ManifestDependency, error) {
	asSlice, ok := raw.([]interface{})
	if !ok {
		return nil, &ParseError{Kind: KindMalformed, Message: "field 'dependencies' must be a sequence"}
	}

	deps := make([]ManifestDependency, 0, len(asSlice))
	for i, item := range asSlice {
		asMap, ok := item.(map[string]interface{})
		if !ok {
			return nil, &ParseError{Kind: KindMalformed, Message: fmt.Sprintf("dependency %d must be a mapping", i)}
		}

		dep := ManifestDependency{Required: true}
		haveID := false
		haveRequired := false
		var minVerVal interface{}
		haveMinVer := false

		for key, value := range asMap {
			switch strings.ToLower(key) {
			case "uniqueid":
				s, ok := asString(value)
				if !ok {
					return nil, &ParseError{Kind: KindMalformed, Message: fmt.Sprintf("dependency %d: 'uniqueId' must be a string", i)}
				}
				dep.UniqueID = s
				haveID = true
			case "minimumversion":
				minVerVal, haveMinVer = value, true
			case "required":
				b, ok := value.(bool)
				if !ok {
					return nil, &ParseError{Kind: KindMalformed, Message: fmt.Sprintf("dependency %d: 'required' must be a boolean", i)}
				}
				dep.Required = b
				haveRequired = true
			}
		}
		_ = haveRequired

		if !haveID || dep.UniqueID == "" {
			return nil, &ParseError{Kind: KindIncomplete, Message: fmt.Sprintf("dependency %d missing required field 'uniqueId'", i)}
		}

		if haveMinVer {
			verStr, ok := asString(minVerVal)
			if !ok {
				return nil, &ParseError{Kind: KindMalformed, Message: fmt.Sprintf("dependency %d: 'minimumVersion' must be a string", i)}
			}
			v, err := semver.Parse(verStr)
			if err != nil {
				return nil, &ParseError{Kind: KindBadVersion, Message: fmt.Sprintf("dependency %d: parsing 'minimumVersion': %v", i, err)}
			}
			dep.MinimumVersion = &v
		}

		deps = append(deps, dep)
	}
	return deps, nil
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
