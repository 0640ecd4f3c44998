package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"calyx/compiler-go/pkg/names"
	"calyx/compiler-go/pkg/typemap"
)

// PlatformManifest represents the parsed contents of a platform.yml: the
// builtin alias table and mapper options for one compilation target.
type PlatformManifest struct {
	Path    string
	Target  string
	Options PlatformOptions
	Aliases map[string]names.PhysicalType

	aliasOrder []string
}

// PlatformOptions carries the mapper switches a manifest may set.
type PlatformOptions struct {
	MapBuiltins    bool
	SignaturesOnly bool
}

// ValidationError aggregates manifest validation failures so a broken
// manifest reports every problem in one pass.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "platform: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("platform manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type platformFile struct {
	Target  string            `yaml:"target"`
	Options platformOptions   `yaml:"options"`
	Aliases map[string]string `yaml:"aliases"`
}

type platformOptions struct {
	MapBuiltins    *bool `yaml:"map_builtins"`
	SignaturesOnly bool  `yaml:"signatures_only"`
}

// LoadPlatformManifest parses a platform.yml from disk, returning a
// validated manifest.
func LoadPlatformManifest(path string) (*PlatformManifest, error) {
	if path == "" {
		return nil, fmt.Errorf("platform: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("platform: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("platform: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw platformFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("platform: %s is empty", absPath)
		}
		return nil, fmt.Errorf("platform: parse %s: %w", absPath, err)
	}
	return raw.toManifest(absPath)
}

func (f *platformFile) toManifest(path string) (*PlatformManifest, error) {
	manifest := &PlatformManifest{
		Path:   path,
		Target: f.Target,
		Options: PlatformOptions{
			MapBuiltins:    true,
			SignaturesOnly: f.Options.SignaturesOnly,
		},
		Aliases: make(map[string]names.PhysicalType, len(f.Aliases)),
	}
	if f.Options.MapBuiltins != nil {
		manifest.Options.MapBuiltins = *f.Options.MapBuiltins
	}

	var errs ValidationError
	if f.Target == "" {
		errs.Issues = append(errs.Issues, "target must be provided")
	}
	for fq, desc := range f.Aliases {
		if fq == "" {
			errs.Issues = append(errs.Issues, "aliases must not use empty keys")
			continue
		}
		t, err := names.ParseType(desc)
		if err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("aliases.%s: %v", fq, err))
			continue
		}
		if t.Sort() == names.SortArray {
			errs.Issues = append(errs.Issues, fmt.Sprintf("aliases.%s: arrays are mapped structurally, not by alias", fq))
			continue
		}
		manifest.Aliases[fq] = t
		manifest.aliasOrder = append(manifest.aliasOrder, fq)
	}
	sort.Strings(manifest.aliasOrder)

	if len(errs.Issues) > 0 {
		sort.Strings(errs.Issues)
		return nil, &errs
	}
	return manifest, nil
}

// AliasNames returns the aliased builtin names in sorted order.
func (m *PlatformManifest) AliasNames() []string {
	out := make([]string, len(m.aliasOrder))
	copy(out, m.aliasOrder)
	return out
}

// Build assembles the mapper platform described by the manifest. An empty
// alias table falls back to the stock table for the target.
func (m *PlatformManifest) Build() (*typemap.Platform, typemap.Config, error) {
	cfg := typemap.Config{
		MapBuiltins:    m.Options.MapBuiltins,
		SignaturesOnly: m.Options.SignaturesOnly,
	}
	if len(m.Aliases) == 0 {
		return typemap.DefaultPlatform(), cfg, nil
	}
	return typemap.NewPlatform(m.Aliases), cfg, nil
}
