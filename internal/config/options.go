package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sceneexport/internal/identity"
	"sceneexport/internal/manifest"
)

// AssetScope decides which project assets end up in the bundle.
type AssetScope string

const (
	// DependenciesOnly exports what the selected scenes reference.
	DependenciesOnly AssetScope = "DependenciesOnly"
	// AllAssets additionally exports every classifiable file under Assets/.
	AllAssets AssetScope = "AllAssets"
)

// SceneSelection decides where the scene list comes from.
type SceneSelection string

const (
	// BuildSettings exports the enabled build scenes plus any explicit paths.
	BuildSettings SceneSelection = "BuildSettings"
	// Explicit exports ScenePaths only.
	Explicit SceneSelection = "Explicit"
)

const (
	DefaultGeneratedProjectName = "UnityExportedProject"
	DefaultBaseSceneClass       = "Scene"
	defaultOutputDirName        = "UnityToCyberEngineExport"
)

func ParseAssetScope(raw string) (AssetScope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dependenciesonly", "dependencies":
		return DependenciesOnly, nil
	case "allassets", "all":
		return AllAssets, nil
	}
	return "", fmt.Errorf("unknown asset scope %q", raw)
}

func ParseSceneSelection(raw string) (SceneSelection, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buildsettings", "build":
		return BuildSettings, nil
	case "explicit", "explicitlist":
		return Explicit, nil
	}
	return "", fmt.Errorf("unknown scene selection mode %q", raw)
}

// Options are the effective settings of one export run.
type Options struct {
	// ProjectRoot is the host project directory holding Assets/ and
	// ProjectSettings/.
	ProjectRoot string
	// ProductName names the bundle directory and the manifest project.
	ProductName string

	OutputRoot     string
	AssetScope     AssetScope
	SceneSelection SceneSelection
	ScenePaths     []string

	GenerateCpp        bool
	GenerateJSON       bool
	GenerateCppProject bool
	ConvertSceneToCpp  bool

	CyberEngineRootPath  string
	GeneratedProjectName string
	BaseSceneClass       string

	FailOnError bool
	CleanOutput bool
}

// DefaultOptions mirrors the host exporter defaults.
func DefaultOptions() Options {
	return Options{
		ProjectRoot:          ".",
		OutputRoot:           defaultOutputRoot(),
		AssetScope:           DependenciesOnly,
		SceneSelection:       BuildSettings,
		GenerateCpp:          true,
		GenerateJSON:         true,
		GenerateCppProject:   true,
		ConvertSceneToCpp:    true,
		GeneratedProjectName: DefaultGeneratedProjectName,
		BaseSceneClass:       DefaultBaseSceneClass,
		CleanOutput:          true,
	}
}

func defaultOutputRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultOutputDirName
	}
	return filepath.Join(home, "Documents", defaultOutputDirName)
}

// Validate checks the options in a fixed order and returns the first
// problem. On success blank class and project names fall back to their
// defaults.
func (o *Options) Validate() error {
	if o == nil {
		return errors.New("options are nil")
	}
	if strings.TrimSpace(o.OutputRoot) == "" {
		return errors.New("Output root is empty.")
	}
	if len(o.ScenePaths) == 0 {
		if o.SceneSelection == BuildSettings {
			return errors.New("No scenes were selected for export. BuildSettings mode resolved zero enabled scenes.")
		}
		return errors.New("No scenes were selected for export.")
	}
	if !o.GenerateCpp && !o.GenerateJSON {
		return errors.New("At least one output mode must be enabled (C++ or JSON).")
	}
	if !o.ConvertSceneToCpp && !o.GenerateJSON {
		return errors.New("JSON output is required when convertSceneToCpp is disabled.")
	}
	if o.GenerateCppProject && !o.GenerateCpp {
		return errors.New("C++ project generation requires generateCpp=true.")
	}

	if strings.TrimSpace(o.BaseSceneClass) == "" {
		o.BaseSceneClass = DefaultBaseSceneClass
	}
	if strings.TrimSpace(o.GeneratedProjectName) == "" {
		o.GeneratedProjectName = DefaultGeneratedProjectName
	}
	return nil
}

// Snapshot is the manifest copy of the options.
func (o Options) Snapshot() *manifest.OptionsSnapshot {
	return &manifest.OptionsSnapshot{
		OutputRoot:           o.OutputRoot,
		AssetScope:           string(o.AssetScope),
		SceneSelectionMode:   string(o.SceneSelection),
		GenerateCpp:          o.GenerateCpp,
		GenerateJSON:         o.GenerateJSON,
		GenerateCppProject:   o.GenerateCppProject,
		ConvertSceneToCpp:    o.ConvertSceneToCpp,
		CyberEngineRootPath:  o.CyberEngineRootPath,
		GeneratedProjectName: o.GeneratedProjectName,
		BaseSceneClass:       o.BaseSceneClass,
		FailOnError:          o.FailOnError,
		CleanOutput:          o.CleanOutput,
	}
}

// ResolveScenePaths merges the build scenes (BuildSettings only) with the
// explicit paths, normalizing separators and dropping case-insensitive
// duplicates. First occurrence wins.
func ResolveScenePaths(mode SceneSelection, buildScenes, explicit []string) []string {
	var candidates []string
	if mode == BuildSettings {
		candidates = append(candidates, buildScenes...)
	}
	candidates = append(candidates, explicit...)
	return distinctPaths(candidates)
}

func distinctPaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = identity.NormalizeRelativePath(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ResolveGeneratedProjectName keeps an explicit name and otherwise derives
// one from the product name.
func ResolveGeneratedProjectName(value, productName string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	product := firstNonEmpty(strings.TrimSpace(productName), "UnityExported")
	return identity.SanitizeIdentifier(product+"Exported", DefaultGeneratedProjectName)
}
