// Package project writes the runnable engine project around the exported
// scenes: build descriptors, entry point, scene registry and, when scenes are
// loaded from JSON at runtime, the loader sources.
package project

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"

	"sceneexport/internal/identity"
	"sceneexport/internal/manifest"
)

const (
	DefaultProjectName = "UnityExportedProject"
	EngineLinkPath     = "CyberEngine"

	ModeJSON = "json"
	ModeCpp  = "cpp"
)

// Bundle-relative locations of the generated project files.
const (
	RootCMakePath        = "CMakeLists.txt"
	GameCMakePath        = "game/CMakeLists.txt"
	MainPath             = "game/src/main.cpp"
	RegistryHeaderPath   = "game/src/generated_scene_registry.hpp"
	RegistryCppPath      = "game/src/generated_scene_registry.cpp"
	ReadmePath           = "game/README.md"
	LoaderHeaderPath     = "game/src/json_scene_loader.hpp"
	LoaderCppPath        = "game/src/json_scene_loader.cpp"
	RuntimeSceneHeader   = "game/src/json_runtime_scene.hpp"
	RuntimeSceneCppPath  = "game/src/json_runtime_scene.cpp"
	gameDirPrefix        = "game/"
	jsonRuntimeClassPart = "JsonRuntime"
)

// Bundle is the slice of bundlefs.Bundle the generator needs.
type Bundle interface {
	WriteFile(name string, content []byte) error
	DirExists(name string) bool
	Symlink(target, name string) error
}

// Sink receives report lines.
type Sink interface {
	Warn(msg string)
	Error(msg string)
}

type Options struct {
	ProjectName string

	// ConvertSceneToCpp selects generated scene classes; otherwise the
	// project loads the scene JSON documents at runtime.
	ConvertSceneToCpp bool

	// EngineRoot, when it names an existing directory, is linked into the
	// bundle as CyberEngine.
	EngineRoot string
}

var (
	//go:embed templates/root_cmake.tmpl
	rootCMakeText string
	//go:embed templates/game_cmake.tmpl
	gameCMakeText string
	//go:embed templates/registry.hpp.tmpl
	registryHeaderText string
	//go:embed templates/registry.cpp.tmpl
	registryCppText string
	//go:embed templates/main.cpp.tmpl
	mainText string
	//go:embed templates/README.md.tmpl
	readmeText string

	//go:embed runtime/json_scene_loader.hpp
	loaderHeaderText string
	//go:embed runtime/json_scene_loader.cpp
	loaderCppText string
	//go:embed runtime/json_runtime_scene.hpp
	runtimeSceneHeaderText string
	//go:embed runtime/json_runtime_scene.cpp
	runtimeSceneCppText string

	funcs = template.FuncMap{"cpp": identity.EscapeCppString}

	rootCMakeTmpl   = template.Must(template.New("root_cmake").Parse(rootCMakeText))
	gameCMakeTmpl   = template.Must(template.New("game_cmake").Parse(gameCMakeText))
	registryCppTmpl = template.Must(template.New("registry.cpp").Funcs(funcs).Parse(registryCppText))
	mainTmpl        = template.Must(template.New("main.cpp").Funcs(funcs).Parse(mainText))
	readmeTmpl      = template.Must(template.New("README.md").Parse(readmeText))
)

type registryScene struct {
	ClassName  string
	Name       string
	JSONPath   string
	HeaderFile string
	Separator  string
}

type projectData struct {
	ProjectName  string
	DefaultScene string
	JSON         bool
	Scenes       []registryScene
	SceneSources []string
}

// runtimeScenes picks the manifest scenes the project can load in the chosen
// mode, ordered case-insensitively by name.
func runtimeScenes(scenes []*manifest.SceneEntry, useJSON bool) []*manifest.SceneEntry {
	out := make([]*manifest.SceneEntry, 0, len(scenes))
	for _, s := range scenes {
		if s == nil {
			continue
		}
		if useJSON && strings.TrimSpace(s.SceneJSONPath) == "" {
			continue
		}
		if !useJSON && (strings.TrimSpace(s.SceneCppPath) == "" || strings.TrimSpace(s.SceneHeaderPath) == "") {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].SceneName) < strings.ToLower(out[j].SceneName)
	})
	return out
}

func stem(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	for _, ext := range []string{".scene.json", ".json", ".hpp"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// relativeToGame rewrites a bundle path for use inside game/CMakeLists.txt.
func relativeToGame(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if len(p) >= len(gameDirPrefix) && strings.EqualFold(p[:len(gameDirPrefix)], gameDirPrefix) {
		return p[len(gameDirPrefix):]
	}
	return p
}

func buildData(projectName string, scenes []*manifest.SceneEntry, useJSON bool) projectData {
	data := projectData{ProjectName: projectName, JSON: useJSON}
	for i, s := range scenes {
		name := s.SceneName
		if name == "" {
			name = "Scene"
		}
		rs := registryScene{Name: name, JSONPath: s.SceneJSONPath, HeaderFile: path.Base(s.SceneHeaderPath)}
		if useJSON {
			rs.ClassName = identity.SanitizeIdentifier(fmt.Sprintf("%s%s%d", name, jsonRuntimeClassPart, i), "GeneratedJsonRuntimeScene")
		} else {
			rs.ClassName = identity.SanitizeIdentifier(stem(s.SceneHeaderPath), "GeneratedScene")
			data.SceneSources = append(data.SceneSources, relativeToGame(s.SceneCppPath))
		}
		if i < len(scenes)-1 {
			rs.Separator = ","
		}
		data.Scenes = append(data.Scenes, rs)
	}

	first := scenes[0]
	data.DefaultScene = first.SceneName
	if strings.TrimSpace(data.DefaultScene) == "" {
		if useJSON {
			data.DefaultScene = stem(first.SceneJSONPath)
		} else {
			data.DefaultScene = stem(first.SceneHeaderPath)
		}
	}
	return data
}

// outputFile is either rendered from tmpl or written as static text.
type outputFile struct {
	name string
	tmpl *template.Template
	text string
}

func render(t *template.Template, data projectData) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

// Write generates the project for the scenes already recorded in the
// manifest. When no scene is usable in the selected mode it reports an error
// and returns an empty record.
func Write(bundle Bundle, scenes []*manifest.SceneEntry, opts Options, sink Sink) (*manifest.GeneratedProject, error) {
	if bundle == nil {
		return nil, fmt.Errorf("bundle is nil")
	}
	entry := &manifest.GeneratedProject{}

	useJSON := !opts.ConvertSceneToCpp
	selected := runtimeScenes(scenes, useJSON)
	if len(selected) == 0 {
		if sink != nil {
			if useJSON {
				sink.Error("C++ project generation skipped: no scene JSON files found in manifest.")
			} else {
				sink.Error("C++ project generation skipped: no generated scene C++ files found in manifest.")
			}
		}
		return entry, nil
	}

	projectName := identity.SanitizeIdentifier(opts.ProjectName, DefaultProjectName)
	data := buildData(projectName, selected, useJSON)

	files := []outputFile{
		{name: RootCMakePath, tmpl: rootCMakeTmpl},
		{name: GameCMakePath, tmpl: gameCMakeTmpl},
		{name: RegistryHeaderPath, text: registryHeaderText},
		{name: RegistryCppPath, tmpl: registryCppTmpl},
		{name: MainPath, tmpl: mainTmpl},
		{name: ReadmePath, tmpl: readmeTmpl},
	}
	if useJSON {
		files = append(files, []outputFile{
			{name: LoaderHeaderPath, text: loaderHeaderText},
			{name: LoaderCppPath, text: loaderCppText},
			{name: RuntimeSceneHeader, text: runtimeSceneHeaderText},
			{name: RuntimeSceneCppPath, text: runtimeSceneCppText},
		}...)
	}
	for _, f := range files {
		content := []byte(f.text)
		if f.tmpl != nil {
			var err error
			if content, err = render(f.tmpl, data); err != nil {
				return nil, err
			}
		}
		if err := bundle.WriteFile(f.name, content); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	linkEngine(bundle, opts.EngineRoot, sink)

	entry.RootPath = "."
	entry.CMakePath = RootCMakePath
	entry.MainPath = MainPath
	entry.SceneRegistryHeaderPath = RegistryHeaderPath
	entry.SceneRegistryCppPath = RegistryCppPath
	entry.ReadmePath = ReadmePath
	entry.CyberEngineLinkPath = EngineLinkPath
	entry.CyberEngineLinkCreated = bundle.DirExists(EngineLinkPath)
	entry.DefaultSceneName = data.DefaultScene
	entry.SceneLoadingMode = ModeCpp
	if useJSON {
		entry.SceneLoadingMode = ModeJSON
		entry.JSONSceneLoaderHeaderPath = LoaderHeaderPath
		entry.JSONSceneLoaderCppPath = LoaderCppPath
		entry.JSONRuntimeSceneHeaderPath = RuntimeSceneHeader
		entry.JSONRuntimeSceneCppPath = RuntimeSceneCppPath
	}
	return entry, nil
}

// linkEngine points <bundle>/CyberEngine at the engine checkout. A missing or
// unusable root only produces a warning; the build descriptor explains how
// to provide the engine by hand.
func linkEngine(bundle Bundle, root string, sink Sink) {
	root = strings.TrimSpace(root)
	if root == "" || bundle.DirExists(EngineLinkPath) {
		return
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if sink != nil {
			sink.Warn("CyberEngine root path does not exist: " + root)
		}
		return
	}
	if err := bundle.Symlink(root, EngineLinkPath); err != nil && sink != nil {
		sink.Warn("CyberEngine link not created: " + err.Error())
	}
}
