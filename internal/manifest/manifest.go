// Package manifest holds the bundle-level records written next to the scene
// documents: the asset manifest, the run report and the game index.
package manifest

import (
	"strings"
	"time"

	"sceneexport/internal/audit"
	"sceneexport/internal/contentstore"
)

const (
	ManifestSchemaVersion = "1.2.0"
	ReportSchemaVersion   = "1.1.0"
	GameSchemaVersion     = "1.0.0"
)

// Bundle-relative locations of the files this package writes.
const (
	DataDir      = "assets/data"
	ManifestPath = "assets/data/manifest.json"
	ReportPath   = "assets/data/report.json"
	ReportText   = "assets/data/report.txt"
	GameDataPath = "assets/data/game.json"
	ScenesDir    = "assets/data/scenes"

	AuditJSONPath     = "assets/data/component_audit.json"
	AuditMarkdownPath = "assets/data/component_audit.md"
)

// TimestampLayout is the round-trip UTC layout used for every generatedAtUtc.
const TimestampLayout = "2006-01-02T15:04:05.0000000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SceneJSONPath is where a scene document lands inside the bundle.
func SceneJSONPath(sceneName string) string {
	return ScenesDir + "/" + sceneName + ".scene.json"
}

type Manifest struct {
	SchemaVersion             string                `json:"schemaVersion"`
	ProjectName               string                `json:"projectName"`
	GeneratedAtUTC            string                `json:"generatedAtUtc"`
	Options                   *OptionsSnapshot      `json:"options"`
	Scenes                    []*SceneEntry         `json:"scenes"`
	Assets                    []contentstore.Record `json:"assets"`
	GameDataPath              string                `json:"gameDataPath"`
	GeneratedComponentHeaders []string              `json:"generatedComponentHeaders"`
	GeneratedProject          *GeneratedProject     `json:"generatedProject"`
	ComponentAudit            *audit.Summary        `json:"componentAudit"`
}

// OptionsSnapshot records the effective options of the run.
type OptionsSnapshot struct {
	OutputRoot           string `json:"outputRoot"`
	AssetScope           string `json:"assetScope"`
	SceneSelectionMode   string `json:"sceneSelectionMode"`
	GenerateCpp          bool   `json:"generateCpp"`
	GenerateJSON         bool   `json:"generateJson"`
	GenerateCppProject   bool   `json:"generateCppProject"`
	ConvertSceneToCpp    bool   `json:"convertSceneToCpp"`
	CyberEngineRootPath  string `json:"cyberEngineRootPath"`
	GeneratedProjectName string `json:"generatedProjectName"`
	BaseSceneClass       string `json:"baseSceneClass"`
	FailOnError          bool   `json:"failOnError"`
	CleanOutput          bool   `json:"cleanOutput"`
}

type SceneEntry struct {
	SceneName            string `json:"sceneName"`
	SceneAssetPath       string `json:"sceneAssetPath"`
	SceneJSONPath        string `json:"sceneJsonPath"`
	SceneHeaderPath      string `json:"sceneHeaderPath"`
	SceneCppPath         string `json:"sceneCppPath"`
	EntityCount          int    `json:"entityCount"`
	CustomComponentCount int    `json:"customComponentCount"`
	WarningCount         int    `json:"warningCount"`
}

type GeneratedProject struct {
	RootPath                   string `json:"rootPath"`
	CMakePath                  string `json:"cmakePath"`
	MainPath                   string `json:"mainPath"`
	SceneRegistryHeaderPath    string `json:"sceneRegistryHeaderPath"`
	SceneRegistryCppPath       string `json:"sceneRegistryCppPath"`
	ReadmePath                 string `json:"readmePath"`
	CyberEngineLinkPath        string `json:"cyberEngineLinkPath"`
	CyberEngineLinkCreated     bool   `json:"cyberEngineLinkCreated"`
	DefaultSceneName           string `json:"defaultSceneName"`
	SceneLoadingMode           string `json:"sceneLoadingMode"`
	JSONSceneLoaderHeaderPath  string `json:"jsonSceneLoaderHeaderPath"`
	JSONSceneLoaderCppPath     string `json:"jsonSceneLoaderCppPath"`
	JSONRuntimeSceneHeaderPath string `json:"jsonRuntimeSceneHeaderPath"`
	JSONRuntimeSceneCppPath    string `json:"jsonRuntimeSceneCppPath"`
}

func New(projectName string, generatedAt time.Time, opts *OptionsSnapshot) *Manifest {
	return &Manifest{
		SchemaVersion:             ManifestSchemaVersion,
		ProjectName:               projectName,
		GeneratedAtUTC:            FormatTimestamp(generatedAt),
		Options:                   opts,
		Scenes:                    []*SceneEntry{},
		Assets:                    []contentstore.Record{},
		GeneratedComponentHeaders: []string{},
	}
}

// FindOrCreateScene returns the entry for sceneAssetPath, matched without
// regard to case, appending template when none exists yet.
func (m *Manifest) FindOrCreateScene(template SceneEntry) *SceneEntry {
	for _, s := range m.Scenes {
		if strings.EqualFold(s.SceneAssetPath, template.SceneAssetPath) {
			return s
		}
	}
	entry := template
	m.Scenes = append(m.Scenes, &entry)
	return &entry
}
