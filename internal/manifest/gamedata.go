package manifest

import (
	"sort"
	"strings"
)

// GameData is the runtime index of exported scenes read by the generated
// project's loader.
type GameData struct {
	SchemaVersion    string           `json:"schemaVersion"`
	ProjectName      string           `json:"projectName"`
	GeneratedAtUTC   string           `json:"generatedAtUtc"`
	DefaultSceneName string           `json:"defaultSceneName"`
	Scenes           []GameSceneEntry `json:"scenes"`
}

type GameSceneEntry struct {
	SceneName       string `json:"sceneName"`
	SceneJSONPath   string `json:"sceneJsonPath"`
	SceneHeaderPath string `json:"sceneHeaderPath"`
	SceneCppPath    string `json:"sceneCppPath"`
}

// BuildGameData derives the game index from m. The generated project's
// default scene wins over the first manifest scene.
func BuildGameData(m *Manifest) GameData {
	data := GameData{
		SchemaVersion:  GameSchemaVersion,
		ProjectName:    m.ProjectName,
		GeneratedAtUTC: m.GeneratedAtUTC,
		Scenes:         []GameSceneEntry{},
	}
	switch {
	case m.GeneratedProject != nil && strings.TrimSpace(m.GeneratedProject.DefaultSceneName) != "":
		data.DefaultSceneName = m.GeneratedProject.DefaultSceneName
	case len(m.Scenes) > 0:
		data.DefaultSceneName = m.Scenes[0].SceneName
	}

	scenes := make([]*SceneEntry, len(m.Scenes))
	copy(scenes, m.Scenes)
	sort.SliceStable(scenes, func(i, j int) bool {
		return strings.ToLower(scenes[i].SceneName) < strings.ToLower(scenes[j].SceneName)
	})
	for _, s := range scenes {
		data.Scenes = append(data.Scenes, GameSceneEntry{
			SceneName:       s.SceneName,
			SceneJSONPath:   s.SceneJSONPath,
			SceneHeaderPath: s.SceneHeaderPath,
			SceneCppPath:    s.SceneCppPath,
		})
	}
	return data
}
