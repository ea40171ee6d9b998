package producer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuildSettingsPath lists the scenes a BuildSettings selection exports.
const BuildSettingsPath = "ProjectSettings/EditorBuildSettings.yaml"

var ErrSceneNotFound = errors.New("scene not found")

// ProjectReader is the read side of a host project.
type ProjectReader interface {
	Exists(assetPath string) bool
	ReadFile(assetPath string) ([]byte, error)
}

// YAMLOpener opens `.scene.yaml` host dumps from a project.
type YAMLOpener struct {
	project ProjectReader
}

func NewYAMLOpener(project ProjectReader) *YAMLOpener {
	return &YAMLOpener{project: project}
}

func (o *YAMLOpener) Exists(scenePath string) bool {
	return o != nil && o.project != nil && o.project.Exists(scenePath)
}

func (o *YAMLOpener) Open(scenePath string) (Source, error) {
	if o == nil || o.project == nil {
		return nil, fmt.Errorf("yaml opener is nil")
	}
	if !o.project.Exists(scenePath) {
		return nil, fmt.Errorf("%w: %s", ErrSceneNotFound, scenePath)
	}
	raw, err := o.project.ReadFile(scenePath)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", scenePath, err)
	}
	return DecodeScene(raw, scenePath)
}

// DecodeScene parses one scene dump. Unknown keys are rejected so typos in
// hand-written fixtures do not silently drop components.
func DecodeScene(raw []byte, scenePath string) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var scene Scene
	if err := dec.Decode(&scene); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", scenePath, err)
	}
	if strings.TrimSpace(scene.Name) == "" {
		scene.Name = SceneNameFromPath(scenePath)
	}
	if scene.AssetPath == "" {
		scene.AssetPath = strings.ReplaceAll(scenePath, "\\", "/")
	}
	return &scene, nil
}

// EncodeScene renders a scene back to YAML, mainly for fixtures on disk.
func EncodeScene(scene *Scene) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(scene); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type buildSettings struct {
	Scenes []struct {
		Path    string `yaml:"path"`
		Enabled *bool  `yaml:"enabled"`
	} `yaml:"scenes"`
}

// BuildScenes returns the enabled scenes listed in the project build
// settings, in listed order. A missing settings file yields no scenes.
func BuildScenes(project ProjectReader) ([]string, error) {
	if project == nil || !project.Exists(BuildSettingsPath) {
		return nil, nil
	}
	raw, err := project.ReadFile(BuildSettingsPath)
	if err != nil {
		return nil, fmt.Errorf("read build settings: %w", err)
	}
	var settings buildSettings
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode build settings: %w", err)
	}
	var out []string
	for _, s := range settings.Scenes {
		if strings.TrimSpace(s.Path) == "" || (s.Enabled != nil && !*s.Enabled) {
			continue
		}
		out = append(out, strings.ReplaceAll(s.Path, "\\", "/"))
	}
	return out, nil
}
