package contentstore

import (
	"path"
	"strings"
)

// Kind selects the bundle folder an asset lands in.
type Kind int

const (
	KindModel Kind = iota
	KindTexture
	KindAudio
	KindTerrain
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindTexture:
		return "texture"
	case KindAudio:
		return "audio"
	case KindTerrain:
		return "terrain"
	default:
		return "data"
	}
}

// Folder is the directory under assets/ that holds k.
func (k Kind) Folder() string {
	switch k {
	case KindModel:
		return "models"
	case KindTexture:
		return "textures"
	case KindAudio:
		return "audio"
	case KindTerrain:
		return "terrains"
	default:
		return "data"
	}
}

var (
	textureExtensions = extSet(".png", ".jpg", ".jpeg", ".tga", ".tif", ".tiff", ".bmp", ".exr", ".hdr", ".psd")
	audioExtensions   = extSet(".wav", ".mp3", ".ogg", ".aif", ".aiff", ".flac")
	modelExtensions   = extSet(".fbx", ".obj", ".dae", ".gltf", ".glb", ".blend", ".3ds", ".stl")

	// Formats without a decoder every runtime platform ships.
	transcodeExtensions = extSet(".tga", ".tif", ".tiff", ".psd")

	nonRuntimeExtensions = extSet(".asset", ".terrainlayer")
)

func extSet(exts ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		out[e] = struct{}{}
	}
	return out
}

func lowerExt(p string) string {
	return strings.ToLower(path.Ext(p))
}

func has(set map[string]struct{}, ext string) bool {
	_, ok := set[ext]
	return ok
}

// ClassifyByPath infers the asset kind from a file extension.
func ClassifyByPath(assetPath string) (Kind, bool) {
	ext := lowerExt(assetPath)
	switch {
	case ext == "":
		return 0, false
	case has(textureExtensions, ext):
		return KindTexture, true
	case has(audioExtensions, ext):
		return KindAudio, true
	case has(modelExtensions, ext):
		return KindModel, true
	default:
		return 0, false
	}
}

func isRuntimeUsable(assetPath string) bool {
	ext := lowerExt(assetPath)
	return ext != "" && !has(nonRuntimeExtensions, ext)
}

func shouldTranscode(assetPath string) bool {
	return has(transcodeExtensions, lowerExt(assetPath))
}

// IsBakedOrTransient reports whether assetPath is editor-baked lighting data
// or authoring-only content that must never be exported.
func IsBakedOrTransient(assetPath string) bool {
	if strings.TrimSpace(assetPath) == "" {
		return false
	}
	normalized := strings.ReplaceAll(assetPath, "\\", "/")
	name := strings.ToLower(path.Base(normalized))
	switch {
	case strings.HasPrefix(name, "lightmap-"), strings.HasPrefix(name, "reflectionprobe-"):
		return true
	case name == "lightingdata.asset", name == "lightprobes.asset":
		return true
	}
	return strings.Contains(strings.ToLower(normalized), "/probuilder data/")
}

// logicalSubPath strips the project "Assets/" prefix, or keeps only the file
// name for paths outside it.
func logicalSubPath(assetPath string) string {
	if len(assetPath) >= len("Assets/") && strings.EqualFold(assetPath[:len("Assets/")], "Assets/") {
		return assetPath[len("Assets/"):]
	}
	return path.Base(assetPath)
}

func withExt(p, ext string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + ext
}
