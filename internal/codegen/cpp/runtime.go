package cpp

import (
	_ "embed"
	"fmt"
)

const (
	RuntimeHelperHeader = "scene_export_runtime_helper.hpp"
	RuntimeHelperSource = "scene_export_runtime_helper.cpp"
)

// The runtime helper is the same for every bundle; generated scenes and the
// JSON loader call into it for asset loading.
var (
	//go:embed runtime/scene_export_runtime_helper.hpp
	runtimeHelperHeader string

	//go:embed runtime/scene_export_runtime_helper.cpp
	runtimeHelperSource string
)

// WriteRuntimeHelper writes the helper translation unit next to the scenes
// and returns the bundle-relative paths of the header and source.
func WriteRuntimeHelper(bundle BundleWriter) (header, source string, err error) {
	if bundle == nil {
		return "", "", fmt.Errorf("bundle is nil")
	}
	header = ScenesDir + "/" + RuntimeHelperHeader
	source = ScenesDir + "/" + RuntimeHelperSource
	if err := bundle.WriteFile(header, []byte(runtimeHelperHeader)); err != nil {
		return "", "", fmt.Errorf("write %s: %w", header, err)
	}
	if err := bundle.WriteFile(source, []byte(runtimeHelperSource)); err != nil {
		return "", "", fmt.Errorf("write %s: %w", source, err)
	}
	return header, source, nil
}
