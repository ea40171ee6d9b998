package collect

import (
	"fmt"

	"sceneexport/internal/contentstore"
	"sceneexport/internal/identity"
	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

// sixSidedProps lists the face textures in east, west, up, down, north,
// south order.
var sixSidedProps = [6]string{"_RightTex", "_LeftTex", "_UpTex", "_DownTex", "_FrontTex", "_BackTex"}

func (s *sceneRun) collectSkybox(m *producer.Material) error {
	if m == nil {
		return nil
	}
	sky := &sceneir.Skybox{
		Enabled:          true,
		SourceType:       sceneir.SkyboxUnknown,
		MaterialName:     m.Name,
		ShaderName:       m.Shader,
		CubemapFacePaths: []string{},
	}
	s.doc.Skybox = sky
	name := s.doc.SceneName

	ok, err := s.sixSidedSkybox(m, sky)
	if err != nil || ok {
		return err
	}
	if ok, err = s.cubemapSkybox(m, sky); err != nil || ok {
		return err
	}
	sky.SourceType = sceneir.SkyboxUnknown
	sky.CubemapFacePaths = []string{}

	if pano := m.Texture("_MainTex"); pano != nil {
		rel, err := s.exportTexture(pano, contentstore.KindTexture, name+"_skybox_panoramic")
		if err != nil {
			return err
		}
		sky.SourceType = sceneir.SkyboxPanoramic
		sky.PanoramicTexture = rel
		s.warn("Skybox panoramic texture exported as data only on scene " + name + ". Runtime cubemap conversion is not implemented yet.")
		return nil
	}
	s.warn("Skybox material exported without runtime mapping on scene " + name + " (" + sky.ShaderName + ").")
	return nil
}

func (s *sceneRun) sixSidedSkybox(m *producer.Material, sky *sceneir.Skybox) (bool, error) {
	var faces [6]*producer.Texture
	for i, prop := range sixSidedProps {
		if faces[i] = m.Texture(prop); faces[i] == nil {
			return false, nil
		}
	}
	paths := make([]string, 0, len(faces))
	for i, tex := range faces {
		rel, err := s.exportTexture(tex, contentstore.KindTexture, s.doc.SceneName+"_skybox_"+sceneir.SkyboxFaces[i])
		if err != nil {
			return false, err
		}
		paths = append(paths, rel)
	}
	sky.SourceType = sceneir.SkyboxSixSided
	sky.CubemapFacePaths = paths
	return sky.HasAllFaces(), nil
}

// cubemapSkybox slices a packed cubemap into six generated face textures.
func (s *sceneRun) cubemapSkybox(m *producer.Material, sky *sceneir.Skybox) (bool, error) {
	tex := m.Texture("_Tex", "_MainTex", "_Cube")
	if tex == nil || !tex.Cubemap {
		return false, nil
	}
	sky.SourceType = sceneir.SkyboxCubemap
	faces, err := s.sliceCubemap(tex)
	if err != nil {
		s.warn(fmt.Sprintf("Failed to export cubemap skybox faces on scene %s: %v", s.doc.SceneName, err))
		return false, nil
	}
	sceneKey := identity.ToSnakeCase(s.doc.SceneName, "scene")
	paths := make([]string, 0, len(faces))
	for i, face := range faces {
		key := sceneKey + "_skybox_" + sceneir.SkyboxFaces[i]
		rel, err := s.store.ExportGeneratedImage(key, face, key, contentstore.KindTexture)
		if err != nil {
			return false, err
		}
		if rel == "" {
			return false, nil
		}
		paths = append(paths, rel)
	}
	sky.CubemapFacePaths = paths
	return true, nil
}
