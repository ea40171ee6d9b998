package collect

import (
	"fmt"
	"strings"

	"sceneexport/internal/contentstore"
	"sceneexport/internal/geometry"
	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

func (s *sceneRun) collectTerrain(n *nodeCtx, e *sceneir.Entity) error {
	tc, terrain := first(n.node, func(c *producer.Component) *producer.Terrain { return c.Terrain })
	if terrain == nil {
		return nil
	}
	data := &sceneir.Terrain{
		Enabled: tc.IsEnabled(),
		Size:    vec3(terrain.Size),
		Layers:  []sceneir.TerrainLayer{},
	}

	var err error
	if data.HeightmapTexture, err = s.exportHeightmap(n, terrain); err != nil {
		return err
	}
	if data.SplatmapTexture, err = s.exportSplatmap(terrain, n.stableID+"_splatmap"); err != nil {
		return err
	}
	data.WeightmapTexture = data.SplatmapTexture
	s.checkTerrainTexture(n, "splatmap", data.SplatmapTexture)

	if len(terrain.Layers) > sceneir.MaxTerrainLayers {
		s.warn(fmt.Sprintf("Terrain on %s has %d layers. CyberEngine V1 supports %d layers. Extra layers are ignored.",
			n.path, len(terrain.Layers), sceneir.MaxTerrainLayers))
	}
	for i, layer := range terrain.Layers {
		if layer == nil {
			continue
		}
		ld := sceneir.TerrainLayer{
			Index:         i,
			Name:          layer.Name,
			Metallic:      sceneir.Float(layer.Metallic),
			Smoothness:    sceneir.Float(layer.Smoothness),
			SpecularColor: vec3(layer.Specular),
			TileOffset:    vec2(layer.TileOffset),
			TileSize:      vec2(layer.TileSize),
		}
		if ld.AlbedoTexture, err = s.exportTexture(layer.Diffuse, contentstore.KindTexture, layer.Name+"_albedo"); err != nil {
			return err
		}
		if ld.NormalTexture, err = s.exportTexture(layer.Normal, contentstore.KindTexture, layer.Name+"_normal"); err != nil {
			return err
		}
		data.Layers = append(data.Layers, ld)
		s.checkTerrainTexture(n, "layer albedo", ld.AlbedoTexture)
		s.checkTerrainTexture(n, "layer normal", ld.NormalTexture)
	}
	e.Terrain = data
	return nil
}

// exportHeightmap skips terrains without height samples. A heightmap whose
// first row is empty has no width and is skipped with a warning.
func (s *sceneRun) exportHeightmap(n *nodeCtx, t *producer.Terrain) (string, error) {
	if len(t.Heights) == 0 {
		return "", nil
	}
	if len(t.Heights[0]) == 0 {
		s.warn("Terrain heightmap on " + n.path + " has an empty first row. Heightmap skipped.")
		return "", nil
	}
	key := n.stableID + "_heightmap"
	png, err := geometry.HeightmapPNG(t.Heights)
	if err != nil {
		return "", fmt.Errorf("heightmap %s: %w", key, err)
	}
	return s.store.ExportGeneratedTexture(key, png, key, contentstore.KindTerrain)
}

// exportSplatmap prefers the host's own alphamap texture and synthesizes
// one from the per-layer weights otherwise.
func (s *sceneRun) exportSplatmap(t *producer.Terrain, key string) (string, error) {
	if t.AlphamapTexture != nil {
		rel, err := s.exportTexture(t.AlphamapTexture, contentstore.KindTerrain, key)
		if err != nil || rel != "" {
			return rel, err
		}
	}
	if len(t.Alphamaps) == 0 || len(t.Alphamaps[0]) == 0 || len(t.Alphamaps[0][0]) == 0 {
		return "", nil
	}
	png, err := geometry.SplatmapPNG(t.Alphamaps)
	if err != nil {
		return "", fmt.Errorf("splatmap %s: %w", key, err)
	}
	return s.store.ExportGeneratedTexture(key, png, key, contentstore.KindTerrain)
}

func validTerrainTexturePath(rel string) bool {
	lower := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(rel), "\\", "/"))
	return strings.HasPrefix(lower, "assets/textures/") || strings.HasPrefix(lower, "assets/terrains/")
}

func (s *sceneRun) checkTerrainTexture(n *nodeCtx, role, rel string) {
	if validTerrainTexturePath(rel) {
		return
	}
	s.warn("Terrain texture export invalid or missing (" + role + ") on " + n.path + ".")
}
