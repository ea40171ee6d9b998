// Package geometry converts host meshes and rasters into portable files:
// OBJ meshes with the runtime's handedness baked in, and PNG images for
// synthesized terrain and skybox resources.
package geometry

// Mesh is an indexed triangle mesh in the host (left-handed, bottom-left UV
// origin) convention. Submeshes hold triangle index triples.
type Mesh struct {
	Name      string       `yaml:"name"`
	Vertices  [][3]float32 `yaml:"vertices"`
	Normals   [][3]float32 `yaml:"normals"`
	UVs       [][2]float32 `yaml:"uvs"`
	Submeshes [][]int      `yaml:"submeshes"`
}

func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, sub := range m.Submeshes {
		n += len(sub) / 3
	}
	return n
}

func (m *Mesh) IsEmpty() bool {
	return m.VertexCount() == 0
}

// HasUVs reports whether every vertex carries a texture coordinate.
func (m *Mesh) HasUVs() bool {
	return m != nil && len(m.UVs) > 0 && len(m.UVs) == len(m.Vertices)
}

// HasNormals reports whether every vertex carries a normal.
func (m *Mesh) HasNormals() bool {
	return m != nil && len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)
}

// Cube returns a unit cube centred on the origin with per-face normals and UVs.
func Cube(name string) *Mesh {
	type face struct {
		n       [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	}
	uv := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	m := &Mesh{Name: name}
	var tris []int
	for _, f := range faces {
		base := len(m.Vertices)
		for i, c := range f.corners {
			m.Vertices = append(m.Vertices, c)
			m.Normals = append(m.Normals, f.n)
			m.UVs = append(m.UVs, uv[i])
		}
		// Host winding is clockwise when viewed from outside.
		tris = append(tris, base, base+2, base+1, base, base+3, base+2)
	}
	m.Submeshes = [][]int{tris}
	return m
}
