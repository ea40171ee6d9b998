package geometry

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"sceneexport/internal/sceneir"
)

const (
	objHeader     = "# Unity mesh export"
	objConversion = "# Pre-converted for CyberEngine Assimp flags (MakeLeftHanded + FlipWindingOrder + FlipUVs)"
)

// BakeOBJ writes m as Wavefront OBJ pre-converted for an importer that
// applies MakeLeftHanded, FlipWindingOrder and FlipUVs. The three
// conversions are coupled: Z is mirrored, each triangle is written as
// (a, c, b) and V becomes 1-V. Applying the importer flags to the output
// restores the host geometry exactly.
func BakeOBJ(m *Mesh) []byte {
	if m == nil {
		return nil
	}
	var b bytes.Buffer
	b.Grow(len(m.Vertices) * 48)
	b.WriteString(objHeader + "\n")
	b.WriteString(objConversion + "\n")

	for _, v := range m.Vertices {
		fmt.Fprintf(&b, "v %s %s %s\n", num(v[0]), num(v[1]), num(-v[2]))
	}
	hasUV := m.HasUVs()
	hasNormals := m.HasNormals()
	if hasUV {
		for _, uv := range m.UVs {
			fmt.Fprintf(&b, "vt %s %s\n", num(uv[0]), num(1-uv[1]))
		}
	}
	if hasNormals {
		for _, n := range m.Normals {
			fmt.Fprintf(&b, "vn %s %s %s\n", num(n[0]), num(n[1]), num(-n[2]))
		}
	}

	for _, tris := range m.Submeshes {
		for i := 0; i+2 < len(tris); i += 3 {
			a, bb, c := tris[i]+1, tris[i+1]+1, tris[i+2]+1
			switch {
			case hasUV && hasNormals:
				fmt.Fprintf(&b, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, c, c, c, bb, bb, bb)
			case hasUV:
				fmt.Fprintf(&b, "f %d/%d %d/%d %d/%d\n", a, a, c, c, bb, bb)
			default:
				fmt.Fprintf(&b, "f %d %d %d\n", a, c, bb)
			}
		}
	}
	return b.Bytes()
}

func num(v float32) string {
	return sceneir.FormatDecimal(v)
}

// FaceVertex holds 1-based OBJ indices; zero means absent.
type FaceVertex struct {
	V, T, N int
}

// OBJ is the raw content of a parsed OBJ file in file order.
type OBJ struct {
	Positions [][3]float32
	TexCoords [][2]float32
	Normals   [][3]float32
	Faces     [][3]FaceVertex
}

// ParseOBJ reads the subset of OBJ that BakeOBJ produces: v, vt, vn and
// triangular f records. Other records are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	out := &OBJ{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v", "vn":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vec := [3]float32{f[0], f[1], f[2]}
			if fields[0] == "v" {
				out.Positions = append(out.Positions, vec)
			} else {
				out.Normals = append(out.Normals, vec)
			}
		case "vt":
			f, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			out.TexCoords = append(out.TexCoords, [2]float32{f[0], f[1]})
		case "f":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: only triangles are supported", line)
			}
			var face [3]FaceVertex
			for i := 0; i < 3; i++ {
				fv, err := parseFaceVertex(fields[i+1])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				face[i] = fv
			}
			out.Faces = append(out.Faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseFaceVertex(s string) (FaceVertex, error) {
	parts := strings.Split(s, "/")
	var idx [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		if parts[i] == "" {
			continue
		}
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return FaceVertex{}, fmt.Errorf("bad face index %q", s)
		}
		idx[i] = v
	}
	if idx[0] <= 0 {
		return FaceVertex{}, fmt.Errorf("bad face index %q", s)
	}
	return FaceVertex{V: idx[0], T: idx[1], N: idx[2]}, nil
}

// ImportConverted applies MakeLeftHanded, FlipWindingOrder and FlipUVs to a
// parsed OBJ whose attribute indices coincide per vertex, which is how an
// engine importer reads a baked file. The result is in host convention.
func (o *OBJ) ImportConverted(name string) (*Mesh, error) {
	m := &Mesh{Name: name}
	for _, p := range o.Positions {
		m.Vertices = append(m.Vertices, [3]float32{p[0], p[1], -p[2]})
	}
	if len(o.TexCoords) == len(o.Positions) {
		for _, t := range o.TexCoords {
			m.UVs = append(m.UVs, [2]float32{t[0], 1 - t[1]})
		}
	}
	if len(o.Normals) == len(o.Positions) {
		for _, n := range o.Normals {
			m.Normals = append(m.Normals, [3]float32{n[0], n[1], -n[2]})
		}
	}
	tris := make([]int, 0, len(o.Faces)*3)
	for i, f := range o.Faces {
		for _, fv := range f {
			if (fv.T != 0 && fv.T != fv.V) || (fv.N != 0 && fv.N != fv.V) {
				return nil, fmt.Errorf("face %d: attribute indices differ from position index", i)
			}
			if fv.V > len(o.Positions) {
				return nil, fmt.Errorf("face %d: index %d out of range", i, fv.V)
			}
		}
		tris = append(tris, f[0].V-1, f[2].V-1, f[1].V-1)
	}
	m.Submeshes = [][]int{tris}
	return m, nil
}
