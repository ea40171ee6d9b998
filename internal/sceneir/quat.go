package sceneir

import (
	"encoding/json"
	"fmt"
)

// Quat is a rotation held in the target (w, x, y, z) convention. Producers
// hand rotations over in (x, y, z, w) order and QuatFromXYZW is the only
// place the components are reordered.
type Quat struct {
	W, X, Y, Z Float
}

// IdentityQuat is the no-rotation value.
var IdentityQuat = Quat{W: 1}

func QuatFromXYZW(x, y, z, w float32) Quat {
	return Quat{W: Float(w), X: Float(x), Y: Float(y), Z: Float(z)}
}

// Cpp renders a glm::quat constructor, whose argument order is (w, x, y, z).
func (q Quat) Cpp() string {
	return fmt.Sprintf("glm::quat(%s, %s, %s, %s)", q.W.Cpp(), q.X.Cpp(), q.Y.Cpp(), q.Z.Cpp())
}

// MarshalJSON writes the scene document wire order [x, y, z, w] read by the
// JSON runtime loader.
func (q Quat) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]Float{q.X, q.Y, q.Z, q.W})
}

func (q *Quat) UnmarshalJSON(data []byte) error {
	var raw [4]Float
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = Quat{X: raw[0], Y: raw[1], Z: raw[2], W: raw[3]}
	return nil
}
