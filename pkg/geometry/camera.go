package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrthoCamera projects world points onto a 2D screen without perspective.
// The view turns around the vertical axis (Yaw) then tilts (Pitch).
type OrthoCamera struct {
	Yaw, Pitch float64 // radians
	Scale      float64 // screen units per world unit
	CenterX    float64 // screen position of the world origin
	CenterY    float64
}

// FitCamera returns a camera showing a sphere of radius r centered in a w x h screen.
func FitCamera(w, h, r float64) OrthoCamera {
	side := math.Min(w, h)
	scale := 1.0
	if r > 0 {
		scale = side / (2 * r)
	}
	return OrthoCamera{Scale: scale, CenterX: w / 2, CenterY: h / 2}
}

func (c OrthoCamera) view() mgl64.Mat4 {
	return mgl64.HomogRotate3DX(c.Pitch).Mul4(mgl64.HomogRotate3DY(c.Yaw))
}

// Project returns the screen coordinates of p and its depth (larger is farther).
// Screen y grows downward.
func (c OrthoCamera) Project(p Vector3) (x, y, depth float64) {
	v := mgl64.TransformCoordinate(p.Vec3(), c.view())
	return c.CenterX + v.X()*c.Scale, c.CenterY - v.Y()*c.Scale, -v.Z()
}

// ProjectDir returns the screen direction of the world direction d, unscaled.
func (c OrthoCamera) ProjectDir(d Vector3) (dx, dy float64) {
	v := mgl64.TransformNormal(d.Vec3(), c.view())
	return v.X(), -v.Y()
}
