package flock

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

// Agent is one member of the flock (a fish in the rendered scene).
// Position and Velocity are exported so sinks and tests can read them;
// the acceleration accumulator only lives for the duration of one tick.
type Agent struct {
	Position geometry.Vector3
	Velocity geometry.Vector3

	MaxSpeed         float64
	LookAhead        float64 // velocity multiplier giving the look-ahead point
	OrientationBlend float64 // 1 replaces the orientation outright

	acceleration geometry.Vector3
	orientation  mgl64.Quat
}

// NewAgent creates an agent facing the default -Z direction.
func NewAgent(position, velocity geometry.Vector3, maxSpeed float64) *Agent {
	return &Agent{
		Position:         position,
		Velocity:         velocity,
		MaxSpeed:         maxSpeed,
		LookAhead:        DefaultLookAhead,
		OrientationBlend: DefaultOrientationBlend,
		orientation:      mgl64.QuatIdent(),
	}
}

// ApplyForce accumulates f into the acceleration of the current tick.
// f is taken by value, the caller's copy is never touched.
func (a *Agent) ApplyForce(f geometry.Vector3) {
	a.acceleration = a.acceleration.Add(f)
}

// Acceleration returns the forces accumulated since the last Update.
func (a *Agent) Acceleration() geometry.Vector3 {
	return a.acceleration
}

// Orientation returns the current facing as a unit quaternion.
func (a *Agent) Orientation() mgl64.Quat {
	return a.orientation
}

// LookAheadPoint is where the agent will be looking after its next move.
func (a *Agent) LookAheadPoint() geometry.Vector3 {
	return a.Position.Add(a.Velocity.Mul(a.LookAhead))
}

// Update integrates one tick: velocity, speed cap, position, accumulator
// reset and a fresh orientation toward the look-ahead point.
func (a *Agent) Update() {
	a.Velocity = a.Velocity.Add(a.acceleration)
	if a.Velocity.Len() > a.MaxSpeed {
		a.Velocity = a.Velocity.ClampLength(a.MaxSpeed)
	}
	a.Position = a.Position.Add(a.Velocity)
	a.acceleration = geometry.Zero

	target, ok := lookRotation(a.Position, a.LookAheadPoint(), geometry.Up)
	if !ok {
		// no heading to look along, keep facing where we were
		return
	}
	if a.OrientationBlend >= 1 {
		a.orientation = target
		return
	}
	a.orientation = mgl64.QuatSlerp(a.orientation, target, a.OrientationBlend).Normalize()
}

// Transform is the model matrix of the agent: translation to Position and
// rotation to the current orientation. mgl64 matrices are column-major.
func (a *Agent) Transform() mgl64.Mat4 {
	return mgl64.Translate3D(a.Position.X, a.Position.Y, a.Position.Z).Mul4(a.orientation.Mat4())
}

func (a *Agent) body() body {
	return body{pos: a.Position, vel: a.Velocity}
}

// lookRotation builds the rotation whose +Z axis points from target back to eye
// (so -Z faces the target) with +Y as close to up as possible. This is the basis
// of the usual lookAt matrix for a model placed at eye.
// It reports false when eye and target coincide.
func lookRotation(eye, target, up geometry.Vector3) (mgl64.Quat, bool) {
	z := eye.Sub(target).Normalize()
	if z.IsZero() {
		return mgl64.Quat{}, false
	}
	x := up.Cross(z)
	if x.LenSqr() < geometry.Epsilon {
		// looking straight along up, nudge the direction off the axis
		if math.Abs(up.Z) == 1 {
			z.X += 0.0001
		} else {
			z.Z += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	m := mgl64.Mat3FromCols(x.Vec3(), y.Vec3(), z.Vec3())
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize(), true
}
