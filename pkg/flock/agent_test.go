package flock

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

const tolerance = 1e-6

func vecNear(a, b geometry.Vector3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// forwardOf is the direction the -Z axis of q points to.
func forwardOf(q mgl64.Quat) geometry.Vector3 {
	return geometry.FromVec3(q.Rotate(mgl64.Vec3{0, 0, -1}))
}

func TestAgent_ApplyForce(t *testing.T) {
	a := NewAgent(geometry.Zero, geometry.Zero, DefaultMaxSpeed)
	f := geometry.Vector3{X: 1, Y: -2, Z: 0.5}

	a.ApplyForce(f)
	a.ApplyForce(f)

	if want := (geometry.Vector3{X: 2, Y: -4, Z: 1}); !a.Acceleration().Eq(want) {
		t.Errorf("Acceleration() = %v; want %v", a.Acceleration(), want)
	}
	if !f.Eq(geometry.Vector3{X: 1, Y: -2, Z: 0.5}) {
		t.Errorf("ApplyForce mutated the caller's force: %v", f)
	}
}

func TestAgent_Update_Integrates(t *testing.T) {
	a := NewAgent(geometry.Vector3{X: 5, Y: 5, Z: 5}, geometry.Vector3{X: 1, Y: 0, Z: 0}, DefaultMaxSpeed)
	a.ApplyForce(geometry.Vector3{X: 0, Y: 0.5, Z: 0})

	a.Update()

	if want := (geometry.Vector3{X: 1, Y: 0.5, Z: 0}); !a.Velocity.Eq(want) {
		t.Errorf("Velocity = %v; want %v", a.Velocity, want)
	}
	if want := (geometry.Vector3{X: 6, Y: 5.5, Z: 5}); !a.Position.Eq(want) {
		t.Errorf("Position = %v; want %v", a.Position, want)
	}
	if !a.Acceleration().IsZero() {
		t.Errorf("Acceleration not reset after Update: %v", a.Acceleration())
	}
}

func TestAgent_Update_SpeedCap(t *testing.T) {
	tests := []struct {
		name  string
		vel   geometry.Vector3
		force geometry.Vector3
	}{
		{"no force, fast start", geometry.Vector3{X: 10, Y: -10, Z: 10}, geometry.Zero},
		{"huge force", geometry.Zero, geometry.Vector3{X: 1e6, Y: 0, Z: 0}},
		{"opposing force", geometry.Vector3{X: 3, Y: 0, Z: 0}, geometry.Vector3{X: -100, Y: 50, Z: 1}},
		{"slow stays slow", geometry.Vector3{X: 0.1, Y: 0, Z: 0}, geometry.Vector3{X: 0.1, Y: 0, Z: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAgent(geometry.Zero, tt.vel, DefaultMaxSpeed)
			a.ApplyForce(tt.force)
			a.Update()
			if got := a.Velocity.Len(); got > DefaultMaxSpeed+geometry.Epsilon {
				t.Errorf("speed after Update = %v; want <= %v", got, DefaultMaxSpeed)
			}
		})
	}

	t.Run("direction preserved", func(t *testing.T) {
		a := NewAgent(geometry.Zero, geometry.Vector3{X: 0, Y: 0, Z: 9}, DefaultMaxSpeed)
		a.Update()
		if want := (geometry.Vector3{X: 0, Y: 0, Z: 3}); !a.Velocity.Eq(want) {
			t.Errorf("Velocity = %v; want %v", a.Velocity, want)
		}
	})
}

func TestAgent_Update_Orientation(t *testing.T) {
	t.Run("faces velocity", func(t *testing.T) {
		a := NewAgent(geometry.Zero, geometry.Vector3{X: 2, Y: 0, Z: 0}, DefaultMaxSpeed)
		a.Update()
		if got := forwardOf(a.Orientation()); !vecNear(got, geometry.Vector3{X: 1}, tolerance) {
			t.Errorf("forward = %v; want (1, 0, 0)", got)
		}
		up := geometry.FromVec3(a.Orientation().Rotate(mgl64.Vec3{0, 1, 0}))
		if !vecNear(up, geometry.Up, tolerance) {
			t.Errorf("up = %v; want (0, 1, 0)", up)
		}
	})

	t.Run("replaces previous orientation", func(t *testing.T) {
		a := NewAgent(geometry.Zero, geometry.Vector3{X: 0, Y: 0, Z: 1}, DefaultMaxSpeed)
		a.Update()
		a.Velocity = geometry.Vector3{X: -1, Y: 0, Z: 0}
		a.Update()
		if got := forwardOf(a.Orientation()); !vecNear(got, geometry.Vector3{X: -1}, tolerance) {
			t.Errorf("forward = %v; want (-1, 0, 0)", got)
		}
	})

	t.Run("zero velocity keeps orientation", func(t *testing.T) {
		a := NewAgent(geometry.Zero, geometry.Vector3{X: 0, Y: 0, Z: 2}, DefaultMaxSpeed)
		a.Update()
		before := a.Orientation()
		a.Velocity = geometry.Zero
		a.Update()
		after := a.Orientation()
		if before != after {
			t.Errorf("orientation changed with zero velocity: %v -> %v", before, after)
		}
		for _, c := range [4]float64{after.W, after.V[0], after.V[1], after.V[2]} {
			if math.IsNaN(c) {
				t.Fatalf("orientation is NaN: %v", after)
			}
		}
	})

	t.Run("vertical heading", func(t *testing.T) {
		a := NewAgent(geometry.Zero, geometry.Vector3{X: 0, Y: 3, Z: 0}, DefaultMaxSpeed)
		a.Update()
		got := forwardOf(a.Orientation())
		if !got.IsFinite() || got.Y < 0.999 {
			t.Errorf("forward = %v; want close to (0, 1, 0)", got)
		}
	})

	t.Run("partial blend", func(t *testing.T) {
		a := NewAgent(geometry.Zero, geometry.Vector3{X: 1, Y: 0, Z: 0}, DefaultMaxSpeed)
		a.OrientationBlend = 0.5
		a.Update()
		want := geometry.Vector3{X: math.Sqrt2 / 2, Y: 0, Z: -math.Sqrt2 / 2}
		if got := forwardOf(a.Orientation()); !vecNear(got, want, tolerance) {
			t.Errorf("forward = %v; want %v", got, want)
		}
	})
}

func TestAgent_LookAheadPoint(t *testing.T) {
	a := NewAgent(geometry.Vector3{X: 1, Y: 2, Z: 3}, geometry.Vector3{X: 0.5, Y: 0, Z: -1}, DefaultMaxSpeed)
	if want := (geometry.Vector3{X: 6, Y: 2, Z: -7}); !a.LookAheadPoint().Eq(want) {
		t.Errorf("LookAheadPoint() = %v; want %v", a.LookAheadPoint(), want)
	}
}
