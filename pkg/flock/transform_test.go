package flock

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

func near32(a float32, b float64, tol float64) bool {
	return math.Abs(float64(a)-b) <= tol
}

func TestFlock_Export(t *testing.T) {
	agents := []*Agent{
		NewAgent(geometry.Vector3{X: 10, Y: -20, Z: 30}, geometry.Vector3{X: 1, Y: 2, Z: -2}, DefaultMaxSpeed),
		NewAgent(geometry.Vector3{X: -100, Y: 0, Z: 5}, geometry.Vector3{Z: 2}, DefaultMaxSpeed),
		NewAgent(geometry.Vector3{Y: 400}, geometry.Vector3{X: -1, Y: -1}, DefaultMaxSpeed),
	}
	f := newTestFlock(t, DefaultSettings(), agents...)
	f.Update()

	buf := f.Export()
	if len(buf) != TransformSize*f.Len() {
		t.Fatalf("len(Export()) = %d; want %d", len(buf), TransformSize*f.Len())
	}

	for i := 0; i < f.Len(); i++ {
		a := f.Agent(i)
		x, y, z := Translation(buf, i)
		if !near32(x, a.Position.X, 1e-3) || !near32(y, a.Position.Y, 1e-3) || !near32(z, a.Position.Z, 1e-3) {
			t.Errorf("agent %d translation (%v, %v, %v); want %v", i, x, y, z, a.Position)
		}

		heading := a.Velocity.Normalize()
		fx, fy, fz := Forward(buf, i)
		if !near32(fx, heading.X, 1e-5) || !near32(fy, heading.Y, 1e-5) || !near32(fz, heading.Z, 1e-5) {
			t.Errorf("agent %d forward (%v, %v, %v); want %v", i, fx, fy, fz, heading)
		}

		m := buf[i*TransformSize : (i+1)*TransformSize]
		if m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
			t.Errorf("agent %d bottom row = (%v, %v, %v, %v); want (0, 0, 0, 1)", i, m[3], m[7], m[11], m[15])
		}
	}
}

func TestFlock_ExportTo_RowMajor(t *testing.T) {
	f := newTestFlock(t, DefaultSettings(), cluster()...)
	f.Update()

	cm := f.ExportTo(nil, ColumnMajor)
	rm := f.ExportTo(nil, RowMajor)
	for i := 0; i < f.Len(); i++ {
		base := i * TransformSize
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				if rm[base+r*4+c] != cm[base+c*4+r] {
					t.Fatalf("agent %d element (%d,%d): row-major %v, column-major %v",
						i, r, c, rm[base+r*4+c], cm[base+c*4+r])
				}
			}
		}
	}
}

func TestFlock_Export_FreshBuffer(t *testing.T) {
	f := newTestFlock(t, DefaultSettings(), NewAgent(geometry.Zero, geometry.Vector3{X: 1}, DefaultMaxSpeed))
	f.Update()

	first := f.Export()
	first[TranslationX] = 1234
	f.Update()
	second := f.Export()

	if second[TranslationX] == 1234 {
		t.Error("Export() reused the previous buffer")
	}
	if first[TranslationX] != 1234 {
		t.Error("Update() touched a buffer already handed out")
	}
}

func TestFlock_ExportTo_ReusesCapacity(t *testing.T) {
	f := newTestFlock(t, DefaultSettings(), cluster()...)
	dst := make([]float32, 0, TransformSize*f.Len())
	got := f.ExportTo(dst, ColumnMajor)
	if &got[0] != &dst[:1][0] {
		t.Error("ExportTo() reallocated although dst was large enough")
	}
}
