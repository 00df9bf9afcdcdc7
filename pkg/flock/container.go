package flock

import "github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"

// Sphere is the renderable description of a container. Renderers get it
// from the flock and decide themselves how (or whether) to draw it.
type Sphere struct {
	Center geometry.Vector3
	Radius float64
}

// Container is a sphere centred on the origin that pushes agents back
// inward, harder the closer they get to its surface.
type Container struct {
	Radius              float64
	AgentBoundingRadius float64
	MaxForce            float64
}

// NewContainer builds a container from its settings.
func NewContainer(s ContainerSettings) Container {
	return Container{
		Radius:              s.Radius,
		AgentBoundingRadius: s.AgentBoundingRadius,
		MaxForce:            s.MaxForce,
	}
}

// Sphere returns the geometry to render for this container.
func (c Container) Sphere() Sphere {
	return Sphere{Center: geometry.Zero, Radius: c.Radius}
}

// ContainmentForce returns the inward push on a.
func (c Container) ContainmentForce(a *Agent) geometry.Vector3 {
	return c.force(a.Position, a.Velocity)
}

// force is |v|³ / d² along -normalize(pos), where d is the free distance
// between the agent's hull and the surface. The magnitude saturates at
// MaxForce, which is also used once the agent touches or crosses the surface.
func (c Container) force(pos, vel geometry.Vector3) geometry.Vector3 {
	outward := pos.Normalize()
	speed := vel.Len()
	if outward.IsZero() || speed == 0 {
		return geometry.Zero
	}

	magnitude := c.MaxForce
	if distance := c.Radius - pos.Len() - c.AgentBoundingRadius; distance > 0 {
		if m := speed * speed * speed / (distance * distance); m < c.MaxForce {
			magnitude = m
		}
	}
	return outward.Negate().Mul(magnitude)
}
