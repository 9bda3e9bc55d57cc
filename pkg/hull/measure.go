package hull

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Volume returns the enclosed volume. It is positive when faces are wound
// outward.
func (h *Hull) Volume() float64 {
	var sum float64
	for _, f := range h.Faces {
		a, b, c := h.Vertices[f[0]], h.Vertices[f[1]], h.Vertices[f[2]]
		sum += a.Dot(b.Cross(c))
	}
	return sum / 6
}

// Normal returns the unit outward normal of face i.
func (h *Hull) Normal(i int) v3.Vec {
	f := h.Faces[i]
	a, b, c := h.Vertices[f[0]], h.Vertices[f[1]], h.Vertices[f[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Length(); l > 0 {
		return n.DivScalar(l)
	}
	return n
}

// Centroid returns the average of the hull vertices.
func (h *Hull) Centroid() v3.Vec {
	var c v3.Vec
	if len(h.Vertices) == 0 {
		return c
	}
	for _, v := range h.Vertices {
		c = c.Add(v)
	}
	return c.DivScalar(float64(len(h.Vertices)))
}

// Bounds returns the axis-aligned bounding box.
func (h *Hull) Bounds() (min, max v3.Vec) {
	if len(h.Vertices) == 0 {
		return min, max
	}
	min, max = h.Vertices[0], h.Vertices[0]
	for _, v := range h.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// EdgeCount returns the number of undirected edges.
func (h *Hull) EdgeCount() int {
	return len(h.Faces) * 3 / 2
}

// IsClosed reports whether every directed edge is used exactly once and is
// matched by its reverse, i.e. the faces form a closed, consistently
// oriented 2-manifold.
func (h *Hull) IsClosed() bool {
	if len(h.Faces) < 4 {
		return false
	}
	seen := make(map[[2]int]int, len(h.Faces)*3)
	for _, f := range h.Faces {
		for k := 0; k < 3; k++ {
			seen[[2]int{f[k], f[(k+1)%3]}]++
		}
	}
	for e, n := range seen {
		if n != 1 || seen[[2]int{e[1], e[0]}] != 1 {
			return false
		}
	}
	// Euler characteristic of a sphere.
	return len(h.Vertices)-h.EdgeCount()+len(h.Faces) == 2
}

// IsConvex reports whether every vertex lies on or behind every face plane,
// within tol.
func (h *Hull) IsConvex(tol float64) bool {
	for i, f := range h.Faces {
		n := h.Normal(i)
		d := n.Dot(h.Vertices[f[0]])
		for _, v := range h.Vertices {
			if n.Dot(v)-d > tol {
				return false
			}
		}
	}
	return true
}

// Contains reports whether p is inside the hull or within tol of its surface.
func (h *Hull) Contains(p v3.Vec, tol float64) bool {
	for i, f := range h.Faces {
		n := h.Normal(i)
		if n.Dot(p)-n.Dot(h.Vertices[f[0]]) > tol {
			return false
		}
	}
	return true
}

// Tolerance returns a plane tolerance proportional to the hull's size.
func (h *Hull) Tolerance() float64 {
	min, max := h.Bounds()
	d := max.Sub(min)
	return math.Max(d.X, math.Max(d.Y, d.Z)) * 1e-7
}
