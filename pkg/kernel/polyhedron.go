package kernel

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyPolyhedron is returned for a polyhedron without faces.
var ErrEmptyPolyhedron = errors.New("kernel: empty polyhedron")

// Polyhedron is a closed convex triangle mesh with faces wound
// counter-clockwise when seen from outside.
type Polyhedron struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][3]int     `json:"faces"`
}

// Plane is the supporting plane of a face: Normal·p = Offset, with the
// normal pointing out of the solid.
type Plane struct {
	Normal [3]float64
	Offset float64
}

// Validate checks that the polyhedron has faces and in-range indices.
func (p Polyhedron) Validate() error {
	if len(p.Faces) == 0 || len(p.Vertices) < 4 {
		return ErrEmptyPolyhedron
	}
	for i, f := range p.Faces {
		for _, v := range f {
			if v < 0 || v >= len(p.Vertices) {
				return fmt.Errorf("kernel: face %d references vertex %d of %d", i, v, len(p.Vertices))
			}
		}
	}
	return nil
}

// Planes returns one outward plane per face. Degenerate faces are skipped.
func (p Polyhedron) Planes() []Plane {
	planes := make([]Plane, 0, len(p.Faces))
	for _, f := range p.Faces {
		a, b, c := p.Vertices[f[0]], p.Vertices[f[1]], p.Vertices[f[2]]
		n := cross(sub(b, a), sub(c, a))
		l := math.Sqrt(dot(n, n))
		if l == 0 {
			continue
		}
		n = [3]float64{n[0] / l, n[1] / l, n[2] / l}
		planes = append(planes, Plane{Normal: n, Offset: dot(n, a)})
	}
	return planes
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (p Polyhedron) Bounds() (min, max [3]float64) {
	if len(p.Vertices) == 0 {
		return min, max
	}
	min, max = p.Vertices[0], p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], v[i])
			max[i] = math.Max(max[i], v[i])
		}
	}
	return min, max
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
