// Package exact implements the kernel.Kernel interface by transforming
// polyhedron vertices directly. Meshes are flat shaded and reproduce the hull
// triangles exactly, which is what a physics engine wants for a convex body.
package exact

import (
	"fmt"

	"github.com/chazu/shatter/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ExactKernel)(nil)

// part is one polyhedron with its accumulated transform.
type part struct {
	poly  kernel.Polyhedron
	xform mgl64.Mat4
}

// exactSolid is a group of transformed polyhedra.
type exactSolid struct {
	parts []part
}

// BoundingBox returns the axis-aligned bounding box of all transformed
// vertices.
func (s *exactSolid) BoundingBox() (min, max [3]float64) {
	first := true
	for _, p := range s.parts {
		for _, v := range p.poly.Vertices {
			w := apply(p.xform, v)
			if first {
				min, max = w, w
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				if w[i] < min[i] {
					min[i] = w[i]
				}
				if w[i] > max[i] {
					max[i] = w[i]
				}
			}
		}
	}
	return min, max
}

// ExactKernel implements kernel.Kernel without sampling.
type ExactKernel struct{}

// New returns a new ExactKernel.
func New() *ExactKernel {
	return &ExactKernel{}
}

func unwrap(s kernel.Solid) *exactSolid {
	return s.(*exactSolid)
}

// Polyhedron wraps p as an untransformed solid.
func (k *ExactKernel) Polyhedron(p kernel.Polyhedron) (kernel.Solid, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("exact: %w", err)
	}
	return &exactSolid{parts: []part{{poly: p, xform: mgl64.Ident4()}}}, nil
}

// Union groups two solids. Shards are disjoint, so no clipping is done.
func (k *ExactKernel) Union(a, b kernel.Solid) kernel.Solid {
	ua, ub := unwrap(a), unwrap(b)
	parts := make([]part, 0, len(ua.parts)+len(ub.parts))
	parts = append(parts, ua.parts...)
	parts = append(parts, ub.parts...)
	return &exactSolid{parts: parts}
}

// Translate moves a solid by (x, y, z).
func (k *ExactKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return transform(unwrap(s), mgl64.Translate3D(x, y, z))
}

// Rotate rotates a solid by Euler angles in radians, X first, then Y, then Z.
func (k *ExactKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	q := kernel.EulerQuat(x, y, z)
	return transform(unwrap(s), q.Mat4())
}

func transform(s *exactSolid, m mgl64.Mat4) *exactSolid {
	parts := make([]part, len(s.parts))
	for i, p := range s.parts {
		parts[i] = part{poly: p.poly, xform: m.Mul4(p.xform)}
	}
	return &exactSolid{parts: parts}
}

func apply(m mgl64.Mat4, v [3]float64) [3]float64 {
	w := m.Mul4x1(mgl64.Vec4{v[0], v[1], v[2], 1})
	return [3]float64{w[0], w[1], w[2]}
}

// ToMesh emits every face as its own triangle with the face normal on each
// corner.
func (k *ExactKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	es := unwrap(s)

	numTri := 0
	for _, p := range es.parts {
		numTri += len(p.poly.Faces)
	}
	if numTri == 0 {
		return nil, kernel.ErrEmptyPolyhedron
	}

	vertices := make([]float32, 0, numTri*9)
	normals := make([]float32, 0, numTri*9)
	indices := make([]uint32, 0, numTri*3)

	for _, p := range es.parts {
		world := make([]mgl64.Vec3, len(p.poly.Vertices))
		for i, v := range p.poly.Vertices {
			world[i] = mgl64.Vec3(apply(p.xform, v))
		}
		for _, f := range p.poly.Faces {
			a, b, c := world[f[0]], world[f[1]], world[f[2]]
			n := b.Sub(a).Cross(c.Sub(a))
			if n.Len() > 0 {
				n = n.Normalize()
			}
			for _, v := range [3]mgl64.Vec3{a, b, c} {
				indices = append(indices, uint32(len(vertices)/3))
				vertices = append(vertices, float32(v[0]), float32(v[1]), float32(v[2]))
				normals = append(normals, float32(n[0]), float32(n[1]), float32(n[2]))
			}
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
