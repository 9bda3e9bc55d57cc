// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/shatter/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
// Shards are small and simple, so far fewer cells than a CAD part need.
const defaultMeshCells = 48

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// convexSDF is the intersection of the half-spaces of a convex polyhedron.
// The value is the largest signed plane distance: exact outside near faces,
// a lower bound elsewhere, which marching cubes is fine with.
type convexSDF struct {
	normals []v3.Vec
	offsets []float64
	bb      sdf.Box3
}

// Evaluate returns the signed distance bound at p.
func (c *convexSDF) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for i, n := range c.normals {
		d = math.Max(d, n.Dot(p)-c.offsets[i])
	}
	return d
}

// BoundingBox returns the bounding box of the polyhedron.
func (c *convexSDF) BoundingBox() sdf.Box3 {
	return c.bb
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel with the default mesh resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: defaultMeshCells}
}

// NewWithCells returns a kernel meshing with the given number of cells along
// the longest bounding box axis.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Polyhedron builds a convex SDF from the face planes of p.
func (k *SdfxKernel) Polyhedron(p kernel.Polyhedron) (kernel.Solid, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	planes := p.Planes()
	c := &convexSDF{
		normals: make([]v3.Vec, len(planes)),
		offsets: make([]float64, len(planes)),
	}
	for i, pl := range planes {
		c.normals[i] = v3.Vec{X: pl.Normal[0], Y: pl.Normal[1], Z: pl.Normal[2]}
		c.offsets[i] = pl.Offset
	}
	min, max := p.Bounds()
	c.bb = sdf.Box3{
		Min: v3.Vec{X: min[0], Y: min[1], Z: min[2]},
		Max: v3.Vec{X: max[0], Y: max[1], Z: max[2]},
	}
	return wrap(c), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (radians) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.RotateZ(z).Mul(sdf.RotateY(y)).Mul(sdf.RotateX(x))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	triangles := k.Triangles(s)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// Triangles runs marching cubes over s and returns the raw sdfx triangles.
func (k *SdfxKernel) Triangles(s kernel.Solid) []*sdf.Triangle3 {
	renderer := render.NewMarchingCubesUniform(k.cells)
	return render.ToTriangles(unwrap(s), renderer)
}

// SaveSTL meshes s and writes it as a binary STL file.
func (k *SdfxKernel) SaveSTL(s kernel.Solid, path string) error {
	if err := render.SaveSTL(path, k.Triangles(s)); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}
