// Package kernel defines the abstract geometry kernel interface.
// Implementations (exact, sdfx) turn convex shard polyhedra into placed
// triangle meshes behind this interface, so the scene code does not care
// whether a mesh is exact or sampled.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Polyhedron builds a solid from a closed convex polyhedron.
	Polyhedron(p Polyhedron) (Solid, error)

	// Combination. Shards never overlap, so Union is a plain grouping.
	Union(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in radians, X applied first

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
