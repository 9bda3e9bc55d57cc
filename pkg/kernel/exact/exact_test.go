package exact

import (
	"math"
	"testing"

	"github.com/chazu/shatter/pkg/kernel"
)

// box returns an axis-aligned box polyhedron centered at the origin.
func box(x, y, z float64) kernel.Polyhedron {
	hx, hy, hz := x/2, y/2, z/2
	return kernel.Polyhedron{
		Vertices: [][3]float64{
			{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
			{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2}, // bottom
			{4, 5, 6}, {4, 6, 7}, // top
			{0, 1, 5}, {0, 5, 4}, // front
			{2, 3, 7}, {2, 7, 6}, // back
			{1, 2, 6}, {1, 6, 5}, // right
			{0, 4, 7}, {0, 7, 3}, // left
		},
	}
}

func TestBoxMesh(t *testing.T) {
	k := New()
	s, err := k.Polyhedron(box(100, 50, 25))
	if err != nil {
		t.Fatalf("Polyhedron failed: %v", err)
	}
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() != 12 {
		t.Fatalf("triangle count = %d, want 12", mesh.TriangleCount())
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	// Every normal points away from the origin for a centered box.
	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := mesh.Triangle(i)
		n := mesh.Normals[i*9 : i*9+3]
		var d float32
		for j := 0; j < 3; j++ {
			d += n[j] * (tri[0][j] + tri[1][j] + tri[2][j])
		}
		if d <= 0 {
			t.Errorf("triangle %d normal points inward", i)
		}
	}
}

func TestEmptyPolyhedron(t *testing.T) {
	k := New()
	if _, err := k.Polyhedron(kernel.Polyhedron{}); err == nil {
		t.Fatal("expected error for empty polyhedron")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	s, _ := k.Polyhedron(box(10, 10, 10))
	moved := k.Translate(s, 100, 200, 300)

	min, max := moved.BoundingBox()
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}
	const tol = 1e-9
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New()
	s, _ := k.Polyhedron(box(100, 10, 10))

	// A long box along X rotated a quarter turn around Z extends along Y.
	rotated := k.Rotate(s, 0, 0, math.Pi/2)
	min, max := rotated.BoundingBox()

	const tol = 1e-9
	if ext := max[0] - min[0]; math.Abs(ext-10) > tol {
		t.Errorf("rotated X extent = %f, expected 10", ext)
	}
	if ext := max[1] - min[1]; math.Abs(ext-100) > tol {
		t.Errorf("rotated Y extent = %f, expected 100", ext)
	}
}

func TestRotateThenTranslateOrder(t *testing.T) {
	k := New()
	s, _ := k.Polyhedron(box(2, 2, 2))
	placed := k.Translate(k.Rotate(s, 0.3, 1.1, 2.0), 5, 0, 0)
	min, max := placed.BoundingBox()
	cx := (min[0] + max[0]) / 2
	if math.Abs(cx-5) > 1e-9 {
		t.Errorf("center x = %f, want 5 (rotation should stay about the origin)", cx)
	}
}

func TestEulerQuatAppliesXFirst(t *testing.T) {
	// X quarter turn maps +Y to +Z; a following Y quarter turn maps +Z to +X.
	q := kernel.EulerQuat(math.Pi/2, math.Pi/2, 0)
	v := q.Rotate([3]float64{0, 1, 0})
	want := [3]float64{1, 0, 0}
	for i := 0; i < 3; i++ {
		if math.Abs(v[i]-want[i]) > 1e-12 {
			t.Fatalf("rotated = %v, want %v", v, want)
		}
	}
}

func TestUnionKeepsBothParts(t *testing.T) {
	k := New()
	a, _ := k.Polyhedron(box(1, 1, 1))
	b, _ := k.Polyhedron(box(1, 1, 1))
	u := k.Union(a, k.Translate(b, 10, 0, 0))

	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() != 24 {
		t.Errorf("triangle count = %d, want 24", mesh.TriangleCount())
	}
	min, max := u.BoundingBox()
	if math.Abs(min[0]+0.5) > 1e-9 || math.Abs(max[0]-10.5) > 1e-9 {
		t.Errorf("union X bounds = [%f, %f], want [-0.5, 10.5]", min[0], max[0])
	}
}
