package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/shatter/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func vec(p [3]float64) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

// box returns an axis-aligned box polyhedron centered at the origin.
func box(x, y, z float64) kernel.Polyhedron {
	hx, hy, hz := x/2, y/2, z/2
	return kernel.Polyhedron{
		Vertices: [][3]float64{
			{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
			{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2},
			{4, 5, 6}, {4, 6, 7},
			{0, 1, 5}, {0, 5, 4},
			{2, 3, 7}, {2, 7, 6},
			{1, 2, 6}, {1, 6, 5},
			{0, 4, 7}, {0, 7, 3},
		},
	}
}

func mustSolid(t *testing.T, k *SdfxKernel, p kernel.Polyhedron) kernel.Solid {
	t.Helper()
	s, err := k.Polyhedron(p)
	if err != nil {
		t.Fatalf("Polyhedron failed: %v", err)
	}
	return s
}

func TestConvexEvaluate(t *testing.T) {
	k := New()
	s := mustSolid(t, k, box(2, 2, 2))
	c := unwrap(s).(*convexSDF)

	tests := []struct {
		name string
		p    [3]float64
		want float64
	}{
		{"center", [3]float64{0, 0, 0}, -1},
		{"on face", [3]float64{1, 0, 0}, 0},
		{"outside", [3]float64{3, 0, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Evaluate(vec(tt.p))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%v) = %f, want %f", tt.p, got, tt.want)
			}
		})
	}
}

func TestBoxMesh(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(mustSolid(t, k, box(1, 0.5, 0.25)))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
	t.Logf("box triangle count: %d", triCount)
}

func TestBoundingBox(t *testing.T) {
	k := New()
	min, max := mustSolid(t, k, box(100, 50, 25)).BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{-50, -25, -12.5}
	expectMax := [3]float64{50, 25, 12.5}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	translated := k.Translate(mustSolid(t, k, box(10, 10, 10)), 100, 200, 300)

	min, max := translated.BoundingBox()

	// Translated box(10,10,10) by (100,200,300) should be centered at (100,200,300).
	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New()

	// A long box along X rotated a quarter turn around Z should extend along Y instead.
	rotated := k.Rotate(mustSolid(t, k, box(100, 10, 10)), 0, 0, math.Pi/2)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestUnion(t *testing.T) {
	k := New()
	a := mustSolid(t, k, box(1, 1, 1))
	b := k.Translate(mustSolid(t, k, box(1, 1, 1)), 3, 0, 0)
	mesh, err := k.ToMesh(k.Union(a, b))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	t.Logf("union triangle count: %d", mesh.TriangleCount())
}

func TestSaveSTL(t *testing.T) {
	k := NewWithCells(16)
	path := filepath.Join(t.TempDir(), "box.stl")
	if err := k.SaveSTL(mustSolid(t, k, box(1, 1, 1)), path); err != nil {
		t.Fatalf("SaveSTL failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("STL file is empty")
	}
}
