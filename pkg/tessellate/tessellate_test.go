package tessellate_test

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"testing"

	"github.com/chazu/shatter/internal/logging"
	"github.com/chazu/shatter/pkg/kernel"
	"github.com/chazu/shatter/pkg/kernel/exact"
	"github.com/chazu/shatter/pkg/kernel/sdfx"
	"github.com/chazu/shatter/pkg/scene"
	"github.com/chazu/shatter/pkg/tessellate"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func buildScene(t *testing.T, count int, seed uint64) *scene.Scene {
	t.Helper()
	desc := scene.DefaultDescription()
	desc.Seed = seed
	desc.Explosion.Count = count
	s, err := scene.Build(desc)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

func boundsCenter(m *kernel.Mesh) [3]float64 {
	min := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		for j := 0; j < 3; j++ {
			v := float64(m.Vertices[i*3+j])
			min[j] = math.Min(min[j], v)
			max[j] = math.Max(max[j], v)
		}
	}
	return [3]float64{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2, (min[2] + max[2]) / 2}
}

func TestOneMeshPerShard(t *testing.T) {
	s := buildScene(t, 15, 42)

	meshes, err := tessellate.Tessellate(context.Background(), s, exact.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 15 {
		t.Fatalf("expected 15 meshes, got %d", len(meshes))
	}

	for i, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("mesh %d is empty", i)
		}
		if want := tessellate.MeshName(i); m.Name != want {
			t.Errorf("mesh %d name = %q, want %q", i, m.Name, want)
		}
		if got, want := m.TriangleCount(), len(s.Instances[i].Geometry.Hull.Faces); got != want {
			t.Errorf("mesh %d has %d triangles, hull has %d faces", i, got, want)
		}
	}
}

func TestMeshName(t *testing.T) {
	if got := tessellate.MeshName(3); got != "shard-03" {
		t.Errorf("MeshName(3) = %q", got)
	}
	if got := tessellate.MeshName(123); got != "shard-123" {
		t.Errorf("MeshName(123) = %q", got)
	}
}

func TestPlacementIsApplied(t *testing.T) {
	s := buildScene(t, 8, 7)

	meshes, err := tessellate.Tessellate(context.Background(), s, exact.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	for i, inst := range s.Instances {
		h := inst.Geometry.Hull
		p := inst.Shard.Placement
		q := p.Orientation()

		// The first corner of the first triangle is hull vertex Faces[0][0],
		// rotated about the origin and then moved to the placement.
		v := h.Vertices[h.Faces[0][0]]
		r := q.Rotate([3]float64{v.X, v.Y, v.Z})
		want := [3]float64{r[0] + p.Position.X, r[1] + p.Position.Y, r[2] + p.Position.Z}

		got := meshes[i].Triangle(0)[0]
		for j := 0; j < 3; j++ {
			if math.Abs(float64(got[j])-want[j]) > 1e-5 {
				t.Fatalf("shard %d corner = %v, want %v", i, got, want)
			}
		}
	}
}

func TestSdfxKernelAgreesWithExact(t *testing.T) {
	if testing.Short() {
		t.Skip("marching cubes is slow")
	}
	s := buildScene(t, 4, 3)
	ctx := context.Background()

	exactMeshes, err := tessellate.Tessellate(ctx, s, exact.New())
	if err != nil {
		t.Fatalf("exact Tessellate failed: %v", err)
	}
	sdfMeshes, err := tessellate.Tessellator{Workers: 2}.Tessellate(ctx, s, sdfx.New())
	if err != nil {
		t.Fatalf("sdfx Tessellate failed: %v", err)
	}

	// Marching cubes is approximate, so compare bounding box centers.
	const tol = 0.02
	for i := range exactMeshes {
		a, b := boundsCenter(exactMeshes[i]), boundsCenter(sdfMeshes[i])
		for j := 0; j < 3; j++ {
			if math.Abs(a[j]-b[j]) > tol {
				t.Errorf("shard %d center[%d]: exact %.4f, sdfx %.4f", i, j, a[j], b[j])
			}
		}
		if sdfMeshes[i].Name != exactMeshes[i].Name {
			t.Errorf("shard %d name mismatch: %q vs %q", i, sdfMeshes[i].Name, exactMeshes[i].Name)
		}
	}
}

func TestNilScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(context.Background(), nil, exact.New())
	if err != nil || meshes != nil {
		t.Errorf("Tessellate(nil) = %v, %v; want nil, nil", meshes, err)
	}
}

func TestMissingGeometryFails(t *testing.T) {
	s := buildScene(t, 5, 1)
	s.Instances[2].Geometry = nil

	_, err := tessellate.Tessellate(context.Background(), s, exact.New())
	if err == nil {
		t.Fatal("expected an error for a shard without geometry")
	}
}

func TestCancelledContext(t *testing.T) {
	s := buildScene(t, 5, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tessellate.Tessellator{Workers: 1}.Tessellate(ctx, s, exact.New())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	s := buildScene(t, 3, 9)
	meshes, err := tessellate.Tessellate(context.Background(), s, exact.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	merged := tessellate.Merge("burst", meshes)
	want := 0
	for _, m := range meshes {
		want += m.TriangleCount()
	}
	if merged.TriangleCount() != want {
		t.Errorf("merged triangle count = %d, want %d", merged.TriangleCount(), want)
	}
	if merged.Name != "burst" {
		t.Errorf("merged name = %q", merged.Name)
	}
}
