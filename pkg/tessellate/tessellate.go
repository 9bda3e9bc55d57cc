// Package tessellate turns a built scene into placed triangle meshes using
// a geometry kernel. One mesh is produced per shard.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/chazu/shatter/pkg/kernel"
	"github.com/chazu/shatter/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// MeshName is the name given to the mesh of shard i.
func MeshName(i int) string {
	return fmt.Sprintf("shard-%02d", i)
}

// Tessellator meshes scenes with at most Workers shards in flight.
type Tessellator struct {
	Workers int
}

// Tessellate meshes every shard of s with one worker per CPU.
func Tessellate(ctx context.Context, s *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	return Tessellator{Workers: runtime.GOMAXPROCS(0)}.Tessellate(ctx, s, k)
}

// Tessellate produces one mesh per shard in index order, each placed as by
// Place. The scene is never mutated.
func (t Tessellator) Tessellate(ctx context.Context, s *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, len(s.Instances))
	g, ctx := errgroup.WithContext(ctx)
	if t.Workers > 0 {
		g.SetLimit(t.Workers)
	}

	for i, inst := range s.Instances {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := meshInstance(k, inst)
			if err != nil {
				return fmt.Errorf("tessellate: shard %d: %w", i, err)
			}
			meshes[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

// Place builds the solid of one instance, rotated about its own origin and
// then moved to its placement.
func Place(k kernel.Kernel, inst scene.Instance) (kernel.Solid, error) {
	if inst.Geometry == nil {
		return nil, errors.New("no geometry")
	}
	solid, err := k.Polyhedron(inst.Geometry.Polyhedron())
	if err != nil {
		return nil, err
	}

	p := inst.Shard.Placement
	rot := p.Rotation
	if rot[0] != 0 || rot[1] != 0 || rot[2] != 0 {
		solid = k.Rotate(solid, rot[0], rot[1], rot[2])
	}
	pos := p.Position
	if pos.X != 0 || pos.Y != 0 || pos.Z != 0 {
		solid = k.Translate(solid, pos.X, pos.Y, pos.Z)
	}
	return solid, nil
}

func meshInstance(k kernel.Kernel, inst scene.Instance) (*kernel.Mesh, error) {
	solid, err := Place(k, inst)
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	mesh.Name = MeshName(inst.Shard.Placement.Index)
	return mesh, nil
}

// Merge concatenates meshes into one named mesh.
func Merge(name string, meshes []*kernel.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{Name: name}
	for _, m := range meshes {
		if m != nil {
			out.Append(m)
		}
	}
	return out
}
