// Package scene assembles a complete burst: it plans the layout, generates a
// hull for every planned shard, and hands out settle machines for the
// physics side. A scene is fully determined by its Description.
package scene

import (
	"fmt"

	"github.com/chazu/shatter/internal/logging"
	"github.com/chazu/shatter/pkg/explosion"
	"github.com/chazu/shatter/pkg/rng"
	"github.com/chazu/shatter/pkg/settle"
	"github.com/chazu/shatter/pkg/shard"
	"github.com/google/uuid"
)

// DefaultSeed is used when a description does not name one.
const DefaultSeed uint64 = 1

// settleMix separates the settle stream from the layout stream so that
// ticking machines never shifts the geometry of a seed.
const settleMix = 0xd1b54a32d192ed03

// Description is everything needed to rebuild a scene.
type Description struct {
	Seed      uint64           `json:"seed"`
	Explosion explosion.Config `json:"explosion"`
	Settle    settle.Config    `json:"settle"`
}

// DefaultDescription returns the default burst.
func DefaultDescription() Description {
	return Description{
		Seed:      DefaultSeed,
		Explosion: explosion.DefaultConfig(),
		Settle:    settle.DefaultConfig(),
	}
}

// Validate checks both configs.
func (d Description) Validate() error {
	if err := d.Explosion.Validate(); err != nil {
		return fmt.Errorf("explosion: %w", err)
	}
	if err := d.Settle.Validate(); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	return nil
}

// Instance is a planned shard with its generated hull.
type Instance struct {
	Shard    explosion.Shard
	Geometry *shard.Geometry
}

// Scene is a built burst.
type Scene struct {
	ID          uuid.UUID
	Description Description
	Instances   []Instance
}

type options struct {
	gen shard.Generator
	id  uuid.UUID
}

// Option adjusts Build.
type Option func(*options)

// WithGenerator replaces the default shard generator.
func WithGenerator(g shard.Generator) Option {
	return func(o *options) { o.gen = g }
}

// WithID fixes the scene ID instead of drawing a random one.
func WithID(id uuid.UUID) Option {
	return func(o *options) { o.id = id }
}

// Build plans desc and generates every shard in index order from a single
// stream seeded with desc.Seed.
func Build(desc Description, opts ...Option) (*Scene, error) {
	o := options{gen: shard.Generator{MaxAttempts: shard.DefaultMaxAttempts}}
	for _, opt := range opts {
		opt(&o)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}

	src := rng.New(desc.Seed)
	planned, err := explosion.Plan(desc.Explosion, src)
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}

	instances := make([]Instance, len(planned))
	retries := 0
	for i, p := range planned {
		g, err := o.gen.Generate(p.Spec, src)
		if err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
		retries += g.Attempts - 1
		instances[i] = Instance{Shard: p, Geometry: g}
	}

	logging.LogInfo("scene built", "id", o.id, "seed", desc.Seed, "shards", len(instances), "retries", retries)

	return &Scene{ID: o.id, Description: desc, Instances: instances}, nil
}

// Machines returns one settle machine per shard. They share a source seeded
// from the scene seed, so they must be ticked from one goroutine.
func (s *Scene) Machines() ([]*settle.Machine, error) {
	src := rng.New(s.Description.Seed ^ settleMix)
	ms := make([]*settle.Machine, len(s.Instances))
	for i, inst := range s.Instances {
		m, err := settle.New(inst.Shard.Placement.Index, src, s.Description.Settle)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	return ms, nil
}

// Volume is the summed hull volume of every shard.
func (s *Scene) Volume() float64 {
	var v float64
	for _, inst := range s.Instances {
		if inst.Geometry != nil {
			v += inst.Geometry.Volume()
		}
	}
	return v
}
