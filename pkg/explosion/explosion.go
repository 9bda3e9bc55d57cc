// Package explosion plans the layout of a shattered pane: a size, position,
// orientation, initial velocity and body parameters for every shard.
//
// Shards are laid out on a golden-angle spiral with square-root radial
// spacing, so the burst fills a disc evenly without visible spokes. Early
// indices sit near the center and are larger; later ones are smaller and sit
// further out.
package explosion

import (
	"fmt"
	"math"

	"github.com/chazu/shatter/pkg/kernel"
	"github.com/chazu/shatter/pkg/rng"
	"github.com/chazu/shatter/pkg/shard"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// GoldenAngle is π(3−√5), about 137.5°.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Layout ranges.
const (
	sizeBaseMin     = 0.1
	sizeBaseMax     = 0.25
	sizeDecay       = 0.5 // size shrinks by up to half across the indices
	sizeDecayFloor  = 0.5
	sizeJitter      = 0.2 // width and height vary by ±20%
	depthMin        = 0.02
	depthMax        = 0.03
	radiusJitterMin = 0.2
	zOffset         = 0.1 // initial z within ±zOffset
	velocityFalloff = 0.5 // shards at the rim launch at half force
	velocityJitter  = 0.2
)

// Body parameters of thin window glass.
const (
	massMin     = 0.1
	massSpread  = 0.2
	dampingMin  = 0.92
	dampingSpan = 0.05
	Friction    = 0.2
	Restitution = 0.8
)

// Config is the caller's description of the burst.
type Config struct {
	Count         int     `toml:"count" json:"count"`
	Force         float64 `toml:"force" json:"force"`
	Radius        float64 `toml:"radius" json:"radius"`
	UpwardBias    float64 `toml:"upward_bias" json:"upward_bias"`
	MinComplexity int     `toml:"min_complexity" json:"min_complexity"`
	MaxComplexity int     `toml:"max_complexity" json:"max_complexity"`
}

// DefaultConfig matches the scene the layout was tuned for.
func DefaultConfig() Config {
	return Config{
		Count:         15,
		Force:         3,
		Radius:        1.2,
		UpwardBias:    0.25,
		MinComplexity: 5,
		MaxComplexity: 8,
	}
}

// Validate checks every field; failures wrap shard.ErrInvalidArgument.
func (c Config) Validate() error {
	switch {
	case c.Count <= 0:
		return fmt.Errorf("%w: count is %d, must be positive", shard.ErrInvalidArgument, c.Count)
	case !(c.Force > 0) || math.IsInf(c.Force, 0):
		return fmt.Errorf("%w: force is %g, must be positive", shard.ErrInvalidArgument, c.Force)
	case !(c.Radius > 0) || math.IsInf(c.Radius, 0):
		return fmt.Errorf("%w: radius is %g, must be positive", shard.ErrInvalidArgument, c.Radius)
	case !(c.UpwardBias >= 0) || math.IsInf(c.UpwardBias, 0):
		return fmt.Errorf("%w: upward bias is %g, must not be negative", shard.ErrInvalidArgument, c.UpwardBias)
	case c.MinComplexity < shard.MinComplexity:
		return fmt.Errorf("%w: min complexity is %d, must be at least %d", shard.ErrInvalidArgument, c.MinComplexity, shard.MinComplexity)
	case c.MaxComplexity < c.MinComplexity:
		return fmt.Errorf("%w: max complexity %d is below min complexity %d", shard.ErrInvalidArgument, c.MaxComplexity, c.MinComplexity)
	}
	return nil
}

// Placement is where and how a shard starts. The physics engine owns the
// live state after hand-off.
type Placement struct {
	Index    int        `json:"index"`
	Position v3.Vec     `json:"position"`
	Rotation [3]float64 `json:"rotation"` // Euler X, Y, Z in radians
	Velocity v3.Vec     `json:"velocity"`
}

// Angle returns the spiral angle of the placement, not reduced mod 2π.
func (p Placement) Angle() float64 {
	return float64(p.Index) * GoldenAngle
}

// Orientation returns the rotation as a quaternion, X applied first.
func (p Placement) Orientation() mgl64.Quat {
	return kernel.EulerQuat(p.Rotation[0], p.Rotation[1], p.Rotation[2])
}

// Body holds the rigid-body parameters for the physics engine.
type Body struct {
	Mass           float64 `json:"mass"`
	LinearDamping  float64 `json:"linear_damping"`
	AngularDamping float64 `json:"angular_damping"`
	Friction       float64 `json:"friction"`
	Restitution    float64 `json:"restitution"`
}

// Shard is one planned fragment.
type Shard struct {
	Spec      shard.Spec `json:"spec"`
	Placement Placement  `json:"placement"`
	Body      Body       `json:"body"`
}

// RadiusFactor is sqrt(i/n): uniform areal density along the spiral.
func RadiusFactor(i, n int) float64 {
	if n <= 0 || i <= 0 {
		return 0
	}
	if i >= n {
		return 1
	}
	return math.Sqrt(float64(i) / float64(n))
}

// SizeDecay is the size multiplier of index i out of n, in [0.5, 1].
func SizeDecay(i, n int) float64 {
	if n <= 0 {
		return 1
	}
	return math.Max(sizeDecayFloor, 1-float64(i)/float64(n)*sizeDecay)
}

// Falloff scales launch speed down for shards far from the center.
func Falloff(distance, radius float64) float64 {
	return 1 - math.Min(1, distance/radius)*velocityFalloff
}

// Plan lays out cfg.Count shards, drawing from src in a fixed order per
// shard: size base, width jitter, height jitter, depth, radius jitter,
// z offset, rotation x/y/z, velocity jitter x/y/z, complexity, mass, linear
// damping, angular damping.
func Plan(cfg Config, src rng.Source) ([]Shard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil randomness source", shard.ErrInvalidArgument)
	}

	shards := make([]Shard, cfg.Count)
	for i := range shards {
		shards[i] = planOne(cfg, i, src)
	}
	return shards, nil
}

func planOne(cfg Config, i int, src rng.Source) Shard {
	n := cfg.Count

	base := rng.Range(src, sizeBaseMin, sizeBaseMax) * SizeDecay(i, n)
	width := base * rng.Range(src, 1-sizeJitter, 1+sizeJitter)
	height := base * rng.Range(src, 1-sizeJitter, 1+sizeJitter)
	depth := rng.Range(src, depthMin, depthMax)

	angle := float64(i) * GoldenAngle
	radius := cfg.Radius * RadiusFactor(i, n) * rng.Range(src, radiusJitterMin, 1)
	pos := v3.Vec{
		X: math.Cos(angle) * radius,
		Y: math.Sin(angle) * radius,
		Z: rng.Centered(src, zOffset),
	}

	rot := [3]float64{rng.Angle(src), rng.Angle(src), rng.Angle(src)}

	dist := pos.Length()
	var dir v3.Vec
	if dist > 0 {
		dir = pos.DivScalar(dist)
	}
	speed := cfg.Force * Falloff(dist, cfg.Radius)
	vel := v3.Vec{
		X: dir.X * speed * rng.Range(src, 1-velocityJitter, 1+velocityJitter),
		Y: dir.Y * speed * rng.Range(src, 1-velocityJitter, 1+velocityJitter),
		Z: dir.Z * speed * rng.Range(src, 1-velocityJitter, 1+velocityJitter),
	}
	vel.Z += cfg.UpwardBias

	span := cfg.MaxComplexity - cfg.MinComplexity + 1
	complexity := cfg.MinComplexity + int(src.Float64()*float64(span))
	if complexity > cfg.MaxComplexity {
		complexity = cfg.MaxComplexity
	}

	body := Body{
		Mass:           rng.Range(src, massMin, massMin+massSpread),
		LinearDamping:  rng.Range(src, dampingMin, dampingMin+dampingSpan),
		AngularDamping: rng.Range(src, dampingMin, dampingMin+dampingSpan),
		Friction:       Friction,
		Restitution:    Restitution,
	}

	return Shard{
		Spec: shard.Spec{
			Size:       [3]float64{width, height, depth},
			Complexity: complexity,
		},
		Placement: Placement{
			Index:    i,
			Position: pos,
			Rotation: rot,
			Velocity: vel,
		},
		Body: body,
	}
}
