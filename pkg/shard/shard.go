// Package shard generates irregular convex glass shards.
//
// A shard starts as a jittered closed silhouette in the XY plane. Every
// silhouette point is emitted twice at different depths to give the shard
// thickness, with the occasional extra point for irregularity, and the
// convex hull of that cloud is the shard.
package shard

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/shatter/internal/logging"
	"github.com/chazu/shatter/pkg/hull"
	"github.com/chazu/shatter/pkg/kernel"
	"github.com/chazu/shatter/pkg/rng"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrInvalidArgument reports malformed input: non-positive sizes,
	// too little complexity, or a bad explosion configuration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDegenerateGeometry reports a point cloud whose hull has no volume
	// after every resample attempt.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

const (
	// MinComplexity is the smallest number of silhouette samples.
	MinComplexity = 3

	// DefaultMaxAttempts bounds resampling of degenerate clouds.
	DefaultMaxAttempts = 3
)

// Shape ranges of the generator.
const (
	widthScaleMin  = 0.5
	heightScaleMin = 0.5
	depthScaleMin  = 0.7
	radiusMin      = 0.4
	depthJitter    = 0.2 // z offsets are within ±depthJitter·depth
	extraChance    = 0.5
	extraAngle     = 0.1 // ±radians
	extraRadiusMin = 0.7
)

// Spec describes the shard to build. Size is (width, height, depth).
type Spec struct {
	Size       [3]float64 `json:"size"`
	Complexity int        `json:"complexity"`
}

// Validate checks that every size component is positive and finite and that
// the complexity is at least MinComplexity.
func (s Spec) Validate() error {
	for i, v := range s.Size {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: size[%d] is %g, must be positive", ErrInvalidArgument, i, v)
		}
	}
	if s.Complexity < MinComplexity {
		return fmt.Errorf("%w: complexity is %d, must be at least %d", ErrInvalidArgument, s.Complexity, MinComplexity)
	}
	return nil
}

// PointCloud is the raw point set a shard hull is built from.
type PointCloud []v3.Vec

// Geometry is a finished shard: the hull of its point cloud.
type Geometry struct {
	Hull     *hull.Hull
	Attempts int // point clouds drawn before a solid hull came out
}

// Volume returns the shard volume.
func (g *Geometry) Volume() float64 {
	return g.Hull.Volume()
}

// Polyhedron converts the shard to the kernel's input format.
func (g *Geometry) Polyhedron() kernel.Polyhedron {
	p := kernel.Polyhedron{
		Vertices: make([][3]float64, len(g.Hull.Vertices)),
		Faces:    make([][3]int, len(g.Hull.Faces)),
	}
	for i, v := range g.Hull.Vertices {
		p.Vertices[i] = [3]float64{v.X, v.Y, v.Z}
	}
	copy(p.Faces, g.Hull.Faces)
	return p
}

// Generator builds shards with a bounded number of resamples.
type Generator struct {
	MaxAttempts int
}

// Generate builds one shard with the default attempt budget.
func Generate(spec Spec, src rng.Source) (*Geometry, error) {
	return Generator{MaxAttempts: DefaultMaxAttempts}.Generate(spec, src)
}

// Generate builds one shard. A degenerate cloud is redrawn from src until
// the attempt budget runs out, at which point ErrDegenerateGeometry is
// returned and no geometry.
func (g Generator) Generate(spec Spec, src rng.Source) (*Geometry, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil randomness source", ErrInvalidArgument)
	}
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	var lastErr error
	for n := 1; n <= attempts; n++ {
		cloud := sample(spec, src)
		h, err := hull.New(cloud)
		if err == nil {
			return &Geometry{Hull: h, Attempts: n}, nil
		}
		if !errors.Is(err, hull.ErrDegenerate) {
			return nil, err
		}
		lastErr = err
		logging.LogDebug("resampling degenerate shard", "attempt", n, "points", len(cloud), "err", err)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrDegenerateGeometry, attempts, lastErr)
}

// GenerateCloud draws a single point cloud for spec without building a hull.
func GenerateCloud(spec Spec, src rng.Source) (PointCloud, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil randomness source", ErrInvalidArgument)
	}
	return sample(spec, src), nil
}

// sample draws one point cloud. Draw order: width, height and depth scales,
// then for each silhouette sample its radius, two depths and the extra-point
// coin; a winning coin adds angle, radius and depth draws for the extra point.
func sample(spec Spec, src rng.Source) PointCloud {
	width := spec.Size[0] * rng.Range(src, widthScaleMin, 1)
	height := spec.Size[1] * rng.Range(src, heightScaleMin, 1)
	depth := spec.Size[2] * rng.Range(src, depthScaleMin, 1)

	n := spec.Complexity
	cloud := make(PointCloud, 0, 3*n)
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(n) * 2 * math.Pi
		radius := rng.Range(src, radiusMin, 1)

		x := math.Cos(angle) * width * radius
		y := math.Sin(angle) * height * radius
		z1 := rng.Centered(src, depthJitter) * depth
		z2 := rng.Centered(src, depthJitter) * depth
		cloud = append(cloud, v3.Vec{X: x, Y: y, Z: z1}, v3.Vec{X: x, Y: y, Z: z2})

		if src.Float64() < extraChance {
			subAngle := angle + rng.Centered(src, extraAngle)
			subRadius := radius * rng.Range(src, extraRadiusMin, 1)
			cloud = append(cloud, v3.Vec{
				X: math.Cos(subAngle) * width * subRadius,
				Y: math.Sin(subAngle) * height * subRadius,
				Z: rng.Centered(src, depthJitter) * depth,
			})
		}
	}
	return cloud
}
