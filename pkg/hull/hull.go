// Package hull computes the convex hull of a 3D point set as a closed,
// outward-oriented triangle mesh.
//
// The construction is incremental: an initial tetrahedron is grown one point
// at a time by removing the faces the point can see and stitching the horizon
// to it. Point sets here are small (tens of points), so the quadratic cost
// does not matter.
package hull

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegenerate is returned when the points do not span a solid: fewer than
// four points, or all of them collinear or coplanar.
var ErrDegenerate = errors.New("hull: degenerate point set")

// relEpsilon scales the plane tolerance to the size of the input.
const relEpsilon = 1e-9

// Hull is a closed convex polyhedron. Faces index into Vertices and are
// wound counter-clockwise when seen from outside.
type Hull struct {
	Vertices []v3.Vec
	Faces    [][3]int
}

// face is a working triangle with its supporting plane n·p = d.
type face struct {
	v [3]int
	n v3.Vec
	d float64
}

func newFace(pts []v3.Vec, a, b, c int) face {
	n := pts[b].Sub(pts[a]).Cross(pts[c].Sub(pts[a]))
	if l := n.Length(); l > 0 {
		n = n.DivScalar(l)
	}
	return face{v: [3]int{a, b, c}, n: n, d: n.Dot(pts[a])}
}

func (f face) dist(p v3.Vec) float64 {
	return f.n.Dot(p) - f.d
}

// New computes the convex hull of points. The input slice is not modified.
func New(points []v3.Vec) (*Hull, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 points, got %d", ErrDegenerate, len(points))
	}

	scale := extent(points)
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: points have no extent", ErrDegenerate)
	}
	eps := scale * relEpsilon

	simplex, err := initialSimplex(points, eps)
	if err != nil {
		return nil, err
	}

	a, b, c, d := simplex[0], simplex[1], simplex[2], simplex[3]
	interior := points[a].Add(points[b]).Add(points[c]).Add(points[d]).DivScalar(4)

	faces := make([]face, 0, 4)
	for _, tri := range [][3]int{{a, b, c}, {a, c, d}, {a, d, b}, {b, d, c}} {
		f := newFace(points, tri[0], tri[1], tri[2])
		if f.dist(interior) > 0 {
			f = newFace(points, tri[0], tri[2], tri[1])
		}
		faces = append(faces, f)
	}

	inSimplex := map[int]bool{a: true, b: true, c: true, d: true}
	for i, p := range points {
		if inSimplex[i] {
			continue
		}
		faces = addPoint(points, faces, i, p, eps)
	}

	h := compact(points, faces)
	if vol := h.Volume(); vol <= eps*scale*scale {
		return nil, fmt.Errorf("%w: volume %.3g is too small", ErrDegenerate, vol)
	}
	return h, nil
}

// initialSimplex picks four affinely independent points, each as far as
// possible from the span of the previous ones.
func initialSimplex(pts []v3.Vec, eps float64) ([4]int, error) {
	var s [4]int

	// Extreme point along X seeds the search.
	for i, p := range pts {
		if p.X < pts[s[0]].X {
			s[0] = i
		}
	}
	p0 := pts[s[0]]

	best := -1.0
	for i, p := range pts {
		if d := p.Sub(p0).Length(); d > best {
			best, s[1] = d, i
		}
	}
	if best <= eps {
		return s, fmt.Errorf("%w: all points coincide", ErrDegenerate)
	}
	axis := pts[s[1]].Sub(p0).DivScalar(best)

	best = -1.0
	for i, p := range pts {
		if d := p.Sub(p0).Cross(axis).Length(); d > best {
			best, s[2] = d, i
		}
	}
	if best <= eps {
		return s, fmt.Errorf("%w: points are collinear", ErrDegenerate)
	}

	n := pts[s[1]].Sub(p0).Cross(pts[s[2]].Sub(p0))
	n = n.DivScalar(n.Length())
	best = -1.0
	for i, p := range pts {
		if d := math.Abs(n.Dot(p.Sub(p0))); d > best {
			best, s[3] = d, i
		}
	}
	if best <= eps {
		return s, fmt.Errorf("%w: points are coplanar", ErrDegenerate)
	}
	return s, nil
}

// addPoint grows the hull to include p. Faces that p sees are removed and the
// horizon edges are joined to p. Points inside the hull leave it unchanged.
func addPoint(pts []v3.Vec, faces []face, idx int, p v3.Vec, eps float64) []face {
	visible := make([]bool, len(faces))
	edges := make(map[[2]int]bool)
	seen := false
	for i, f := range faces {
		if f.dist(p) > eps {
			visible[i] = true
			seen = true
			edges[[2]int{f.v[0], f.v[1]}] = true
			edges[[2]int{f.v[1], f.v[2]}] = true
			edges[[2]int{f.v[2], f.v[0]}] = true
		}
	}
	if !seen {
		return faces
	}

	kept := faces[:0:0]
	var horizon [][2]int
	for i, f := range faces {
		if !visible[i] {
			kept = append(kept, f)
			continue
		}
		for k := 0; k < 3; k++ {
			a, b := f.v[k], f.v[(k+1)%3]
			if !edges[[2]int{b, a}] {
				horizon = append(horizon, [2]int{a, b})
			}
		}
	}
	for _, e := range horizon {
		kept = append(kept, newFace(pts, e[0], e[1], idx))
	}
	return kept
}

// compact drops points that are not hull vertices and renumbers faces.
// Vertices keep the relative order of the input.
func compact(pts []v3.Vec, faces []face) *Hull {
	used := make([]bool, len(pts))
	for _, f := range faces {
		for _, v := range f.v {
			used[v] = true
		}
	}
	remap := make([]int, len(pts))
	h := &Hull{}
	for i, u := range used {
		if u {
			remap[i] = len(h.Vertices)
			h.Vertices = append(h.Vertices, pts[i])
		}
	}
	h.Faces = make([][3]int, len(faces))
	for i, f := range faces {
		h.Faces[i] = [3]int{remap[f.v[0]], remap[f.v[1]], remap[f.v[2]]}
	}
	return h
}

// extent returns the largest side of the axis-aligned bounding box.
func extent(pts []v3.Vec) float64 {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	d := hi.Sub(lo)
	return math.Max(d.X, math.Max(d.Y, d.Z))
}
