package scene

import (
	"fmt"
	"math"
)

// Advisory thresholds.
const (
	// OutlierRadius flags shards placed beyond this multiple of the burst radius.
	OutlierRadius = 1.5
	// SlowLaunch flags shards launched slower than this fraction of the force.
	SlowLaunch = 0.1
)

// ValidationSeverity indicates whether a finding makes the scene unusable.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // scene must not be handed off
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError is a single blocking finding. Index is -1 for
// scene-level problems.
type ValidationError struct {
	Index    int
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] shard %d: %s", e.Severity, e.Index, e.Message)
}

// ValidationWarning is an advisory finding.
type ValidationWarning struct {
	Index   int
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("[warning] shard %d: %s", w.Index, w.Message)
}

// ValidationResult bundles errors and warnings from all tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural, geometric and advisory checks. It never
// mutates the scene.
func Validate(s *Scene) ValidationResult {
	var result ValidationResult
	if s == nil {
		result.Errors = append(result.Errors, ValidationError{Index: -1, Message: "scene is nil", Severity: SeverityError})
		return result
	}

	// Tier 1: structure. Geometry checks index into instances, so stop here
	// if the structure is broken.
	result.Errors = append(result.Errors, validateStructure(s)...)
	if len(result.Errors) > 0 {
		return result
	}

	// Tier 2: hull geometry.
	result.Errors = append(result.Errors, validateGeometry(s)...)

	// Tier 3: layout advisories.
	result.Warnings = append(result.Warnings, validateLayout(s)...)

	return result
}

func validateStructure(s *Scene) []ValidationError {
	var errs []ValidationError

	want := s.Description.Explosion.Count
	if len(s.Instances) != want {
		errs = append(errs, ValidationError{
			Index:    -1,
			Message:  fmt.Sprintf("scene has %d shards, description asks for %d", len(s.Instances), want),
			Severity: SeverityError,
		})
	}

	seen := make(map[int]bool, len(s.Instances))
	for i, inst := range s.Instances {
		idx := inst.Shard.Placement.Index
		if seen[idx] {
			errs = append(errs, ValidationError{
				Index:    idx,
				Message:  "duplicate shard index",
				Severity: SeverityError,
			})
		}
		seen[idx] = true
		if idx != i {
			errs = append(errs, ValidationError{
				Index:    idx,
				Message:  fmt.Sprintf("shard at position %d has index %d", i, idx),
				Severity: SeverityError,
			})
		}
		if inst.Geometry == nil || inst.Geometry.Hull == nil {
			errs = append(errs, ValidationError{
				Index:    idx,
				Message:  "shard has no geometry",
				Severity: SeverityError,
			})
		}
	}

	return errs
}

func validateGeometry(s *Scene) []ValidationError {
	var errs []ValidationError

	for _, inst := range s.Instances {
		h := inst.Geometry.Hull
		idx := inst.Shard.Placement.Index

		if !h.IsClosed() {
			errs = append(errs, ValidationError{
				Index:    idx,
				Message:  fmt.Sprintf("hull with %d faces is not a closed manifold", len(h.Faces)),
				Severity: SeverityError,
			})
		}
		if !h.IsConvex(h.Tolerance()) {
			errs = append(errs, ValidationError{
				Index:    idx,
				Message:  "hull is not convex",
				Severity: SeverityError,
			})
		}
		if v := h.Volume(); !(v > 0) {
			errs = append(errs, ValidationError{
				Index:    idx,
				Message:  fmt.Sprintf("hull volume is %.4g, must be positive", v),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

func validateLayout(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	cfg := s.Description.Explosion

	for _, inst := range s.Instances {
		p := inst.Shard.Placement

		if d := p.Position.Length(); d > OutlierRadius*cfg.Radius {
			warnings = append(warnings, ValidationWarning{
				Index:   p.Index,
				Message: fmt.Sprintf("placed %.3f from center, beyond %.1fx the burst radius", d, OutlierRadius),
			})
		}
		if v := p.Velocity.Length(); v < SlowLaunch*cfg.Force || math.IsNaN(v) {
			warnings = append(warnings, ValidationWarning{
				Index:   p.Index,
				Message: fmt.Sprintf("launch speed %.3f is below %.0f%% of the force", v, SlowLaunch*100),
			})
		}
	}

	return warnings
}
