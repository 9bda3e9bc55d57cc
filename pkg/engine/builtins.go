package engine

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/chazu/shatter/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer. Floats are accepted when they are whole.
func toInt(s zygo.Sexp) (int64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && math.Abs(v.Val) < 1<<53 {
			return int64(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Keyword setters
// ---------------------------------------------------------------------------

// setter stores one keyword value into the description.
type setter func(v zygo.Sexp) error

func floatField(dst *float64) setter {
	return func(v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func intField(dst *int) setter {
	return func(v zygo.Sexp) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		*dst = int(n)
		return nil
	}
}

// millisField reads a number of milliseconds.
func millisField(dst *time.Duration) setter {
	return func(v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		*dst = time.Duration(f * float64(time.Millisecond))
		return nil
	}
}

// applyKeywords runs the setter of every keyword in args. Positional
// arguments and unknown keywords are errors.
func applyKeywords(fn string, args []zygo.Sexp, fields map[string]setter) error {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected argument %s", fn, pa.positional[0].SexpString(nil))
	}
	for _, name := range slices.Sorted(maps.Keys(pa.kw)) {
		set, ok := fields[name]
		if !ok {
			return fmt.Errorf("%s: unknown option :%s", fn, name)
		}
		if err := set(pa.kw[name]); err != nil {
			return fmt.Errorf("%s: %s: %w", fn, name, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// Each builtin writes into d, which starts out as the default description.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *scene.Description) {

	// -----------------------------------------------------------------------
	// (seed 42)
	// -----------------------------------------------------------------------
	env.AddFunction("seed", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("seed requires exactly 1 argument, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("seed: %w", err)
		}
		if n < 0 {
			return zygo.SexpNull, fmt.Errorf("seed: must not be negative, got %d", n)
		}
		d.Seed = uint64(n)
		return &zygo.SexpInt{Val: n}, nil
	})

	// -----------------------------------------------------------------------
	// (explosion :count 15 :force 3 :radius 1.2 :upward-bias 0.25)
	// -----------------------------------------------------------------------
	env.AddFunction("explosion", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		cfg := &d.Explosion
		err := applyKeywords("explosion", args, map[string]setter{
			"count":       intField(&cfg.Count),
			"force":       floatField(&cfg.Force),
			"radius":      floatField(&cfg.Radius),
			"upward-bias": floatField(&cfg.UpwardBias),
		})
		return zygo.SexpNull, err
	})

	// -----------------------------------------------------------------------
	// (complexity :min 5 :max 8)
	// -----------------------------------------------------------------------
	env.AddFunction("complexity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		cfg := &d.Explosion
		err := applyKeywords("complexity", args, map[string]setter{
			"min": intField(&cfg.MinComplexity),
			"max": intField(&cfg.MaxComplexity),
		})
		return zygo.SexpNull, err
	})

	// -----------------------------------------------------------------------
	// (settle :stop-min 800 :stop-spread 1200 :jitter-delay 2000
	//         :jitter-chance 0.04 :jitter-intensity 0.0015
	//         :jitter-falloff 50 :jitter-hold 0)
	//
	// Times are in milliseconds.
	// -----------------------------------------------------------------------
	env.AddFunction("settle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		cfg := &d.Settle
		err := applyKeywords("settle", args, map[string]setter{
			"stop-min":         millisField(&cfg.StopMin),
			"stop-spread":      millisField(&cfg.StopSpread),
			"jitter-delay":     millisField(&cfg.JitterDelay),
			"jitter-chance":    floatField(&cfg.JitterChance),
			"jitter-intensity": floatField(&cfg.JitterIntensity),
			"jitter-falloff":   floatField(&cfg.JitterFalloff),
			"jitter-hold":      millisField(&cfg.JitterHold),
		})
		return zygo.SexpNull, err
	})
}
