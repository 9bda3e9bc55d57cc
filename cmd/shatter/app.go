package main

import (
	"context"

	"github.com/chazu/shatter/internal/logging"
	"github.com/chazu/shatter/pkg/engine"
	"github.com/chazu/shatter/pkg/explosion"
	"github.com/chazu/shatter/pkg/kernel"
	"github.com/chazu/shatter/pkg/scene"
	"github.com/chazu/shatter/pkg/tessellate"
)

// colorPalette holds pale glass tints handed out to shards in turn.
var colorPalette = []string{
	"#FAFEFF", "#EAF6FB", "#DDEFF7", "#F2FAF7",
	"#E6F0FA", "#F7FBFF", "#D8ECF3", "#EEF7F4",
}

// App evaluates scene scripts and turns them into placed meshes.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	tess   tessellate.Tessellator
}

// MeshData is the JSON mesh format handed to the renderer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// PlacementData is the start state handed to the physics engine.
type PlacementData struct {
	Index      int            `json:"index"`
	Position   [3]float64     `json:"position"`
	Rotation   [3]float64     `json:"rotation"`
	Velocity   [3]float64     `json:"velocity"`
	Body       explosion.Body `json:"body"`
	StopTimeMs float64        `json:"stopTimeMs"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full bundle written by the CLI.
type EvalResult struct {
	SceneID    string          `json:"sceneId,omitempty"`
	Seed       uint64          `json:"seed"`
	Meshes     []MeshData      `json:"meshes"`
	Placements []PlacementData `json:"placements"`
	Errors     []EvalErrorData `json:"errors"`
	Warnings   []EvalErrorData `json:"warnings"`

	scene *scene.Scene
}

// NewApp creates an App meshing with k and at most workers shards at once.
func NewApp(k kernel.Kernel, workers int) *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
		tess:   tessellate.Tessellator{Workers: workers},
	}
}

// Override adjusts the evaluated description before the scene is built.
// Command line flags use it to win over the script.
type Override func(*scene.Description)

func errorData(msg string) EvalErrorData {
	return EvalErrorData{Message: msg}
}

// Evaluate runs source over base and returns meshes, placements and any
// errors. A result with errors has no meshes.
func (a *App) Evaluate(ctx context.Context, base scene.Description, source string, overrides ...Override) EvalResult {
	result := EvalResult{
		Meshes:     []MeshData{},
		Placements: []PlacementData{},
		Errors:     []EvalErrorData{},
		Warnings:   []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a scene description.
	desc, evalErrs, err := a.engine.EvaluateWith(base, source)
	if err != nil {
		logging.LogError("evaluate failed", "err", err)
		result.Errors = append(result.Errors, errorData(err.Error()))
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	for _, o := range overrides {
		o(desc)
	}
	result.Seed = desc.Seed

	// Step 2: Plan the burst and generate every hull.
	s, err := scene.Build(*desc)
	if err != nil {
		logging.LogError("scene build failed", "err", err)
		result.Errors = append(result.Errors, errorData("scene build failed: "+err.Error()))
		return result
	}
	result.SceneID = s.ID.String()
	result.scene = s

	// Step 3: Validate. Blocking findings stop here.
	v := scene.Validate(s)
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, errorData(w.String()))
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, errorData(e.Error()))
		}
		return result
	}

	// Step 4: Mesh every shard.
	meshes, err := a.tess.Tessellate(ctx, s, a.kernel)
	if err != nil {
		logging.LogError("tessellate failed", "err", err)
		result.Errors = append(result.Errors, errorData("tessellation failed: "+err.Error()))
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	// Step 5: Start states, including when each shard is stopped dead.
	machines, err := s.Machines()
	if err != nil {
		result.Errors = append(result.Errors, errorData(err.Error()))
		result.Meshes = []MeshData{}
		return result
	}
	for i, inst := range s.Instances {
		p := inst.Shard.Placement
		result.Placements = append(result.Placements, PlacementData{
			Index:      p.Index,
			Position:   [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
			Rotation:   p.Rotation,
			Velocity:   [3]float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z},
			Body:       inst.Shard.Body,
			StopTimeMs: float64(machines[i].StopTime().Microseconds()) / 1000,
		})
	}

	return result
}

// Scene returns the scene behind a successful result.
func (r EvalResult) Scene() *scene.Scene {
	return r.scene
}

// OK reports whether the result carries no errors.
func (r EvalResult) OK() bool {
	return len(r.Errors) == 0
}
