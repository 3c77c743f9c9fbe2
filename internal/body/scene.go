package body

import (
	"context"
	"fmt"

	"github.com/san-kum/meshfree/internal/compute"
	"github.com/san-kum/meshfree/internal/neighbor"
	"github.com/san-kum/meshfree/internal/sorting"
)

// StepError wraps a failure inside one pipeline step with its position
// in simulated time.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e StepError) Error() string {
	return fmt.Sprintf("body: step %d (t=%.6g): %v", e.Step, e.Time, e.Err)
}

func (e StepError) Unwrap() error { return e.Err }

// Scene owns the per-step pipeline for one body: advance positions,
// fold them through the boundaries, refresh ghosts, rebuild the grid,
// re-register ghost entries, rebuild neighbor relations, then apply the
// interactions. The ordering is fixed; collaborators plug into it.
type Scene struct {
	Body         *Body
	Backend      compute.Backend
	Dt           float64
	ResortEvery  int // 0 disables memory resorting
	Advance      Integrator
	Boundaries   []Boundary
	Interactions []Interaction

	metrics   []Metric
	observers []Observer
	step      int
	time      float64
}

func NewScene(b *Body, dt float64) *Scene {
	return &Scene{
		Body:    b,
		Backend: compute.GetBackend(),
		Dt:      dt,
	}
}

func (s *Scene) AddBoundary(b Boundary)       { s.Boundaries = append(s.Boundaries, b) }
func (s *Scene) AddInteraction(i Interaction) { s.Interactions = append(s.Interactions, i) }
func (s *Scene) AddMetric(m Metric)           { s.metrics = append(s.metrics, m) }
func (s *Scene) AddObserver(o Observer)       { s.observers = append(s.observers, o) }

func (s *Scene) StepCount() int  { return s.step }
func (s *Scene) Time() float64   { return s.time }
func (s *Scene) Metrics() []Metric { return s.metrics }

// Initialize builds the first spatial configuration so that step one
// already has populated bounding cells and neighbor relations. Called
// implicitly by Run; call it directly when stepping by hand.
func (s *Scene) Initialize() error {
	return s.rebuildConfiguration()
}

func (s *Scene) rebuildConfiguration() error {
	b := s.Body
	for _, bd := range s.Boundaries {
		bd.WrapPositions(b.Store)
	}
	for _, bd := range s.Boundaries {
		if err := bd.UpdateGhosts(b.Store); err != nil {
			return err
		}
	}
	b.Grid.Rebuild(s.Backend, b.Store)
	for _, bd := range s.Boundaries {
		bd.InsertGhostEntries(b.Grid, b.Store)
	}
	b.ensureNeighborhoods()
	neighbor.BuildInner(s.Backend, b.Grid, b.Store, b.SearchConfig(), b.Inner)
	return nil
}

// Step advances the scene by one dt through the full pipeline.
func (s *Scene) Step() error {
	b := s.Body

	if s.Advance != nil {
		s.Advance(s.Backend, b, s.Dt)
	}
	if err := s.rebuildConfiguration(); err != nil {
		return StepError{Step: s.step, Time: s.time, Err: err}
	}

	for _, in := range s.Interactions {
		in.Apply(s.Backend, b)
	}

	s.step++
	s.time += s.Dt

	for _, m := range s.metrics {
		m.Observe(b, s.time)
	}
	for _, obs := range s.observers {
		obs.OnStep(b, s.step, s.time)
	}

	if s.ResortEvery > 0 && s.step%s.ResortEvery == 0 {
		s.resort()
	}
	return nil
}

// resort reorders particle memory by cell occupancy. The permutation
// invalidates ghost ranges and neighbor relations, so the spatial
// configuration is rebuilt from scratch on the next step.
func (s *Scene) resort() {
	b := s.Body
	sorting.SortByCell(b.Grid, b.Store)
	b.Store.ResetGhosts()
	b.Grid.Rebuild(s.Backend, b.Store)
}

// Result collects the outcome of a Run: final metric values plus the
// per-step history of each metric for plotting.
type Result struct {
	Steps   int
	Time    float64
	Metrics map[string]float64
	History map[string][]float64
}

// Run executes n steps, honoring ctx cancellation between steps.
// A partial Result is returned alongside the error when the run stops
// early.
func (s *Scene) Run(ctx context.Context, n int) (*Result, error) {
	result := &Result{
		Metrics: make(map[string]float64),
		History: make(map[string][]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.History[m.Name()] = make([]float64, 0, n)
	}

	if s.step == 0 {
		if err := s.Initialize(); err != nil {
			return result, StepError{Step: 0, Time: s.time, Err: err}
		}
	}

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			s.finalize(result)
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			s.finalize(result)
			return result, err
		}
		for _, m := range s.metrics {
			result.History[m.Name()] = append(result.History[m.Name()], m.Value())
		}
		result.Steps++
	}

	s.finalize(result)
	return result, nil
}

func (s *Scene) finalize(result *Result) {
	result.Time = s.time
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
