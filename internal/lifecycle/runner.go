package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/assetpipe/internal/logfields"
)

// ErrSkipCycle is returned by a stage to end the cycle early without
// failing it.
var ErrSkipCycle = errors.New("publish cycle skipped")

// Runner executes registered lifecycle stages in dependency order.
type Runner struct {
	stages map[StageName]Stage
	logger *slog.Logger
}

// NewRunner creates a runner over the given stages.
func NewRunner(stages ...Stage) *Runner {
	r := &Runner{stages: make(map[StageName]Stage), logger: slog.Default()}
	for _, s := range stages {
		r.stages[s.Name()] = s
	}
	return r
}

// WithLogger sets a custom logger.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	r.logger = logger
	return r
}

// Plan returns the deterministic execution order of all registered stages,
// derived from their declared dependencies via topological sort.
func (r *Runner) Plan() ([]StageName, error) {
	inDegree := make(map[StageName]int, len(r.stages))
	dependents := make(map[StageName][]StageName)

	for name, stage := range r.stages {
		if _, ok := inDegree[name]; !ok {
			inDegree[name] = 0
		}
		for _, dep := range stage.Dependencies() {
			if _, ok := r.stages[dep]; !ok {
				return nil, fmt.Errorf("stage %s depends on unregistered stage %s", name, dep)
			}
			dependents[dep] = append(dependents[dep], name)
			inDegree[name]++
		}
	}

	var queue []StageName
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	var order []StageName
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		next := dependents[current]
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		for _, dep := range next {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(r.stages) {
		return nil, fmt.Errorf("circular dependency among lifecycle stages")
	}
	return order, nil
}

// Run executes all stages in dependency order against cycle. A stage
// returning ErrSkipCycle marks the cycle skipped and stops cleanly; any
// other error aborts the run.
func (r *Runner) Run(ctx context.Context, cycle *Cycle) error {
	order, err := r.Plan()
	if err != nil {
		return fmt.Errorf("building lifecycle plan: %w", err)
	}

	r.logger.Debug("Executing lifecycle", slog.Any("order", order))

	for _, name := range order {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stage := r.stages[name]
		if err := stage.Execute(ctx, cycle); err != nil {
			if errors.Is(err, ErrSkipCycle) {
				cycle.Skipped = true
				r.logger.Info("Cycle skipped", logfields.Stage(string(name)))
				return nil
			}
			r.logger.Error("Stage failed",
				logfields.Stage(string(name)),
				logfields.Error(err))
			return fmt.Errorf("stage %s: %w", name, err)
		}
		r.logger.Debug("Stage completed", logfields.Stage(string(name)))
	}
	return nil
}
