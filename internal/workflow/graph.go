package workflow

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-reviewer/internal/logger"
	"github.com/spigell/resume-reviewer/internal/review"
)

// nodeFunc computes a partial update from a snapshot of the state.
type nodeFunc func(ctx context.Context, s State) (Update, error)

type node struct {
	name string
	deps []string
	run  nodeFunc
}

// graph is a fixed DAG. Nodes are kept in declaration order, which is also a
// topological order.
type graph struct {
	nodes []node
}

// ready returns pending nodes whose dependencies are all terminal.
func (g *graph) ready(s State) []node {
	var out []node
	for _, n := range g.nodes {
		if s.Outcomes[n.name].Status != review.StatusPending {
			continue
		}
		depsDone := true
		for _, dep := range n.deps {
			if !terminal(s.Outcomes[dep].Status) {
				depsDone = false
				break
			}
		}
		if depsDone {
			out = append(out, n)
		}
	}
	return out
}

// skippedDep returns the first dependency that did not finish.
func skippedDep(n node, s State) (string, bool) {
	for _, dep := range n.deps {
		if !s.Completed(dep) {
			return dep, true
		}
	}
	return "", false
}

func terminal(st review.Status) bool {
	return st != review.StatusPending
}

// execution drives one run of the graph.
type execution struct {
	graph  *graph
	runID  string
	logger *zap.Logger

	mu    sync.Mutex
	state State
	order []string
}

// run executes the graph wave by wave. All ready nodes of a wave run
// concurrently and the wave's Wait is the barrier before their dependents are
// considered. The first node error cancels the wave and is returned.
func (e *execution) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.mu.Lock()
		wave := e.graph.ready(e.state)
		snapshot := e.state.snapshot()
		e.mu.Unlock()

		if len(wave) == 0 {
			return e.checkFinished()
		}

		group, groupCtx := errgroup.WithContext(ctx)
		for _, n := range wave {
			if dep, skipped := skippedDep(n, snapshot); skipped {
				e.skip(n.name, fmt.Sprintf("upstream %s did not complete", dep))
				continue
			}

			group.Go(func() error {
				return e.runNode(groupCtx, n, snapshot)
			})
		}

		if err := group.Wait(); err != nil {
			return err
		}
	}
}

func (e *execution) runNode(ctx context.Context, n node, snapshot State) error {
	e.mu.Lock()
	e.order = append(e.order, n.name)
	e.mu.Unlock()

	log := logger.WithStep(e.logger, e.runID, n.name)
	log.Debug("node started")

	update, err := n.run(ctx, snapshot)
	update.Outcome.Step = n.name
	if err != nil {
		update.Outcome.Status = review.StatusFailed
		if update.Outcome.FirstError == "" {
			update.Outcome.FirstError = err.Error()
		}
	}

	e.mu.Lock()
	e.state.merge(update)
	e.mu.Unlock()

	if err != nil {
		log.Error("node failed", zap.Error(err))
		return fmt.Errorf("%s: %w", n.name, err)
	}

	if update.Outcome.Status == review.StatusSkipped {
		log.Warn("node skipped", zap.String("reason", update.Outcome.Reason))
	}
	return nil
}

func (e *execution) skip(name, reason string) {
	e.mu.Lock()
	e.state.merge(Update{Outcome: skipped(name, reason)})
	e.mu.Unlock()

	logger.WithStep(e.logger, e.runID, name).Warn("node skipped", zap.String("reason", reason))
}

func (e *execution) checkFinished() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, n := range e.graph.nodes {
		if !terminal(e.state.Outcomes[n.name].Status) {
			return fmt.Errorf("no ready nodes but %s is still pending", n.name)
		}
	}
	return nil
}

func skipped(step, reason string) review.Outcome {
	return review.Outcome{Step: step, Status: review.StatusSkipped, Reason: reason}
}
