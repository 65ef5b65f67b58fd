package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	perrors "github.com/mmichie/pipes/pkg/errors"
)

// Registry holds the pipelines a host serves
type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]Pipeline
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		pipelines: make(map[string]Pipeline),
	}
}

// Register adds a pipeline under its ID
func (r *Registry) Register(p Pipeline) error {
	if p == nil {
		return perrors.New("registry", "register", errors.New("pipeline cannot be nil"))
	}
	id := p.ID()
	if id == "" {
		return perrors.New("registry", "register", errors.New("pipeline id cannot be empty"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pipelines[id]; exists {
		return perrors.New("registry", "register", fmt.Errorf("pipeline %q already registered", id))
	}
	r.pipelines[id] = p
	return nil
}

// Get returns the pipeline registered under id
func (r *Registry) Get(id string) (Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pipelines[id]
	if !ok {
		return nil, perrors.New("registry", "get", fmt.Errorf("%q: %w", id, perrors.ErrUnknownPipeline))
	}
	return p, nil
}

// List returns a summary of every pipeline ordered by ID
func (r *Registry) List() []Info {
	all := r.snapshot()
	infos := make([]Info, 0, len(all))
	for _, p := range all {
		infos = append(infos, infoOf(p))
	}
	return infos
}

// StartupAll starts every pipeline. A failing pipeline does not stop the others;
// all failures are joined into the returned error.
func (r *Registry) StartupAll(ctx context.Context) error {
	var errs []error
	for _, p := range r.snapshot() {
		if err := p.Startup(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ShutdownAll shuts down every pipeline
func (r *Registry) ShutdownAll(ctx context.Context) {
	for _, p := range r.snapshot() {
		_ = p.Shutdown(ctx)
	}
}

// Pipe routes a request to the pipeline registered under id
func (r *Registry) Pipe(ctx context.Context, id string, req Request) (string, error) {
	p, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return p.Pipe(ctx, req)
}

func (r *Registry) snapshot() []Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Pipeline, 0, len(r.pipelines))
	for _, p := range r.pipelines {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID() < all[j].ID()
	})
	return all
}
