package strategy

import (
	"sync"

	"go.uber.org/zap"
)

// Builder constructs a fresh strategy instance from raw config parameters.
// Each backtest run gets its own instance; instances are never shared
// between concurrent runs.
type Builder func(params map[string]any) (Strategy, error)

// Registry maps strategy names to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	logger   *zap.Logger
}

// NewRegistry creates a new strategy registry
func NewRegistry(logger ...*zap.Logger) *Registry {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Registry{
		builders: make(map[string]Builder),
		logger:   l,
	}
}

// Register adds a strategy builder under the given name
func (r *Registry) Register(name string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = b
	r.logger.Debug("strategy registered", zap.String("name", name))
}

// Build constructs a fresh instance of the named strategy
func (r *Registry) Build(name string, params map[string]any) (Strategy, bool, error) {
	r.mu.RLock()
	b, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	s, err := b(params)
	return s, true, err
}

// Builder returns the named builder for callers that construct many
// instances themselves, like the optimizer.
func (r *Registry) Builder(name string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[name]
	return b, ok
}

// Names returns all registered strategy names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}
