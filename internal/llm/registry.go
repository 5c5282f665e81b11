package llm

import (
	"fmt"
	"sync"
)

// Registry maps model names to their provider clients.
// Thread-safe for concurrent access during queries.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]ChatClient
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]ChatClient),
	}
}

func (r *Registry) Register(model string, c ChatClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[model] = c
}

// Get retrieves the client for a model.
// Returns an error if the model is not registered.
func (r *Registry) Get(model string) (ChatClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[model]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", model)
	}
	return c, nil
}

// Models returns all registered model names.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.clients))
	for m := range r.clients {
		models = append(models, m)
	}
	return models
}
