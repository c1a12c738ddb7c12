package marketplace

import (
	"sync"

	"fairwork.com/fairwork/internal/constants"
	model "fairwork.com/fairwork/internal/models"
)

// Factory builds a client for one requester's credentials in one environment.
type Factory func(requester *model.Requester, env constants.Environment) Client

// Pool hands out clients keyed by (requester, environment), constructing them
// lazily and reusing them for the duration of one batch run. It replaces any
// notion of a long-lived global connection cache; a fresh pool per run is cheap.
type Pool struct {
	factory Factory

	mu      sync.Mutex
	clients map[poolKey]Client
}

type poolKey struct {
	requesterID string
	env         constants.Environment
}

func NewPool(factory Factory) *Pool {
	return &Pool{
		factory: factory,
		clients: make(map[poolKey]Client),
	}
}

func (p *Pool) Get(requester *model.Requester, env constants.Environment) Client {
	key := poolKey{requesterID: requester.AccountID, env: env}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[key]; ok {
		return client
	}

	client := p.factory(requester, env)
	p.clients[key] = client
	return client
}
