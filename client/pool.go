package client

import (
	"sync"

	"github.com/apache/horaedb-client-go/model"
	"github.com/apache/horaedb-client-go/rpc"
)

// clientPool holds the inner clients to the data endpoints in direct mode.
type clientPool struct {
	factory rpc.Factory
	pool    sync.Map // endpoint string -> *innerClient
}

func newClientPool(factory rpc.Factory) *clientPool {
	return &clientPool{factory: factory}
}

func (p *clientPool) getOrCreate(endpoint model.Endpoint) *innerClient {
	key := endpoint.String()
	if v, ok := p.pool.Load(key); ok {
		return v.(*innerClient)
	}

	v, _ := p.pool.LoadOrStore(key, newInnerClient(p.factory, key))
	return v.(*innerClient)
}

func (p *clientPool) close() error {
	var firstErr error
	p.pool.Range(func(key, value interface{}) bool {
		if err := value.(*innerClient).close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}
