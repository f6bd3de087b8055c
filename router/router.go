package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
	"github.com/cubefs/cubefs/blobstore/common/trace"
	"golang.org/x/sync/singleflight"

	"github.com/apache/horaedb-client-go/metrics"
	"github.com/apache/horaedb-client-go/model"
	"github.com/apache/horaedb-client-go/rpc"
)

// Router resolves the endpoints owning tables.
type Router interface {
	// Route returns the endpoint of every requested table. Tables the
	// cluster has no route for yet fall back to the default endpoint.
	Route(ctx context.Context, rctx *rpc.Context, tables []string) (map[string]model.Endpoint, error)
	// Evict drops the cached routes of tables, the next Route fetches
	// them again.
	Evict(tables []string)
}

// cachedRouter returns cached endpoints first and fetches the misses from
// the remote route service in one batch. Outdated entries must be evicted by
// the caller when the server rejects a request routed through them.
type cachedRouter struct {
	defaultEndpoint model.Endpoint
	rpcClient       rpc.Client

	cache sync.Map // table -> model.Endpoint
	group singleflight.Group
}

func NewCachedRouter(defaultEndpoint model.Endpoint, rpcClient rpc.Client) Router {
	return &cachedRouter{
		defaultEndpoint: defaultEndpoint,
		rpcClient:       rpcClient,
	}
}

func (r *cachedRouter) Route(ctx context.Context, rctx *rpc.Context, tables []string) (map[string]model.Endpoint, error) {
	endpoints := make(map[string]model.Endpoint, len(tables))
	var misses []string
	for _, table := range tables {
		if v, ok := r.cache.Load(table); ok {
			endpoints[table] = v.(model.Endpoint)
			metrics.RouteCacheHits.Inc()
		} else {
			misses = append(misses, table)
		}
	}
	if len(misses) == 0 {
		return endpoints, nil
	}
	metrics.RouteCacheMisses.Add(float64(len(misses)))

	// Collapse concurrent fetches of the same miss set, common when many
	// writers start against a cold cache.
	sort.Strings(misses)
	v, err, _ := r.group.Do(strings.Join(misses, ","), func() (interface{}, error) {
		return r.fetchRoutes(ctx, rctx, misses)
	})
	if err != nil {
		return nil, err
	}

	fetched := v.(map[string]model.Endpoint)
	for _, table := range misses {
		if ep, ok := fetched[table]; ok {
			endpoints[table] = ep
		} else {
			// Not known by the cluster yet, the default endpoint
			// takes the request. Not cached so a later route can
			// pick up the real owner.
			endpoints[table] = r.defaultEndpoint
		}
	}
	return endpoints, nil
}

func (r *cachedRouter) Evict(tables []string) {
	for _, table := range tables {
		r.cache.Delete(table)
	}
}

func (r *cachedRouter) fetchRoutes(ctx context.Context, rctx *rpc.Context, tables []string) (map[string]model.Endpoint, error) {
	span := trace.SpanFromContextSafe(ctx)

	resp, err := r.rpcClient.Route(ctx, rctx, &storagepb.RouteRequest{
		Context: &storagepb.RequestContext{Database: rctx.Database},
		Tables:  tables,
	})
	if err != nil {
		span.Warnf("fetch routes of tables %v failed: %s", tables, err)
		return nil, fmt.Errorf("fetch routes: %w", err)
	}

	fetched := make(map[string]model.Endpoint, len(resp.Routes))
	for _, route := range resp.Routes {
		// The endpoint may be unset, such tables are not cached.
		if route.GetEndpoint() == nil {
			continue
		}
		ep := model.EndpointFromPb(route.GetEndpoint())
		r.cache.Store(route.GetTable(), ep)
		fetched[route.GetTable()] = ep
	}
	return fetched, nil
}
