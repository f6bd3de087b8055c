package client

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cubefs/cubefs/blobstore/common/trace"

	"github.com/apache/horaedb-client-go/errs"
	"github.com/apache/horaedb-client-go/model"
	"github.com/apache/horaedb-client-go/router"
	"github.com/apache/horaedb-client-go/rpc"
)

// routeBasedClient implements the direct mode. Requests are sent straight to
// the endpoint owning the table, multi-table writes are partitioned per
// endpoint and sent in parallel.
type routeBasedClient struct {
	endpoint        string
	defaultEndpoint model.Endpoint
	defaultDatabase string
	factory         rpc.Factory
	pool            *clientPool

	mu           sync.Mutex
	router       router.Router
	routerClient rpc.Client
}

func newRouteBasedClient(cfg *Config, factory rpc.Factory) (*routeBasedClient, error) {
	defaultEndpoint, err := model.ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	return &routeBasedClient{
		endpoint:        cfg.Endpoint,
		defaultEndpoint: defaultEndpoint,
		defaultDatabase: cfg.DefaultDatabase,
		factory:         factory,
		pool:            newClientPool(factory),
	}, nil
}

// getRouter builds the router on first use, so creating a client does not
// dial the bootstrap endpoint yet.
func (c *routeBasedClient) getRouter() (router.Router, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.router == nil {
		routerClient, err := c.factory.Build(c.endpoint)
		if err != nil {
			return nil, err
		}
		c.routerClient = routerClient
		c.router = router.NewCachedRouter(c.defaultEndpoint, routerClient)
	}
	return c.router, nil
}

func (c *routeBasedClient) SQLQuery(ctx context.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error) {
	if len(req.Tables) == 0 {
		return nil, errs.ErrEmptyTables
	}
	database, err := resolveDatabase(c.defaultDatabase, req.Database)
	if err != nil {
		return nil, err
	}
	rctx := &rpc.Context{Database: database}

	r, err := c.getRouter()
	if err != nil {
		return nil, err
	}
	endpoints, err := r.Route(ctx, rctx, req.Tables)
	if err != nil {
		return nil, err
	}
	endpoint, ok := endpoints[req.Tables[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoRoute, req.Tables[0])
	}

	resp, err := c.pool.getOrCreate(endpoint).sqlQuery(ctx, rctx, req)
	if err != nil {
		// The error may be caused by outdated routes, drop them and
		// let the next query fetch fresh ones.
		trace.SpanFromContextSafe(ctx).Warnf("evict routes of tables %v after query failed: %s", req.Tables, err)
		r.Evict(req.Tables)
		return nil, err
	}
	return resp, nil
}

func (c *routeBasedClient) Write(ctx context.Context, req *model.WriteRequest) (*model.WriteResponse, error) {
	database, err := resolveDatabase(c.defaultDatabase, req.Database)
	if err != nil {
		return nil, err
	}
	if req.PointCount() == 0 {
		return nil, errs.ErrEmptyPoints
	}
	rctx := &rpc.Context{Database: database}

	tables := req.Tables()
	r, err := c.getRouter()
	if err != nil {
		return nil, err
	}
	endpoints, err := r.Route(ctx, rctx, tables)
	if err != nil {
		return nil, err
	}

	// Partition the point groups by owning endpoint.
	partitions := make(map[model.Endpoint]*model.WriteRequest)
	var unrouted []string
	for _, table := range tables {
		endpoint, ok := endpoints[table]
		if !ok {
			unrouted = append(unrouted, table)
			continue
		}
		partition, ok := partitions[endpoint]
		if !ok {
			partition = &model.WriteRequest{PointGroups: make(map[string][]model.Point)}
			partitions[endpoint] = partition
		}
		partition.PointGroups[table] = req.PointGroups[table]
	}

	type writeResult struct {
		tables []string
		resp   *model.WriteResponse
		err    error
	}
	var (
		wg       sync.WaitGroup
		resultMu sync.Mutex
		results  = make([]writeResult, 0, len(partitions)+1)
	)
	for endpoint, partition := range partitions {
		wg.Add(1)
		go func(endpoint model.Endpoint, partition *model.WriteRequest) {
			defer wg.Done()
			resp, err := c.pool.getOrCreate(endpoint).write(ctx, rctx, partition)
			resultMu.Lock()
			results = append(results, writeResult{tables: partition.Tables(), resp: resp, err: err})
			resultMu.Unlock()
		}(endpoint, partition)
	}
	wg.Wait()

	if len(unrouted) > 0 {
		results = append(results, writeResult{
			tables: unrouted,
			err:    fmt.Errorf("%w: %v", errs.ErrNoRoute, unrouted),
		})
	}

	// Merge the responses, evict routes the server reported as stale and
	// collect the failed part.
	merged := &model.WriteResponse{}
	var evicts []string
	var failures []errs.TableError
	for _, result := range results {
		if result.err != nil {
			if errs.ShouldClearRoute(result.err) {
				evicts = append(evicts, result.tables...)
			}
			failures = append(failures, errs.TableError{Tables: result.tables, Err: result.err})
			continue
		}
		merged.Success += result.resp.Success
		merged.Failed += result.resp.Failed
	}
	if len(evicts) > 0 {
		trace.SpanFromContextSafe(ctx).Warnf("evict outdated routes of tables %v", evicts)
		r.Evict(evicts)
	}
	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].Tables[0] < failures[j].Tables[0]
		})
		return merged, &errs.PartialWriteError{Failures: failures}
	}
	return merged, nil
}

func (c *routeBasedClient) Close() error {
	c.mu.Lock()
	routerClient := c.routerClient
	c.routerClient = nil
	c.router = nil
	c.mu.Unlock()

	var firstErr error
	if routerClient != nil {
		firstErr = routerClient.Close()
	}
	if err := c.pool.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
