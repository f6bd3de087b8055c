package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
	"github.com/stretchr/testify/require"

	"github.com/apache/horaedb-client-go/errs"
	"github.com/apache/horaedb-client-go/model"
	"github.com/apache/horaedb-client-go/rpc"
)

// fakeRPCClient stands in for one endpoint. The bootstrap endpoint serves
// Route from a mutable table, data endpoints record writes and answer with
// canned responses.
type fakeRPCClient struct {
	mu sync.Mutex

	routes       map[string]model.Endpoint
	routeFetches int

	writes    []*storagepb.WriteRequest
	writeResp *storagepb.WriteResponse
	writeErr  error

	queries   []*storagepb.SqlQueryRequest
	queryResp *storagepb.SqlQueryResponse
	queryErr  error
}

func (f *fakeRPCClient) Route(_ context.Context, _ *rpc.Context, req *storagepb.RouteRequest) (*storagepb.RouteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routeFetches++
	resp := &storagepb.RouteResponse{}
	for _, table := range req.Tables {
		ep, ok := f.routes[table]
		if !ok {
			continue
		}
		resp.Routes = append(resp.Routes, &storagepb.Route{
			Table:    table,
			Endpoint: &storagepb.Endpoint{Ip: ep.Addr, Port: ep.Port},
		})
	}
	return resp, nil
}

func (f *fakeRPCClient) Write(_ context.Context, _ *rpc.Context, req *storagepb.WriteRequest) (*storagepb.WriteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, req)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return f.writeResp, nil
}

func (f *fakeRPCClient) SQLQuery(_ context.Context, _ *rpc.Context, req *storagepb.SqlQueryRequest) (*storagepb.SqlQueryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, req)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryResp, nil
}

func (f *fakeRPCClient) Close() error { return nil }

func (f *fakeRPCClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.routeFetches
}

func (f *fakeRPCClient) writtenTables() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tables []string
	for _, w := range f.writes {
		for _, tr := range w.TableRequests {
			tables = append(tables, tr.Table)
		}
	}
	return tables
}

// fakeFactory maps endpoints to prepared fake clients.
type fakeFactory struct {
	clients map[string]*fakeRPCClient
}

func (f *fakeFactory) Build(endpoint string) (rpc.Client, error) {
	cli, ok := f.clients[endpoint]
	if !ok {
		return nil, fmt.Errorf("no fake client for endpoint %s", endpoint)
	}
	return cli, nil
}

const (
	bootstrapEndpoint = "127.0.0.1:8831"
	dataEndpoint1     = "192.168.0.1:8831"
	dataEndpoint2     = "192.168.0.2:8831"
)

func newTestCluster(t *testing.T, routes map[string]model.Endpoint) (*routeBasedClient, *fakeRPCClient, *fakeRPCClient, *fakeRPCClient) {
	t.Helper()

	bootstrap := &fakeRPCClient{routes: routes}
	data1 := &fakeRPCClient{writeResp: &storagepb.WriteResponse{Success: 1}}
	data2 := &fakeRPCClient{writeResp: &storagepb.WriteResponse{Success: 1}}
	factory := &fakeFactory{clients: map[string]*fakeRPCClient{
		bootstrapEndpoint: bootstrap,
		dataEndpoint1:     data1,
		dataEndpoint2:     data2,
	}}

	cli, err := newRouteBasedClient(&Config{
		Endpoint:        bootstrapEndpoint,
		DefaultDatabase: "public",
	}, factory)
	require.NoError(t, err)
	return cli, bootstrap, data1, data2
}

func testPoint(t *testing.T, table string, ts int64) model.Point {
	t.Helper()
	point, err := model.NewPointBuilder(table).
		SetTimestamp(ts).
		AddTag("host", model.NewStringValue("node-1")).
		AddField("cpu", model.NewDoubleValue(0.42)).
		Build()
	require.NoError(t, err)
	return point
}

func TestRouteBasedWritePartitions(t *testing.T) {
	ep1, _ := model.ParseEndpoint(dataEndpoint1)
	ep2, _ := model.ParseEndpoint(dataEndpoint2)
	cli, bootstrap, data1, data2 := newTestCluster(t, map[string]model.Endpoint{
		"a": ep1,
		"b": ep2,
	})
	data1.writeResp = &storagepb.WriteResponse{Success: 2}
	data2.writeResp = &storagepb.WriteResponse{Success: 1, Failed: 1}

	resp, err := cli.Write(context.Background(), model.NewWriteRequest(
		testPoint(t, "a", 100),
		testPoint(t, "a", 101),
		testPoint(t, "b", 100),
	))
	require.NoError(t, err)
	require.Equal(t, uint32(3), resp.Success)
	require.Equal(t, uint32(1), resp.Failed)

	require.Equal(t, []string{"a"}, data1.writtenTables())
	require.Equal(t, []string{"b"}, data2.writtenTables())
	require.Equal(t, 1, bootstrap.fetchCount())
}

func TestRouteBasedWritePartialFailure(t *testing.T) {
	ep1, _ := model.ParseEndpoint(dataEndpoint1)
	ep2, _ := model.ParseEndpoint(dataEndpoint2)
	cli, bootstrap, data1, data2 := newTestCluster(t, map[string]model.Endpoint{
		"a": ep1,
		"b": ep2,
	})
	data1.writeResp = &storagepb.WriteResponse{Success: 1}
	data2.writeErr = &errs.ServerError{Code: 400, Msg: "Table b not found"}

	req := model.NewWriteRequest(testPoint(t, "a", 100), testPoint(t, "b", 100))
	resp, err := cli.Write(context.Background(), req)
	require.Error(t, err)
	require.Equal(t, uint32(1), resp.Success)

	var partialErr *errs.PartialWriteError
	require.True(t, errors.As(err, &partialErr))
	require.Len(t, partialErr.Failures, 1)
	require.Equal(t, []string{"b"}, partialErr.Failures[0].Tables)

	var serverErr *errs.ServerError
	require.True(t, errors.As(err, &serverErr))
	require.Equal(t, uint32(400), serverErr.Code)

	// The stale route of b was evicted, writing again refetches it while a
	// stays cached.
	require.Equal(t, 1, bootstrap.fetchCount())
	data2.writeErr = nil
	_, err = cli.Write(context.Background(), model.NewWriteRequest(testPoint(t, "b", 101)))
	require.NoError(t, err)
	require.Equal(t, 2, bootstrap.fetchCount())
}

func TestRouteBasedWriteUnroutedTable(t *testing.T) {
	// No route and a default endpoint serving writes.
	cli, bootstrap, _, _ := newTestCluster(t, map[string]model.Endpoint{})
	bootstrap.writeResp = &storagepb.WriteResponse{Success: 1}

	resp, err := cli.Write(context.Background(), model.NewWriteRequest(testPoint(t, "fresh", 100)))
	require.NoError(t, err)
	require.Equal(t, uint32(1), resp.Success)
	require.Equal(t, []string{"fresh"}, bootstrap.writtenTables())
}

func TestRouteBasedWriteValidation(t *testing.T) {
	cli, _, _, _ := newTestCluster(t, map[string]model.Endpoint{})

	_, err := cli.Write(context.Background(), model.NewWriteRequest())
	require.True(t, errors.Is(err, errs.ErrEmptyPoints))

	cli.defaultDatabase = ""
	_, err = cli.Write(context.Background(), model.NewWriteRequest(testPoint(t, "a", 100)))
	require.True(t, errors.Is(err, errs.ErrNoDatabase))
}

func TestRouteBasedSQLQuery(t *testing.T) {
	ep1, _ := model.ParseEndpoint(dataEndpoint1)
	cli, _, data1, _ := newTestCluster(t, map[string]model.Endpoint{"a": ep1})
	data1.queryResp = &storagepb.SqlQueryResponse{
		Output: &storagepb.SqlQueryResponse_AffectedRows{AffectedRows: 3},
	}

	resp, err := cli.SQLQuery(context.Background(), &model.SQLQueryRequest{
		Tables: []string{"a"},
		SQL:    "DELETE FROM a",
	})
	require.NoError(t, err)
	require.Equal(t, uint32(3), resp.AffectedRows)

	require.Len(t, data1.queries, 1)
	require.Equal(t, "public", data1.queries[0].Context.Database)
	require.Equal(t, "DELETE FROM a", data1.queries[0].Sql)
}

func TestRouteBasedSQLQueryValidation(t *testing.T) {
	cli, _, _, _ := newTestCluster(t, map[string]model.Endpoint{})

	_, err := cli.SQLQuery(context.Background(), &model.SQLQueryRequest{SQL: "SELECT 1"})
	require.True(t, errors.Is(err, errs.ErrEmptyTables))

	cli.defaultDatabase = ""
	_, err = cli.SQLQuery(context.Background(), &model.SQLQueryRequest{
		Tables: []string{"a"},
		SQL:    "SELECT 1",
	})
	require.True(t, errors.Is(err, errs.ErrNoDatabase))
}

func TestRouteBasedSQLQueryEvictsOnError(t *testing.T) {
	ep1, _ := model.ParseEndpoint(dataEndpoint1)
	cli, bootstrap, data1, _ := newTestCluster(t, map[string]model.Endpoint{"a": ep1})
	data1.queryErr = errors.New("connection reset")

	_, err := cli.SQLQuery(context.Background(), &model.SQLQueryRequest{
		Tables: []string{"a"},
		SQL:    "SELECT * FROM a",
	})
	require.Error(t, err)
	require.Equal(t, 1, bootstrap.fetchCount())

	// The route of a was evicted by the failure and is fetched again.
	data1.queryErr = nil
	data1.queryResp = &storagepb.SqlQueryResponse{
		Output: &storagepb.SqlQueryResponse_AffectedRows{AffectedRows: 0},
	}
	_, err = cli.SQLQuery(context.Background(), &model.SQLQueryRequest{
		Tables: []string{"a"},
		SQL:    "SELECT * FROM a",
	})
	require.NoError(t, err)
	require.Equal(t, 2, bootstrap.fetchCount())
}
