package client

import (
	"context"
	"sync"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"

	"github.com/apache/horaedb-client-go/model"
	"github.com/apache/horaedb-client-go/rpc"
)

// innerClient drives one endpoint, shared by the proxy and the route based
// implementations. The rpc client is built on first use and kept, a failed
// build is retried by the next call.
type innerClient struct {
	endpoint string
	factory  rpc.Factory

	mu        sync.Mutex
	rpcClient rpc.Client
}

func newInnerClient(factory rpc.Factory, endpoint string) *innerClient {
	return &innerClient{
		endpoint: endpoint,
		factory:  factory,
	}
}

func (c *innerClient) getRPCClient() (rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rpcClient == nil {
		rpcClient, err := c.factory.Build(c.endpoint)
		if err != nil {
			return nil, err
		}
		c.rpcClient = rpcClient
	}
	return c.rpcClient, nil
}

func (c *innerClient) sqlQuery(ctx context.Context, rctx *rpc.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error) {
	rpcClient, err := c.getRPCClient()
	if err != nil {
		return nil, err
	}

	resp, err := rpcClient.SQLQuery(ctx, rctx, &storagepb.SqlQueryRequest{
		Context: &storagepb.RequestContext{Database: rctx.Database},
		Tables:  req.Tables,
		Sql:     req.SQL,
	})
	if err != nil {
		return nil, err
	}
	return model.SQLQueryResponseFromPb(resp)
}

func (c *innerClient) write(ctx context.Context, rctx *rpc.Context, req *model.WriteRequest) (*model.WriteResponse, error) {
	rpcClient, err := c.getRPCClient()
	if err != nil {
		return nil, err
	}

	resp, err := rpcClient.Write(ctx, rctx, &storagepb.WriteRequest{
		Context:       &storagepb.RequestContext{Database: rctx.Database},
		TableRequests: req.ToTableRequestPbs(),
	})
	if err != nil {
		return nil, err
	}
	return model.WriteResponseFromPb(resp), nil
}

func (c *innerClient) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rpcClient == nil {
		return nil
	}
	err := c.rpcClient.Close()
	c.rpcClient = nil
	return err
}
