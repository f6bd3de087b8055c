package client

import (
	"context"

	"github.com/apache/horaedb-client-go/errs"
	"github.com/apache/horaedb-client-go/model"
	"github.com/apache/horaedb-client-go/rpc"
)

// rawClient implements the proxy mode, every request goes to the configured
// endpoint which forwards it inside the cluster.
type rawClient struct {
	defaultDatabase string
	inner           *innerClient
}

func newRawClient(cfg *Config, factory rpc.Factory) *rawClient {
	return &rawClient{
		defaultDatabase: cfg.DefaultDatabase,
		inner:           newInnerClient(factory, cfg.Endpoint),
	}
}

func (c *rawClient) SQLQuery(ctx context.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error) {
	database, err := resolveDatabase(c.defaultDatabase, req.Database)
	if err != nil {
		return nil, err
	}
	return c.inner.sqlQuery(ctx, &rpc.Context{Database: database}, req)
}

func (c *rawClient) Write(ctx context.Context, req *model.WriteRequest) (*model.WriteResponse, error) {
	database, err := resolveDatabase(c.defaultDatabase, req.Database)
	if err != nil {
		return nil, err
	}
	if req.PointCount() == 0 {
		return nil, errs.ErrEmptyPoints
	}
	return c.inner.write(ctx, &rpc.Context{Database: database}, req)
}

func (c *rawClient) Close() error {
	return c.inner.close()
}
