package rpc

import (
	"context"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
)

// Context carries the per-call data resolved by the db client.
type Context struct {
	// Database the call runs against, already resolved against the
	// client's default database.
	Database string
}

// Client is one connection to a storage service endpoint.
type Client interface {
	Route(ctx context.Context, rctx *Context, req *storagepb.RouteRequest) (*storagepb.RouteResponse, error)
	Write(ctx context.Context, rctx *Context, req *storagepb.WriteRequest) (*storagepb.WriteResponse, error)
	SQLQuery(ctx context.Context, rctx *Context, req *storagepb.SqlQueryRequest) (*storagepb.SqlQueryResponse, error)
	Close() error
}

// Factory builds rpc clients by endpoint.
type Factory interface {
	Build(endpoint string) (Client, error)
}
