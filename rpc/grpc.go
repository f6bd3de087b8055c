package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/commonpb"
	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/balancer/roundrobin"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/apache/horaedb-client-go/errs"
	"github.com/apache/horaedb-client-go/metrics"
)

const (
	databaseHeaderKey = "x-ceresdb-access-database"
	reqIDHeaderKey    = "req-id"
)

type factory struct {
	tc TransportConfig
}

func NewFactory(tc TransportConfig) Factory {
	tc.applyDefaults()
	return &factory{tc: tc}
}

func (f *factory) Build(endpoint string) (Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.tc.connectTimeout())
	defer cancel()

	conn, err := grpc.DialContext(ctx, endpoint, generateDialOpts(&f.tc)...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return &grpcClient{
		conn: conn,
		raw:  storagepb.NewStorageServiceClient(conn),
		tc:   f.tc,
	}, nil
}

func unaryInterceptorWithReqID(ctx context.Context, method string, req, reply interface{},
	cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption,
) error {
	reqID := trace.SpanFromContextSafe(ctx).TraceID()
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx = metadata.AppendToOutgoingContext(ctx, reqIDHeaderKey, reqID)

	return invoker(ctx, method, req, reply, cc, opts...)
}

func generateDialOpts(tc *TransportConfig) []grpc.DialOption {
	backoffConfig := backoff.DefaultConfig
	backoffConfig.BaseDelay = time.Duration(tc.BackoffBaseDelayMs) * time.Millisecond
	backoffConfig.MaxDelay = time.Duration(tc.BackoffMaxDelayMs) * time.Millisecond

	return []grpc.DialOption{
		grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(tc.MaxSendMsgSize),
			grpc.MaxCallRecvMsgSize(tc.MaxRecvMsgSize),
		),
		grpc.WithKeepaliveParams(
			keepalive.ClientParameters{
				Time:                tc.keepaliveInterval(),
				Timeout:             tc.keepaliveTimeout(),
				PermitWithoutStream: true,
			},
		),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff:           backoffConfig,
			MinConnectTimeout: tc.connectTimeout(),
		}),
		grpc.WithChainUnaryInterceptor(
			unaryInterceptorWithReqID,
			metrics.GRPCMetrics.UnaryClientInterceptor(),
		),
		grpc.WithDefaultServiceConfig(fmt.Sprintf(`{"LoadBalancingPolicy": "%s"}`, roundrobin.Name)),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}
}

type grpcClient struct {
	conn *grpc.ClientConn
	raw  storagepb.StorageServiceClient
	tc   TransportConfig
}

func (c *grpcClient) Route(ctx context.Context, rctx *Context, req *storagepb.RouteRequest) (*storagepb.RouteResponse, error) {
	ctx, cancel := c.callCtx(ctx, rctx, c.tc.queryTimeout())
	defer cancel()

	resp, err := c.raw.Route(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkResponseHeader(resp.GetHeader()); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *grpcClient) Write(ctx context.Context, rctx *Context, req *storagepb.WriteRequest) (*storagepb.WriteResponse, error) {
	ctx, cancel := c.callCtx(ctx, rctx, c.tc.writeTimeout())
	defer cancel()

	resp, err := c.raw.Write(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkResponseHeader(resp.GetHeader()); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *grpcClient) SQLQuery(ctx context.Context, rctx *Context, req *storagepb.SqlQueryRequest) (*storagepb.SqlQueryResponse, error) {
	ctx, cancel := c.callCtx(ctx, rctx, c.tc.queryTimeout())
	defer cancel()

	resp, err := c.raw.SqlQuery(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkResponseHeader(resp.GetHeader()); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}

func (c *grpcClient) callCtx(ctx context.Context, rctx *Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = metadata.AppendToOutgoingContext(ctx, databaseHeaderKey, rctx.Database)
	return context.WithTimeout(ctx, timeout)
}

// checkResponseHeader maps a non-ok header to a server error. A missing
// header counts as ok, the error of such responses surfaces at grpc level.
func checkResponseHeader(header *commonpb.ResponseHeader) error {
	if header == nil || errs.IsOK(header.Code) {
		return nil
	}
	return &errs.ServerError{Code: header.Code, Msg: header.Error}
}
