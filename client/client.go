package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/horaedb-client-go/errs"
	"github.com/apache/horaedb-client-go/model"
	"github.com/apache/horaedb-client-go/rpc"
)

// Mode selects how requests reach the cluster.
type Mode string

const (
	// ModeDirect sends every request straight to the endpoint owning the
	// table, resolved and cached through the route service.
	ModeDirect Mode = "direct"
	// ModeProxy sends every request to the configured endpoint and lets
	// the server forward it inside the cluster.
	ModeProxy Mode = "proxy"
)

type Config struct {
	// Endpoint is the bootstrap grpc address, "addr:port". In direct
	// mode it serves the route service, in proxy mode all requests.
	Endpoint string `json:"endpoint"`
	// Mode defaults to direct.
	Mode Mode `json:"mode"`
	// DefaultDatabase is used by requests carrying no database.
	DefaultDatabase string              `json:"default_database"`
	Transport       rpc.TransportConfig `json:"transport"`
}

// Client is the access interface of a HoraeDB cluster.
type Client interface {
	SQLQuery(ctx context.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error)
	Write(ctx context.Context, req *model.WriteRequest) (*model.WriteResponse, error)
	Close() error
}

func New(cfg *Config) (Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint can't be empty")
	}

	factory := rpc.NewFactory(cfg.Transport)
	switch cfg.Mode {
	case ModeDirect, "":
		return newRouteBasedClient(cfg, factory)
	case ModeProxy:
		return newRawClient(cfg, factory), nil
	default:
		return nil, fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

func resolveDatabase(defaultDatabase, reqDatabase string) (string, error) {
	if reqDatabase != "" {
		return reqDatabase, nil
	}
	if defaultDatabase != "" {
		return defaultDatabase, nil
	}
	return "", errs.ErrNoDatabase
}
