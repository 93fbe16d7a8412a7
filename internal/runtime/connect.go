package runtime

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	clientName    = "runtimectl"
	clientVersion = "0.1.0"
)

// Connect opens an MCP client session against the endpoint over streamable
// HTTP. The wire protocol itself stays with the SDK; the endpoint only
// supplies address, filter, and timeouts.
func (e Endpoint) Connect(ctx context.Context) (*mcp.ClientSession, error) {
	connectCtx := ctx
	if e.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, e.ConnectTimeout)
		defer cancel()
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}, nil)

	transport := &mcp.StreamableClientTransport{
		Endpoint: e.URL(),
		HTTPClient: &http.Client{
			Timeout: e.SessionTimeout,
		},
	}

	return client.Connect(connectCtx, transport, nil)
}
