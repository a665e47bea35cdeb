package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/logger"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/mcp-timesheet/graph"
)

// Handler serves the timesheet tools for one MCP session.
type Handler struct {
	*protoserver.DefaultHandler
	service *Service
	ops     protoclient.Operations
}

// NewHandler returns the per-session handler factory.
func NewHandler(service *Service) protoserver.NewHandler {
	return func(_ context.Context, notifier transport.Notifier, logger logger.Logger, clientOperation protoclient.Operations) (protoserver.Handler, error) {
		base := protoserver.NewDefaultHandler(notifier, logger, clientOperation)
		ret := &Handler{DefaultHandler: base, service: service, ops: clientOperation}
		if err := registerTools(base, ret); err != nil {
			return nil, err
		}
		return ret, nil
	}
}

func (h *Handler) canElicit() bool {
	return h.ops != nil && h.ops.Implements(schema.MethodElicitationCreate)
}

// ensureSignedIn completes sign-in for account, sending the user to the
// device code page via URL elicitation when the client supports it.
func (h *Handler) ensureSignedIn(ctx context.Context, account graph.Account) error {
	if !h.canElicit() {
		return h.service.signIn(ctx, account, nil)
	}
	return h.service.signIn(ctx, account, func(URL string) {
		go func() {
			ctx2, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_, _ = h.ops.Elicit(ctx2, &jsonrpc.TypedRequest[*schema.ElicitRequest]{Request: &schema.ElicitRequest{
				Params: schema.ElicitRequestParams{
					ElicitationId: newUUID(),
					Message:       fmt.Sprintf("Sign in to Microsoft 365 (%s)", account.Alias),
					Mode:          string(schema.ElicitRequestParamsModeUrl),
					Url:           URL,
				},
			}})
		}()
	})
}
