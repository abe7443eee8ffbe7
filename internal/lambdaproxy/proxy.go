// Package lambdaproxy runs an http.Handler behind API Gateway proxy
// integration events.
package lambdaproxy

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/redoublet/formrelay/internal/pkg/httputil"
	"github.com/redoublet/formrelay/internal/pkg/logger"
)

const failureBody = `{"error":"Internal Server Error"}`

// Proxy adapts API Gateway events to an http.Handler.
type Proxy struct {
	adapter *httpadapter.HandlerAdapter
}

// New wraps h.
func New(h http.Handler) *Proxy {
	return &Proxy{adapter: httpadapter.New(h)}
}

// Handle is the Lambda handler. An event that cannot be converted into
// an HTTP request gets a 500 with the relay's CORS headers.
func (p *Proxy) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := p.adapter.ProxyWithContext(ctx, req)
	if err != nil {
		logger.Error("lambda: proxying request failed", "path", req.Path, "method", req.HTTPMethod, "error", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers: map[string]string{
				"Content-Type":                 "application/json",
				"Access-Control-Allow-Origin":  httputil.AllowOrigin,
				"Access-Control-Allow-Headers": httputil.AllowHeaders,
				"Access-Control-Allow-Methods": httputil.AllowMethods,
			},
			Body: failureBody,
		}, nil
	}
	return resp, nil
}
