package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

// runLambda serves API Gateway HTTP API (payload v2) events through the
// router. Buffered metrics are flushed after every invocation because the
// runtime may freeze the process between events.
func runLambda(a *app, logger *slog.Logger) error {
	logger.Info("starting in Lambda mode")
	handle := newLambdaHandler(a.server.Handler())

	lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := handle(ctx, req)
		if a.flush != nil {
			if flushErr := a.flush(ctx); flushErr != nil {
				logger.Warn("metrics flush failed", "error", flushErr)
			}
		}
		return resp, err
	})
	return nil
}

type lambdaHandler func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

func newLambdaHandler(h http.Handler) lambdaHandler {
	return httpadapter.NewV2(h).ProxyWithContext
}
