package router

import (
	"context"
	"fmt"

	"bedrockproxy"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

// LambdaHandler adapts the engine to the API Gateway payload version in use.
// The returned value is meant for lambda.Start.
func LambdaHandler(engine *gin.Engine, payloadVersion string) (any, error) {
	switch payloadVersion {
	case bedrockproxy.PayloadVersionREST:
		return RESTHandler(engine), nil
	case bedrockproxy.PayloadVersionHTTP:
		return HTTPAPIHandler(engine), nil
	default:
		return nil, fmt.Errorf("unsupported payload version %q", payloadVersion)
	}
}

// RESTHandler serves API Gateway REST API (payload 1.0) proxy events.
func RESTHandler(engine *gin.Engine) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := ginadapter.New(engine)
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	}
}

// HTTPAPIHandler serves API Gateway HTTP API (payload 2.0) events.
func HTTPAPIHandler(engine *gin.Engine) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	adapter := ginadapter.NewV2(engine)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	}
}
