// Command proxyecho answers enveloped requests with the payload it received.
// It runs as a lambda proxy integration when started by the lambda runtime and
// as a local http server on PORT otherwise, which makes it a handy target for
// proxypost.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/proxypost/config"
	"github.com/prognoshealth/proxypost/lambdautils"
	"github.com/prognoshealth/proxypost/proxy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	router := newRouter(logger)
	if !router.Valid() {
		logger.WithError(router.BuildErrors()).Fatal("invalid router")
	}

	if cfg.InLambda {
		lambda.Start(lambdaHandler(router, logger))
		return
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Any("/*path", gin.WrapH(proxy.NewHTTPHandler(router)))

	logger.WithField("port", cfg.Port).Info("serving proxy events")
	if err := engine.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func newRouter(logger logrus.FieldLogger) *proxy.Router {
	router := &proxy.Router{}
	router.POST("/", echoHandler)
	router.POST("/echo", echoHandler)

	router.AddErrorHandler(func(ctx context.Context, request events.APIGatewayProxyRequest, err error) (events.APIGatewayProxyResponse, error) {
		status := 500
		if proxy.IsRouteNotFound(err) {
			status = 404
		}

		logger.WithError(err).WithField("path", request.Path).Error("failed handling request")
		return proxy.JSONResponse(status, map[string]string{"error": err.Error()})
	})

	return router
}

func echoHandler(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	var payload interface{}
	if err := ctx.Decode(&payload); err != nil {
		return proxy.JSONResponse(400, map[string]string{"error": err.Error()})
	}

	return proxy.JSONResponse(200, map[string]interface{}{"echo": payload})
}

func lambdaHandler(router *proxy.Router, logger logrus.FieldLogger) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		logger.WithFields(lambdautils.GetLambdaMetaData(ctx).Fields()).
			WithField("path", request.Path).
			Info("handling request")

		return router.Route(ctx, request)
	}
}
