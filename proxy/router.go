package proxy

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// ErrorHandler receives any error raised while routing a request and may turn
// it into a response.
type ErrorHandler func(context.Context, events.APIGatewayProxyRequest, error) (events.APIGatewayProxyResponse, error)

// CatchAllHandler answers requests no route matched.
type CatchAllHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Router dispatches proxy events, typically unwrapped Envelopes, to the first
// route whose method and path pattern match. An Envelope always arrives as
// "POST /", so a receiver for SendPostRequest needs a single POST "/" route.
//
// Unmatched requests go to CatchAll when set and otherwise fail with
// ErrRouteNotFound. When CatchError is set every routing error passes through
// it before reaching the caller.
//
// Example:
//
//	router := &proxy.Router{}
//	router.POST("/", func(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
//		var payload map[string]interface{}
//		if err := ctx.Decode(&payload); err != nil {
//			return proxy.JSONResponse(400, map[string]string{"error": err.Error()})
//		}
//
//		return proxy.JSONResponse(200, payload)
//	})
//
//	if !router.Valid() {
//		return router.BuildErrors()
//	}
//
//	lambda.Start(router.Route)
type Router struct {
	Routes     []*Route
	CatchAll   CatchAllHandler
	CatchError ErrorHandler

	errors []error
}

// Valid reports whether every route was built without error.
func (router *Router) Valid() bool {
	return len(router.errors) == 0
}

// AddRoute appends route. Routes are matched in the order they were added.
func (router *Router) AddRoute(route *Route) {
	router.Routes = append(router.Routes, route)
}

// AddBuildError records an error hit while building a route.
func (router *Router) AddBuildError(err error) {
	router.errors = append(router.errors, err)
}

// BuildErrors folds the recorded build errors into one error, the most recent
// first.
func (router *Router) BuildErrors() error {
	err := errors.New("failed building router")

	for _, buildErr := range router.errors {
		err = errors.Wrap(err, buildErr.Error())
	}

	return err
}

// AddRouteIfNoError adds route, or records err when NewRoute failed. It takes
// NewRoute's results directly:
//
//	router.AddRouteIfNoError(proxy.NewRoute(proxy.POST, "/", handler))
func (router *Router) AddRouteIfNoError(route *Route, err error) {
	if err != nil {
		router.AddBuildError(err)
		return
	}

	router.AddRoute(route)
}

// Handle adds a route for method and the path pattern match.
func (router *Router) Handle(method HttpMethod, match string, handler RouteHandler) {
	router.AddRouteIfNoError(NewRoute(method, match, handler))
}

// Shorthands for Handle.

func (router *Router) GET(match string, handler RouteHandler) { router.Handle(GET, match, handler) }
func (router *Router) HEAD(match string, handler RouteHandler) { router.Handle(HEAD, match, handler) }
func (router *Router) POST(match string, handler RouteHandler) { router.Handle(POST, match, handler) }
func (router *Router) PUT(match string, handler RouteHandler) { router.Handle(PUT, match, handler) }
func (router *Router) DELETE(match string, handler RouteHandler) { router.Handle(DELETE, match, handler) }
func (router *Router) CONNECT(match string, handler RouteHandler) { router.Handle(CONNECT, match, handler) }
func (router *Router) OPTIONS(match string, handler RouteHandler) { router.Handle(OPTIONS, match, handler) }
func (router *Router) TRACE(match string, handler RouteHandler) { router.Handle(TRACE, match, handler) }
func (router *Router) PATCH(match string, handler RouteHandler) { router.Handle(PATCH, match, handler) }

// AddCatchAllHandler sets the handler for unmatched requests.
func (router *Router) AddCatchAllHandler(handler CatchAllHandler) {
	router.CatchAll = handler
}

// AddErrorHandler sets the handler routing errors pass through.
func (router *Router) AddErrorHandler(handler ErrorHandler) {
	router.CatchError = handler
}

// match returns the first route accepting request along with its regex
// groups, or nil.
func (router *Router) match(request events.APIGatewayProxyRequest) (*Route, []string) {
	for _, route := range router.Routes {
		if ok, groups := route.IsMatch(request); ok {
			return route, groups
		}
	}

	return nil, nil
}

func (router *Router) dispatch(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	route, groups := router.match(request)

	switch {
	case route != nil:
		return route.Follow(ctx, request, groups)
	case router.CatchAll != nil:
		return router.CatchAll(ctx, request)
	default:
		return events.APIGatewayProxyResponse{}, errors.Wrapf(ErrRouteNotFound, "'%s %s'", request.HTTPMethod, request.Path)
	}
}

// Route hands request to the matching route, the catch all handler or, when
// neither applies, fails with an error caused by ErrRouteNotFound. Errors go
// through CatchError when it is set. Route has the signature lambda.Start
// expects of a proxy integration handler.
func (router *Router) Route(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response, err := router.dispatch(ctx, request)
	if err != nil && router.CatchError != nil {
		return router.CatchError(ctx, request, err)
	}

	return response, err
}

// RouteEnvelope routes e as the lambda behind an api gateway would receive
// it.
func (router *Router) RouteEnvelope(ctx context.Context, e *Envelope) (events.APIGatewayProxyResponse, error) {
	return router.Route(ctx, e.ProxyRequest())
}

// Send wraps body in an Envelope and routes it in process, the local
// counterpart of SendPostRequest against this router.
func (router *Router) Send(ctx context.Context, body interface{}) (events.APIGatewayProxyResponse, error) {
	e, err := NewEnvelope(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return router.RouteEnvelope(ctx, e)
}
