package proxy

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// RouteHandler defines the function interface the route uses to execute a
// request when the route is matched.
type RouteHandler func(*RouteContext) (events.APIGatewayProxyResponse, error)

// Route defines a HttpMethod and Regex that are used in combination for
// matching against an incoming proxy request. When a match occurs the
// configured handler is called.
type Route struct {
	Method  HttpMethod
	Regex   *regexp.Regexp
	Handler RouteHandler
}

// NewRoute returns a Route for the specified method, pattern and handler.
func NewRoute(method HttpMethod, pattern string, handler RouteHandler) (*Route, error) {
	rx, err := regexp.Compile("^" + pattern + "/?$")

	if err != nil {
		return nil, errors.Wrapf(err, "failed compiling regex pattern '%s'", pattern)
	}

	route := &Route{
		Method:  method,
		Regex:   rx,
		Handler: handler,
	}

	return route, nil
}

// String returns a string representation of this route.
func (route *Route) String() string {
	return fmt.Sprintf("%s %s", route.Method, route.Regex)
}

// IsMatch return true if there is a match otherwise false. The match groups are
// also returned.
func (route *Route) IsMatch(request events.APIGatewayProxyRequest) (bool, []string) {
	if route.Method.String() != request.HTTPMethod {
		return false, nil
	}

	groups := route.Regex.FindStringSubmatch(request.Path)

	if len(groups) == 0 {
		return false, nil
	}

	return true, groups
}

// Context constructs a RouteContext for the route for passing to the handler.
//
// Params are gathered from the query string, the api gateway path parameters,
// a url encoded form body and finally the named regex groups. Later sources
// win when a name appears more than once.
func (route *Route) Context(ctx context.Context, request events.APIGatewayProxyRequest, groups []string) (*RouteContext, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no matches available, unable to generate context for route %v", route)
	}

	params := make(map[string]string)

	for k, v := range request.QueryStringParameters {
		params[k] = v
	}

	for k, v := range request.PathParameters {
		params[k] = v
	}

	if err := route.extractParamsFromFormPost(params, request); err != nil {
		return nil, errors.Wrapf(err, "failed extracting form params for route %v", route)
	}

	for i, name := range route.Regex.SubexpNames() {
		if i != 0 && name != "" && groups[i] != "" {
			params[name] = groups[i]
		}
	}

	return &RouteContext{
		Context: ctx,
		Request: request,
		Params:  params,
	}, nil
}

// extractParamsFromFormPost adds the fields of an url encoded form post to
// params. Any other request is left alone.
func (route *Route) extractParamsFromFormPost(params map[string]string, request events.APIGatewayProxyRequest) error {
	if request.HTTPMethod != POST.String() {
		return nil
	}

	if !strings.HasPrefix(headerValue(request.Headers, "Content-Type"), "application/x-www-form-urlencoded") {
		return nil
	}

	body := request.Body
	if request.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errors.Wrap(err, "unable to decode form body")
		}
		body = string(b)
	}

	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}

		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid key/value pair '%s'", pair)
		}

		key, err := url.QueryUnescape(kv[0])
		if err != nil {
			return errors.Wrapf(err, "unable to decode key '%s'", kv[0])
		}

		value, err := url.QueryUnescape(kv[1])
		if err != nil {
			return errors.Wrapf(err, "unable to decode value '%s'", kv[1])
		}

		params[key] = value
	}

	return nil
}

// headerValue looks up name ignoring case, the way api gateway passes headers
// through untouched.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}

	return ""
}

// Follow extracts the route context for the given request and executes the
// route's handler function.
func (route *Route) Follow(ctx context.Context, request events.APIGatewayProxyRequest, groups []string) (events.APIGatewayProxyResponse, error) {
	rctx, err := route.Context(ctx, request, groups)

	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrapf(err, "failed getting context for route %v", route.Regex)
	}

	return route.Handler(rctx)
}
