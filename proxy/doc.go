// Package proxy provides utilities for talking to aws lambda functions that
// sit behind an api gateway (rest) proxy integration.
//
// On the sending side a payload is wrapped in a synthetic proxy event (see
// Envelope) and either posted to an http endpoint with SendPostRequest or
// handed straight to a lambda function with an Invoker. On the receiving side
// the Router dispatches events.APIGatewayProxyRequest values to handlers and
// NewHTTPHandler exposes a router over plain http for local use.
//
// Everything is single shot. There is no retry or backoff.
package proxy
