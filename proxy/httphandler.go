package proxy

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// NewHTTPHandler exposes router over plain http. The handler accepts a POSTed
// proxy event (such as an Envelope), routes it and writes the proxy response
// back as a regular http response.
//
// Undecodable events get a 400, unmatched routes a 404 and any other routing
// error a 500.
func NewHTTPHandler(router *Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, fmt.Sprintf("method %s not allowed", r.Method), http.StatusMethodNotAllowed)
			return
		}

		var request events.APIGatewayProxyRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, fmt.Sprintf("invalid proxy event: %v", err), http.StatusBadRequest)
			return
		}

		response, err := router.Route(r.Context(), request)
		if err != nil {
			status := http.StatusInternalServerError
			if IsRouteNotFound(err) {
				status = http.StatusNotFound
			}

			http.Error(w, err.Error(), status)
			return
		}

		writeProxyResponse(w, response)
	})
}

func writeProxyResponse(w http.ResponseWriter, response events.APIGatewayProxyResponse) {
	body := []byte(response.Body)
	if response.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(response.Body)
		if err != nil {
			http.Error(w, fmt.Sprintf("unable to decode response body: %v", err), http.StatusInternalServerError)
			return
		}
		body = b
	}

	for k, values := range response.MultiValueHeaders {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}

	for k, v := range response.Headers {
		w.Header().Set(k, v)
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	w.Write(body)
}
