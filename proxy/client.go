package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the id generated for each post so the caller's log
// entries can be matched with the remote end.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody caps how much of a failed response is kept on the error.
const maxErrorBody = 4096

// HTTPClient is the part of *http.Client the Client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts enveloped payloads to http endpoints.
//
// A Client holds no per call state and may be shared between goroutines.
type Client struct {
	HTTPClient HTTPClient
	Logger     logrus.FieldLogger
}

// DefaultClient is used by SendPostRequest.
var DefaultClient = NewClient()

// NewClient returns a Client using http.DefaultClient and the standard logrus
// logger.
func NewClient() *Client {
	return &Client{
		HTTPClient: http.DefaultClient,
		Logger:     logrus.StandardLogger(),
	}
}

// SendPostRequest wraps body in an Envelope, posts it to apiurl with
// DefaultClient and returns the decoded json response.
func SendPostRequest(ctx context.Context, apiurl string, body interface{}) (interface{}, error) {
	return DefaultClient.SendPostRequest(ctx, apiurl, body)
}

// SendPostRequest wraps body in an Envelope, posts it to apiurl and returns
// the decoded json response.
//
// A status outside of 200-299 fails with *HTTPStatusError. Transport, encoding
// and decoding failures are returned wrapped; errors.Cause gives the
// underlying error. Every failure is logged before it is returned.
func (c *Client) SendPostRequest(ctx context.Context, apiurl string, body interface{}) (interface{}, error) {
	var out interface{}

	if err := c.Post(ctx, apiurl, body, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Post behaves like SendPostRequest but decodes the response into out.
func (c *Client) Post(ctx context.Context, apiurl string, body interface{}, out interface{}) error {
	requestID := uuid.New().String()

	err := c.post(ctx, apiurl, requestID, body, out)
	if err != nil {
		log := c.logger().WithFields(logrus.Fields{
			"url":        apiurl,
			"request_id": requestID,
		})

		if code, ok := StatusCode(err); ok {
			log = log.WithField("status_code", code)
		}

		log.WithError(err).Error("error making post request")
	}

	return err
}

func (c *Client) post(ctx context.Context, apiurl, requestID string, body interface{}, out interface{}) error {
	envelope, err := NewEnvelope(body)
	if err != nil {
		return err
	}

	payload, err := envelope.Marshal()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiurl, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "failed building request for %s", apiurl)
	}

	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed posting to %s", apiurl)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: b}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed reading response from %s", apiurl)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return errors.Wrapf(err, "failed parsing response from %s", apiurl)
	}

	return nil
}

func (c *Client) httpClient() HTTPClient {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return http.DefaultClient
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}

	return logrus.StandardLogger()
}
