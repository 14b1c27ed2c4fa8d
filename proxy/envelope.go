package proxy

import (
	"bytes"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// ContentTypeJSON is the content type used for the envelope and its body.
const ContentTypeJSON = "application/json"

// Envelope is the api gateway proxy event a payload gets wrapped in before it
// is sent. Only Body varies between calls.
type Envelope struct {
	Resource        string            `json:"resource"`
	Path            string            `json:"path"`
	HTTPMethod      string            `json:"httpMethod"`
	Headers         map[string]string `json:"headers"`
	RequestContext  struct{}          `json:"requestContext"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// NewEnvelope serializes body to json and nests it in a fresh envelope.
func NewEnvelope(body interface{}) (*Envelope, error) {
	b, err := marshalJSON(body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal body %T", body)
	}

	return &Envelope{
		Resource:   "/",
		Path:       "/",
		HTTPMethod: POST.String(),
		Headers: map[string]string{
			"Content-Type": ContentTypeJSON,
		},
		Body:            string(b),
		IsBase64Encoded: false,
	}, nil
}

// Marshal returns the json wire form of the envelope.
func (e *Envelope) Marshal() ([]byte, error) {
	b, err := marshalJSON(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal envelope")
	}

	return b, nil
}

// ProxyRequest returns the envelope as the event a lambda proxy integration
// would receive.
func (e *Envelope) ProxyRequest() events.APIGatewayProxyRequest {
	headers := make(map[string]string, len(e.Headers))
	for k, v := range e.Headers {
		headers[k] = v
	}

	return events.APIGatewayProxyRequest{
		Resource:        e.Resource,
		Path:            e.Path,
		HTTPMethod:      e.HTTPMethod,
		Headers:         headers,
		Body:            e.Body,
		IsBase64Encoded: e.IsBase64Encoded,
	}
}

// marshalJSON is json.Marshal without html escaping and with U+2028 and
// U+2029 left raw, so bodies come out the same way a javascript caller would
// stringify them.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

var (
	escapedLineSeparator      = []byte(`\u2028`)
	escapedParagraphSeparator = []byte(`\u2029`)
)

// unescapeLineSeparators replaces the \u2028 and \u2029 escapes encoding/json
// always writes with the raw runes. An escaped backslash followed by the
// same text is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, escapedLineSeparator) && !bytes.Contains(b, escapedParagraphSeparator) {
		return b
	}

	out := make([]byte, 0, len(b))

	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}

		switch {
		case bytes.HasPrefix(b[i:], escapedLineSeparator):
			out = append(out, "\u2028"...)
			i += len(escapedLineSeparator) - 1
		case bytes.HasPrefix(b[i:], escapedParagraphSeparator):
			out = append(out, "\u2029"...)
			i += len(escapedParagraphSeparator) - 1
		default:
			out = append(out, b[i], b[i+1])
			i++
		}
	}

	return out
}
