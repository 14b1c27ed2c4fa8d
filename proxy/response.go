package proxy

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// JSONResponse returns a proxy response with v marshalled as the body.
func JSONResponse(status int, v interface{}) (events.APIGatewayProxyResponse, error) {
	b, err := marshalJSON(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrapf(err, "failed to marshal response %T", v)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": ContentTypeJSON,
		},
		Body:            string(b),
		IsBase64Encoded: false,
	}, nil
}
