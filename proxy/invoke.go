package proxy

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Invoker hands enveloped payloads straight to a lambda function with a
// synchronous (RequestResponse) invoke, skipping the http endpoint.
type Invoker struct {
	Region string
	Logger logrus.FieldLogger

	svcFunc func(client.ConfigProvider) lambdaiface.LambdaAPI
}

// NewInvoker returns an Invoker for functions in region.
func NewInvoker(region string) *Invoker {
	return &Invoker{
		Region: region,
		Logger: logrus.StandardLogger(),
	}
}

// svc is used internally to assist stubs on lambda for testing
func (inv *Invoker) svc(p client.ConfigProvider) lambdaiface.LambdaAPI {
	if inv.svcFunc != nil {
		return inv.svcFunc(p)
	}

	return lambda.New(p)
}

func (inv *Invoker) logger() logrus.FieldLogger {
	if inv.Logger != nil {
		return inv.Logger
	}

	return logrus.StandardLogger()
}

// Invoke wraps body in an Envelope, invokes function with it and returns the
// decoded json result.
//
// A function error fails with *FunctionError and a non 2xx invoke status with
// *HTTPStatusError. Sdk and decoding failures are returned wrapped. Every
// failure is logged before it is returned.
func (inv *Invoker) Invoke(ctx context.Context, function string, body interface{}) (interface{}, error) {
	var out interface{}

	if err := inv.InvokeInto(ctx, function, body, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// InvokeInto behaves like Invoke but decodes the result into out.
func (inv *Invoker) InvokeInto(ctx context.Context, function string, body interface{}, out interface{}) error {
	err := inv.invoke(ctx, function, body, out)
	if err != nil {
		log := inv.logger().WithField("function", function)

		if code, ok := StatusCode(err); ok {
			log = log.WithField("status_code", code)
		}

		log.WithError(err).Error("error invoking function")
	}

	return err
}

func (inv *Invoker) invoke(ctx context.Context, function string, body interface{}, out interface{}) error {
	envelope, err := NewEnvelope(body)
	if err != nil {
		return err
	}

	payload, err := envelope.Marshal()
	if err != nil {
		return err
	}

	s, err := session.NewSession(&aws.Config{
		Region: aws.String(inv.Region),
	})
	if err != nil {
		return errors.Wrap(err, "failed getting session")
	}

	output, err := inv.svc(s).InvokeWithContext(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(function),
		InvocationType: aws.String(lambda.InvocationTypeRequestResponse),
		Payload:        payload,
	})
	if err != nil {
		return errors.Wrapf(err, "failed invoking %s", function)
	}

	if output.FunctionError != nil {
		return &FunctionError{
			Function: function,
			Type:     aws.StringValue(output.FunctionError),
			Payload:  output.Payload,
		}
	}

	if output.StatusCode != nil {
		if code := int(*output.StatusCode); code < 200 || code > 299 {
			return &HTTPStatusError{StatusCode: code, Body: output.Payload}
		}
	}

	if err := json.Unmarshal(output.Payload, out); err != nil {
		return errors.Wrapf(err, "failed parsing result of %s", function)
	}

	return nil
}
