package lambdautils

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSQSClient struct {
	sqsiface.SQSAPI

	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQSClient) SendMessageWithContext(ctx aws.Context, input *sqs.SendMessageInput, opts ...request.Option) (*sqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}

	return &sqs.SendMessageOutput{MessageId: aws.String("1")}, nil
}

func testHook(mock *mockSQSClient) *SQSHook {
	hook := NewSQSHook("us-east-1", "https://sqs.us-east-1.amazonaws.com/123456789012/logs")
	hook.svcFunc = func(client.ConfigProvider) sqsiface.SQSAPI { return mock }
	return hook
}

func testLogger(hook logrus.Hook) *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	logger.AddHook(hook)
	return logger
}

func TestNewSQSHook(t *testing.T) {
	hook := NewSQSHook("r1", "q1")

	assert.Equal(t, "r1", hook.Region)
	assert.Equal(t, "q1", hook.QueueURL)
	assert.Equal(t, []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}, hook.Levels())

	hook.LogLevels = []logrus.Level{logrus.WarnLevel}
	assert.Equal(t, []logrus.Level{logrus.WarnLevel}, hook.Levels())
}

func TestSQSHook_errorsOnly(t *testing.T) {
	mock := &mockSQSClient{}
	logger := testLogger(testHook(mock))

	logger.Info("all good")
	logger.Warn("hmm")
	logger.WithField("url", "http://x").WithError(errors.New("dial failed")).Error("error making post request")

	require.Len(t, mock.inputs, 1)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123456789012/logs", *mock.inputs[0].QueueUrl)

	var message map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*mock.inputs[0].MessageBody), &message))

	assert.Equal(t, "error making post request", message["msg"])
	assert.Equal(t, "error", message["level"])
	assert.Equal(t, "http://x", message["url"])
	assert.Equal(t, "dial failed", message[logrus.ErrorKey])
	assert.NotEmpty(t, message["time"])
}

func TestSQSHook_messageBody(t *testing.T) {
	hook := NewSQSHook("r", "q")

	entry := &logrus.Entry{
		Data:    logrus.Fields{"status_code": 404},
		Time:    time.Date(2009, 11, 10, 23, 0, 0, 0, time.UTC),
		Level:   logrus.ErrorLevel,
		Message: "error making post request",
	}

	body, err := hook.messageBody(entry)

	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"status_code": 404,
		"msg": "error making post request",
		"level": "error",
		"time": "2009-11-10T23:00:00Z"
	}`, body)
}

func TestSQSHook_messageBody_error(t *testing.T) {
	hook := NewSQSHook("r", "q")

	entry := &logrus.Entry{
		Data:    logrus.Fields{"bad": make(chan int)},
		Level:   logrus.ErrorLevel,
		Message: "m",
	}

	_, err := hook.messageBody(entry)
	assert.Error(t, err)
}

func TestSQSHook_Fire_sendError(t *testing.T) {
	cause := awserr.New(sqs.ErrCodeQueueDoesNotExist, "no queue", nil)
	mock := &mockSQSClient{err: cause}
	hook := testHook(mock)

	err := hook.Fire(&logrus.Entry{Level: logrus.ErrorLevel, Message: "m", Data: logrus.Fields{}})

	require.Error(t, err)
	assert.Equal(t, cause, errors.Cause(err))
	assert.Len(t, mock.inputs, 1)
}

func TestSQSHook_Fire_reusesClient(t *testing.T) {
	mock := &mockSQSClient{}
	hook := testHook(mock)

	calls := 0
	hook.svcFunc = func(client.ConfigProvider) sqsiface.SQSAPI {
		calls++
		return mock
	}

	entry := &logrus.Entry{Level: logrus.ErrorLevel, Message: "m", Data: logrus.Fields{}}

	assert.NoError(t, hook.Fire(entry))
	assert.NoError(t, hook.Fire(entry))
	assert.Equal(t, 1, calls)
	assert.Len(t, mock.inputs, 2)
}
