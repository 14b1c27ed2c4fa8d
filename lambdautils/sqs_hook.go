package lambdautils

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SQSHook is a logrus hook that ships log entries to an sqs queue, one json
// message per entry. By default only error, fatal and panic entries are sent.
type SQSHook struct {
	Region    string
	QueueURL  string
	LogLevels []logrus.Level

	svcFunc func(client.ConfigProvider) sqsiface.SQSAPI

	once   sync.Once
	sqsSvc sqsiface.SQSAPI
	err    error
}

// NewSQSHook returns a hook sending to queueURL in region.
func NewSQSHook(region string, queueURL string) *SQSHook {
	return &SQSHook{
		Region:   region,
		QueueURL: queueURL,
	}
}

// svc is used internally to assist stubs on sqs for testing
func (hook *SQSHook) svc(p client.ConfigProvider) sqsiface.SQSAPI {
	if hook.svcFunc != nil {
		return hook.svcFunc(p)
	}

	return sqs.New(p)
}

// sqsClient creates the sqs client on first use.
func (hook *SQSHook) sqsClient() (sqsiface.SQSAPI, error) {
	hook.once.Do(func() {
		s, err := session.NewSession(&aws.Config{
			Region: aws.String(hook.Region),
		})
		if err != nil {
			hook.err = errors.Wrap(err, "failed getting session")
			return
		}

		hook.sqsSvc = hook.svc(s)
	})

	return hook.sqsSvc, hook.err
}

// Levels implements logrus.Hook.
func (hook *SQSHook) Levels() []logrus.Level {
	if hook.LogLevels != nil {
		return hook.LogLevels
	}

	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire implements logrus.Hook. A failed send is returned to logrus, which
// reports it on stderr.
func (hook *SQSHook) Fire(entry *logrus.Entry) error {
	body, err := hook.messageBody(entry)
	if err != nil {
		return err
	}

	svc, err := hook.sqsClient()
	if err != nil {
		return err
	}

	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}

	_, err = svc.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(hook.QueueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return errors.Wrapf(err, "failed sending log to %s", hook.QueueURL)
	}

	return nil
}

// messageBody renders entry as a json object holding its fields plus msg,
// level and time.
func (hook *SQSHook) messageBody(entry *logrus.Entry) (string, error) {
	data := make(map[string]interface{}, len(entry.Data)+3)

	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}

	data["msg"] = entry.Message
	data["level"] = entry.Level.String()
	data["time"] = entry.Time.UTC().Format(time.RFC3339Nano)

	b, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal log entry")
	}

	return string(b), nil
}
