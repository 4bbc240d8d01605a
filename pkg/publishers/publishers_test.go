package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/fxwire-hq/fxwire-news-harvester/internal/domain"
)

func writeConfigFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigs(t *testing.T) {
	t.Setenv("TEST_SQS_SECRET", "shhh")

	path := writeConfigFile(t, "publishers.yaml", `
publishers:
  - id: records-queue
    type: queue
    queue:
      provider: aws-sqs
      sqs:
        uri: https://sqs.eu-west-1.amazonaws.com/123/records
        region: eu-west-1
        access_key_id: AKIATEST
        secret_access_key: ${TEST_SQS_SECRET}
  - id: records-webhook
    type: http
    enabled: false
    http:
      url: https://example.com/hook
      method: put
`)

	cfgs, err := LoadConfigs(path)
	if err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("got %d configs, want 2", len(cfgs))
	}

	if cfgs[0].Queue.SQS.SecretAccessKey != "shhh" {
		t.Errorf("env expansion failed: secret = %q", cfgs[0].Queue.SQS.SecretAccessKey)
	}
	if cfgs[1].EnabledValue() {
		t.Error("disabled entry reported enabled")
	}
	if cfgs[1].HTTP.Method != http.MethodPut {
		t.Errorf("method not normalized: %q", cfgs[1].HTTP.Method)
	}
}

func TestLoadConfigsValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing id", "publishers:\n  - type: http\n    http:\n      url: https://x\n"},
		{"unknown type", "publishers:\n  - id: a\n    type: kafka\n"},
		{"sqs missing region", `publishers:
  - id: a
    type: queue
    queue:
      provider: aws-sqs
      sqs:
        uri: https://sqs/x
        access_key_id: k
        secret_access_key: s
`},
		{"duplicate ids", `publishers:
  - id: a
    type: http
    http:
      url: https://x
  - id: a
    type: http
    http:
      url: https://y
`},
		{"empty file", "publishers: []\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, "publishers.yaml", tc.body)
			if _, err := LoadConfigs(path); err == nil {
				t.Fatal("LoadConfigs accepted invalid config")
			}
		})
	}
}

// fakeSQS captures the sent message.
type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestAWSSQSSenderSend(t *testing.T) {
	fake := &fakeSQS{}
	sender := &awsSQSSender{queueURL: "https://sqs/records", client: fake, log: ensureLogger(nil)}

	rec := domain.NewsRecord{
		Symbol:          "eur-usd",
		URL:             "/news/forex-news/a-1",
		Title:           "A",
		Content:         "body\n",
		TimestampMillis: 1714564800000,
	}
	if err := sender.Send(context.Background(), rec); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if aws.ToString(fake.input.QueueUrl) != "https://sqs/records" {
		t.Errorf("queue url = %q", aws.ToString(fake.input.QueueUrl))
	}
	attr, ok := fake.input.MessageAttributes["symbol"]
	if !ok || aws.ToString(attr.StringValue) != "eur-usd" {
		t.Errorf("symbol attribute = %+v", attr)
	}

	var sent domain.NewsRecord
	if err := json.Unmarshal([]byte(aws.ToString(fake.input.MessageBody)), &sent); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if sent != rec {
		t.Errorf("sent %+v, want %+v", sent, rec)
	}
}

func TestAWSSQSSenderSendError(t *testing.T) {
	sender := &awsSQSSender{
		queueURL: "https://sqs/records",
		client:   &fakeSQS{err: errors.New("throttled")},
		log:      ensureLogger(nil),
	}

	err := sender.Send(context.Background(), domain.NewsRecord{Symbol: "eur-usd"})
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("got err %v, want the wrapped client error", err)
	}
}

// fakeSNS captures the published message.
type fakeSNS struct {
	input *sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	return &sns.PublishOutput{MessageId: aws.String("m-2")}, nil
}

func TestAWSSNSSenderSend(t *testing.T) {
	fake := &fakeSNS{}
	sender := &awsSNSSender{topicARN: "arn:aws:sns:eu-west-1:123:records", client: fake, log: ensureLogger(nil)}

	rec := domain.NewsRecord{Symbol: "gbp-usd", URL: "/news/x", Title: "X", TimestampMillis: 1}
	if err := sender.Send(context.Background(), rec); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if aws.ToString(fake.input.TopicArn) != "arn:aws:sns:eu-west-1:123:records" {
		t.Errorf("topic = %q", aws.ToString(fake.input.TopicArn))
	}
	attr := fake.input.MessageAttributes["symbol"]
	if aws.ToString(attr.StringValue) != "gbp-usd" {
		t.Errorf("symbol attribute = %q", aws.ToString(attr.StringValue))
	}
}

func TestHTTPPublisherPublish(t *testing.T) {
	var (
		gotMethod string
		gotBody   domain.NewsRecord
		gotHeader string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Token")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:     srv.URL,
			Headers: map[string]string{"X-Token": "t0k3n"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	rec := domain.NewsRecord{Symbol: "eur-usd", URL: "/news/a", Title: "A", TimestampMillis: 7}
	if err := pub.Publish(context.Background(), rec); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want default POST", gotMethod)
	}
	if gotHeader != "t0k3n" {
		t.Errorf("X-Token = %q", gotHeader)
	}
	if gotBody != rec {
		t.Errorf("body = %+v, want %+v", gotBody, rec)
	}
}

func TestHTTPPublisherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), domain.NewsRecord{Symbol: "eur-usd"}); err == nil {
		t.Fatal("Publish succeeded on a 502 response")
	}
}

func TestBuildAllSkipsDisabled(t *testing.T) {
	disabled := false
	cfgs := []PublisherConfig{
		{ID: "on", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com/a"}},
		{ID: "off", Type: TypeHTTP, Enabled: &disabled, HTTP: &HTTPPublisherConfig{URL: "https://example.com/b"}},
	}

	pubs, err := BuildAll(context.Background(), DefaultRegistry(), cfgs, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].ID() != "on" {
		t.Fatalf("got %d publishers, want only the enabled one", len(pubs))
	}
}
