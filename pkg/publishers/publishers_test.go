package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
	if enabled[0].HTTP.Method != "POST" || enabled[0].HTTP.TimeoutSeconds != 5 {
		t.Fatalf("expected http defaults applied, got %#v", enabled[0].HTTP)
	}
}

func TestLoadRegistryAWSInlineAuth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: changes
    type: sns
    sns:
      topic_arn: " arn:aws:sns:us-east-1:000000000000:catalog "
      region: us-east-1
      endpoint: http://localhost:4566
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	all := reg.All()
	if len(all) != 1 || all[0].ID != "changes" {
		t.Fatalf("expected publisher changes, got %#v", all)
	}
	cfg := all[0]
	if cfg.SNS.TopicARN != "arn:aws:sns:us-east-1:000000000000:catalog" {
		t.Fatalf("topic arn not trimmed: %q", cfg.SNS.TopicARN)
	}
	if cfg.SNS.Region != "us-east-1" || cfg.SNS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline aws auth not decoded: %#v", cfg.SNS.AWSAuth)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http":    {ID: "h1", Type: TypeHTTP},
		"missing sqs uri": {ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{AWSAuth: AWSAuth{Region: "us-east-1"}}},
		"missing region":  {ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		"missing topic":   {ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "proj"}},
		"missing id":      {Type: TypeHTTP},
		"half static key": {ID: "q2", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u", AWSAuth: AWSAuth{Region: "r", AccessKeyID: "k"}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cfg.normalize().validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := PublisherConfig{ID: " h ", Type: "HTTP", HTTP: &HTTPPublisherConfig{URL: " https://example.com ", Headers: map[string]string{" X-A ": " 1 ", "X-Empty": ""}}}
	out := in.normalize()

	if in.HTTP.URL != " https://example.com " {
		t.Fatalf("input config mutated: %q", in.HTTP.URL)
	}
	if out.ID != "h" || out.Type != TypeHTTP || out.HTTP.URL != "https://example.com" {
		t.Fatalf("unexpected normalized config %#v", out)
	}
	if len(out.HTTP.Headers) != 1 || out.HTTP.Headers["X-A"] != "1" {
		t.Fatalf("unexpected headers %#v", out.HTTP.Headers)
	}
}

func TestLoadRegistryRejectsDuplicatesAndUnknownKeys(t *testing.T) {
	dup := filepath.Join(t.TempDir(), "dup.yaml")
	if err := os.WriteFile(dup, []byte(`
publishers:
  - id: a
    type: http
    http: {url: "https://example.com"}
  - id: a
    type: http
    http: {url: "https://example.com"}
`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(dup); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	typo := filepath.Join(t.TempDir(), "typo.json")
	if err := os.WriteFile(typo, []byte(`{"publishers":[{"id":"a","type":"http","htp":{}}]}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(typo); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
