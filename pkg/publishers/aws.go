package publishers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves an aws.Config for the region, using static
// credentials when both keys are configured.
func loadAWSConfig(ctx context.Context, auth AWSAuth) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(auth.Region)}
	if auth.AccessKeyID != "" && auth.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(auth.AccessKeyID, auth.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// endpointOverride returns the BaseEndpoint option value, nil when unset.
func endpointOverride(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}

// stringAttributes is the shape shared by SQS and SNS message attributes.
func stringAttributes[T any](attrs map[string]string, build func(dataType, value *string) T) map[string]T {
	out := make(map[string]T, len(attrs))
	for k, v := range attrs {
		out[k] = build(aws.String("String"), aws.String(v))
	}
	return out
}

// fifoIDs returns the message group and deduplication ids for FIFO queues
// and topics: changes of one watch stay ordered, and a redelivered change
// (same index and digest) is dropped by AWS.
func fifoIDs(target string, evt Event) (group, dedup *string) {
	if !strings.HasSuffix(target, ".fifo") {
		return nil, nil
	}
	id := strconv.FormatUint(evt.Index, 10) + "-" + evt.Digest
	if len(id) > 128 {
		id = id[:128]
	}
	return aws.String(evt.WatchID), aws.String(id)
}
