package objstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/pkg/logx"
)

// S3Fetcher reads documents straight from the uploads bucket by storage key,
// for deployments where the bucket is not publicly addressable.
type S3Fetcher struct {
	client *s3.Client
	bucket string
	logger *logx.Logger
}

func NewS3Fetcher(ctx context.Context) (*S3Fetcher, error) {
	region := strings.TrimSpace(config.Env("AWS_REGION", "us-east-1"))
	bucket := strings.TrimSpace(config.UploadsBucket())
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Fetcher{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logx.NewLogger("S3 Fetcher"),
	}, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, doc Ref) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(doc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object key=%s: %w", doc.Key, err)
	}
	defer out.Body.Close()

	limited := io.LimitReader(out.Body, config.MaxDocBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read s3 object key=%s: %w", doc.Key, err)
	}
	if int64(len(data)) > config.MaxDocBytes {
		return nil, fmt.Errorf("s3 object too large: %d bytes", len(data))
	}

	f.logger.Debug("fetched document", "key", doc.Key, "bytes", len(data))
	return data, nil
}
