package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
)

// ObjectPutter is the subset of *s3.Client used here.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes exports to Bucket under Prefix.
type S3Uploader struct {
	Client ObjectPutter
	Bucket string
	Prefix string
	Logger *slog.Logger
}

var _ Uploader = (*S3Uploader)(nil)

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Upload puts the object and returns its s3:// URI.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	key := name
	if u.Prefix != "" {
		key = strings.TrimSuffix(u.Prefix, "/") + "/" + name
	}

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String("image/png"),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", u.Bucket, key, err)
	}

	location := "s3://" + u.Bucket + "/" + key
	if u.Logger != nil {
		u.Logger.Info("image exported", "location", location, "size", humanize.Bytes(uint64(len(data))))
	}
	return location, nil
}
