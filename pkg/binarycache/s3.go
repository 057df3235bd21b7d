package binarycache

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pygr-project/pygr/pkg/observability"
)

// S3Client is the optional S3-backed binary cache, adapted from the S3
// artifact manager used for compiled-module storage: same tar.gz +
// content-hash technique, repurposed here for derivation-keyed archives
// instead of module/version/language keys.
type S3Client struct {
	client *s3.Client
	bucket string
	prefix string
	log    *observability.Logger
}

// NewS3Client builds an S3Client against bucket/prefix in region.
func NewS3Client(ctx context.Context, region, bucket, prefix string, log *observability.Logger) (*S3Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("binarycache: load aws config: %w", err)
	}
	return &S3Client{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}, nil
}

func (c *S3Client) key(fingerprint string) string {
	return path.Join(c.prefix, fingerprint+".tar.gz")
}

// Fetch implements Client.
func (c *S3Client) Fetch(ctx context.Context, fingerprint, destStorePath string) (bool, error) {
	key := c.key(fingerprint)

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.log.WithField("key", key).WithError(err).Warn("binarycache: s3 GetObject failed, treating as miss")
		return false, nil
	}
	defer out.Body.Close()

	if err := extractAndPlace(out.Body, destStorePath); err != nil {
		c.log.WithError(err).Warn("binarycache: s3 archive extraction failed, treating as miss")
		return false, nil
	}
	return true, nil
}
