// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package s3 is the client for OVHcloud's S3-compatible object storage.
package s3

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config holds the object storage endpoint and credentials.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Bucket is the observable state of a bucket.
type Bucket struct {
	Name       string
	Region     string
	Versioning bool
	Tags       map[string]string
}

// Buckets is the bucket API the storage resources depend on.
type Buckets interface {
	CreateBucket(ctx context.Context, name, region string) error
	GetBucket(ctx context.Context, name string) (*Bucket, error)
	DeleteBucket(ctx context.Context, name string) error
	ListBuckets(ctx context.Context) ([]string, error)
	PutVersioning(ctx context.Context, name string, enabled bool) error
	PutTags(ctx context.Context, name string, tags map[string]string) error
}

// Client wraps the S3 client for OVHcloud Object Storage.
type Client struct {
	s3     *s3.Client
	region string
}

var _ Buckets = (*Client)(nil)

// NewClient creates a new S3 client for OVHcloud Object Storage.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &Client{s3: client, region: cfg.Region}, nil
}

// CreateBucket creates a bucket in region, or the client's region when empty.
func (c *Client) CreateBucket(ctx context.Context, name, region string) error {
	if region == "" {
		region = c.region
	}
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(name),
		CreateBucketConfiguration: &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		},
	})
	return Wrap(err)
}

// GetBucket reads a bucket's region, versioning state and tags.
func (c *Client) GetBucket(ctx context.Context, name string) (*Bucket, error) {
	head, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return nil, Wrap(err)
	}

	bucket := &Bucket{Name: name, Region: aws.ToString(head.BucketRegion)}

	versioning, err := c.s3.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return nil, Wrap(err)
	}
	bucket.Versioning = versioning.Status == types.BucketVersioningStatusEnabled

	tagging, err := c.s3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
		Bucket: aws.String(name),
	})
	switch {
	case err == nil:
		bucket.Tags = make(map[string]string, len(tagging.TagSet))
		for _, tag := range tagging.TagSet {
			bucket.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	case IsCode(Wrap(err), CodeNoSuchTagSet):
	default:
		return nil, Wrap(err)
	}

	return bucket, nil
}

// DeleteBucket deletes a bucket. The bucket must be empty.
func (c *Client) DeleteBucket(ctx context.Context, name string) error {
	_, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(name),
	})
	return Wrap(err)
}

// ListBuckets returns the names of all buckets of the account.
func (c *Client) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, Wrap(err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

// PutVersioning enables or suspends versioning.
func (c *Client) PutVersioning(ctx context.Context, name string, enabled bool) error {
	status := types.BucketVersioningStatusSuspended
	if enabled {
		status = types.BucketVersioningStatusEnabled
	}
	_, err := c.s3.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket:                  aws.String(name),
		VersioningConfiguration: &types.VersioningConfiguration{Status: status},
	})
	return Wrap(err)
}

// PutTags replaces the bucket's tag set. An empty map removes all tags.
func (c *Client) PutTags(ctx context.Context, name string, tags map[string]string) error {
	if len(tags) == 0 {
		_, err := c.s3.DeleteBucketTagging(ctx, &s3.DeleteBucketTaggingInput{
			Bucket: aws.String(name),
		})
		return Wrap(err)
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tagSet := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		tagSet = append(tagSet, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	_, err := c.s3.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(name),
		Tagging: &types.Tagging{TagSet: tagSet},
	})
	return Wrap(err)
}
