// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package storage

import (
	"context"
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/s3"
)

// S3BucketResourceType is the resource type for S3-compatible storage buckets.
const S3BucketResourceType = "OVH::Storage::S3Bucket"

// S3 bucket schema and descriptor
var (
	S3BucketDescriptor = plugin.ResourceDescriptor{
		Type:         S3BucketResourceType,
		Discoverable: true,
	}

	S3BucketSchema = model.Schema{
		Identifier:   "name",
		Discoverable: true,
		Fields:       []string{"name", "region", "versioning", "tags"},
		Hints: map[string]model.FieldHint{
			"name":   {Required: true, CreateOnly: true},
			"region": {CreateOnly: true},
		},
	}
)

// S3BucketDefinition describes buckets. The S3 API answers every call
// synchronously.
var S3BucketDefinition = lifecycle.Definition{
	ResourceType: S3BucketResourceType,
	Budget: lifecycle.BudgetPolicy{
		Mode:         lifecycle.BudgetAttempts,
		Limit:        10,
		InitialDelay: 15,
		PollDelay:    15,
	},
	Classifier: s3.NewClassifier(),
	Validate: func(_ lifecycle.Operation, m lifecycle.Model) error {
		if m.NativeID == "" && m.String("name") == "" {
			return errors.New("either a native id, or name, must be present")
		}
		return nil
	},
	SupportsUpdate: true,
	CreateOnly:     registry.CreateOnlyFields(S3BucketSchema),
}

// S3BucketRemote translates bucket models to S3 calls. The bucket name is
// its native ID.
type S3BucketRemote struct {
	Buckets s3.Buckets
}

var _ lifecycle.Remote = (*S3BucketRemote)(nil)

// NewS3BucketProvisioner builds the formae provisioner for buckets.
func NewS3BucketProvisioner(buckets s3.Buckets, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(S3BucketDefinition, &S3BucketRemote{Buckets: buckets}, opts...))
}

func (r *S3BucketRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	name := desired.String("name")
	if err := r.Buckets.CreateBucket(ctx, name, desired.String("region")); err != nil {
		return lifecycle.Observation{}, err
	}
	if err := r.configure(ctx, name, desired.Properties); err != nil {
		// A half-configured bucket would block the retried create.
		if derr := r.Buckets.DeleteBucket(ctx, name); derr != nil {
			zerolog.Ctx(ctx).Warn().Err(derr).
				Str("nativeId", name).
				Msg("failed to remove bucket after configuration failed")
		}
		return lifecycle.Observation{}, err
	}
	return r.Read(ctx, name)
}

func (r *S3BucketRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.configure(ctx, desired.NativeID, desired.Properties); err != nil {
		return lifecycle.Observation{}, err
	}
	return r.Read(ctx, desired.NativeID)
}

// configure applies the mutable settings present in props.
func (r *S3BucketRemote) configure(ctx context.Context, name string, props map[string]interface{}) error {
	if enabled, ok := resources.Bool(props, "versioning"); ok {
		if err := r.Buckets.PutVersioning(ctx, name, enabled); err != nil {
			return err
		}
	}
	if _, ok := props["tags"]; ok {
		if err := r.Buckets.PutTags(ctx, name, resources.StringMap(props, "tags")); err != nil {
			return err
		}
	}
	return nil
}

func (r *S3BucketRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.Buckets.DeleteBucket(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *S3BucketRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	bucket, err := r.Buckets.GetBucket(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	props := map[string]interface{}{
		"name":       bucket.Name,
		"versioning": bucket.Versioning,
	}
	if bucket.Region != "" {
		props["region"] = bucket.Region
	}
	if len(bucket.Tags) > 0 {
		props["tags"] = bucket.Tags
	}
	return lifecycle.Observation{NativeID: bucket.Name, Properties: props}, nil
}

func (r *S3BucketRemote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	return r.Buckets.ListBuckets(ctx)
}

// lazyBuckets resolves the object storage transport on every call so that
// building a provisioner never needs S3 credentials.
type lazyBuckets struct {
	client *client.Client
}

var _ s3.Buckets = lazyBuckets{}

func (l lazyBuckets) CreateBucket(ctx context.Context, name, region string) error {
	b, err := l.client.S3(ctx)
	if err != nil {
		return err
	}
	return b.CreateBucket(ctx, name, region)
}

func (l lazyBuckets) GetBucket(ctx context.Context, name string) (*s3.Bucket, error) {
	b, err := l.client.S3(ctx)
	if err != nil {
		return nil, err
	}
	return b.GetBucket(ctx, name)
}

func (l lazyBuckets) DeleteBucket(ctx context.Context, name string) error {
	b, err := l.client.S3(ctx)
	if err != nil {
		return err
	}
	return b.DeleteBucket(ctx, name)
}

func (l lazyBuckets) ListBuckets(ctx context.Context) ([]string, error) {
	b, err := l.client.S3(ctx)
	if err != nil {
		return nil, err
	}
	return b.ListBuckets(ctx)
}

func (l lazyBuckets) PutVersioning(ctx context.Context, name string, enabled bool) error {
	b, err := l.client.S3(ctx)
	if err != nil {
		return err
	}
	return b.PutVersioning(ctx, name, enabled)
}

func (l lazyBuckets) PutTags(ctx context.Context, name string, tags map[string]string) error {
	b, err := l.client.S3(ctx)
	if err != nil {
		return err
	}
	return b.PutTags(ctx, name, tags)
}

func init() {
	registry.Register(
		S3BucketResourceType,
		S3BucketDescriptor,
		S3BucketSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewS3BucketProvisioner(lazyBuckets{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
