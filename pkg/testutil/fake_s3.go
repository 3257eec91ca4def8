// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/s3"
)

// FakeBuckets is an in-memory s3.Buckets. Errors queued with FailNext are
// returned by the next call of any method, those queued with FailOn by the
// next call of one method.
type FakeBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*s3.Bucket
	failing   []error
	failingOn map[string][]error
	calls     map[string]int
}

var _ s3.Buckets = (*FakeBuckets)(nil)

// NewFakeBuckets creates an empty store.
func NewFakeBuckets() *FakeBuckets {
	return &FakeBuckets{
		buckets:   make(map[string]*s3.Bucket),
		failingOn: make(map[string][]error),
		calls:     make(map[string]int),
	}
}

// FailOn makes the next call of method return err.
func (f *FakeBuckets) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failingOn[method] = append(f.failingOn[method], err)
}

// Has reports whether the bucket exists.
func (f *FakeBuckets) Has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.buckets[name]
	return ok
}

// FailNext makes the next call return err.
func (f *FakeBuckets) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = append(f.failing, err)
}

// Calls counts calls of method.
func (f *FakeBuckets) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeBuckets) enter(method string) error {
	f.calls[method]++
	if queued := f.failingOn[method]; len(queued) > 0 {
		f.failingOn[method] = queued[1:]
		return queued[0]
	}
	if len(f.failing) == 0 {
		return nil
	}
	err := f.failing[0]
	f.failing = f.failing[1:]
	return err
}

func notFound() error {
	return &s3.Error{Code: s3.CodeNoSuchBucket, HTTPCode: 404, Message: "The specified bucket does not exist"}
}

func (f *FakeBuckets) CreateBucket(_ context.Context, name, region string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateBucket"); err != nil {
		return err
	}
	if _, ok := f.buckets[name]; ok {
		return &s3.Error{Code: s3.CodeBucketAlreadyOwnedByYou, HTTPCode: 409, Message: "bucket exists"}
	}
	f.buckets[name] = &s3.Bucket{Name: name, Region: region, Tags: map[string]string{}}
	return nil
}

func (f *FakeBuckets) GetBucket(_ context.Context, name string) (*s3.Bucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetBucket"); err != nil {
		return nil, err
	}
	b, ok := f.buckets[name]
	if !ok {
		return nil, notFound()
	}
	cp := *b
	cp.Tags = make(map[string]string, len(b.Tags))
	for k, v := range b.Tags {
		cp.Tags[k] = v
	}
	return &cp, nil
}

func (f *FakeBuckets) DeleteBucket(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteBucket"); err != nil {
		return err
	}
	if _, ok := f.buckets[name]; !ok {
		return notFound()
	}
	delete(f.buckets, name)
	return nil
}

func (f *FakeBuckets) ListBuckets(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListBuckets"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.buckets))
	for name := range f.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FakeBuckets) PutVersioning(_ context.Context, name string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PutVersioning"); err != nil {
		return err
	}
	b, ok := f.buckets[name]
	if !ok {
		return notFound()
	}
	b.Versioning = enabled
	return nil
}

func (f *FakeBuckets) PutTags(_ context.Context, name string, tags map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PutTags"); err != nil {
		return err
	}
	b, ok := f.buckets[name]
	if !ok {
		return notFound()
	}
	b.Tags = make(map[string]string, len(tags))
	for k, v := range tags {
		b.Tags[k] = v
	}
	return nil
}
