// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package kube

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/testutil"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

const ipRestrictionsPath = "/cloud/project/proj/kube/k-1/ipRestrictions"

func TestIPRestrictionLifecycle(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", ipRestrictionsPath,
			testutil.Reply([]string{"10.0.0.0/8"}),
			testutil.Reply([]string{"10.0.0.0/8", "192.168.1.0/24"}),
			testutil.Reply([]string{"10.0.0.0/8", "192.168.1.0/24"}),
			testutil.Reply([]string{"10.0.0.0/8"}),
		).
		On("PUT", ipRestrictionsPath, testutil.Reply(nil))
	p := NewIPRestrictionProvisioner(fake, "proj")
	ctx := context.Background()

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"kubeId":"k-1","ip":"192.168.1.0/24"}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "proj/k-1/192.168.1.0/24", created.ProgressResult.NativeID)
	assert.Equal(t, map[string]interface{}{"ips": []interface{}{"10.0.0.0/8", "192.168.1.0/24"}},
		fake.LastBody("PUT", ipRestrictionsPath))

	read, err := p.Read(ctx, &resource.ReadRequest{NativeID: "proj/k-1/192.168.1.0/24"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kubeId":"k-1","ip":"192.168.1.0/24"}`, read.Properties)

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "proj/k-1/192.168.1.0/24"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)
	assert.Equal(t, map[string]interface{}{"ips": []interface{}{"10.0.0.0/8"}},
		fake.LastBody("PUT", ipRestrictionsPath))

	read, err = p.Read(ctx, &resource.ReadRequest{NativeID: "proj/k-1/192.168.1.0/24"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotFound, read.ErrorCode)
}

func TestIPRestrictionAdoptsExistingEntry(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", ipRestrictionsPath, testutil.Reply([]string{"10.0.0.0/8"}))
	p := NewIPRestrictionProvisioner(fake, "proj")

	created, err := p.Create(context.Background(), &resource.CreateRequest{
		Properties: json.RawMessage(`{"kubeId":"k-1","ip":"10.0.0.0/8"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "proj/k-1/10.0.0.0/8", created.ProgressResult.NativeID)
	assert.Zero(t, fake.Calls("PUT", ipRestrictionsPath))
}

func TestIPRestrictionDeleteOfMissingClusterSucceeds(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", ipRestrictionsPath, testutil.Fail(ovhtransport.ErrorCodeResourceNotFound, 404, "cluster not found"))
	p := NewIPRestrictionProvisioner(fake, "proj")

	deleted, err := p.Delete(context.Background(), &resource.DeleteRequest{NativeID: "proj/k-1/10.0.0.0/8"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)
	assert.Zero(t, fake.Calls("PUT", ipRestrictionsPath))
}

func TestIPRestrictionListNeedsCluster(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", ipRestrictionsPath, testutil.Reply([]string{"10.0.0.0/8", "192.168.1.0/24"}))
	p := NewIPRestrictionProvisioner(fake, "proj")
	ctx := context.Background()

	listed, err := p.List(ctx, &resource.ListRequest{AdditionalProperties: map[string]string{"kubeId": "k-1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj/k-1/10.0.0.0/8", "proj/k-1/192.168.1.0/24"}, listed.NativeIDs)

	listed, err = p.List(ctx, &resource.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, listed.NativeIDs)
}

func TestIPRestrictionIsNotUpdatable(t *testing.T) {
	fake := testutil.NewFakeOVH()
	p := NewIPRestrictionProvisioner(fake, "proj")

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "proj/k-1/10.0.0.0/8",
		DesiredProperties: json.RawMessage(`{"kubeId":"k-1","ip":"10.0.0.0/8"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, updated.ProgressResult.ErrorCode)

	created, err := p.Create(context.Background(), &resource.CreateRequest{Properties: json.RawMessage(`{"kubeId":"k-1"}`)})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeInvalidRequest, created.ProgressResult.ErrorCode)
	assert.Empty(t, fake.Requests())
}
