// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
)

func TestSubnetRegistered(t *testing.T) {
	assert.True(t, registry.HasProvisioner(ResourceTypeSubnet))
	assert.ElementsMatch(t, []string{"network_id", "cidr", "ip_version", "allocation_pools"}, SubnetDefinition.CreateOnly)
}

func TestSubnetLifecycle(t *testing.T) {
	api := newFakeNeutron("ACTIVE")
	ctx := context.Background()
	_, err := api.CreateNetwork(ctx, networksCreateOpts("backend"))
	require.NoError(t, err)
	p := NewSubnetProvisioner(api)

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{
			"network_id": "net-1",
			"cidr": "10.0.0.0/24",
			"name": "apps",
			"enable_dhcp": false,
			"dns_nameservers": ["213.186.33.99"],
			"allocation_pools": [{"start": "10.0.0.10", "end": "10.0.0.200"}],
			"tags": ["prod"]
		}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "sn-2", created.ProgressResult.NativeID)

	sn := api.subnets["sn-2"]
	assert.Equal(t, 4, sn.IPVersion)
	assert.False(t, sn.EnableDHCP)
	require.Len(t, sn.AllocationPools, 1)
	assert.Equal(t, "10.0.0.10", sn.AllocationPools[0].Start)
	assert.Equal(t, []string{"prod"}, api.tagged["subnets/sn-2"])

	var props map[string]interface{}
	require.NoError(t, json.Unmarshal(created.ProgressResult.ResourceProperties, &props))
	assert.Equal(t, "10.0.0.0/24", props["cidr"])
	assert.Equal(t, []interface{}{map[string]interface{}{"start": "10.0.0.10", "end": "10.0.0.200"}}, props["allocation_pools"])

	updated, err := p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "sn-2",
		DesiredProperties: json.RawMessage(`{"network_id":"net-1","cidr":"10.0.0.0/24","name":"apps-v2","dns_nameservers":[]}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Equal(t, "apps-v2", sn.Name)
	assert.Empty(t, sn.DNSNameservers)

	listed, err := p.List(ctx, &resource.ListRequest{AdditionalProperties: map[string]string{"network_id": "net-1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sn-2"}, listed.NativeIDs)

	listed, err = p.List(ctx, &resource.ListRequest{AdditionalProperties: map[string]string{"network_id": "net-9"}})
	require.NoError(t, err)
	assert.Empty(t, listed.NativeIDs)

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "sn-2"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)
	assert.Empty(t, api.subnets)
}

func TestSubnetCIDRChangeRejected(t *testing.T) {
	api := newFakeNeutron("ACTIVE")
	ctx := context.Background()
	_, err := api.CreateNetwork(ctx, networksCreateOpts("backend"))
	require.NoError(t, err)
	p := NewSubnetProvisioner(api)

	_, err = p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"network_id":"net-1","cidr":"10.0.0.0/24"}`),
	})
	require.NoError(t, err)

	updated, err := p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "sn-2",
		DesiredProperties: json.RawMessage(`{"network_id":"net-1","cidr":"10.1.0.0/24"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, updated.ProgressResult.ErrorCode)
	assert.Equal(t, "10.0.0.0/24", api.subnets["sn-2"].CIDR)
}

func TestSubnetNeedsNetworkAndCIDR(t *testing.T) {
	p := NewSubnetProvisioner(newFakeNeutron())

	created, err := p.Create(context.Background(), &resource.CreateRequest{
		Properties: json.RawMessage(`{"cidr":"10.0.0.0/24"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusFailure, created.ProgressResult.OperationStatus)
	assert.Equal(t, resource.OperationErrorCodeInvalidRequest, created.ProgressResult.ErrorCode)
}

func TestSubnetDeleteOfMissingSubnet(t *testing.T) {
	p := NewSubnetProvisioner(newFakeNeutron())

	deleted, err := p.Delete(context.Background(), &resource.DeleteRequest{NativeID: "sn-9"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusFailure, deleted.ProgressResult.OperationStatus)
	assert.Equal(t, resource.OperationErrorCodeNotFound, deleted.ProgressResult.ErrorCode)
}
