// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/mtu"
	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/testutil"
)

func fastPoll() testutil.PollConfig {
	return testutil.NewPollConfig().WithCheckInterval(0).WithMaxAttempts(10).Build()
}

func TestNetworkRegistered(t *testing.T) {
	assert.True(t, registry.HasProvisioner(ResourceTypeNetwork))
	assert.ElementsMatch(t, []string{"description", "mtu", "shared"}, NetworkDefinition.CreateOnly)
}

func TestNetworkCreateWaitsForActive(t *testing.T) {
	api := newFakeNeutron("BUILD", "ACTIVE")
	p := NewNetworkProvisioner(api)
	ctx := context.Background()

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"name":"backend","mtu":1450,"tags":["prod"]}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusInProgress, created.ProgressResult.OperationStatus)
	assert.Equal(t, "net-1", created.ProgressResult.NativeID)

	require.Len(t, api.created, 1)
	ext, ok := api.created[0].(mtu.CreateOptsExt)
	require.True(t, ok)
	assert.Equal(t, 1450, ext.MTU)
	assert.Equal(t, []string{"prod"}, api.tagged["networks/net-1"])

	final, err := testutil.WaitForCreate(t, ctx, p, created, nil, fastPoll())
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, final.OperationStatus)

	var props map[string]interface{}
	require.NoError(t, json.Unmarshal(final.ResourceProperties, &props))
	assert.Equal(t, float64(1450), props["mtu"])
	assert.Equal(t, []interface{}{"prod"}, props["tags"])
}

func TestNetworkCreateError(t *testing.T) {
	api := newFakeNeutron("ERROR")
	p := NewNetworkProvisioner(api)
	ctx := context.Background()

	created, err := p.Create(ctx, &resource.CreateRequest{Properties: json.RawMessage(`{"name":"backend"}`)})
	require.NoError(t, err)

	final, err := testutil.WaitForCreate(t, ctx, p, created, nil, fastPoll())
	require.Error(t, err)
	assert.Equal(t, resource.OperationStatusFailure, final.OperationStatus)
}

func TestNetworkUpdateIsSynchronous(t *testing.T) {
	api := newFakeNeutron("ACTIVE")
	_, err := api.CreateNetwork(context.Background(), networksCreateOpts("backend"))
	require.NoError(t, err)
	p := NewNetworkProvisioner(api)

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "net-1",
		DesiredProperties: json.RawMessage(`{"name":"frontend","admin_state_up":true,"tags":[]}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Equal(t, "frontend", api.networks["net-1"].Name)
	assert.Empty(t, api.tagged["networks/net-1"])
	assert.Contains(t, api.tagged, "networks/net-1")
}

func TestNetworkDescriptionChangeRejected(t *testing.T) {
	api := newFakeNeutron("ACTIVE")
	_, err := api.CreateNetwork(context.Background(), networksCreateOpts("backend"))
	require.NoError(t, err)
	p := NewNetworkProvisioner(api)

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "net-1",
		DesiredProperties: json.RawMessage(`{"name":"backend","description":"changed"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, updated.ProgressResult.ErrorCode)
}

func TestNetworkDeleteAndList(t *testing.T) {
	api := newFakeNeutron("ACTIVE")
	ctx := context.Background()
	_, err := api.CreateNetwork(ctx, networksCreateOpts("a"))
	require.NoError(t, err)
	p := NewNetworkProvisioner(api)

	listed, err := p.List(ctx, &resource.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"net-1"}, listed.NativeIDs)

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "net-1"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)
	assert.Empty(t, api.networks)
}
