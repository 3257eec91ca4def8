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
)

func TestFloatingIPAssociateAndRelease(t *testing.T) {
	api := newFakeNeutron()
	ctx := context.Background()
	p := NewFloatingIPProvisioner(api)

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"floating_network_id":"ext-net","description":"web"}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "fip-1", created.ProgressResult.NativeID)

	updated, err := p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "fip-1",
		DesiredProperties: json.RawMessage(`{"floating_network_id":"ext-net","port_id":"port-7","fixed_ip_address":"10.0.0.5"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	var props map[string]interface{}
	require.NoError(t, json.Unmarshal(updated.ProgressResult.ResourceProperties, &props))
	assert.Equal(t, "port-7", props["port_id"])
	assert.Equal(t, "ACTIVE", props["status"])

	updated, err = p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "fip-1",
		DesiredProperties: json.RawMessage(`{"floating_network_id":"ext-net"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Empty(t, api.fips["fip-1"].PortID)

	listed, err := p.List(ctx, &resource.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"fip-1"}, listed.NativeIDs)

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "fip-1"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)
	assert.Empty(t, api.fips)
}

func TestFloatingIPNeedsExternalNetwork(t *testing.T) {
	p := NewFloatingIPProvisioner(newFakeNeutron())

	created, err := p.Create(context.Background(), &resource.CreateRequest{Properties: json.RawMessage(`{"port_id":"port-7"}`)})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeInvalidRequest, created.ProgressResult.ErrorCode)
}
