// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
)

func networksCreateOpts(name string) networks.CreateOpts {
	return networks.CreateOpts{Name: name}
}

func TestSecurityGroupRegistered(t *testing.T) {
	assert.True(t, registry.HasProvisioner(ResourceTypeSecurityGroup))
}

func TestSecurityGroupLifecycle(t *testing.T) {
	api := newFakeNeutron()
	p := NewSecurityGroupProvisioner(api)
	ctx := context.Background()

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"name":"web","description":"http","tags":["edge"]}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "sg-1", created.ProgressResult.NativeID)
	assert.Equal(t, []string{"edge"}, api.tagged["security-groups/sg-1"])

	updated, err := p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "sg-1",
		DesiredProperties: json.RawMessage(`{"name":"web","description":"https"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Equal(t, "https", api.groups["sg-1"].Description)

	read, err := p.Read(ctx, &resource.ReadRequest{NativeID: "sg-1"})
	require.NoError(t, err)
	var props map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(read.Properties), &props))
	assert.Equal(t, "web", props["name"])

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "sg-1"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)
}

func TestSecurityGroupRenameRejected(t *testing.T) {
	api := newFakeNeutron()
	p := NewSecurityGroupProvisioner(api)
	ctx := context.Background()

	_, err := p.Create(ctx, &resource.CreateRequest{Properties: json.RawMessage(`{"name":"web"}`)})
	require.NoError(t, err)

	updated, err := p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "sg-1",
		DesiredProperties: json.RawMessage(`{"name":"api"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, updated.ProgressResult.ErrorCode)
}

func TestSecurityGroupRequiresName(t *testing.T) {
	api := newFakeNeutron()
	p := NewSecurityGroupProvisioner(api)

	created, err := p.Create(context.Background(), &resource.CreateRequest{Properties: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeInvalidRequest, created.ProgressResult.ErrorCode)
	assert.Empty(t, api.groups)
}
