// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/testutil"
)

const containerPath = "/cloud/project/proj/storage"

func container() map[string]interface{} {
	return map[string]interface{}{
		"id":            "c-1",
		"name":          "assets",
		"region":        "GRA",
		"archive":       false,
		"containerType": "private",
	}
}

func TestContainerRegistered(t *testing.T) {
	assert.True(t, registry.HasProvisioner(ContainerResourceType))
	assert.ElementsMatch(t, []string{"archive", "name"}, Container.Lifecycle.CreateOnly)
}

func TestContainerCreateIsSynchronous(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("POST", containerPath, testutil.Reply(map[string]interface{}{"id": "c-1", "name": "assets", "region": "GRA"}))
	p := Container.Provisioner(fake, "proj", "")

	created, err := p.Create(context.Background(), &resource.CreateRequest{
		Properties: json.RawMessage(`{"name":"assets","region":"GRA7"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "proj/c-1", created.ProgressResult.NativeID)

	body := fake.LastBody("POST", containerPath)
	assert.Equal(t, "assets", body["containerName"])
	assert.Equal(t, "GRA", body["region"])
	assert.NotContains(t, body, "name")
}

func TestContainerCreateRequiresRegion(t *testing.T) {
	fake := testutil.NewFakeOVH()
	p := Container.Provisioner(fake, "proj", "")

	created, err := p.Create(context.Background(), &resource.CreateRequest{
		Properties: json.RawMessage(`{"name":"assets"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusFailure, created.ProgressResult.OperationStatus)
	assert.Equal(t, resource.OperationErrorCodeInvalidRequest, created.ProgressResult.ErrorCode)
	assert.Empty(t, fake.Requests())
}

func TestContainerUpdateSendsOnlyType(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", containerPath+"/c-1", testutil.Reply(container())).
		On("PUT", containerPath+"/c-1", testutil.Reply(nil))
	p := Container.Provisioner(fake, "proj", "")

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "proj/c-1",
		DesiredProperties: json.RawMessage(`{"name":"assets","region":"GRA7","containerType":"public"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Equal(t, map[string]interface{}{"containerType": "public"}, fake.LastBody("PUT", containerPath+"/c-1"))
}

func TestContainerRenameRejected(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", containerPath+"/c-1", testutil.Reply(container()))
	p := Container.Provisioner(fake, "proj", "")

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "proj/c-1",
		DesiredProperties: json.RawMessage(`{"name":"media","region":"GRA7"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, updated.ProgressResult.ErrorCode)
	assert.Zero(t, fake.Calls("PUT", containerPath+"/c-1"))
}

func TestContainerDeleteAndList(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("DELETE", containerPath+"/c-1", testutil.Reply(nil)).
		On("GET", containerPath, testutil.Reply([]interface{}{container()}))
	p := Container.Provisioner(fake, "proj", "")
	ctx := context.Background()

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "proj/c-1"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)

	listed, err := p.List(ctx, &resource.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj/c-1"}, listed.NativeIDs)
}
