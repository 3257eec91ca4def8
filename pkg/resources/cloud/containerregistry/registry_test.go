// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package containerregistry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/testutil"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

const registryPath = "/cloud/project/proj/containerRegistry"

func fastPoll() testutil.PollConfig {
	return testutil.NewPollConfig().WithCheckInterval(0).WithMaxAttempts(10).Build()
}

func TestRegistryRegistered(t *testing.T) {
	assert.True(t, registry.HasProvisioner(RegistryResourceType))
	assert.True(t, registry.HasProvisioner(UserResourceType))
	assert.ElementsMatch(t, []string{"planID", "region"}, Registry.Lifecycle.CreateOnly)
}

func TestRegistryCreateUntilReady(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("POST", registryPath, testutil.Reply(map[string]interface{}{"id": "reg-1", "name": "images", "status": "INSTALLING"})).
		On("GET", registryPath+"/reg-1",
			testutil.Reply(map[string]interface{}{"id": "reg-1", "status": "INSTALLING"}),
			testutil.Reply(map[string]interface{}{"id": "reg-1", "name": "images", "region": "GRA", "status": "READY", "url": "https://x.gra7.container-registry.ovh.net"}),
		)
	p := Registry.Provisioner(fake, "proj", "")
	ctx := context.Background()

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"name":"images","region":"GRA"}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusInProgress, created.ProgressResult.OperationStatus)
	assert.Equal(t, "proj/reg-1", created.ProgressResult.NativeID)
	assert.Contains(t, created.ProgressResult.StatusMessage, "next check in 20s")

	final, err := testutil.WaitForCreate(t, ctx, p, created, nil, fastPoll())
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, final.OperationStatus)
	assert.Equal(t, 2, fake.Calls("GET", registryPath+"/reg-1"))

	var props map[string]interface{}
	require.NoError(t, json.Unmarshal(final.ResourceProperties, &props))
	assert.Equal(t, "https://x.gra7.container-registry.ovh.net", props["url"])
}

func TestRegistryRenameIsSynchronous(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", registryPath+"/reg-1", testutil.Reply(map[string]interface{}{"id": "reg-1", "name": "images", "region": "GRA", "status": "READY"})).
		On("PUT", registryPath+"/reg-1", testutil.Reply(nil))
	p := Registry.Provisioner(fake, "proj", "")

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "proj/reg-1",
		DesiredProperties: json.RawMessage(`{"name":"artifacts","region":"GRA"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Equal(t, map[string]interface{}{"name": "artifacts"}, fake.LastBody("PUT", registryPath+"/reg-1"))
}

func TestRegistryDeleteUntilGone(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("DELETE", registryPath+"/reg-1", testutil.Reply(nil)).
		On("GET", registryPath+"/reg-1", testutil.Reply(map[string]interface{}{"id": "reg-1", "status": "DELETING"}))
	p := Registry.Provisioner(fake, "proj", "")
	ctx := context.Background()

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "proj/reg-1"})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusInProgress, deleted.ProgressResult.OperationStatus)

	// The registry reports DELETING once, then disappears.
	fake.On("GET", registryPath+"/reg-1", testutil.Fail(ovhtransport.ErrorCodeResourceNotFound, 404, "not found"))
	final, err := testutil.WaitForDelete(t, ctx, p, deleted, nil, fastPoll())
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, final.OperationStatus)
}

func TestUserCreateIsSynchronous(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("POST", registryPath+"/reg-1/users", testutil.Reply(map[string]interface{}{
			"id": float64(7), "user": "ci", "email": "ci@example.com", "password": "s3cret",
		}))
	p := User.Provisioner(fake, "proj", "")

	created, err := p.Create(context.Background(), &resource.CreateRequest{
		Properties: json.RawMessage(`{"registryId":"reg-1","login":"ci","email":"ci@example.com"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "proj/reg-1/7", created.ProgressResult.NativeID)
	assert.NotContains(t, fake.LastBody("POST", registryPath+"/reg-1/users"), "registryId")
}

func TestUserCannotBeUpdated(t *testing.T) {
	fake := testutil.NewFakeOVH()
	p := User.Provisioner(fake, "proj", "")

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "proj/reg-1/7",
		DesiredProperties: json.RawMessage(`{"registryId":"reg-1","login":"ci","email":"new@example.com"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, updated.ProgressResult.ErrorCode)
	assert.Empty(t, fake.Requests())
}
