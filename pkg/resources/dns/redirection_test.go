// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package dns

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

const redirectionPath = "/domain/zone/example.com/redirection"

func TestRedirectionLifecycle(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("POST", redirectionPath, testutil.Reply(map[string]interface{}{
			"id": 981, "subDomain": "blog", "type": "visiblePermanent", "target": "https://blog.example.org",
		})).
		On("GET", redirectionPath+"/981", testutil.Reply(map[string]interface{}{
			"id": 981, "subDomain": "blog", "type": "visiblePermanent", "target": "https://blog.example.org",
		})).
		On("PUT", redirectionPath+"/981", testutil.Reply(nil)).
		On("DELETE", redirectionPath+"/981", testutil.Reply(nil)).
		On("POST", refreshPath, testutil.Reply(nil))
	p := Redirection.Provisioner(fake, "", "")
	ctx := context.Background()

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"zone":"example.com","subDomain":"blog","type":"visiblePermanent","target":"https://blog.example.org"}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "example.com/981", created.ProgressResult.NativeID)
	assert.NotContains(t, fake.LastBody("POST", redirectionPath), "zone")

	updated, err := p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "example.com/981",
		DesiredProperties: json.RawMessage(`{"zone":"example.com","subDomain":"blog","type":"visiblePermanent","target":"https://example.org/blog"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Equal(t, map[string]interface{}{"target": "https://example.org/blog"}, fake.LastBody("PUT", redirectionPath+"/981"))

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "example.com/981"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)

	assert.Equal(t, 3, fake.Calls("POST", refreshPath))
}

func TestRedirectionTypeIsCreateOnly(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", redirectionPath+"/981", testutil.Reply(map[string]interface{}{
			"id": 981, "subDomain": "blog", "type": "visiblePermanent", "target": "https://blog.example.org",
		}))
	p := Redirection.Provisioner(fake, "", "")

	result, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "example.com/981",
		DesiredProperties: json.RawMessage(`{"zone":"example.com","type":"invisible","target":"https://blog.example.org"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, result.ProgressResult.ErrorCode)
	assert.Equal(t, 0, fake.Calls("PUT", redirectionPath+"/981"))
}

func TestRedirectionDuplicateIsAlreadyExists(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("POST", redirectionPath, testutil.Fail(ovhtransport.ErrorCodeAlreadyExists, 409, "redirection exists"))
	p := Redirection.Provisioner(fake, "", "")

	result, err := p.Create(context.Background(), &resource.CreateRequest{
		Properties: json.RawMessage(`{"zone":"example.com","type":"visible","target":"https://example.org"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeAlreadyExists, result.ProgressResult.ErrorCode)
}
