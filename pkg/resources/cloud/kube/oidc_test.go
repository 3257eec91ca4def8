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
)

const oidcPathK1 = "/cloud/project/proj/kube/k-1/openIdConnect"

func TestOIDCLifecycle(t *testing.T) {
	config := map[string]interface{}{"issuerUrl": "https://id.example.com", "clientId": "kube", "usernameClaim": "email"}
	fake := testutil.NewFakeOVH().
		On("POST", oidcPathK1, testutil.Reply(nil)).
		On("GET", oidcPathK1, testutil.Reply(config)).
		On("PUT", oidcPathK1, testutil.Reply(nil)).
		On("DELETE", oidcPathK1, testutil.Reply(nil))
	p := NewOIDCProvisioner(fake, "proj")
	ctx := context.Background()

	created, err := p.Create(ctx, &resource.CreateRequest{
		Properties: json.RawMessage(`{"kubeId":"k-1","issuerUrl":"https://id.example.com","clientId":"kube"}`),
	})
	require.NoError(t, err)
	require.Equal(t, resource.OperationStatusSuccess, created.ProgressResult.OperationStatus)
	assert.Equal(t, "proj/k-1", created.ProgressResult.NativeID)
	assert.Equal(t, map[string]interface{}{"issuerUrl": "https://id.example.com", "clientId": "kube"},
		fake.LastBody("POST", oidcPathK1))

	read, err := p.Read(ctx, &resource.ReadRequest{NativeID: "proj/k-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kubeId":"k-1","issuerUrl":"https://id.example.com","clientId":"kube","usernameClaim":"email"}`, read.Properties)

	updated, err := p.Update(ctx, &resource.UpdateRequest{
		NativeID:          "proj/k-1",
		DesiredProperties: json.RawMessage(`{"kubeId":"k-1","issuerUrl":"https://id.example.com","clientId":"kube","usernameClaim":"sub"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, updated.ProgressResult.OperationStatus)
	assert.Equal(t, "sub", fake.LastBody("PUT", oidcPathK1)["usernameClaim"])

	listed, err := p.List(ctx, &resource.ListRequest{AdditionalProperties: map[string]string{"kubeId": "k-1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj/k-1"}, listed.NativeIDs)

	deleted, err := p.Delete(ctx, &resource.DeleteRequest{NativeID: "proj/k-1"})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, deleted.ProgressResult.OperationStatus)
}

func TestOIDCMovingToAnotherClusterIsRejected(t *testing.T) {
	fake := testutil.NewFakeOVH().
		On("GET", oidcPathK1, testutil.Reply(map[string]interface{}{"issuerUrl": "https://id.example.com", "clientId": "kube"}))
	p := NewOIDCProvisioner(fake, "proj")

	updated, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          "proj/k-1",
		DesiredProperties: json.RawMessage(`{"kubeId":"k-2","issuerUrl":"https://id.example.com","clientId":"kube"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotUpdatable, updated.ProgressResult.ErrorCode)
	assert.Zero(t, fake.Calls("PUT", oidcPathK1))
}

func TestOIDCListWithoutProvider(t *testing.T) {
	p := NewOIDCProvisioner(testutil.NewFakeOVH(), "proj")

	listed, err := p.List(context.Background(), &resource.ListRequest{AdditionalProperties: map[string]string{"kubeId": "k-1"}})
	require.NoError(t, err)
	assert.Empty(t, listed.NativeIDs)
}

func TestOIDCRequiresIssuerAndClient(t *testing.T) {
	fake := testutil.NewFakeOVH()
	p := NewOIDCProvisioner(fake, "proj")

	created, err := p.Create(context.Background(), &resource.CreateRequest{Properties: json.RawMessage(`{"kubeId":"k-1"}`)})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationErrorCodeInvalidRequest, created.ProgressResult.ErrorCode)
	assert.Empty(t, fake.Requests())
}
