// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package compute holds the Public Cloud compute resources that are managed
// through the OVH API rather than OpenStack.
package compute

import (
	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// SSHKeyResourceType is the resource type for project SSH keys.
const SSHKeyResourceType = "OVH::Compute::SSHKey"

var SSHKeySchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields:       []string{"name", "publicKey", "region"},
	Hints: map[string]model.FieldHint{
		"name":      {Required: true, CreateOnly: true},
		"publicKey": {Required: true, CreateOnly: true},
		"region":    {CreateOnly: true},
	},
}

// SSHKey describes a public key registered with the project.
// Path: /cloud/project/{serviceName}/sshkey/{keyId}
var SSHKey = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: SSHKeyResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:  lifecycle.BudgetAttempts,
			Limit: 1,
		},
		Classifier:       ovhtransport.NewClassifier(),
		IdempotentDelete: true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.CloudNativeID,
	Resource: base.ResourceConfig{
		PathSegment: "sshkey",
	},
	Operations: base.OperationConfig{
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
}

func init() {
	registry.RegisterREST(SSHKey, SSHKeySchema)
}
