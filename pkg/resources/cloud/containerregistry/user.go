// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package containerregistry

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// UserResourceType is the resource type for registry users.
const UserResourceType = "OVH::Registry::User"

var UserSchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields:       []string{"registryId", "login", "email"},
	Hints: map[string]model.FieldHint{
		"registryId": {Required: true, CreateOnly: true},
		"login":      {Required: true, CreateOnly: true},
		"email":      {Required: true, CreateOnly: true},
	},
}

// User describes a Harbor user. The API answers synchronously and the
// generated password is only returned by the create call.
// Path: /cloud/project/{serviceName}/containerRegistry/{registryId}/users/{userId}
var User = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: UserResourceType,
		Budget:       lifecycle.BudgetPolicy{Limit: 1},
		Classifier:   ovhtransport.NewClassifier(),
		Validate: func(_ lifecycle.Operation, m lifecycle.Model) error {
			if m.NativeID == "" && (m.String("registryId") == "" || m.String("login") == "") {
				return errors.New("either a native id, or both registryId and login, must be present")
			}
			return nil
		},
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.NestedNativeID,
	Resource: base.ResourceConfig{
		PathSegment: "users",
		ParentResource: &base.ParentResourceConfig{
			ParentType:   "containerRegistry",
			PropertyName: "registryId",
		},
		UpdateMethod: base.UpdateMethodNone,
	},
	Operations: base.OperationConfig{
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
}

func init() {
	registry.RegisterREST(User, UserSchema)
}
