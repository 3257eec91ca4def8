// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package dns

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// RedirectionResourceType is the resource type for web redirections of a
// zone.
const RedirectionResourceType = "OVH::DNS::Redirection"

var RedirectionSchema = model.Schema{
	Identifier:   "id",
	Discoverable: false,
	Fields:       []string{"zone", "subDomain", "target", "type", "title", "keywords", "description"},
	Hints: map[string]model.FieldHint{
		"zone":      {Required: true, CreateOnly: true},
		"subDomain": {CreateOnly: true},
		"type":      {Required: true, CreateOnly: true},
		"target":    {Required: true},
	},
}

// Redirection describes a visible or invisible web redirection.
// Path: /domain/zone/{zone}/redirection/{id}
var Redirection = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: RedirectionResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetAttempts,
			Limit:        10,
			InitialDelay: 15,
			PollDelay:    15,
		},
		Classifier:     ovhtransport.NewClassifier(),
		Validate:       validateRedirection,
		SupportsUpdate: true,
	},
	API:      DNSAPI,
	NativeID: DNSNativeID,
	Resource: base.ResourceConfig{
		PathSegment:   "redirection",
		ZoneProperty:  "zone",
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"target", "title", "keywords", "description"},
	},
	Operations: base.OperationConfig{
		PostMutationHook: refreshAfterMutation,
	},
}

func validateRedirection(_ lifecycle.Operation, m lifecycle.Model) error {
	if m.NativeID != "" {
		return nil
	}
	if m.String("zone") == "" || m.String("type") == "" || m.String("target") == "" {
		return errors.New("either a native id, or zone, type and target must be present")
	}
	return nil
}

func init() {
	registry.RegisterREST(Redirection, RedirectionSchema)
}
