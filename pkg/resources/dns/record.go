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

// RecordResourceType is the resource type for DNS zone records.
const RecordResourceType = "OVH::DNS::Record"

var RecordSchema = model.Schema{
	Identifier:   "id",
	Discoverable: false,
	Fields:       []string{"zone", "fieldType", "subDomain", "target", "ttl"},
	Hints: map[string]model.FieldHint{
		"zone":      {Required: true, CreateOnly: true},
		"fieldType": {Required: true, CreateOnly: true},
		"target":    {Required: true},
	},
}

// Record describes a DNS record. Every change is applied with a zone refresh.
// Path: /domain/zone/{zone}/record/{id}
var Record = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: RecordResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetAttempts,
			Limit:        10,
			InitialDelay: 15,
			PollDelay:    15,
		},
		Classifier:     ovhtransport.NewClassifier(),
		Validate:       validateRecord,
		SupportsUpdate: true,
	},
	API:      DNSAPI,
	NativeID: DNSNativeID,
	Resource: base.ResourceConfig{
		PathSegment:   "record",
		ZoneProperty:  "zone",
		UpdateMethod:  base.UpdateMethodPut,
		MutableFields: []string{"subDomain", "target", "ttl"},
	},
	Operations: base.OperationConfig{
		PostMutationHook: refreshAfterMutation,
	},
}

func validateRecord(_ lifecycle.Operation, m lifecycle.Model) error {
	if m.NativeID != "" {
		return nil
	}
	if m.String("zone") == "" || m.String("fieldType") == "" || m.String("target") == "" {
		return errors.New("either a native id, or zone, fieldType and target must be present")
	}
	return nil
}

func init() {
	registry.RegisterREST(Record, RecordSchema)
}
