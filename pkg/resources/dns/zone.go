// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package dns

import (
	"fmt"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// ZoneResourceType is the resource type for DNS zones.
const ZoneResourceType = "OVH::DNS::Zone"

var ZoneSchema = model.Schema{
	Identifier:   "name",
	Discoverable: true,
	Fields:       []string{"name", "nameServers", "dnssecSupported", "hasDnsAnycast", "lastUpdate"},
	Hints: map[string]model.FieldHint{
		"name": {Required: true, CreateOnly: true},
	},
}

// ZoneAPI addresses zones by name.
var ZoneAPI = base.APIConfig{
	PathBuilder: zonePathBuilder,
}

// Zone describes a DNS zone. Zones come with a domain order, so they can be
// read and discovered but neither created nor removed.
// Path: /domain/zone/{zone}
var Zone = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: ZoneResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:  lifecycle.BudgetAttempts,
			Limit: 1,
		},
		Classifier: ovhtransport.NewClassifier(),
		Validate:   validateZone,
	},
	API:      ZoneAPI,
	NativeID: base.NativeIDConfig{Format: base.SimpleNameFormat},
}

func zonePathBuilder(ctx base.PathContext) string {
	if ctx.ResourceName == "" {
		return "/domain/zone"
	}
	return "/domain/zone/" + ctx.ResourceName
}

func validateZone(op lifecycle.Operation, _ lifecycle.Model) error {
	switch op {
	case lifecycle.OperationCreate:
		return fmt.Errorf("%s cannot be created, order the domain instead", ZoneResourceType)
	case lifecycle.OperationDelete:
		return fmt.Errorf("%s cannot be deleted, terminate the domain instead", ZoneResourceType)
	}
	return nil
}

func init() {
	registry.RegisterREST(Zone, ZoneSchema)
}
