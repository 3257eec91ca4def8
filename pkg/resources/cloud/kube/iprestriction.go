// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package kube

import (
	"errors"
	"fmt"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// IPRestrictionResourceType is the resource type for one CIDR allowed to
// reach a cluster API server.
const IPRestrictionResourceType = "OVH::Kube::IpRestriction"

var (
	IPRestrictionDescriptor = plugin.ResourceDescriptor{
		Type:         IPRestrictionResourceType,
		Discoverable: true,
	}

	IPRestrictionSchema = model.Schema{
		Identifier:   "ip",
		Discoverable: true,
		Fields:       []string{"kubeId", "ip"},
		Hints: map[string]model.FieldHint{
			"kubeId": {Required: true, CreateOnly: true},
			"ip":     {Required: true, CreateOnly: true},
		},
	}
)

// IPRestrictions is the allow list of a cluster. The API reads it as a
// list of CIDRs and replaces it with {"ips": [...]}.
// Path: /cloud/project/{serviceName}/kube/{kubeId}/ipRestrictions
var IPRestrictions = &cloud.RestrictionList{
	ResourceType:   IPRestrictionResourceType,
	ParentProperty: "kubeId",
	KeyField:       "ip",
	Path: func(project, kubeID, _ string) string {
		return fmt.Sprintf("/cloud/project/%s/kube/%s/ipRestrictions", project, kubeID)
	},
	Encode: func(entries []map[string]interface{}) interface{} {
		ips := make([]interface{}, 0, len(entries))
		for _, e := range entries {
			ips = append(ips, e["ip"])
		}
		return map[string]interface{}{"ips": ips}
	},
}

var IPRestrictionDefinition = lifecycle.Definition{
	ResourceType: IPRestrictionResourceType,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   ovhtransport.NewClassifier(),
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op == lifecycle.OperationCreate && (m.String("kubeId") == "" || m.String("ip") == "") {
			return errors.New("kubeId and ip must be present")
		}
		return nil
	},
	IdempotentDelete: true,
	CreateOnly:       registry.CreateOnlyFields(IPRestrictionSchema),
}

// NewIPRestrictionProvisioner builds the formae provisioner over client.
func NewIPRestrictionProvisioner(client base.Doer, project string, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(IPRestrictionDefinition,
		&cloud.RestrictionRemote{List: IPRestrictions, Client: client, Project: project}, opts...))
}

func init() {
	registry.Register(
		IPRestrictionResourceType,
		IPRestrictionDescriptor,
		IPRestrictionSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			doer, err := c.OVH()
			if err != nil {
				return nil, err
			}
			return NewIPRestrictionProvisioner(doer, c.Config.ProjectID, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
