// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package containerregistry

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

const (
	// IPRestrictionResourceType is one CIDR allowed to reach either the
	// Harbor UI and API (management) or the image endpoint (registry).
	IPRestrictionResourceType = "OVH::Registry::IpRestriction"
	// OIDCResourceType is the OpenID Connect provider of a registry.
	OIDCResourceType = "OVH::Registry::Oidc"
)

var (
	IPRestrictionDescriptor = plugin.ResourceDescriptor{
		Type:         IPRestrictionResourceType,
		Discoverable: true,
	}

	IPRestrictionSchema = model.Schema{
		Identifier:   "ipBlock",
		Discoverable: true,
		Fields:       []string{"registryId", "type", "ipBlock", "description"},
		Hints: map[string]model.FieldHint{
			"registryId": {Required: true, CreateOnly: true},
			"type":       {Required: true, CreateOnly: true},
			"ipBlock":    {Required: true, CreateOnly: true},
		},
	}

	OIDCDescriptor = plugin.ResourceDescriptor{
		Type:         OIDCResourceType,
		Discoverable: true,
	}

	OIDCSchema = model.Schema{
		Identifier:   "registryId",
		Discoverable: true,
		Fields: []string{
			"registryId", "providerName", "endpoint", "clientId", "clientSecret",
			"scope", "groupsClaim", "adminGroup", "userClaim", "verifyCert", "autoOnboard",
		},
		Hints: map[string]model.FieldHint{
			"registryId":   {Required: true, CreateOnly: true},
			"providerName": {Required: true},
			"endpoint":     {Required: true},
			"clientId":     {Required: true},
			"clientSecret": {Required: true},
			"scope":        {Required: true},
		},
	}
)

// IPRestrictions holds the two allow lists of a registry.
// Path: /cloud/project/{serviceName}/containerRegistry/{registryId}/ipRestrictions/{type}
var IPRestrictions = &cloud.RestrictionList{
	ResourceType:   IPRestrictionResourceType,
	ParentProperty: "registryId",
	KeyField:       "ipBlock",
	Kinds:          []string{"management", "registry"},
	Mutable:        []string{"description"},
	Path: func(project, registryID, kind string) string {
		return fmt.Sprintf("/cloud/project/%s/containerRegistry/%s/ipRestrictions/%s", project, registryID, kind)
	},
}

var IPRestrictionDefinition = lifecycle.Definition{
	ResourceType: IPRestrictionResourceType,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   ovhtransport.NewClassifier(),
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op == lifecycle.OperationCreate && (m.String("registryId") == "" || m.String("type") == "" || m.String("ipBlock") == "") {
			return errors.New("registryId, type and ipBlock must be present")
		}
		return nil
	},
	IdempotentDelete: true,
	SupportsUpdate:   true,
	CreateOnly:       registry.CreateOnlyFields(IPRestrictionSchema),
}

var OIDCDefinition = lifecycle.Definition{
	ResourceType: OIDCResourceType,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   ovhtransport.NewClassifier(),
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op != lifecycle.OperationCreate {
			return nil
		}
		for _, f := range []string{"registryId", "providerName", "endpoint", "clientId", "clientSecret", "scope"} {
			if m.String(f) == "" {
				return fmt.Errorf("%s must be present", f)
			}
		}
		return nil
	},
	SupportsUpdate: true,
	CreateOnly:     registry.CreateOnlyFields(OIDCSchema),
}

// NewIPRestrictionProvisioner builds the formae provisioner over client.
func NewIPRestrictionProvisioner(client base.Doer, project string, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(IPRestrictionDefinition,
		&cloud.RestrictionRemote{List: IPRestrictions, Client: client, Project: project}, opts...))
}

// NewOIDCProvisioner builds the formae provisioner over client. The client
// secret is never returned by the API.
func NewOIDCProvisioner(client base.Doer, project string, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(OIDCDefinition, &cloud.SingletonRemote{
		ResourceType:   OIDCResourceType,
		ParentProperty: "registryId",
		Path: func(project, registryID string) string {
			return fmt.Sprintf("/cloud/project/%s/containerRegistry/%s/openIdConnect", project, registryID)
		},
		WriteOnly: []string{"clientSecret"},
		Client:    client,
		Project:   project,
	}, opts...))
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
	registry.Register(
		OIDCResourceType,
		OIDCDescriptor,
		OIDCSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			doer, err := c.OVH()
			if err != nil {
				return nil, err
			}
			return NewOIDCProvisioner(doer, c.Config.ProjectID, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
