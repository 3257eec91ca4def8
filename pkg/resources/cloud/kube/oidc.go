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

// OIDCResourceType is the resource type for the OpenID Connect provider of
// a cluster. A cluster has at most one.
const OIDCResourceType = "OVH::Kube::Oidc"

var (
	OIDCDescriptor = plugin.ResourceDescriptor{
		Type:         OIDCResourceType,
		Discoverable: true,
	}

	OIDCSchema = model.Schema{
		Identifier:   "kubeId",
		Discoverable: true,
		Fields: []string{
			"kubeId", "issuerUrl", "clientId", "usernameClaim", "usernamePrefix",
			"groupsClaim", "groupsPrefix", "requiredClaim", "signingAlgorithms", "caContent",
		},
		Hints: map[string]model.FieldHint{
			"kubeId":    {Required: true, CreateOnly: true},
			"issuerUrl": {Required: true},
			"clientId":  {Required: true},
		},
	}
)

var OIDCDefinition = lifecycle.Definition{
	ResourceType: OIDCResourceType,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   ovhtransport.NewClassifier(),
	Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
		if op == lifecycle.OperationCreate && (m.String("kubeId") == "" || m.String("issuerUrl") == "" || m.String("clientId") == "") {
			return errors.New("kubeId, issuerUrl and clientId must be present")
		}
		return nil
	},
	SupportsUpdate: true,
	CreateOnly:     registry.CreateOnlyFields(OIDCSchema),
}

func oidcPath(project, kubeID string) string {
	return fmt.Sprintf("/cloud/project/%s/kube/%s/openIdConnect", project, kubeID)
}

// NewOIDCProvisioner builds the formae provisioner over client.
func NewOIDCProvisioner(client base.Doer, project string, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(OIDCDefinition, &cloud.SingletonRemote{
		ResourceType:   OIDCResourceType,
		ParentProperty: "kubeId",
		Path:           oidcPath,
		Client:         client,
		Project:        project,
	}, opts...))
}

func init() {
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
