// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/platform-engineering-labs/formae/pkg/plugin"
	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/config"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/logging"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"

	// Import resources to trigger init() registration
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/compute"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/containerregistry"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/database"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/kube"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/network"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/storage"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/compute"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/dns"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/network"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/volume"
)

// Plugin implements the Formae ResourcePlugin interface.
// The SDK automatically provides identity methods (Name, Version, Namespace)
// and schema methods (SupportedResources, SchemaForResourceType) by reading
// formae-plugin.pkl and schema/pkl/ at startup.
type Plugin struct {
	Logger  zerolog.Logger
	Metrics *lifecycle.Metrics
}

// Compile-time check: Plugin must satisfy ResourcePlugin interface.
var _ plugin.ResourcePlugin = &Plugin{}

// RateLimit returns the rate limit configuration for this plugin
func (p *Plugin) RateLimit() plugin.RateLimitConfig {
	return plugin.RateLimitConfig{
		Scope:                            plugin.RateLimitScopeNamespace,
		MaxRequestsPerSecondForNamespace: 10, // OVH throttles per application key
	}
}

// DiscoveryFilters returns declarative filters for discovery.
func (p *Plugin) DiscoveryFilters() []plugin.MatchFilter {
	return nil
}

// LabelConfig returns the label extraction configuration for discovered resources.
func (p *Plugin) LabelConfig() plugin.LabelConfig {
	return plugin.LabelConfig{
		DefaultQuery: "$.name",
		ResourceOverrides: map[string]string{
			"OVH::DNS::Record":                "$.subDomain",
			"OVH::DNS::Redirection":           "$.subDomain",
			"OVH::Database::Service":          "$.description",
			"OVH::Database::User":             "$.username",
			"OVH::Database::IpRestriction":    "$.ip",
			"OVH::Database::Integration":      "$.type",
			"OVH::Database::KafkaAcl":         "$.topic",
			"OVH::Registry::User":             "$.user",
			"OVH::Registry::IpRestriction":    "$.ipBlock",
			"OVH::Registry::Oidc":             "$.providerName",
			"OVH::Kube::IpRestriction":        "$.ip",
			"OVH::Kube::Oidc":                 "$.issuerUrl",
			"OVH::Compute::VolumeAttachment":  "$.volume_id",
			"OVH::Network::SubnetPrivate":     "$.network",
			"OVH::Network::SecurityGroupRule": "$.description",
		},
	}
}

// provisioner resolves the handler of resourceType for the target and
// returns ctx carrying a logger tagged with the request.
func (p *Plugin) provisioner(ctx context.Context, targetConfig json.RawMessage, resourceType string) (context.Context, prov.Provisioner, error) {
	cfg, err := config.FromTargetConfig(targetConfig)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to extract config from target: %w", err)
	}

	if !registry.HasProvisioner(resourceType) {
		return ctx, nil, fmt.Errorf("unsupported resource type: %s", resourceType)
	}

	ovhClient, err := client.NewClient(cfg, p.Metrics)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to create OVH client: %w", err)
	}

	provisioner, err := registry.Get(resourceType, ovhClient)
	if err != nil {
		return ctx, nil, err
	}

	if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		ctx = p.Logger.WithContext(ctx)
	}
	return logging.WithResource(ctx, resourceType), provisioner, nil
}

func (p *Plugin) Create(ctx context.Context, request *resource.CreateRequest) (*resource.CreateResult, error) {
	ctx, provisioner, err := p.provisioner(ctx, request.TargetConfig, request.ResourceType)
	if err != nil {
		return nil, err
	}
	return provisioner.Create(ctx, request)
}

func (p *Plugin) Read(ctx context.Context, request *resource.ReadRequest) (*resource.ReadResult, error) {
	ctx, provisioner, err := p.provisioner(ctx, request.TargetConfig, request.ResourceType)
	if err != nil {
		return nil, err
	}
	return provisioner.Read(ctx, request)
}

func (p *Plugin) Update(ctx context.Context, request *resource.UpdateRequest) (*resource.UpdateResult, error) {
	ctx, provisioner, err := p.provisioner(ctx, request.TargetConfig, request.ResourceType)
	if err != nil {
		return nil, err
	}
	return provisioner.Update(ctx, request)
}

func (p *Plugin) Delete(ctx context.Context, request *resource.DeleteRequest) (*resource.DeleteResult, error) {
	ctx, provisioner, err := p.provisioner(ctx, request.TargetConfig, request.ResourceType)
	if err != nil {
		return nil, err
	}
	return provisioner.Delete(ctx, request)
}

func (p *Plugin) Status(ctx context.Context, request *resource.StatusRequest) (*resource.StatusResult, error) {
	ctx, provisioner, err := p.provisioner(ctx, request.TargetConfig, request.ResourceType)
	if err != nil {
		return nil, err
	}
	return provisioner.Status(ctx, request)
}

func (p *Plugin) List(ctx context.Context, request *resource.ListRequest) (*resource.ListResult, error) {
	ctx, provisioner, err := p.provisioner(ctx, request.TargetConfig, request.ResourceType)
	if err != nil {
		return nil, err
	}
	return provisioner.List(ctx, request)
}
