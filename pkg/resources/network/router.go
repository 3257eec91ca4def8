// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package network

import (
	"context"

	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/routers"
	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
)

const (
	ResourceTypeRouter = "OVH::Network::Router"
)

// Router schema and descriptor
var (
	RouterDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeRouter,
		Discoverable: true,
	}

	RouterSchema = model.Schema{
		Identifier:   "id",
		Discoverable: true,
		Fields:       []string{"name", "description", "admin_state_up", "external_gateway_info", "routes", "tags"},
	}
)

// RouterDefinition describes Neutron routers. A router with an external
// gateway may take a moment to leave BUILD.
var RouterDefinition = lifecycle.Definition{
	ResourceType: ResourceTypeRouter,
	Budget: lifecycle.BudgetPolicy{
		Mode:         lifecycle.BudgetAttempts,
		Limit:        20,
		InitialDelay: 5,
		PollDelay:    5,
	},
	Classifier: openstack.NewClassifier(),
	ClassifyStatus: lifecycle.StatusMap{
		Ready:  []string{"ACTIVE"},
		Failed: []string{"ERROR"},
	}.Classify,
	IdempotentDelete: true,
	SupportsUpdate:   true,
}

// RouterRemote translates router models to Neutron calls.
type RouterRemote struct {
	API NeutronAPI
}

var _ lifecycle.Remote = (*RouterRemote)(nil)

// NewRouterProvisioner builds the formae provisioner for routers backed by api.
func NewRouterProvisioner(api NeutronAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(RouterDefinition, &RouterRemote{API: api}, opts...))
}

func (r *RouterRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := routers.CreateOpts{
		Name:        resources.String(props, "name"),
		Description: resources.String(props, "description"),
		GatewayInfo: gatewayInfo(props),
	}
	if up, ok := resources.Bool(props, "admin_state_up"); ok {
		opts.AdminStateUp = &up
	}

	router, err := r.API.CreateRouter(ctx, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	// Static routes can only be set once the router exists.
	if routes, ok := staticRoutes(props); ok && len(routes) > 0 {
		if router, err = r.API.UpdateRouter(ctx, router.ID, routers.UpdateOpts{Routes: &routes}); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	if tags := resources.Strings(props, "tags"); len(tags) > 0 {
		if router.Tags, err = r.API.ReplaceTags(ctx, "routers", router.ID, tags); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	return observeRouter(router), nil
}

// Update applies every mutable field. Neutron applies them synchronously.
func (r *RouterRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	props := desired.Properties
	opts := routers.UpdateOpts{
		Name:        resources.String(props, "name"),
		GatewayInfo: gatewayInfo(props),
	}
	if _, ok := props["description"]; ok {
		description := resources.String(props, "description")
		opts.Description = &description
	}
	if up, ok := resources.Bool(props, "admin_state_up"); ok {
		opts.AdminStateUp = &up
	}
	if routes, ok := staticRoutes(props); ok {
		opts.Routes = &routes
	}

	router, err := r.API.UpdateRouter(ctx, desired.NativeID, opts)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, ok := props["tags"]; ok {
		if router.Tags, err = r.API.ReplaceTags(ctx, "routers", desired.NativeID, resources.Strings(props, "tags")); err != nil {
			return lifecycle.Observation{}, err
		}
	}
	obs := observeRouter(router)
	obs.Status = ""
	return obs, nil
}

func (r *RouterRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.DeleteRouter(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *RouterRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	router, err := r.API.GetRouter(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeRouter(router), nil
}

func (r *RouterRemote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	list, err := r.API.ListRouters(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, router := range list {
		ids = append(ids, router.ID)
	}
	return ids, nil
}

func gatewayInfo(props map[string]interface{}) *routers.GatewayInfo {
	info, ok := props["external_gateway_info"].(map[string]interface{})
	if !ok {
		return nil
	}
	gw := &routers.GatewayInfo{NetworkID: resources.String(info, "network_id")}
	if snat, ok := resources.Bool(info, "enable_snat"); ok {
		gw.EnableSNAT = &snat
	}
	return gw
}

// staticRoutes reports whether routes was set, and its entries.
func staticRoutes(props map[string]interface{}) ([]routers.Route, bool) {
	raw, ok := props["routes"].([]interface{})
	if !ok {
		return nil, false
	}
	routes := make([]routers.Route, 0, len(raw))
	for _, item := range raw {
		route, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		routes = append(routes, routers.Route{
			DestinationCIDR: resources.String(route, "destination"),
			NextHop:         resources.String(route, "nexthop"),
		})
	}
	return routes, true
}

func observeRouter(router *routers.Router) lifecycle.Observation {
	props := map[string]interface{}{
		"id":             router.ID,
		"name":           router.Name,
		"description":    router.Description,
		"admin_state_up": router.AdminStateUp,
	}
	// OVH sets enable_snat and the external addresses itself.
	if router.GatewayInfo.NetworkID != "" {
		props["external_gateway_info"] = map[string]interface{}{"network_id": router.GatewayInfo.NetworkID}
	}
	if len(router.Routes) > 0 {
		routes := make([]interface{}, 0, len(router.Routes))
		for _, route := range router.Routes {
			routes = append(routes, map[string]interface{}{"destination": route.DestinationCIDR, "nexthop": route.NextHop})
		}
		props["routes"] = routes
	}
	if len(router.Tags) > 0 {
		props["tags"] = router.Tags
	}
	return lifecycle.Observation{NativeID: router.ID, Status: router.Status, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypeRouter,
		RouterDescriptor,
		RouterSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewRouterProvisioner(&neutron{client: c}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
