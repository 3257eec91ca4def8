// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package dns

import (
	"context"
	"fmt"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// DNSAPI defines the API configuration for OVH DNS
var DNSAPI = base.APIConfig{
	PathBuilder: dnsPathBuilder,
}

// DNSNativeID defines native ID format: "zone/recordId"
var DNSNativeID = base.NativeIDConfig{
	Format: base.HierarchicalFormat,
}

// dnsPathBuilder builds paths for DNS resources
func dnsPathBuilder(ctx base.PathContext) string {
	// /domain/zone/{zoneName}/{resourceType}/{id}
	path := fmt.Sprintf("/domain/zone/%s/%s", ctx.Zone, ctx.ResourceType)
	if ctx.ResourceName != "" {
		path += "/" + ctx.ResourceName
	}
	return path
}

// RefreshZone applies pending record changes to the zone.
func RefreshZone(ctx context.Context, client base.Doer, zoneName string) error {
	_, err := client.Do(ctx, ovhtransport.RequestOptions{
		Method: "POST",
		Path:   fmt.Sprintf("/domain/zone/%s/refresh", zoneName),
	})
	return err
}

func refreshAfterMutation(ctx context.Context, client base.Doer, pathCtx base.PathContext) error {
	if pathCtx.Zone == "" {
		return nil
	}
	return RefreshZone(ctx, client, pathCtx.Zone)
}
