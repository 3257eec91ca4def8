// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package database

import (
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
)

// DatabaseResource places a service under its engine:
// /cloud/project/{serviceName}/database/{engine}/{clusterId}
var DatabaseResource = base.ResourceConfig{
	ParentResource: &base.ParentResourceConfig{
		ParentType:   "database",
		PropertyName: "engine",
	},
	UpdateMethod: base.UpdateMethodPut,
}

// nodesPatternTransformer rewrites nodesPattern.region to the short form the
// database API expects (DE1 → DE, GRA7 → GRA).
var nodesPatternTransformer = base.RequestTransformerFunc(func(props map[string]interface{}, _ base.TransformContext) (map[string]interface{}, error) {
	pattern, ok := props["nodesPattern"].(map[string]interface{})
	if !ok {
		return props, nil
	}
	region, _ := pattern["region"].(string)
	if region == "" {
		return props, nil
	}

	copied := make(map[string]interface{}, len(pattern))
	for k, v := range pattern {
		copied[k] = v
	}
	copied["region"] = base.DeriveShortRegion(region)

	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	out["nodesPattern"] = copied
	return out, nil
})
