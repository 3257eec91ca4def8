// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloud

import (
	"fmt"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
)

// CloudAPI defines the API configuration for OVH Public Cloud
var CloudAPI = base.APIConfig{
	PathBuilder: cloudPathBuilder,
}

// CloudNativeID defines native ID format for cloud resources: "project/resourceId"
var CloudNativeID = base.NativeIDConfig{
	Format: base.ProjectHierarchicalFormat,
}

// NestedNativeID defines native ID format for nested cloud resources: "project/parentId/resourceId"
var NestedNativeID = base.NativeIDConfig{
	Format: base.ProjectNestedFormat,
}

// NativeIDExtractor extracts the resource ID and builds a native ID.
// For nested resources: project/parentId/resourceId
// For top-level resources: project/resourceId
func NativeIDExtractor(response map[string]interface{}, ctx base.PathContext) string {
	var resourceID string

	// Completed operations carry resourceId, plain responses id
	if rid, ok := response["resourceId"].(string); ok && rid != "" {
		resourceID = rid
	} else {
		switch id := response["id"].(type) {
		case string:
			resourceID = id
		case float64:
			resourceID = fmt.Sprintf("%.0f", id)
		}
	}

	if resourceID == "" {
		return ""
	}

	if ctx.Project != "" && ctx.ParentResource != "" {
		return fmt.Sprintf("%s/%s/%s", ctx.Project, ctx.ParentResource, resourceID)
	}
	if ctx.Project != "" {
		return fmt.Sprintf("%s/%s", ctx.Project, resourceID)
	}
	return resourceID
}

// cloudPathBuilder builds paths for cloud resources
// Supports:
// - Project-scoped resources: /cloud/project/{serviceName}/{resourceType}
// - Regional resources: /cloud/project/{serviceName}/region/{regionName}/{resourceType}
// - Nested resources under parent: /cloud/project/{serviceName}/{parentType}/{parentId}/{resourceType}
// - Nested resources without a segment of their own: /cloud/project/{serviceName}/database/{engine}/{id}
func cloudPathBuilder(ctx base.PathContext) string {
	path := fmt.Sprintf("/cloud/project/%s", ctx.Project)

	if ctx.Region != "" {
		path += fmt.Sprintf("/region/%s", ctx.Region)
	}

	if ctx.ParentType != "" && ctx.ParentResource != "" {
		path += fmt.Sprintf("/%s/%s", ctx.ParentType, ctx.ParentResource)
	}
	if ctx.ResourceType != "" {
		path += "/" + ctx.ResourceType
	}

	if ctx.ResourceName != "" {
		path += "/" + ctx.ResourceName
	}
	return path
}
