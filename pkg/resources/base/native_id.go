// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

import (
	"fmt"
	"strings"
)

// NativeIDFormat defines the format of native IDs
type NativeIDFormat string

const (
	SimpleNameFormat          NativeIDFormat = "name"
	HierarchicalFormat        NativeIDFormat = "hierarchical"         // zone/resourceId
	ProjectHierarchicalFormat NativeIDFormat = "project_hierarchical" // project/resourceId
	ProjectNestedFormat       NativeIDFormat = "project_nested"       // project/parentId/resourceId
)

// NativeIDConfig defines how native IDs are formatted and parsed
type NativeIDConfig struct {
	Format NativeIDFormat
}

// ParseNativeID parses a native ID using the config
func ParseNativeID(cfg NativeIDConfig, nativeID string) (PathContext, error) {
	if nativeID == "" {
		return PathContext{}, fmt.Errorf("native ID is empty")
	}

	switch cfg.Format {
	case HierarchicalFormat:
		parts := strings.SplitN(nativeID, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return PathContext{}, fmt.Errorf("invalid hierarchical ID: %s", nativeID)
		}
		return PathContext{Zone: parts[0], ResourceName: parts[1]}, nil
	case ProjectHierarchicalFormat:
		parts := strings.SplitN(nativeID, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return PathContext{}, fmt.Errorf("invalid project hierarchical ID: %s", nativeID)
		}
		return PathContext{Project: parts[0], ResourceName: parts[1]}, nil
	case ProjectNestedFormat:
		parts := strings.SplitN(nativeID, "/", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return PathContext{}, fmt.Errorf("invalid project nested ID: %s", nativeID)
		}
		return PathContext{Project: parts[0], ParentResource: parts[1], ResourceName: parts[2]}, nil
	default:
		return PathContext{ResourceName: nativeID}, nil
	}
}

// BuildNativeID builds a native ID from context
func BuildNativeID(cfg NativeIDConfig, ctx PathContext) string {
	switch cfg.Format {
	case HierarchicalFormat:
		if ctx.Zone != "" {
			return fmt.Sprintf("%s/%s", ctx.Zone, ctx.ResourceName)
		}
		return ctx.ResourceName
	case ProjectHierarchicalFormat:
		if ctx.Project != "" {
			return fmt.Sprintf("%s/%s", ctx.Project, ctx.ResourceName)
		}
		return ctx.ResourceName
	case ProjectNestedFormat:
		if ctx.Project != "" && ctx.ParentResource != "" {
			return fmt.Sprintf("%s/%s/%s", ctx.Project, ctx.ParentResource, ctx.ResourceName)
		}
		if ctx.Project != "" {
			return fmt.Sprintf("%s/%s", ctx.Project, ctx.ResourceName)
		}
		return ctx.ResourceName
	default:
		return ctx.ResourceName
	}
}
