// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

// UpdateMethod defines how updates are performed
type UpdateMethod string

const (
	UpdateMethodPut  UpdateMethod = "PUT"
	UpdateMethodNone UpdateMethod = ""
)

// ParentResourceConfig defines parent resource for nested resources
type ParentResourceConfig struct {
	ParentType   string // path segment of the parent collection ("kube", "database")
	PropertyName string // property carrying the parent id ("kubeId", "engine")
	// CreateOnly parents address the create collection only. Native IDs
	// omit them and every other call uses the top-level path.
	CreateOnly bool
}

// ResourceConfig defines the resource metadata and behavior
type ResourceConfig struct {
	// PathSegment is the collection segment below the parent ("kube", "nodepool").
	PathSegment    string
	ParentResource *ParentResourceConfig
	// Regional resources live below /region/{region} of their project.
	Regional bool
	// ZoneProperty names the property carrying the DNS zone, for zone-scoped resources.
	ZoneProperty string
	UpdateMethod UpdateMethod
	// MutableFields is the allowlist of properties sent on update. Empty
	// sends every property except the path properties.
	MutableFields []string
}

// pathProperties are the properties that end up in the URL, never in a body.
func (c ResourceConfig) pathProperties() []string {
	props := []string{"serviceName"}
	if c.ParentResource != nil {
		props = append(props, c.ParentResource.PropertyName)
	}
	if c.ZoneProperty != "" {
		props = append(props, c.ZoneProperty)
	}
	return props
}
