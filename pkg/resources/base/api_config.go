// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

// APIConfig defines how paths of one OVH API family are built
type APIConfig struct {
	PathBuilder PathBuilderFunc
}

// PathBuilderFunc constructs a resource path from context
type PathBuilderFunc func(ctx PathContext) string

// PathContext contains all information needed to build a URL path
type PathContext struct {
	Project string
	Region  string
	Zone    string
	// ResourceType is the path segment of the collection ("kube", "network/private").
	ResourceType   string
	ResourceName   string
	ParentResource string
	ParentType     string
}

// URLBuilder builds URLs for API resources
type URLBuilder struct {
	apiConfig APIConfig
	context   PathContext
}

// NewURLBuilder creates a new URL builder
func NewURLBuilder(apiConfig APIConfig, context PathContext) *URLBuilder {
	return &URLBuilder{apiConfig: apiConfig, context: context}
}

// CollectionURL returns the URL for a resource collection
func (b *URLBuilder) CollectionURL() string {
	ctx := b.context
	ctx.ResourceName = ""
	return b.apiConfig.PathBuilder(ctx)
}

// ResourceURL returns the URL for a specific resource
func (b *URLBuilder) ResourceURL(name string) string {
	ctx := b.context
	ctx.ResourceName = name
	return b.apiConfig.PathBuilder(ctx)
}
