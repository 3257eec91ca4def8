// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
)

// Factory builds the provisioner of one resource type for one turn.
type Factory func(*client.Client) (prov.Provisioner, error)

// Registry holds factory functions for creating resource provisioners
type Registry struct {
	mu           sync.RWMutex
	provisioners map[string]Factory
	descriptors  map[string]plugin.ResourceDescriptor
	schemas      map[string]model.Schema
}

var registry = New()

// New creates an empty registry. Resource packages register into the
// package-level registry; tests build their own.
func New() *Registry {
	return &Registry{
		provisioners: make(map[string]Factory),
		descriptors:  make(map[string]plugin.ResourceDescriptor),
		schemas:      make(map[string]model.Schema),
	}
}

// Register adds a resource type to the registry
func (r *Registry) Register(name string, descriptor plugin.ResourceDescriptor, schema model.Schema, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.provisioners[name] = factory
	r.descriptors[name] = descriptor
	r.schemas[name] = schema
}

// Get builds a provisioner for the given resource type
func (r *Registry) Get(name string, c *client.Client) (prov.Provisioner, error) {
	r.mu.RLock()
	factory, ok := r.provisioners[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported resource type: %s", name)
	}
	return factory(c)
}

// HasProvisioner checks if a provisioner is registered for the given resource type
func (r *Registry) HasProvisioner(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.provisioners[name]
	return ok
}

// GetDescriptor retrieves the resource descriptor for a given resource type
func (r *Registry) GetDescriptor(name string) (plugin.ResourceDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[name]
	return desc, ok
}

// GetSchema retrieves the schema for a given resource type
func (r *Registry) GetSchema(name string) (model.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[name]
	return schema, ok
}

// ListResourceTypes returns all registered resource types, sorted
func (r *Registry) ListResourceTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.provisioners))
	for name := range r.provisioners {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Register adds a resource type to the plugin registry.
// Called by resource packages in their init() functions
func Register(name string, descriptor plugin.ResourceDescriptor, schema model.Schema, factory Factory) {
	registry.Register(name, descriptor, schema, factory)
}

// Get builds a provisioner from the plugin registry
func Get(name string, c *client.Client) (prov.Provisioner, error) {
	return registry.Get(name, c)
}

// HasProvisioner checks the plugin registry
func HasProvisioner(name string) bool {
	return registry.HasProvisioner(name)
}

// GetDescriptor retrieves a descriptor from the plugin registry
func GetDescriptor(name string) (plugin.ResourceDescriptor, bool) {
	return registry.GetDescriptor(name)
}

// GetSchema retrieves a schema from the plugin registry
func GetSchema(name string) (model.Schema, bool) {
	return registry.GetSchema(name)
}

// ListResourceTypes lists the plugin registry
func ListResourceTypes() []string {
	return registry.ListResourceTypes()
}

// CreateOnlyFields returns the schema fields that cannot change after creation.
func CreateOnlyFields(schema model.Schema) []string {
	fields := make([]string, 0)
	for name, hint := range schema.Hints {
		if hint.CreateOnly {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}
