// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package database

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

const (
	DatabaseResourceType                 = "OVH::Database::Database"
	UserResourceType                     = "OVH::Database::User"
	IntegrationResourceType              = "OVH::Database::Integration"
	IPRestrictionResourceType            = "OVH::Database::IpRestriction"
	KafkaACLResourceType                 = "OVH::Database::KafkaAcl"
	KafkaTopicResourceType               = "OVH::Database::KafkaTopic"
	PostgresqlConnectionPoolResourceType = "OVH::Database::PostgresqlConnectionPool"
)

// NestedType binds a Nested object to its lifecycle and schema.
type NestedType struct {
	Nested     *Nested
	Definition lifecycle.Definition
	Schema     model.Schema
}

// NewProvisioner builds the formae provisioner over client.
func (t NestedType) NewProvisioner(client base.Doer, project string, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(t.Definition,
		&NestedRemote{Nested: t.Nested, Client: client, Project: project}, opts...))
}

// readyStatus settles users and integrations, which the API builds in the
// background.
var readyStatus = lifecycle.StatusMap{
	Ready:  []string{"READY"},
	Failed: []string{"ERROR"},
}.Classify

func nestedType(n *Nested, fields []string, hints map[string]model.FieldHint, updatable bool) NestedType {
	merged := map[string]model.FieldHint{
		"clusterId": {Required: true, CreateOnly: true},
	}
	all := append([]string{"clusterId"}, fields...)
	if n.FixedEngine == "" {
		merged["engine"] = model.FieldHint{Required: true, CreateOnly: true}
		all = append([]string{"engine"}, all...)
	}
	for k, v := range hints {
		merged[k] = v
	}
	schema := model.Schema{
		Identifier:   n.idField(),
		Discoverable: true,
		Fields:       all,
		Hints:        merged,
	}

	def := lifecycle.Definition{
		ResourceType: n.ResourceType,
		Budget:       lifecycle.BudgetPolicy{Limit: 1},
		Classifier:   ovhtransport.NewClassifier(),
		Validate: func(op lifecycle.Operation, m lifecycle.Model) error {
			if op != lifecycle.OperationCreate {
				return nil
			}
			if m.String("clusterId") == "" {
				return errors.New("clusterId must be present")
			}
			if n.FixedEngine == "" && m.String("engine") == "" {
				return errors.New("engine must be present")
			}
			return nil
		},
		IdempotentDelete: true,
		SupportsUpdate:   updatable,
		CreateOnly:       registry.CreateOnlyFields(schema),
	}
	if n.StatusField != "" {
		def.Budget = lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetAttempts,
			Limit:        40,
			InitialDelay: 5,
			PollDelay:    10,
		}
		def.ClassifyStatus = readyStatus
	}
	return NestedType{Nested: n, Definition: def, Schema: schema}
}

var (
	Database = nestedType(
		&Nested{ResourceType: DatabaseResourceType, Segment: "database"},
		[]string{"name"},
		map[string]model.FieldHint{"name": {Required: true, CreateOnly: true}},
		false,
	)

	User = nestedType(
		&Nested{ResourceType: UserResourceType, Segment: "user", StatusField: "status"},
		[]string{"name", "roles", "group"},
		map[string]model.FieldHint{"name": {Required: true, CreateOnly: true}},
		true,
	)

	Integration = nestedType(
		&Nested{ResourceType: IntegrationResourceType, Segment: "integration", StatusField: "status"},
		[]string{"sourceServiceId", "destinationServiceId", "type", "parameters"},
		map[string]model.FieldHint{
			"sourceServiceId":      {Required: true, CreateOnly: true},
			"destinationServiceId": {Required: true, CreateOnly: true},
			"type":                 {Required: true, CreateOnly: true},
			"parameters":           {CreateOnly: true},
		},
		false,
	)

	IPRestriction = nestedType(
		&Nested{ResourceType: IPRestrictionResourceType, Segment: "ipRestriction", IDField: "ip"},
		[]string{"ip", "description"},
		map[string]model.FieldHint{"ip": {Required: true, CreateOnly: true}},
		true,
	)

	KafkaACL = nestedType(
		&Nested{ResourceType: KafkaACLResourceType, Segment: "acl", FixedEngine: "kafka"},
		[]string{"topic", "username", "permission"},
		map[string]model.FieldHint{
			"topic":      {Required: true, CreateOnly: true},
			"username":   {Required: true, CreateOnly: true},
			"permission": {Required: true, CreateOnly: true},
		},
		false,
	)

	KafkaTopic = nestedType(
		&Nested{ResourceType: KafkaTopicResourceType, Segment: "topic", FixedEngine: "kafka"},
		[]string{"name", "partitions", "replication", "retentionBytes", "retentionHours", "minInsyncReplicas"},
		map[string]model.FieldHint{"name": {Required: true, CreateOnly: true}},
		true,
	)

	PostgresqlConnectionPool = nestedType(
		&Nested{ResourceType: PostgresqlConnectionPoolResourceType, Segment: "connectionPool", FixedEngine: "postgresql"},
		[]string{"name", "databaseId", "mode", "size", "userId"},
		map[string]model.FieldHint{
			"name":       {Required: true, CreateOnly: true},
			"databaseId": {Required: true},
			"mode":       {Required: true},
			"size":       {Required: true},
		},
		true,
	)
)

// NestedTypes lists every object registered below a database service.
var NestedTypes = []NestedType{
	Database, User, Integration, IPRestriction, KafkaACL, KafkaTopic, PostgresqlConnectionPool,
}

func init() {
	for _, t := range NestedTypes {
		t := t
		registry.Register(
			t.Nested.ResourceType,
			plugin.ResourceDescriptor{Type: t.Nested.ResourceType, Discoverable: true},
			t.Schema,
			func(c *client.Client) (prov.Provisioner, error) {
				doer, err := c.OVH()
				if err != nil {
					return nil, err
				}
				return t.NewProvisioner(doer, c.Config.ProjectID, lifecycle.WithMetrics(c.Metrics)), nil
			},
		)
	}
}
