// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package database

import (
	"errors"

	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// ServiceResourceType is the resource type for managed database services.
const ServiceResourceType = "OVH::Database::Service"

var ServiceSchema = model.Schema{
	Identifier:   "id",
	Discoverable: true,
	Fields: []string{
		"engine", "version", "plan", "description", "nodesPattern", "disk",
		"networkId", "subnetId", "ipRestrictions", "maintenanceTime", "backupTime",
	},
	Hints: map[string]model.FieldHint{
		"engine":       {Required: true, CreateOnly: true},
		"version":      {Required: true},
		"plan":         {Required: true},
		"nodesPattern": {Required: true, CreateOnly: true},
		"networkId":    {CreateOnly: true},
		"subnetId":     {CreateOnly: true},
	},
}

// Service describes a managed database cluster.
var Service = &base.RESTDefinition{
	Lifecycle: lifecycle.Definition{
		ResourceType: ServiceResourceType,
		Budget: lifecycle.BudgetPolicy{
			Mode:         lifecycle.BudgetAttempts,
			Limit:        120,
			InitialDelay: 30,
			PollDelay:    30,
		},
		Classifier: ovhtransport.NewClassifier(),
		ClassifyStatus: lifecycle.StatusMap{
			Ready:  []string{"READY"},
			Failed: []string{"ERROR", "FAILED"},
			Gone:   []string{"DELETED"},
		}.Classify,
		Validate:         validateService,
		IdempotentDelete: true,
		SupportsUpdate:   true,
	},
	API:      cloud.CloudAPI,
	NativeID: cloud.NestedNativeID,
	Resource: func() base.ResourceConfig {
		cfg := DatabaseResource
		cfg.MutableFields = []string{
			"description", "version", "plan", "disk", "ipRestrictions", "maintenanceTime", "backupTime",
		}
		return cfg
	}(),
	Operations: base.OperationConfig{
		StatusField: "status",
		Async: []lifecycle.Operation{
			lifecycle.OperationCreate,
			lifecycle.OperationUpdate,
			lifecycle.OperationDelete,
		},
		PendingStatus: map[lifecycle.Operation]string{
			lifecycle.OperationUpdate: "UPDATING",
			lifecycle.OperationDelete: "DELETING",
		},
		NativeIDExtractor: cloud.NativeIDExtractor,
	},
	RequestTransformer: nodesPatternTransformer,
}

func validateService(_ lifecycle.Operation, m lifecycle.Model) error {
	if m.NativeID == "" && m.String("engine") == "" {
		return errors.New("either a native id, or engine, must be present")
	}
	return nil
}

func init() {
	registry.RegisterREST(Service, ServiceSchema)
}
