// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// Nested describes an object living inside a database service:
// /cloud/project/{serviceName}/database/{engine}/{clusterId}/{segment}[/{id}]
type Nested struct {
	ResourceType string
	Segment      string
	// IDField holds the identifier in responses. Defaults to "id".
	IDField string
	// FixedEngine pins the engine for engine-specific objects (kafka topics).
	FixedEngine string
	// StatusField, when set, is reported as the observation status.
	StatusField string
}

func (n *Nested) idField() string {
	if n.IDField == "" {
		return "id"
	}
	return n.IDField
}

// NestedRemote manages a Nested object. Native IDs are
// project/engine/clusterId/id; ids may contain slashes (CIDRs).
type NestedRemote struct {
	Nested  *Nested
	Client  base.Doer
	Project string
}

var _ lifecycle.Remote = (*NestedRemote)(nil)

type nestedRef struct {
	project, engine, cluster, id string
}

func (r nestedRef) String() string {
	return strings.Join([]string{r.project, r.engine, r.cluster, r.id}, "/")
}

func (r *NestedRemote) collection(ref nestedRef) string {
	return fmt.Sprintf("/cloud/project/%s/database/%s/%s/%s", ref.project, ref.engine, ref.cluster, r.Nested.Segment)
}

func (r *NestedRemote) item(ref nestedRef) string {
	return r.collection(ref) + "/" + url.PathEscape(ref.id)
}

func (r *NestedRemote) engine(m lifecycle.Model) string {
	if r.Nested.FixedEngine != "" {
		return r.Nested.FixedEngine
	}
	return m.String("engine")
}

func (r *NestedRemote) parse(nativeID string) (nestedRef, error) {
	parts := strings.SplitN(nativeID, "/", 4)
	if len(parts) != 4 || parts[0] == "" || parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return nestedRef{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			fmt.Sprintf("invalid native ID %q for %s, expected project/engine/clusterId/id", nativeID, r.Nested.ResourceType), nil)
	}
	return nestedRef{project: parts[0], engine: parts[1], cluster: parts[2], id: parts[3]}, nil
}

func (r *NestedRemote) body(props map[string]interface{}) map[string]interface{} {
	body := make(map[string]interface{}, len(props))
	for k, v := range props {
		if k == "engine" || k == "clusterId" || k == "serviceName" || v == nil {
			continue
		}
		body[k] = v
	}
	return body
}

func (r *NestedRemote) observe(ref nestedRef, answered map[string]interface{}) lifecycle.Observation {
	props := make(map[string]interface{}, len(answered)+2)
	for k, v := range answered {
		props[k] = v
	}
	props["clusterId"] = ref.cluster
	if r.Nested.FixedEngine == "" {
		props["engine"] = ref.engine
	}
	obs := lifecycle.Observation{NativeID: ref.String(), Properties: props}
	if r.Nested.StatusField != "" {
		obs.Status, _ = answered[r.Nested.StatusField].(string)
	}
	return obs
}

func nestedID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

func (r *NestedRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	ref := nestedRef{project: r.Project, engine: r.engine(desired), cluster: desired.String("clusterId")}
	if ref.project == "" || ref.engine == "" || ref.cluster == "" {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			"project, engine and clusterId are required", nil)
	}
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "POST",
		Path:   r.collection(ref),
		Body:   r.body(desired.Properties),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	ref.id = nestedID(response.Body[r.Nested.idField()])
	if ref.id == "" {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindServiceInternalError,
			fmt.Sprintf("create %s answered without %s", r.Nested.ResourceType, r.Nested.idField()), nil)
	}
	return r.observe(ref, response.Body), nil
}

func (r *NestedRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	ref, err := r.parse(desired.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "PUT",
		Path:   r.item(ref),
		Body:   r.body(desired.Properties),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if len(response.Body) == 0 {
		return r.Read(ctx, desired.NativeID)
	}
	return r.observe(ref, response.Body), nil
}

func (r *NestedRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	ref, err := r.parse(current.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, err := r.Client.Do(ctx, ovhtransport.RequestOptions{Method: "DELETE", Path: r.item(ref)}); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *NestedRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	ref, err := r.parse(nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{Method: "GET", Path: r.item(ref)})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return r.observe(ref, response.Body), nil
}

// List needs the cluster, and the engine unless it is fixed, in the scope.
func (r *NestedRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	ref := nestedRef{
		project: r.Project,
		engine:  r.Nested.FixedEngine,
		cluster: scope.AdditionalProperties["clusterId"],
	}
	if scope.Project != "" {
		ref.project = scope.Project
	}
	if ref.engine == "" {
		ref.engine = scope.AdditionalProperties["engine"]
	}
	if ref.project == "" || ref.engine == "" || ref.cluster == "" {
		return nil, nil
	}
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{Method: "GET", Path: r.collection(ref)})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(response.BodyArray))
	for _, item := range response.BodyArray {
		if id := nestedID(item); id != "" {
			ref.id = id
			ids = append(ids, ref.String())
		}
	}
	return ids, nil
}
