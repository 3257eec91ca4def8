// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// Doer is the OVH REST transport a RESTRemote talks to.
type Doer = ovhtransport.Doer

// RESTRemote translates lifecycle models to OVH REST calls for one
// RESTDefinition. Project and Region are the target defaults used when a
// model or native ID does not carry them.
type RESTRemote struct {
	Def     *RESTDefinition
	Client  Doer
	Project string
	Region  string
}

var _ lifecycle.Remote = (*RESTRemote)(nil)

// Create POSTs the desired properties to the collection.
func (r *RESTRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	pathCtx := r.pathContextFromProps(desired.Properties)
	if pathCtx.Project == "" && r.requiresProject() {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			"project/serviceName is required but not found in target config or properties", nil)
	}
	if p := r.Def.Resource.ParentResource; p != nil && pathCtx.ParentResource == "" {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			fmt.Sprintf("parent resource ID required: property %q is empty or not a valid ID", p.PropertyName), nil)
	}

	body, err := r.requestBody(desired.Properties, pathCtx, lifecycle.OperationCreate)
	if err != nil {
		return lifecycle.Observation{}, err
	}

	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "POST",
		Path:   NewURLBuilder(r.Def.API, pathCtx).CollectionURL(),
		Body:   body,
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	r.afterMutation(ctx, pathCtx)

	obs := r.observe(response.Body, pathCtx, lifecycle.OperationCreate)
	obs.NativeID = r.nativeID(response.Body, pathCtx)
	return obs, nil
}

// Update PUTs the mutable properties to the resource.
func (r *RESTRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	if r.Def.Resource.UpdateMethod == UpdateMethodNone {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindNotUpdatable,
			fmt.Sprintf("%s does not support updates", r.Def.Lifecycle.ResourceType), nil)
	}
	pathCtx, err := r.pathContextFromNativeID(desired.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}

	props := desired.Properties
	if len(r.Def.Resource.MutableFields) > 0 {
		props = pick(desired.Properties, r.Def.Resource.MutableFields)
	}
	body, err := r.requestBody(props, pathCtx, lifecycle.OperationUpdate)
	if err != nil {
		return lifecycle.Observation{}, err
	}

	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: string(r.Def.Resource.UpdateMethod),
		Path:   NewURLBuilder(r.Def.API, pathCtx).ResourceURL(pathCtx.ResourceName),
		Body:   body,
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	r.afterMutation(ctx, pathCtx)

	obs := r.observe(response.Body, pathCtx, lifecycle.OperationUpdate)
	obs.NativeID = desired.NativeID
	return obs, nil
}

// Delete DELETEs the resource.
func (r *RESTRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	pathCtx, err := r.pathContextFromNativeID(current.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}

	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "DELETE",
		Path:   NewURLBuilder(r.Def.API, pathCtx).ResourceURL(pathCtx.ResourceName),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	r.afterMutation(ctx, pathCtx)

	obs := r.observe(response.Body, pathCtx, lifecycle.OperationDelete)
	obs.NativeID = current.NativeID
	// The deleted object's properties are not the caller's concern.
	obs.Properties = nil
	return obs, nil
}

// Read GETs the resource.
func (r *RESTRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	pathCtx, err := r.pathContextFromNativeID(nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}

	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "GET",
		Path:   NewURLBuilder(r.Def.API, pathCtx).ResourceURL(pathCtx.ResourceName),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}

	obs := r.observe(response.Body, pathCtx, "")
	obs.NativeID = nativeID
	obs.Status = r.Def.Operations.status(response.Body)
	return obs, nil
}

// List GETs the collection. OVH returns either an array of ids or an array
// of objects carrying an id.
func (r *RESTRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	pathCtx := r.pathContextFromScope(scope)

	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "GET",
		Path:   NewURLBuilder(r.Def.API, pathCtx).CollectionURL(),
	})
	if err != nil {
		return nil, err
	}

	nativeIDs := make([]string, 0, len(response.BodyArray))
	for _, item := range response.BodyArray {
		var id string
		switch v := item.(type) {
		case map[string]interface{}:
			id = idString(v["id"])
		default:
			id = idString(v)
		}
		if id == "" {
			continue
		}
		idCtx := pathCtx
		idCtx.ResourceName = id
		nativeIDs = append(nativeIDs, BuildNativeID(r.Def.NativeID, idCtx))
	}
	return nativeIDs, nil
}

// observe turns a response body into an observation. Synchronous operations
// report an empty status; async ones fall back to PendingStatus.
func (r *RESTRemote) observe(body map[string]interface{}, pathCtx PathContext, op lifecycle.Operation) lifecycle.Observation {
	ops := r.Def.Operations
	obs := lifecycle.Observation{
		StatusInfo: stringValue(body, ops.StatusInfoField),
	}

	if op != "" && ops.isAsync(op) {
		obs.Status = ops.status(body)
		if obs.Status == "" {
			obs.Status = ops.PendingStatus[op]
		}
	}

	if len(body) > 0 {
		props := body
		if r.Def.ResponseTransformer != nil {
			props = r.Def.ResponseTransformer.Transform(body, r.transformContext(pathCtx, op))
		}
		obs.Properties = r.withPathProperties(props, pathCtx)
	}
	return obs
}

func (r *RESTRemote) nativeID(body map[string]interface{}, pathCtx PathContext) string {
	if r.Def.Operations.NativeIDExtractor != nil {
		return r.Def.Operations.NativeIDExtractor(body, pathCtx)
	}
	id := idString(body["id"])
	if id == "" {
		return ""
	}
	idCtx := pathCtx
	idCtx.ResourceName = id
	return BuildNativeID(r.Def.NativeID, idCtx)
}

// withPathProperties puts the identifying path segments back into the
// observed properties, since OVH responses omit them.
func (r *RESTRemote) withPathProperties(props map[string]interface{}, pathCtx PathContext) map[string]interface{} {
	out := make(map[string]interface{}, len(props)+2)
	for k, v := range props {
		out[k] = v
	}
	if p := r.Def.Resource.ParentResource; p != nil && pathCtx.ParentResource != "" {
		if _, ok := out[p.PropertyName]; !ok {
			out[p.PropertyName] = pathCtx.ParentResource
		}
	}
	if z := r.Def.Resource.ZoneProperty; z != "" && pathCtx.Zone != "" {
		out[z] = pathCtx.Zone
	}
	return out
}

func (r *RESTRemote) requestBody(props map[string]interface{}, pathCtx PathContext, op lifecycle.Operation) (map[string]interface{}, error) {
	body := omit(props, r.Def.Resource.pathProperties())
	if r.Def.RequestTransformer != nil {
		var err error
		body, err = r.Def.RequestTransformer.Transform(body, r.transformContext(pathCtx, op))
		if err != nil {
			return nil, lifecycle.NewError(lifecycle.KindInvalidRequest,
				fmt.Sprintf("failed to transform request: %v", err), err)
		}
	}
	// OVH rejects null for optional fields
	return filterNilValues(body), nil
}

func (r *RESTRemote) afterMutation(ctx context.Context, pathCtx PathContext) {
	hook := r.Def.Operations.PostMutationHook
	if hook == nil {
		return
	}
	if err := hook(ctx, r.Client, pathCtx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("post-mutation hook failed")
	}
}

func (r *RESTRemote) transformContext(pathCtx PathContext, op lifecycle.Operation) TransformContext {
	region := pathCtx.Region
	if region == "" {
		region = r.Region
	}
	return TransformContext{
		Project:   pathCtx.Project,
		Region:    region,
		Zone:      pathCtx.Zone,
		Operation: op,
	}
}

func (r *RESTRemote) requiresProject() bool {
	return r.Def.NativeID.Format == ProjectHierarchicalFormat || r.Def.NativeID.Format == ProjectNestedFormat
}

func (r *RESTRemote) pathContextFromProps(props map[string]interface{}) PathContext {
	cfg := r.Def.Resource
	ctx := PathContext{
		Project:      r.Project,
		ResourceType: cfg.PathSegment,
	}
	if cfg.Regional {
		ctx.Region = r.Region
		if region := stringValue(props, "region"); region != "" {
			ctx.Region = region
		}
	}
	if serviceName := stringValue(props, "serviceName"); serviceName != "" {
		ctx.Project = serviceName
	}
	if cfg.ZoneProperty != "" {
		ctx.Zone = stringValue(props, cfg.ZoneProperty)
	}
	if cfg.ParentResource != nil {
		ctx.ParentType = cfg.ParentResource.ParentType
		ctx.ParentResource = idString(props[cfg.ParentResource.PropertyName])
	}
	return ctx
}

func (r *RESTRemote) pathContextFromNativeID(nativeID string) (PathContext, error) {
	ctx, err := ParseNativeID(r.Def.NativeID, nativeID)
	if err != nil {
		return PathContext{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			fmt.Sprintf("invalid native ID: %v", err), err)
	}
	ctx.ResourceType = r.Def.Resource.PathSegment
	if ctx.Project == "" {
		ctx.Project = r.Project
	}
	if r.Def.Resource.Regional {
		ctx.Region = r.Region
	}
	if p := r.Def.Resource.ParentResource; p != nil && !p.CreateOnly {
		ctx.ParentType = p.ParentType
		if ctx.ParentResource == "" {
			return PathContext{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
				fmt.Sprintf("native ID %q does not name the parent %s", nativeID, p.PropertyName), nil)
		}
	}
	return ctx, nil
}

func (r *RESTRemote) pathContextFromScope(scope lifecycle.ListScope) PathContext {
	props := make(map[string]interface{}, len(scope.AdditionalProperties))
	for k, v := range scope.AdditionalProperties {
		props[k] = v
	}
	ctx := r.pathContextFromProps(props)
	if scope.Project != "" {
		ctx.Project = scope.Project
	}
	return ctx
}

// filterNilValues removes nil values from a map recursively.
func filterNilValues(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range m {
		if v == nil {
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			filtered := filterNilValues(nested)
			if len(filtered) > 0 {
				result[k] = filtered
			}
			continue
		}
		if slice, ok := v.([]interface{}); ok {
			var filtered []interface{}
			for _, item := range slice {
				if item == nil {
					continue
				}
				if nested, ok := item.(map[string]interface{}); ok {
					filtered = append(filtered, filterNilValues(nested))
				} else {
					filtered = append(filtered, item)
				}
			}
			if len(filtered) > 0 {
				result[k] = filtered
			}
			continue
		}
		result[k] = v
	}
	return result
}

func omit(m map[string]interface{}, keys []string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func pick(m map[string]interface{}, keys []string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

func stringValue(m map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// idString renders an OVH identifier. JSON numbers decode as float64.
func idString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}
