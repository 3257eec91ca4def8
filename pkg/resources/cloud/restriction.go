// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// RestrictionList describes an allow list the OVH API only reads and
// replaces as a whole, such as the IP restrictions of a cluster.
type RestrictionList struct {
	ResourceType string
	// ParentProperty names the property holding the parent id.
	ParentProperty string
	// KeyField identifies an entry within the list.
	KeyField string
	// Kinds, when set, are the alternative lists of one parent. The chosen
	// one is carried in the "type" property and in the native ID.
	Kinds []string
	// Mutable fields of an entry besides its key.
	Mutable []string
	// Path returns the list path. kind is empty when Kinds is.
	Path func(project, parent, kind string) string
	// Encode turns the entries into the PUT body. Entries are sent as an
	// array of objects when nil.
	Encode func(entries []map[string]interface{}) interface{}
}

// RestrictionRemote manages one entry of a RestrictionList by reading the
// list, changing it and writing it back in the same turn. Native IDs are
// project/parent[/kind]/key; keys may contain slashes.
type RestrictionRemote struct {
	List    *RestrictionList
	Client  base.Doer
	Project string
}

var _ lifecycle.Remote = (*RestrictionRemote)(nil)

type restrictionRef struct {
	project, parent, kind, key string
}

func (r *RestrictionRemote) ref(project, parent, kind, key string) restrictionRef {
	return restrictionRef{project: project, parent: parent, kind: kind, key: key}
}

func (r *RestrictionRemote) nativeID(ref restrictionRef) string {
	if len(r.List.Kinds) > 0 {
		return fmt.Sprintf("%s/%s/%s/%s", ref.project, ref.parent, ref.kind, ref.key)
	}
	return fmt.Sprintf("%s/%s/%s", ref.project, ref.parent, ref.key)
}

func (r *RestrictionRemote) parse(nativeID string) (restrictionRef, error) {
	n := 3
	if len(r.List.Kinds) > 0 {
		n = 4
	}
	parts := strings.SplitN(nativeID, "/", n)
	for _, p := range parts {
		if p == "" {
			parts = nil
		}
	}
	if len(parts) != n {
		return restrictionRef{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			fmt.Sprintf("invalid native ID %q for %s", nativeID, r.List.ResourceType), nil)
	}
	if n == 4 {
		return r.ref(parts[0], parts[1], parts[2], parts[3]), nil
	}
	return r.ref(parts[0], parts[1], "", parts[2]), nil
}

func (r *RestrictionRemote) validKind(kind string) bool {
	for _, k := range r.List.Kinds {
		if k == kind {
			return true
		}
	}
	return len(r.List.Kinds) == 0
}

func (r *RestrictionRemote) fetch(ctx context.Context, ref restrictionRef) ([]map[string]interface{}, error) {
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "GET",
		Path:   r.List.Path(ref.project, ref.parent, ref.kind),
	})
	if err != nil {
		return nil, err
	}
	entries := make([]map[string]interface{}, 0, len(response.BodyArray))
	for _, item := range response.BodyArray {
		switch v := item.(type) {
		case map[string]interface{}:
			entries = append(entries, v)
		case string:
			entries = append(entries, map[string]interface{}{r.List.KeyField: v})
		}
	}
	return entries, nil
}

func (r *RestrictionRemote) store(ctx context.Context, ref restrictionRef, entries []map[string]interface{}) error {
	var body interface{}
	if r.List.Encode != nil {
		body = r.List.Encode(entries)
	} else {
		items := make([]interface{}, 0, len(entries))
		for _, e := range entries {
			items = append(items, e)
		}
		body = items
	}
	_, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "PUT",
		Path:   r.List.Path(ref.project, ref.parent, ref.kind),
		Body:   body,
	})
	return err
}

func (r *RestrictionRemote) find(entries []map[string]interface{}, key string) int {
	for i, e := range entries {
		if k, _ := e[r.List.KeyField].(string); k == key {
			return i
		}
	}
	return -1
}

func (r *RestrictionRemote) observe(ref restrictionRef, entry map[string]interface{}) lifecycle.Observation {
	props := map[string]interface{}{
		r.List.ParentProperty: ref.parent,
		r.List.KeyField:       ref.key,
	}
	if ref.kind != "" {
		props["type"] = ref.kind
	}
	for _, f := range r.List.Mutable {
		if v, ok := entry[f]; ok {
			props[f] = v
		}
	}
	return lifecycle.Observation{NativeID: r.nativeID(ref), Properties: props}
}

// Create appends the entry. An entry already present with the same key is
// adopted as is.
func (r *RestrictionRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	if r.Project == "" {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			"project is required but not found in target config", nil)
	}
	ref := r.ref(r.Project, desired.String(r.List.ParentProperty), desired.String("type"), desired.String(r.List.KeyField))
	if !r.validKind(ref.kind) {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			fmt.Sprintf("type must be one of %s", strings.Join(r.List.Kinds, ", ")), nil)
	}

	entries, err := r.fetch(ctx, ref)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if i := r.find(entries, ref.key); i >= 0 {
		return r.observe(ref, entries[i]), nil
	}

	entry := map[string]interface{}{r.List.KeyField: ref.key}
	for _, f := range r.List.Mutable {
		if v, ok := desired.Properties[f]; ok {
			entry[f] = v
		}
	}
	if err := r.store(ctx, ref, append(entries, entry)); err != nil {
		return lifecycle.Observation{}, err
	}
	return r.observe(ref, entry), nil
}

func (r *RestrictionRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	ref, err := r.parse(desired.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	entries, err := r.fetch(ctx, ref)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	i := r.find(entries, ref.key)
	if i < 0 {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindNotFound,
			fmt.Sprintf("%s %s not found", r.List.ResourceType, desired.NativeID), nil)
	}
	for _, f := range r.List.Mutable {
		if v, ok := desired.Properties[f]; ok {
			entries[i][f] = v
		}
	}
	if err := r.store(ctx, ref, entries); err != nil {
		return lifecycle.Observation{}, err
	}
	return r.observe(ref, entries[i]), nil
}

// Delete removes the entry. A missing entry or parent leaves nothing to
// remove and succeeds without a write.
func (r *RestrictionRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	ref, err := r.parse(current.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	entries, err := r.fetch(ctx, ref)
	var terr *ovhtransport.Error
	if errors.As(err, &terr) && terr.Code == ovhtransport.ErrorCodeResourceNotFound {
		return lifecycle.Observation{NativeID: current.NativeID}, nil
	}
	if err != nil {
		return lifecycle.Observation{}, err
	}
	i := r.find(entries, ref.key)
	if i < 0 {
		return lifecycle.Observation{NativeID: current.NativeID}, nil
	}
	kept := append(entries[:i:i], entries[i+1:]...)
	if err := r.store(ctx, ref, kept); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *RestrictionRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	ref, err := r.parse(nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	entries, err := r.fetch(ctx, ref)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	i := r.find(entries, ref.key)
	if i < 0 {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindNotFound,
			fmt.Sprintf("%s %s not found", r.List.ResourceType, nativeID), nil)
	}
	return r.observe(ref, entries[i]), nil
}

// List needs the parent id in the scope. Without a "type" scope every kind
// is listed.
func (r *RestrictionRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	project := r.Project
	if scope.Project != "" {
		project = scope.Project
	}
	parent := scope.AdditionalProperties[r.List.ParentProperty]
	if project == "" || parent == "" {
		return nil, nil
	}

	kinds := []string{""}
	if len(r.List.Kinds) > 0 {
		kinds = r.List.Kinds
		if k := scope.AdditionalProperties["type"]; k != "" {
			kinds = []string{k}
		}
	}

	var ids []string
	for _, kind := range kinds {
		ref := r.ref(project, parent, kind, "")
		entries, err := r.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if key, _ := e[r.List.KeyField].(string); key != "" {
				ref.key = key
				ids = append(ids, r.nativeID(ref))
			}
		}
	}
	return ids, nil
}
