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

// SingletonRemote manages a configuration object that exists at most once
// per parent, such as the OIDC provider of a cluster. It has no id of its
// own: the native ID is project/parent.
type SingletonRemote struct {
	ResourceType string
	// ParentProperty names the property holding the parent id.
	ParentProperty string
	// Path returns the object path under its parent.
	Path func(project, parent string) string
	// WriteOnly fields are sent but never read back.
	WriteOnly []string

	Client  base.Doer
	Project string
}

var _ lifecycle.Remote = (*SingletonRemote)(nil)

func (r *SingletonRemote) parse(nativeID string) (string, string, error) {
	project, parent, ok := strings.Cut(nativeID, "/")
	if !ok || project == "" || parent == "" || strings.Contains(parent, "/") {
		return "", "", lifecycle.NewError(lifecycle.KindInvalidRequest,
			fmt.Sprintf("invalid native ID %q for %s, expected project/parentId", nativeID, r.ResourceType), nil)
	}
	return project, parent, nil
}

func (r *SingletonRemote) body(props map[string]interface{}) map[string]interface{} {
	body := make(map[string]interface{}, len(props))
	for k, v := range props {
		if k != r.ParentProperty {
			body[k] = v
		}
	}
	return body
}

// observe prefers what the API answered and falls back to what was sent.
func (r *SingletonRemote) observe(project, parent string, sent, answered map[string]interface{}) lifecycle.Observation {
	props := make(map[string]interface{}, len(sent)+len(answered)+1)
	for k, v := range sent {
		props[k] = v
	}
	for _, k := range r.WriteOnly {
		delete(props, k)
	}
	for k, v := range answered {
		props[k] = v
	}
	props[r.ParentProperty] = parent
	return lifecycle.Observation{NativeID: project + "/" + parent, Properties: props}
}

func (r *SingletonRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	if r.Project == "" {
		return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindInvalidRequest,
			"project is required but not found in target config", nil)
	}
	parent := desired.String(r.ParentProperty)
	body := r.body(desired.Properties)
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "POST",
		Path:   r.Path(r.Project, parent),
		Body:   body,
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return r.observe(r.Project, parent, body, response.Body), nil
}

func (r *SingletonRemote) Update(ctx context.Context, desired lifecycle.Model, _ *lifecycle.Model) (lifecycle.Observation, error) {
	project, parent, err := r.parse(desired.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	body := r.body(desired.Properties)
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "PUT",
		Path:   r.Path(project, parent),
		Body:   body,
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return r.observe(project, parent, body, response.Body), nil
}

func (r *SingletonRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	project, parent, err := r.parse(current.NativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	if _, err := r.Client.Do(ctx, ovhtransport.RequestOptions{
		Method: "DELETE",
		Path:   r.Path(project, parent),
	}); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *SingletonRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	project, parent, err := r.parse(nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	response, err := r.Client.Do(ctx, ovhtransport.RequestOptions{Method: "GET", Path: r.Path(project, parent)})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return r.observe(project, parent, nil, response.Body), nil
}

// List reports the object of the scoped parent when it is configured.
func (r *SingletonRemote) List(ctx context.Context, scope lifecycle.ListScope) ([]string, error) {
	project := r.Project
	if scope.Project != "" {
		project = scope.Project
	}
	parent := scope.AdditionalProperties[r.ParentProperty]
	if project == "" || parent == "" {
		return nil, nil
	}
	_, err := r.Read(ctx, project+"/"+parent)
	var terr *ovhtransport.Error
	if errors.As(err, &terr) && terr.Code == ovhtransport.ErrorCodeResourceNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []string{project + "/" + parent}, nil
}
