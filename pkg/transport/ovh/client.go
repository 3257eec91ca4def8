// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package ovh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ovh/go-ovh/ovh"
)

// Doer is the single entry point resources use to talk to the OVH API.
type Doer interface {
	Do(ctx context.Context, opts RequestOptions) (*Response, error)
}

// Client wraps go-ovh for the REST architecture
type Client struct {
	ovh *ovh.Client
}

var _ Doer = (*Client)(nil)

// RequestOptions defines options for an API request
type RequestOptions struct {
	Method string
	Path   string
	Body   interface{} // Can be map[string]interface{} or []interface{} for array bodies
}

// Response represents an API response
type Response struct {
	StatusCode int
	Body       map[string]interface{}
	BodyArray  []interface{}
}

// OVHConfig holds OVH REST API credentials
type OVHConfig struct {
	Endpoint          string
	ApplicationKey    string
	ApplicationSecret string
	ConsumerKey       string
}

// NewClient creates a new OVH API client from config
func NewClient(cfg *OVHConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "ovh-eu"
	}

	ovhClient, err := ovh.NewClient(endpoint, cfg.ApplicationKey, cfg.ApplicationSecret, cfg.ConsumerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create OVH client: %w", err)
	}
	return &Client{ovh: ovhClient}, nil
}

// Do executes an API request
func (c *Client) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
	var result json.RawMessage
	var err error

	switch opts.Method {
	case "GET":
		err = c.ovh.GetWithContext(ctx, opts.Path, &result)
	case "POST":
		err = c.ovh.PostWithContext(ctx, opts.Path, opts.Body, &result)
	case "PUT":
		err = c.ovh.PutWithContext(ctx, opts.Path, opts.Body, &result)
	case "DELETE":
		err = c.ovh.DeleteWithContext(ctx, opts.Path, &result)
	default:
		return nil, fmt.Errorf("unsupported method: %s", opts.Method)
	}

	if err != nil {
		return nil, classifyError(err)
	}

	return ParseResponse(result)
}

// ParseResponse converts raw JSON to Response
func ParseResponse(raw json.RawMessage) (*Response, error) {
	resp := &Response{StatusCode: 200}
	if len(raw) == 0 || string(raw) == "null" {
		return resp, nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		resp.Body = obj
		return resp, nil
	}

	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err == nil {
		resp.BodyArray = arr
		return resp, nil
	}

	return nil, fmt.Errorf("failed to parse response: %s", string(raw))
}

// classifyError converts OVH errors to transport errors
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *ovh.APIError
	if errors.As(err, &apiErr) {
		code := ClassifyHTTPStatus(apiErr.Code)
		if isQuotaError(apiErr) {
			code = ErrorCodeQuotaExceeded
		}
		return &Error{
			Code:       code,
			Message:    apiErr.Message,
			HTTPCode:   apiErr.Code,
			Underlying: err,
		}
	}

	return &Error{
		Code:       ErrorCodeUnknown,
		Message:    err.Error(),
		Underlying: err,
	}
}

// isQuotaError recognises OVH's quota rejections, which come back as plain
// 4xx errors distinguished only by class or message.
func isQuotaError(apiErr *ovh.APIError) bool {
	if apiErr.Code < 400 || apiErr.Code >= 500 {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Class), "quota") ||
		strings.Contains(strings.ToLower(apiErr.Message), "quota")
}
