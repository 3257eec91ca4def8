// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/config"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/s3"
)

// Client bundles the transports of one target. Each transport is built the
// first time a resource asks for it, so a turn only authenticates against
// the API it actually uses.
type Client struct {
	Config  *config.Config
	Metrics *lifecycle.Metrics

	mu        sync.Mutex
	ovh       ovhtransport.Doer
	openstack *openstack.Client
	s3        s3.Buckets
}

// NewClient creates a client for cfg. metrics may be nil.
func NewClient(cfg *config.Config, metrics *lifecycle.Metrics) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return &Client{Config: cfg, Metrics: metrics}, nil
}

// OVH returns the OVH REST transport.
func (c *Client) OVH() (ovhtransport.Doer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ovh != nil {
		return c.ovh, nil
	}
	ovhCfg, err := c.Config.OVHTransport()
	if err != nil {
		return nil, err
	}
	ovhClient, err := ovhtransport.NewClient(ovhCfg)
	if err != nil {
		return nil, err
	}
	c.ovh = ovhClient
	return c.ovh, nil
}

// OpenStack returns the authenticated OpenStack service clients.
func (c *Client) OpenStack(ctx context.Context) (*openstack.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openstack != nil {
		return c.openstack, nil
	}
	osCfg, err := c.Config.OpenStackTransport()
	if err != nil {
		return nil, err
	}
	osClient, err := openstack.NewClient(ctx, osCfg)
	if err != nil {
		return nil, err
	}
	c.openstack = osClient
	return c.openstack, nil
}

// S3 returns the object storage transport.
func (c *Client) S3(ctx context.Context) (s3.Buckets, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s3 != nil {
		return c.s3, nil
	}
	s3Cfg, err := c.Config.S3Transport()
	if err != nil {
		return nil, err
	}
	s3Client, err := s3.NewClient(ctx, s3Cfg)
	if err != nil {
		return nil, err
	}
	c.s3 = s3Client
	return c.s3, nil
}

// WithOVH returns a client whose OVH transport is doer. Used by tests and
// the local driver to substitute fakes.
func (c *Client) WithOVH(doer ovhtransport.Doer) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ovh = doer
	return c
}

// WithS3 returns a client whose object storage transport is buckets.
func (c *Client) WithS3(buckets s3.Buckets) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s3 = buckets
	return c
}
