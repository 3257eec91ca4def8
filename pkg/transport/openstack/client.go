// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
)

// Client wraps gophercloud clients for OpenStack services
type Client struct {
	Provider      *gophercloud.ProviderClient
	ComputeClient *gophercloud.ServiceClient // Nova - instances
	VolumeClient  *gophercloud.ServiceClient // Cinder - block storage
	NetworkClient *gophercloud.ServiceClient // Neutron - networks, security groups
}

// Config holds OpenStack authentication configuration
type Config struct {
	AuthURL        string
	Username       string
	Password       string
	ProjectID      string
	UserDomainName string
	Region         string
}

// AuthOptions converts Config to gophercloud AuthOptions
func (c *Config) AuthOptions() gophercloud.AuthOptions {
	return gophercloud.AuthOptions{
		IdentityEndpoint: c.AuthURL,
		Username:         c.Username,
		Password:         c.Password,
		TenantID:         c.ProjectID,
		DomainName:       c.UserDomainName,
		AllowReauth:      true,
	}
}

// NewClient authenticates and creates the service clients used by the
// OpenStack-backed resources.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	provider, err := openstack.AuthenticatedClient(ctx, cfg.AuthOptions())
	if err != nil {
		return nil, Wrap(fmt.Errorf("failed to authenticate: %w", err))
	}

	endpointOpts := gophercloud.EndpointOpts{
		Region: cfg.Region,
	}

	computeClient, err := openstack.NewComputeV2(provider, endpointOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute client: %w", err)
	}

	volumeClient, err := openstack.NewBlockStorageV3(provider, endpointOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create volume client: %w", err)
	}

	networkClient, err := openstack.NewNetworkV2(provider, endpointOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create network client: %w", err)
	}

	return &Client{
		Provider:      provider,
		ComputeClient: computeClient,
		VolumeClient:  volumeClient,
		NetworkClient: networkClient,
	}, nil
}
