// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package volume

import (
	"context"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/blockstorage/v3/volumes"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
)

// cinder is the gophercloud VolumeAPI. The OpenStack session is opened on
// first use, so building a provisioner never authenticates.
type cinder struct {
	client *client.Client
}

var _ VolumeAPI = (*cinder)(nil)

func (c *cinder) service(ctx context.Context) (*gophercloud.ServiceClient, error) {
	os, err := c.client.OpenStack(ctx)
	if err != nil {
		return nil, err
	}
	return os.VolumeClient, nil
}

func (c *cinder) Create(ctx context.Context, opts volumes.CreateOpts) (*volumes.Volume, error) {
	sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	vol, err := volumes.Create(ctx, sc, opts, nil).Extract()
	return vol, openstack.Wrap(err)
}

func (c *cinder) Get(ctx context.Context, id string) (*volumes.Volume, error) {
	sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	vol, err := volumes.Get(ctx, sc, id).Extract()
	return vol, openstack.Wrap(err)
}

func (c *cinder) Update(ctx context.Context, id string, opts volumes.UpdateOpts) (*volumes.Volume, error) {
	sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	vol, err := volumes.Update(ctx, sc, id, opts).Extract()
	return vol, openstack.Wrap(err)
}

func (c *cinder) Delete(ctx context.Context, id string) error {
	sc, err := c.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(volumes.Delete(ctx, sc, id, nil).ExtractErr())
}

func (c *cinder) List(ctx context.Context) ([]volumes.Volume, error) {
	sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := volumes.List(sc, volumes.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	vols, err := volumes.ExtractVolumes(pages)
	return vols, openstack.Wrap(err)
}
