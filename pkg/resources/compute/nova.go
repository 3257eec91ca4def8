// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compute

import (
	"context"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/keypairs"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
)

// ServerAPI is the subset of the Compute v2 servers API the translator uses.
type ServerAPI interface {
	Create(ctx context.Context, opts servers.CreateOptsBuilder) (*servers.Server, error)
	Get(ctx context.Context, id string) (*servers.Server, error)
	Update(ctx context.Context, id string, opts servers.UpdateOpts) (*servers.Server, error)
	ResetMetadata(ctx context.Context, id string, metadata map[string]string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]servers.Server, error)
}

// KeyPairAPI is the subset of the Compute v2 key pair API the translator uses.
type KeyPairAPI interface {
	Create(ctx context.Context, opts keypairs.CreateOpts) (*keypairs.KeyPair, error)
	Get(ctx context.Context, name string) (*keypairs.KeyPair, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]keypairs.KeyPair, error)
}

// nova is the gophercloud implementation of ServerAPI and KeyPairAPI. The
// OpenStack session is opened on first use.
type nova struct {
	client *client.Client
}

func (n *nova) service(ctx context.Context) (*gophercloud.ServiceClient, error) {
	os, err := n.client.OpenStack(ctx)
	if err != nil {
		return nil, err
	}
	return os.ComputeClient, nil
}

type novaServers struct{ *nova }

var _ ServerAPI = novaServers{}

func (n novaServers) Create(ctx context.Context, opts servers.CreateOptsBuilder) (*servers.Server, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	server, err := servers.Create(ctx, sc, opts, nil).Extract()
	return server, openstack.Wrap(err)
}

func (n novaServers) Get(ctx context.Context, id string) (*servers.Server, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	server, err := servers.Get(ctx, sc, id).Extract()
	return server, openstack.Wrap(err)
}

func (n novaServers) Update(ctx context.Context, id string, opts servers.UpdateOpts) (*servers.Server, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	server, err := servers.Update(ctx, sc, id, opts).Extract()
	return server, openstack.Wrap(err)
}

func (n novaServers) ResetMetadata(ctx context.Context, id string, metadata map[string]string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	_, err = servers.ResetMetadata(ctx, sc, id, servers.MetadataOpts(metadata)).Extract()
	return openstack.Wrap(err)
}

func (n novaServers) Delete(ctx context.Context, id string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(servers.Delete(ctx, sc, id).ExtractErr())
}

func (n novaServers) List(ctx context.Context) ([]servers.Server, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := servers.List(sc, servers.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := servers.ExtractServers(pages)
	return list, openstack.Wrap(err)
}

type novaKeyPairs struct{ *nova }

var _ KeyPairAPI = novaKeyPairs{}

func (n novaKeyPairs) Create(ctx context.Context, opts keypairs.CreateOpts) (*keypairs.KeyPair, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	kp, err := keypairs.Create(ctx, sc, opts).Extract()
	return kp, openstack.Wrap(err)
}

func (n novaKeyPairs) Get(ctx context.Context, name string) (*keypairs.KeyPair, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	kp, err := keypairs.Get(ctx, sc, name, nil).Extract()
	return kp, openstack.Wrap(err)
}

func (n novaKeyPairs) Delete(ctx context.Context, name string) error {
	sc, err := n.service(ctx)
	if err != nil {
		return err
	}
	return openstack.Wrap(keypairs.Delete(ctx, sc, name, nil).ExtractErr())
}

func (n novaKeyPairs) List(ctx context.Context) ([]keypairs.KeyPair, error) {
	sc, err := n.service(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := keypairs.List(sc, nil).AllPages(ctx)
	if err != nil {
		return nil, openstack.Wrap(err)
	}
	list, err := keypairs.ExtractKeyPairs(pages)
	return list, openstack.Wrap(err)
}
