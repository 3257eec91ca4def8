// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compute

import (
	"context"
	"errors"

	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/keypairs"
	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/prov"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
)

const (
	ResourceTypeKeypair = "OVH::Compute::Keypair"
)

// Keypair schema and descriptor
var (
	KeypairDescriptor = plugin.ResourceDescriptor{
		Type:         ResourceTypeKeypair,
		Discoverable: true,
	}

	KeypairSchema = model.Schema{
		Identifier:   "name",
		Discoverable: true,
		Fields:       []string{"name", "publicKey"},
		Hints: map[string]model.FieldHint{
			"name":      {Required: true, CreateOnly: true},
			"publicKey": {CreateOnly: true},
		},
	}
)

// KeypairDefinition describes SSH key pairs. Every call is synchronous, so
// the budget is never drawn on.
var KeypairDefinition = lifecycle.Definition{
	ResourceType: ResourceTypeKeypair,
	Budget:       lifecycle.BudgetPolicy{Limit: 1},
	Classifier:   openstack.NewClassifier(),
	Validate: func(_ lifecycle.Operation, m lifecycle.Model) error {
		if m.NativeID == "" && m.String("name") == "" {
			return errors.New("either a native id, or name, must be present")
		}
		return nil
	},
}

// KeypairRemote translates key pair models to Nova calls. The key pair name
// is its native ID.
type KeypairRemote struct {
	API KeyPairAPI
}

var _ lifecycle.Remote = (*KeypairRemote)(nil)

// NewKeypairProvisioner builds the formae provisioner for key pairs backed by api.
func NewKeypairProvisioner(api KeyPairAPI, opts ...lifecycle.Option) *base.BaseResource {
	return base.NewBaseResource(lifecycle.New(KeypairDefinition, &KeypairRemote{API: api}, opts...))
}

func (r *KeypairRemote) Create(ctx context.Context, desired lifecycle.Model) (lifecycle.Observation, error) {
	kp, err := r.API.Create(ctx, keypairs.CreateOpts{
		Name:      desired.String("name"),
		PublicKey: desired.String("publicKey"),
	})
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeKeyPair(kp), nil
}

func (r *KeypairRemote) Update(context.Context, lifecycle.Model, *lifecycle.Model) (lifecycle.Observation, error) {
	return lifecycle.Observation{}, lifecycle.NewError(lifecycle.KindNotUpdatable, "key pairs cannot be updated", nil)
}

func (r *KeypairRemote) Delete(ctx context.Context, current lifecycle.Model) (lifecycle.Observation, error) {
	if err := r.API.Delete(ctx, current.NativeID); err != nil {
		return lifecycle.Observation{}, err
	}
	return lifecycle.Observation{NativeID: current.NativeID}, nil
}

func (r *KeypairRemote) Read(ctx context.Context, nativeID string) (lifecycle.Observation, error) {
	kp, err := r.API.Get(ctx, nativeID)
	if err != nil {
		return lifecycle.Observation{}, err
	}
	return observeKeyPair(kp), nil
}

func (r *KeypairRemote) List(ctx context.Context, _ lifecycle.ListScope) ([]string, error) {
	list, err := r.API.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, kp := range list {
		names = append(names, kp.Name)
	}
	return names, nil
}

func observeKeyPair(kp *keypairs.KeyPair) lifecycle.Observation {
	props := map[string]interface{}{
		"name":        kp.Name,
		"fingerprint": kp.Fingerprint,
		"publicKey":   kp.PublicKey,
	}
	// Nova returns the private key once, when it generated the pair.
	if kp.PrivateKey != "" {
		props["privateKey"] = kp.PrivateKey
	}
	return lifecycle.Observation{NativeID: kp.Name, Properties: props}
}

func init() {
	registry.Register(
		ResourceTypeKeypair,
		KeypairDescriptor,
		KeypairSchema,
		func(c *client.Client) (prov.Provisioner, error) {
			return NewKeypairProvisioner(novaKeyPairs{&nova{client: c}}, lifecycle.WithMetrics(c.Metrics)), nil
		},
	)
}
