// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package commands defines the ovhctl command tree. Every command resolves
// the handler of one resource type and runs it through the local driver.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/client"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/config"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/driver"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/logging"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
)

// Options carries what the commands need from the process.
type Options struct {
	Out    io.Writer
	Logger zerolog.Logger
	// NewClient builds the transports of a target; tests substitute fakes.
	NewClient func(cfg *config.Config) (*client.Client, error)
	// Sleep overrides the driver's wait between status checks.
	Sleep driver.Sleeper

	project string
	region  string
}

// DefaultOptions writes results to stdout and talks to the real APIs.
func DefaultOptions() *Options {
	return &Options{
		Out:    os.Stdout,
		Logger: zerolog.Nop(),
		NewClient: func(cfg *config.Config) (*client.Client, error) {
			return client.NewClient(cfg, nil)
		},
	}
}

// Root returns the ovhctl root command.
func Root(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ovhctl",
		Short:         "Run OVHcloud resource handlers without a formae agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(opts.Out)

	cmd.PersistentFlags().StringVar(&opts.project, "project", "", "Public Cloud project id (defaults to OVH_CLOUD_PROJECT_ID)")
	cmd.PersistentFlags().StringVar(&opts.region, "region", "", "Region (defaults to OS_REGION_NAME)")

	cmd.AddCommand(Types(opts))
	cmd.AddCommand(Create(opts))
	cmd.AddCommand(Read(opts))
	cmd.AddCommand(Update(opts))
	cmd.AddCommand(Delete(opts))
	cmd.AddCommand(List(opts))

	return cmd
}

func (o *Options) targetConfig() json.RawMessage {
	target := map[string]string{}
	if o.project != "" {
		target["projectId"] = o.project
	}
	if o.region != "" {
		target["region"] = o.region
	}
	raw, _ := json.Marshal(target)
	return raw
}

// driver resolves resourceType for the target named by the flags.
func (o *Options) driver(cmd *cobra.Command, resourceType string) (*driver.Driver, error) {
	if !registry.HasProvisioner(resourceType) {
		return nil, fmt.Errorf("unsupported resource type: %s", resourceType)
	}
	target := o.targetConfig()
	cfg, err := config.FromTargetConfig(target)
	if err != nil {
		return nil, err
	}
	c, err := o.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OVH client: %w", err)
	}
	p, err := registry.Get(resourceType, c)
	if err != nil {
		return nil, err
	}

	d := driver.New(p, resourceType, target)
	if o.Sleep != nil {
		d.Sleep = o.Sleep
	}
	d.OnProgress = func(r *resource.ProgressResult) {
		o.Logger.Info().Str("nativeId", r.NativeID).Msg(r.StatusMessage)
	}

	ctx := logging.WithResource(o.Logger.WithContext(cmd.Context()), resourceType)
	cmd.SetContext(ctx)
	return d, nil
}

func (o *Options) print(v interface{}) error {
	enc := json.NewEncoder(o.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
