// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Command ovhctl drives the plugin's resource handlers from a terminal,
// without a formae agent. It is meant for trying resource definitions
// against a real project.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/cmd/ovhctl/commands"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/logging"

	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/compute"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/containerregistry"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/database"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/kube"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/network"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/cloud/storage"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/compute"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/dns"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/network"
	_ "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/volume"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := logging.ConfigFromEnv()
	if cfg.Format == "" {
		cfg.Format = "console"
	}
	opts := commands.DefaultOptions()
	opts.Logger = logging.New(cfg, os.Stderr)

	if err := commands.Root(opts).ExecuteContext(ctx); err != nil {
		kind := lifecycle.KindOf(err)
		opts.Logger.Error().Err(err).
			Str("kind", string(kind)).
			Bool("retryable", kind.Retryable()).
			Msg("ovhctl failed")
		os.Exit(1)
	}
}
