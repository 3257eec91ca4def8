// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/platform-engineering-labs/formae/pkg/plugin/sdk"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/lifecycle"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/logging"
)

// EnvMetricsAddr enables the Prometheus listener when set, e.g. ":9464".
const EnvMetricsAddr = "FORMAE_OVH_METRICS_ADDR"

func main() {
	logger := logging.New(logging.ConfigFromEnv(), os.Stderr)
	metrics := lifecycle.NewMetrics("formae_ovh")

	if addr := os.Getenv(EnvMetricsAddr); addr != "" {
		go serveMetrics(logger, addr, metrics)
	}

	sdk.RunWithManifest(&Plugin{Logger: logger, Metrics: metrics}, sdk.RunConfig{})
}

func serveMetrics(logger zerolog.Logger, addr string, metrics *lifecycle.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics listener stopped")
	}
}
