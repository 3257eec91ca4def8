// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"encoding/json"
	"testing"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialVars = []string{
	"OVH_CLOUD_PROJECT_ID", "OVH_ENDPOINT", "OVH_APPLICATION_KEY", "OVH_APPLICATION_SECRET", "OVH_CONSUMER_KEY",
	"OS_AUTH_URL", "OS_REGION_NAME", "OS_USERNAME", "OS_PASSWORD", "OS_PROJECT_ID", "OS_USER_DOMAIN_NAME",
	"OVH_S3_ACCESS_KEY", "OVH_S3_SECRET_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range credentialVars {
		t.Setenv(name, "")
	}
}

func TestFromTargetConfig_TargetValues(t *testing.T) {
	clearEnv(t)

	cfg, err := FromTargetConfig(json.RawMessage(`{"projectId":"p1","region":"GRA11","authURL":"https://auth.cloud.ovh.net/v3"}`))
	require.NoError(t, err)

	assert.Equal(t, "p1", cfg.ProjectID)
	assert.Equal(t, "GRA11", cfg.Region)
	assert.Equal(t, "ovh-eu", cfg.Endpoint)
	assert.Equal(t, "https://s3.gra.io.cloud.ovh.net", cfg.S3Endpoint)
	assert.Equal(t, "Default", cfg.OpenStack.DomainName)
}

func TestFromTargetConfig_ServiceNameAlias(t *testing.T) {
	clearEnv(t)

	cfg, err := FromTargetConfig(json.RawMessage(`{"serviceName":"legacy"}`))
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.ProjectID)
}

func TestFromTargetConfig_EnvFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVH_CLOUD_PROJECT_ID", "from-env")
	t.Setenv("OS_REGION_NAME", "DE1")
	t.Setenv("OVH_ENDPOINT", "ovh-ca")

	cfg, err := FromTargetConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ProjectID)
	assert.Equal(t, "DE1", cfg.Region)
	assert.Equal(t, "ovh-ca", cfg.Endpoint)
}

func TestFromTargetConfig_InvalidJSON(t *testing.T) {
	_, err := FromTargetConfig(json.RawMessage(`{`))
	assert.Error(t, err)
}

func TestFromTarget_Nil(t *testing.T) {
	_, err := FromTarget(nil)
	assert.Error(t, err)

	clearEnv(t)
	cfg, err := FromTarget(&model.Target{Config: json.RawMessage(`{"projectId":"p2"}`)})
	require.NoError(t, err)
	assert.Equal(t, "p2", cfg.ProjectID)
}

func TestOVHTransport(t *testing.T) {
	clearEnv(t)

	cfg, err := FromTargetConfig(nil)
	require.NoError(t, err)

	_, err = cfg.OVHTransport()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OVH_APPLICATION_KEY is required")
	assert.Contains(t, err.Error(), "OVH_CONSUMER_KEY is required")

	t.Setenv("OVH_APPLICATION_KEY", "ak")
	t.Setenv("OVH_APPLICATION_SECRET", "as")
	t.Setenv("OVH_CONSUMER_KEY", "ck")
	cfg, err = FromTargetConfig(nil)
	require.NoError(t, err)

	ovhCfg, err := cfg.OVHTransport()
	require.NoError(t, err)
	assert.Equal(t, "ak", ovhCfg.ApplicationKey)
	assert.Equal(t, "ovh-eu", ovhCfg.Endpoint)
}

func TestOpenStackTransport(t *testing.T) {
	clearEnv(t)

	cfg, err := FromTargetConfig(json.RawMessage(`{"region":"GRA11","authURL":"not a url"}`))
	require.NoError(t, err)

	_, err = cfg.OpenStackTransport()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OS_AUTH_URL must be a valid url")

	t.Setenv("OS_USERNAME", "user")
	t.Setenv("OS_PASSWORD", "secret")
	t.Setenv("OS_PROJECT_ID", "tenant")
	cfg, err = FromTargetConfig(json.RawMessage(`{"region":"GRA11","authURL":"https://auth.cloud.ovh.net/v3"}`))
	require.NoError(t, err)

	osCfg, err := cfg.OpenStackTransport()
	require.NoError(t, err)
	assert.Equal(t, "tenant", osCfg.ProjectID)
	assert.Equal(t, "GRA11", osCfg.Region)
	assert.Equal(t, "Default", osCfg.UserDomainName)
}

func TestS3Transport(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVH_S3_ACCESS_KEY", "access")
	t.Setenv("OVH_S3_SECRET_KEY", "secret")

	cfg, err := FromTargetConfig(json.RawMessage(`{"region":"SBG5"}`))
	require.NoError(t, err)

	s3Cfg, err := cfg.S3Transport()
	require.NoError(t, err)
	assert.Equal(t, "https://s3.sbg.io.cloud.ovh.net", s3Cfg.Endpoint)
	assert.Equal(t, "sbg", s3Cfg.Region)

	cfg.Region = ""
	cfg.S3Endpoint = ""
	_, err = cfg.S3Transport()
	assert.Error(t, err)
}
