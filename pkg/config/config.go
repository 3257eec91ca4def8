// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/platform-engineering-labs/formae/pkg/model"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/resources/base"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/openstack"
	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/s3"
)

// Config holds the target configuration of the plugin.
// Only non-sensitive settings are stored in the target config. Credentials
// are always read from environment variables to avoid storing secrets in the
// database.
type Config struct {
	// Stored in target config (non-sensitive)
	ProjectID  string `json:"projectId"`  // OVH Public Cloud project (serviceName)
	Region     string `json:"region"`     // GRA11, SBG5, BHS5, DE1, ...
	Endpoint   string `json:"endpoint"`   // ovh-eu, ovh-ca, ovh-us
	AuthURL    string `json:"authURL"`    // https://auth.cloud.ovh.net/v3
	S3Endpoint string `json:"s3Endpoint"` // https://s3.gra.io.cloud.ovh.net

	// Read from environment variables only (never stored)
	OVH       OVHCredentials       `json:"-"`
	OpenStack OpenStackCredentials `json:"-"`
	S3        S3Credentials        `json:"-"`
}

// OVHCredentials authenticate against the OVH REST API.
type OVHCredentials struct {
	ApplicationKey    string `env:"OVH_APPLICATION_KEY" validate:"required"`
	ApplicationSecret string `env:"OVH_APPLICATION_SECRET" validate:"required"`
	ConsumerKey       string `env:"OVH_CONSUMER_KEY" validate:"required"`
}

// OpenStackCredentials authenticate against Keystone.
type OpenStackCredentials struct {
	Username   string `env:"OS_USERNAME" validate:"required"`
	Password   string `env:"OS_PASSWORD" validate:"required"`
	ProjectID  string `env:"OS_PROJECT_ID" validate:"required"`
	DomainName string `env:"OS_USER_DOMAIN_NAME"`
}

// S3Credentials authenticate against the S3-compatible object storage.
type S3Credentials struct {
	AccessKey string `env:"OVH_S3_ACCESS_KEY" validate:"required"`
	SecretKey string `env:"OVH_S3_SECRET_KEY" validate:"required"`
}

// openStackSettings is what the OpenStack transport needs from the target.
type openStackSettings struct {
	AuthURL string `env:"OS_AUTH_URL" validate:"required,url"`
	Region  string `env:"OS_REGION_NAME" validate:"required"`
}

type s3Settings struct {
	Endpoint string `env:"s3Endpoint" validate:"required,url"`
	Region   string `env:"region" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

// FromTarget extracts the configuration from a Target
func FromTarget(target *model.Target) (*Config, error) {
	if target == nil {
		return nil, fmt.Errorf("target is nil")
	}
	return FromTargetConfig(target.Config)
}

// FromTargetConfig extracts the configuration from a TargetConfig JSON.
// Nothing is validated here: each transport checks the settings it needs
// when it is built, so a DNS-only target needs no OpenStack credentials.
func FromTargetConfig(targetConfig json.RawMessage) (*Config, error) {
	var cfg Config

	if len(targetConfig) > 0 {
		if err := json.Unmarshal(targetConfig, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal target config: %w", err)
		}
		// The OVH API calls the project "serviceName"; accept both spellings.
		if cfg.ProjectID == "" {
			var alt struct {
				ServiceName string `json:"serviceName"`
			}
			_ = json.Unmarshal(targetConfig, &alt)
			cfg.ProjectID = alt.ServiceName
		}
	}

	if cfg.ProjectID == "" {
		cfg.ProjectID = os.Getenv("OVH_CLOUD_PROJECT_ID")
	}
	if cfg.Region == "" {
		cfg.Region = os.Getenv("OS_REGION_NAME")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = getEnvOrDefault("OVH_ENDPOINT", "ovh-eu")
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = os.Getenv("OS_AUTH_URL")
	}
	if cfg.S3Endpoint == "" && cfg.Region != "" {
		cfg.S3Endpoint = base.S3Endpoint(cfg.Region)
	}

	cfg.OVH = OVHCredentials{
		ApplicationKey:    os.Getenv("OVH_APPLICATION_KEY"),
		ApplicationSecret: os.Getenv("OVH_APPLICATION_SECRET"),
		ConsumerKey:       os.Getenv("OVH_CONSUMER_KEY"),
	}
	cfg.OpenStack = OpenStackCredentials{
		Username:   os.Getenv("OS_USERNAME"),
		Password:   os.Getenv("OS_PASSWORD"),
		ProjectID:  os.Getenv("OS_PROJECT_ID"),
		DomainName: getEnvOrDefault("OS_USER_DOMAIN_NAME", "Default"),
	}
	cfg.S3 = S3Credentials{
		AccessKey: os.Getenv("OVH_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("OVH_S3_SECRET_KEY"),
	}

	return &cfg, nil
}

// OVHTransport returns the OVH REST client configuration.
func (c *Config) OVHTransport() (*ovhtransport.OVHConfig, error) {
	if err := check("OVH API", c.OVH); err != nil {
		return nil, err
	}
	return &ovhtransport.OVHConfig{
		Endpoint:          c.Endpoint,
		ApplicationKey:    c.OVH.ApplicationKey,
		ApplicationSecret: c.OVH.ApplicationSecret,
		ConsumerKey:       c.OVH.ConsumerKey,
	}, nil
}

// OpenStackTransport returns the OpenStack client configuration.
func (c *Config) OpenStackTransport() (*openstack.Config, error) {
	if err := check("OpenStack", openStackSettings{AuthURL: c.AuthURL, Region: c.Region}); err != nil {
		return nil, err
	}
	if err := check("OpenStack", c.OpenStack); err != nil {
		return nil, err
	}
	return &openstack.Config{
		AuthURL:        c.AuthURL,
		Username:       c.OpenStack.Username,
		Password:       c.OpenStack.Password,
		ProjectID:      c.OpenStack.ProjectID,
		UserDomainName: c.OpenStack.DomainName,
		Region:         c.Region,
	}, nil
}

// S3Transport returns the object storage client configuration.
func (c *Config) S3Transport() (*s3.Config, error) {
	if err := check("object storage", s3Settings{Endpoint: c.S3Endpoint, Region: c.Region}); err != nil {
		return nil, err
	}
	if err := check("object storage", c.S3); err != nil {
		return nil, err
	}
	return &s3.Config{
		Endpoint:  c.S3Endpoint,
		Region:    base.S3Region(c.Region),
		AccessKey: c.S3.AccessKey,
		SecretKey: c.S3.SecretKey,
	}, nil
}

// check validates s and reports every missing or malformed setting at once.
func check(what string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid %s configuration: %w", what, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fe.Field()+" is required")
		default:
			problems = append(problems, fmt.Sprintf("%s must be a valid %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid %s configuration: %s", what, strings.Join(problems, ", "))
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
