// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/registry"
)

// Types lists the registered resource types.
func Types(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported resource types",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, t := range registry.ListResourceTypes() {
				fmt.Fprintln(opts.Out, t)
			}
			return nil
		},
	}
}

// Create creates a resource from a YAML or JSON properties file and waits
// for it to become ready.
func Create(opts *Options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create TYPE",
		Short: "Create a resource and wait until it is ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := LoadProperties(file)
			if err != nil {
				return err
			}
			d, err := opts.driver(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := d.Create(cmd.Context(), props)
			if err != nil {
				return err
			}
			return opts.print(summarize(result))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the properties file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// Read prints the current properties of a resource.
func Read(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "read TYPE NATIVE_ID",
		Short: "Print the current properties of a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.driver(cmd, args[0])
			if err != nil {
				return err
			}
			props, err := d.Read(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return opts.print(props)
		},
	}
}

// Update applies a properties file to an existing resource.
func Update(opts *Options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update TYPE NATIVE_ID",
		Short: "Update a resource and wait until it settles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := LoadProperties(file)
			if err != nil {
				return err
			}
			d, err := opts.driver(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := d.Update(cmd.Context(), args[1], props)
			if err != nil {
				return err
			}
			return opts.print(summarize(result))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the properties file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// Delete deletes a resource and waits until it is gone.
func Delete(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TYPE NATIVE_ID",
		Short: "Delete a resource and wait until it is gone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.driver(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := d.Delete(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return opts.print(summarize(result))
		},
	}
}

// List prints the native ids of a resource type.
func List(opts *Options) *cobra.Command {
	var scope []string

	cmd := &cobra.Command{
		Use:   "list TYPE",
		Short: "List the native ids of a resource type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			additional, err := parseScope(scope)
			if err != nil {
				return err
			}
			d, err := opts.driver(cmd, args[0])
			if err != nil {
				return err
			}
			ids, err := d.List(cmd.Context(), additional)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(opts.Out, id)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&scope, "scope", nil, "Parent scope as key=value, e.g. --scope kubeId=abc (repeatable)")
	return cmd
}

// LoadProperties reads a properties document and returns it as JSON. YAML
// is accepted since JSON is a subset of it.
func LoadProperties(path string) (json.RawMessage, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	}

	var props map[string]interface{}
	if err := yaml.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("failed to parse properties file: %w", err)
	}
	if props == nil {
		props = map[string]interface{}{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("properties file %s cannot be expressed as JSON: %w", path, err)
	}
	return raw, nil
}

func parseScope(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	scope := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid scope %q, expected key=value", pair)
		}
		scope[key] = value
	}
	return scope, nil
}

type summary struct {
	NativeID   string          `json:"nativeId"`
	Status     string          `json:"status"`
	Message    string          `json:"message,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

func summarize(r *resource.ProgressResult) summary {
	return summary{
		NativeID:   r.NativeID,
		Status:     string(r.OperationStatus),
		Message:    r.StatusMessage,
		Properties: r.ResourceProperties,
	}
}
