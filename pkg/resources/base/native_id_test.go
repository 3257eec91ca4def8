// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeIDRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		format   NativeIDFormat
		nativeID string
		want     PathContext
	}{
		{
			name:     "simple name",
			format:   SimpleNameFormat,
			nativeID: "my-bucket",
			want:     PathContext{ResourceName: "my-bucket"},
		},
		{
			name:     "zone record",
			format:   HierarchicalFormat,
			nativeID: "example.com/5012345",
			want:     PathContext{Zone: "example.com", ResourceName: "5012345"},
		},
		{
			name:     "project resource",
			format:   ProjectHierarchicalFormat,
			nativeID: "proj/cluster-1",
			want:     PathContext{Project: "proj", ResourceName: "cluster-1"},
		},
		{
			name:     "nested resource",
			format:   ProjectNestedFormat,
			nativeID: "proj/kube-1/pool-1",
			want:     PathContext{Project: "proj", ParentResource: "kube-1", ResourceName: "pool-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NativeIDConfig{Format: tt.format}
			got, err := ParseNativeID(cfg, tt.nativeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.nativeID, BuildNativeID(cfg, got))
		})
	}
}

func TestParseNativeIDErrors(t *testing.T) {
	tests := []struct {
		name     string
		format   NativeIDFormat
		nativeID string
	}{
		{name: "empty", format: SimpleNameFormat, nativeID: ""},
		{name: "zone without record", format: HierarchicalFormat, nativeID: "example.com"},
		{name: "project without id", format: ProjectHierarchicalFormat, nativeID: "proj/"},
		{name: "nested missing parent", format: ProjectNestedFormat, nativeID: "proj/pool-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNativeID(NativeIDConfig{Format: tt.format}, tt.nativeID)
			assert.Error(t, err)
		})
	}
}

func TestBuildNativeIDWithoutPrefix(t *testing.T) {
	assert.Equal(t, "42", BuildNativeID(NativeIDConfig{Format: HierarchicalFormat}, PathContext{ResourceName: "42"}))
	assert.Equal(t, "proj/pool", BuildNativeID(NativeIDConfig{Format: ProjectNestedFormat}, PathContext{Project: "proj", ResourceName: "pool"}))
}
