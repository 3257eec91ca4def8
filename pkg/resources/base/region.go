// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package base

import (
	"fmt"
	"regexp"
	"strings"
)

// Regions are spelled two ways. The OpenStack services (instances, volumes,
// networks) and the regional /cloud paths use the zone-numbered name (GRA7,
// US-EAST-VA-1); databases, containers and the object storage use the short
// name (GRA, US-EAST-VA).

var zoneNumber = regexp.MustCompile(`-?\d+$`)

// DeriveShortRegion strips the zone number of an OpenStack region name.
// Short names are returned unchanged.
func DeriveShortRegion(region string) string {
	return zoneNumber.ReplaceAllString(strings.TrimSpace(region), "")
}

// S3Region is the signing region of the object storage serving region.
func S3Region(region string) string {
	return strings.ToLower(DeriveShortRegion(region))
}

// S3Endpoint is the object storage endpoint serving region.
func S3Endpoint(region string) string {
	short := S3Region(region)
	if short == "" {
		return ""
	}
	return fmt.Sprintf("https://s3.%s.io.cloud.ovh.net", short)
}
