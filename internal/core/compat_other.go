//go:build !windows

package core

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// HasDeliveryOptimization is a Windows-only service.
func HasDeliveryOptimization() bool {
	return false
}

// OSVersionString describes the host platform, e.g. "ubuntu 24.04 (linux)".
func OSVersionString() string {
	platform, _, version, err := host.PlatformInformation()
	if err != nil || platform == "" {
		return runtime.GOOS
	}
	return fmt.Sprintf("%s %s (%s)", platform, version, runtime.GOOS)
}
