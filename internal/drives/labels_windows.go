//go:build windows

package drives

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/yusufpapurcu/wmi"
)

type win32LogicalDisk struct {
	DeviceID   string
	VolumeName string
}

// volumeLabels maps "C:" style device IDs to volume names via WMI.
func volumeLabels(logger zerolog.Logger) map[string]string {
	var disks []win32LogicalDisk
	if err := wmi.Query("SELECT DeviceID, VolumeName FROM Win32_LogicalDisk", &disks); err != nil {
		logger.Debug().Err(err).Msg("cannot query volume labels")
		return nil
	}
	labels := make(map[string]string, len(disks))
	for _, d := range disks {
		if d.VolumeName != "" {
			labels[strings.ToUpper(d.DeviceID)] = d.VolumeName
		}
	}
	return labels
}
