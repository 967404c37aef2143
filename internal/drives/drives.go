package drives

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/lakshaymaurya-felt/wintrack/internal/core"
	"github.com/lakshaymaurya-felt/wintrack/internal/ui"
)

// Drive is one mounted volume and its usage.
type Drive struct {
	Mountpoint  string  `json:"mountpoint"`
	Device      string  `json:"device"`
	Fstype      string  `json:"fstype"`
	Label       string  `json:"label,omitempty"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// Title is the heading shown above a drive's usage bar.
func (d Drive) Title() string {
	name := d.Mountpoint
	if d.Label != "" {
		name = fmt.Sprintf("%s (%s)", d.Mountpoint, d.Label)
	}
	return fmt.Sprintf("Drive %s - %s used of %s",
		name, core.FormatSize(int64(d.Used)), core.FormatSize(int64(d.Total)))
}

// Lister collects drive usage. The function fields default to gopsutil and
// are replaced in tests.
type Lister struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	labels     func() map[string]string
	logger     zerolog.Logger
}

// NewLister returns a Lister backed by gopsutil and, on Windows, WMI volume
// labels.
func NewLister(logger zerolog.Logger) *Lister {
	return &Lister{
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
		labels:     func() map[string]string { return volumeLabels(logger) },
		logger:     logger,
	}
}

// List returns mounted drives sorted by mountpoint. Optical drives,
// partitions without a filesystem, and volumes whose usage cannot be read
// are left out.
func (l *Lister) List(ctx context.Context) ([]Drive, error) {
	parts, err := l.partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	labels := l.labels()
	var drives []Drive
	for _, p := range parts {
		if skipPartition(p) {
			continue
		}
		u, err := l.usage(ctx, p.Mountpoint)
		if err != nil || u == nil || u.Total == 0 {
			l.logger.Debug().Err(err).Str("mountpoint", p.Mountpoint).Msg("skipping drive without usage")
			continue
		}
		drives = append(drives, Drive{
			Mountpoint:  p.Mountpoint,
			Device:      p.Device,
			Fstype:      p.Fstype,
			Label:       labels[strings.ToUpper(strings.TrimRight(p.Mountpoint, `\`))],
			Total:       u.Total,
			Used:        u.Used,
			Free:        u.Free,
			UsedPercent: u.UsedPercent,
		})
	}

	sort.Slice(drives, func(i, j int) bool { return drives[i].Mountpoint < drives[j].Mountpoint })
	return drives, nil
}

func skipPartition(p disk.PartitionStat) bool {
	if p.Fstype == "" {
		return true
	}
	for _, opt := range p.Opts {
		if strings.EqualFold(opt, "cdrom") {
			return true
		}
	}
	switch strings.ToUpper(p.Fstype) {
	case "CDFS", "UDF", "ISO9660":
		return true
	}
	return false
}

// Render prints each drive's title and a usage bar.
func Render(w io.Writer, drives []Drive, barWidth int) error {
	if len(drives) == 0 {
		_, err := fmt.Fprintln(w, "  No drives found.")
		return err
	}
	for _, d := range drives {
		if _, err := fmt.Fprintf(w, "  %s\n  %s %5.1f%%\n\n", d.Title(), ui.GradientBar(d.UsedPercent, barWidth), d.UsedPercent); err != nil {
			return err
		}
	}
	return nil
}
