package drives

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeLister(parts []disk.PartitionStat, usage map[string]*disk.UsageStat) *Lister {
	return &Lister{
		partitions: func(context.Context, bool) ([]disk.PartitionStat, error) { return parts, nil },
		usage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			if u, ok := usage[path]; ok {
				return u, nil
			}
			return nil, errors.New("not ready")
		},
		labels: func() map[string]string { return map[string]string{"D:": "Data"} },
		logger: zerolog.Nop(),
	}
}

func TestListSkipsOpticalAndUnreadable(t *testing.T) {
	l := fakeLister([]disk.PartitionStat{
		{Device: "D:", Mountpoint: `D:\`, Fstype: "NTFS", Opts: []string{"rw"}},
		{Device: "C:", Mountpoint: `C:\`, Fstype: "NTFS", Opts: []string{"rw", "compress"}},
		{Device: "E:", Mountpoint: `E:\`, Fstype: "CDFS", Opts: []string{"ro"}},
		{Device: "F:", Mountpoint: `F:\`, Fstype: "UDF", Opts: []string{"cdrom"}},
		{Device: "G:", Mountpoint: `G:\`, Fstype: ""},
		{Device: "H:", Mountpoint: `H:\`, Fstype: "FAT32"},
	}, map[string]*disk.UsageStat{
		`C:\`: {Total: 100, Used: 40, Free: 60, UsedPercent: 40},
		`D:\`: {Total: 200, Used: 180, Free: 20, UsedPercent: 90},
		`E:\`: {Total: 1, Used: 1, UsedPercent: 100},
	})

	drives, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, drives, 2)
	assert.Equal(t, `C:\`, drives[0].Mountpoint)
	assert.Equal(t, `D:\`, drives[1].Mountpoint)
	assert.Equal(t, "Data", drives[1].Label)
	assert.Equal(t, `Drive D:\ (Data) - 180 B used of 200 B`, drives[1].Title())
}

func TestListPartitionError(t *testing.T) {
	l := fakeLister(nil, nil)
	l.partitions = func(context.Context, bool) ([]disk.PartitionStat, error) { return nil, errors.New("denied") }
	_, err := l.List(context.Background())
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, 10))
	assert.Contains(t, buf.String(), "No drives found.")

	buf.Reset()
	require.NoError(t, Render(&buf, []Drive{{Mountpoint: "/", Total: 1024, Used: 512, UsedPercent: 50}}, 10))
	assert.Contains(t, buf.String(), "Drive / - 512 B used of 1.0 KiB")
	assert.Contains(t, buf.String(), "50.0%")
}
