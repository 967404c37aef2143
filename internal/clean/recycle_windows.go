//go:build windows

package clean

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
)

// ─── Shell32 Syscalls ────────────────────────────────────────────────────────

var (
	modShell32          = windows.NewLazySystemDLL("shell32.dll")
	procEmptyRecycleBin = modShell32.NewProc("SHEmptyRecycleBinW")
	procQueryRecycleBin = modShell32.NewProc("SHQueryRecycleBinW")
)

const (
	sherbNoConfirmation = 0x00000001
	sherbNoProgressUI   = 0x00000002
	sherbNoSound        = 0x00000004
)

// shQueryRBInfo mirrors the Windows SHQUERYRBINFO struct.
// Go's natural alignment adds padding after cbSize on AMD64,
// matching the C struct layout on both 32-bit and 64-bit.
type shQueryRBInfo struct {
	cbSize      uint32
	i64Size     int64
	i64NumItems int64
}

// recycleBin lists the current user's items in every drive's $Recycle.Bin
// and empties the bin through the Shell API once they are gone.
type recycleBin struct {
	logger zerolog.Logger
}

func newRecycleBin(logger zerolog.Logger) Provider {
	return &recycleBin{logger: logger}
}

func (b *recycleBin) Name() string { return config.TargetRecycleBin }

func (b *recycleBin) Description() string {
	return "Windows Recycle Bin on all drives (emptied via system API)"
}

func (b *recycleBin) ListCandidateFiles(ctx context.Context) ([]string, error) {
	sid, err := currentUserSID()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, root := range driveRoots() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(root, "$Recycle.Bin", sid)
		_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && !strings.EqualFold(d.Name(), "desktop.ini") {
				files = append(files, path)
			}
			return nil
		})
	}
	sort.Strings(files)
	return files, nil
}

// TotalSize queries the bin's size across all drives with SHQueryRecycleBinW.
func (b *recycleBin) TotalSize() (int64, error) {
	var info shQueryRBInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procQueryRecycleBin.Call(
		0, // NULL = query all drives
		uintptr(unsafe.Pointer(&info)),
	)
	if ret != 0 {
		return 0, fmt.Errorf("SHQueryRecycleBinW failed: HRESULT 0x%08x", uint32(ret))
	}

	return info.i64Size, nil
}

// Empty calls SHEmptyRecycleBinW so Explorer's view matches the deleted
// files.
func (b *recycleBin) Empty(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	flags := uintptr(sherbNoConfirmation | sherbNoProgressUI | sherbNoSound)
	ret, _, _ := procEmptyRecycleBin.Call(0, 0, flags)

	hr := uint32(ret)
	// S_OK (0) = success, E_UNEXPECTED (0x8000FFFF) = bin already empty.
	if hr != 0 && hr != 0x8000FFFF {
		return fmt.Errorf("SHEmptyRecycleBinW failed: HRESULT 0x%08x", hr)
	}
	return nil
}

func currentUserSID() (string, error) {
	token := windows.GetCurrentProcessToken()
	user, err := token.GetTokenUser()
	if err != nil {
		return "", fmt.Errorf("query current user: %w", err)
	}
	return user.User.Sid.String(), nil
}

// driveRoots returns every mounted drive root ("C:\", "D:\", ...) by
// probing A-Z.
func driveRoots() []string {
	var roots []string
	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		roots = append(roots, root)
	}
	return roots
}
