//go:build !windows

package drives

import "github.com/rs/zerolog"

func volumeLabels(zerolog.Logger) map[string]string {
	return nil
}
