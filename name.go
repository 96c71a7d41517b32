package cfgxlsx

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultPrefix = "export_"
	uploadSuffix  = ".cfg"
)

// DefaultName returns export_<YYYYMMDD>_<epoch ms>.xlsx for now, using the
// calendar date in now's location.
func DefaultName(now time.Time) string {
	y, m, d := now.Date()
	return fmt.Sprintf("%s%04d%02d%02d_%d.xlsx", defaultPrefix, y, int(m), d, now.UnixMilli())
}

// FinalName combines a default name with the base name of an uploaded
// source. An empty upload name leaves the default name unchanged.
func FinalName(defaultName, uploadedBaseName string) string {
	if uploadedBaseName == "" {
		return defaultName
	}
	base := strings.TrimSuffix(uploadedBaseName, uploadSuffix)
	return base + "_" + strings.TrimPrefix(defaultName, defaultPrefix)
}
