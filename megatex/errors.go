package megatex

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDimensionMismatch = errors.New("megatex: dimension mismatch")

// BackupLoadError reports a square that could be loaded neither from the
// primary nor from the backup archive.
type BackupLoadError struct {
	Name    string
	Primary error
	Backup  error
}

func (e *BackupLoadError) Error() string {
	return fmt.Sprintf("megatex: %q failed in primary archive (%v) and in backup archive (%v)",
		e.Name, e.Primary, e.Backup)
}

func (e *BackupLoadError) Unwrap() []error {
	return []error{e.Primary, e.Backup}
}

// ExcessiveFallbackError reports a compilation where the share of squares
// taken from the backup archive exceeds the allowed rate.
type ExcessiveFallbackError struct {
	Failures []string
	Total    int
	Rate     float64
	Limit    float64
}

func (e *ExcessiveFallbackError) Error() string {
	const maxListed = 10

	names := e.Failures
	suffix := ""
	if len(names) > maxListed {
		names = names[:maxListed]
		suffix = fmt.Sprintf(" and %d more", len(e.Failures)-maxListed)
	}
	return fmt.Sprintf("megatex: %d of %d squares (%.2f%%) fell back to the backup archive, limit is %.2f%%: %s%s",
		len(e.Failures), e.Total, e.Rate*100, e.Limit*100, strings.Join(names, ", "), suffix)
}
