package sqlite

import (
	"errors"
	"fmt"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

// writeError maps a rejected write onto the domain taxonomy.
// Errors that already carry a domain sentinel pass through unchanged.
func writeError(op string, err error) error {
	if errors.Is(err, domain.ErrQuotaExceeded) || errors.Is(err, domain.ErrWriteFailed) {
		return err
	}
	if isDiskFull(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrQuotaExceeded, op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrWriteFailed, op, err)
}

func isDiskFull(err error) bool {
	var se *sqlitedriver.Error
	if !errors.As(err, &se) {
		return false
	}
	// Extended result codes keep the primary code in the low byte
	return se.Code()&0xff == int(sqlite3.SQLITE_FULL)
}
