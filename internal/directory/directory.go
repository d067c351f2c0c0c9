// Package directory reads the registered-user directory. The directory is
// owned elsewhere; this service only enumerates it to build alert audiences.
package directory

import (
	"context"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

type UserDirectory interface {
	// ListUsers returns every registered user. Iteration order is not stable
	// and callers must not depend on it.
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
}
