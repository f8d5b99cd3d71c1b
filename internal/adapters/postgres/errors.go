package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

// Unavailable wraps a driver error as credentialstore.ErrUnavailable.
// Context cancellation is passed through untouched.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %s (SQLSTATE %s)", credentialstore.ErrUnavailable, op, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", credentialstore.ErrUnavailable, op, err)
}
