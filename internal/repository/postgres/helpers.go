package postgres

import (
	"database/sql"

	ierr "github.com/invobase/invobase/internal/errors"
	"github.com/shopspring/decimal"
)

// requireRow converts a zero-rows-affected update into a not-found error.
// A row owned by another tenant never matches the scoped WHERE clause, so
// cross-tenant writes surface as not found too.
func requireRow(res sql.Result, entity, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError(entity + " not found").
			WithHintf("%s %s does not exist", entity, id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Failed to parse aggregated amount").
			Mark(ierr.ErrDatabase)
	}
	return d, nil
}
