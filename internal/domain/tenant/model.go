package tenant

import (
	"time"

	"github.com/invobase/invobase/internal/types"
)

// Tenant is a company whose data is isolated from every other company.
// It owns zero-or-one subscription and many invoices.
type Tenant struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	ContactEmail string       `db:"contact_email" json:"contact_email"`
	ContactPhone string       `db:"contact_phone" json:"contact_phone,omitempty"`
	Address      string       `db:"address" json:"address,omitempty"`
	Status       types.Status `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

func (t *Tenant) IsDeleted() bool {
	return t.Status == types.StatusDeleted
}
