package user

import (
	"time"

	"github.com/invobase/invobase/internal/types"
)

// User is an authenticated actor. TenantID is nil until the user is
// onboarded into a company; such users may not touch any tenant-scoped
// entity.
type User struct {
	ID        string         `db:"id" json:"id"`
	Email     string         `db:"email" json:"email"`
	Name      string         `db:"name" json:"name"`
	TenantID  *string        `db:"tenant_id" json:"tenant_id,omitempty"`
	Role      types.UserRole `db:"role" json:"role"`
	Status    types.Status   `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
