package types

import "time"

// BaseModel is embedded by all tenant-owned domain models. TenantID is
// stamped by the repository layer on create and never reassigned.
type BaseModel struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func GetDefaultBaseModel(scope TenantScope) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		TenantID:  scope.TenantID,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
