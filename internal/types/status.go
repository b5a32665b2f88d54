package types

// Status is a type for the lifecycle status of a persisted resource.
// Soft deletes are modelled by flipping this to StatusDeleted; deleted
// rows are excluded from all reads by default.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)
