package types

import "time"

// RecordState is the lifecycle of a soft-deletable catalog row. It is either
// Active or Deleted; no other implementations exist.
type RecordState interface {
	isRecordState()
}

// Active marks a row that participates in catalog reads.
type Active struct{}

// Deleted marks a row that was soft-deleted at the given instant.
type Deleted struct {
	At time.Time
}

func (Active) isRecordState() {}
func (Deleted) isRecordState() {}

// StateFromDeletedAt maps a nullable deletion timestamp onto a RecordState.
func StateFromDeletedAt(deletedAt *time.Time) RecordState {
	if deletedAt == nil || deletedAt.IsZero() {
		return Active{}
	}
	return Deleted{At: *deletedAt}
}

// IsDeleted reports whether the state is Deleted.
func IsDeleted(state RecordState) bool {
	_, ok := state.(Deleted)
	return ok
}
