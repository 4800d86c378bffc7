package printing

// JobStatus represents the status of a print job
type JobStatus string

const (
	JobStatusQueued               JobStatus = "QUEUED"                // waiting in the batch
	JobStatusRendering            JobStatus = "RENDERING"             // handed to the device renderer
	JobStatusAwaitingConfirmation JobStatus = "AWAITING_CONFIRMATION" // rendered, order-printed callback pending
	JobStatusCompleted            JobStatus = "COMPLETED"
	JobStatusCancelled            JobStatus = "CANCELLED"
	JobStatusFailed               JobStatus = "FAILED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusQueued, JobStatusRendering, JobStatusAwaitingConfirmation,
		JobStatusCompleted, JobStatusCancelled, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status. Terminal jobs
// are never re-entered.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status.
// Cancellation is only possible before rendering starts: an in-flight job
// always finishes its current render.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return target == JobStatusRendering || target == JobStatusCancelled || target == JobStatusFailed
	case JobStatusRendering:
		return target == JobStatusAwaitingConfirmation || target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusAwaitingConfirmation:
		return target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusCompleted, JobStatusCancelled, JobStatusFailed:
		return false
	}
	return false
}
