package printing

import (
	"time"

	"github.com/google/uuid"

	"github.com/acaishop/printing/internal/domain/shared"
)

// PrintJob represents one queued unit of work: render and dispatch one
// order's receipt. Jobs live in memory and belong to the coordinator
// for their whole lifecycle.
type PrintJob struct {
	shared.BaseAggregateRoot
	OrderID      string    // order whose receipt is printed
	BatchID      uuid.UUID // batch this job belongs to
	Position     int       // FIFO position within the batch
	Status       JobStatus
	ErrorMessage string     // set when the job failed
	PrintedAt    *time.Time // when the device accepted the receipt
}

// NewPrintJob creates a queued print job
func NewPrintJob(orderID string, batchID uuid.UUID, position int) (*PrintJob, error) {
	if orderID == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if position < 0 {
		return nil, shared.NewDomainError("INVALID_POSITION", "Queue position cannot be negative")
	}

	job := &PrintJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		BatchID:           batchID,
		Position:          position,
		Status:            JobStatusQueued,
	}

	job.AddDomainEvent(NewPrintJobQueuedEvent(job))

	return job, nil
}

// StartRendering marks the job as handed to the device renderer
func (j *PrintJob) StartRendering() error {
	return j.transition(JobStatusRendering)
}

// AwaitConfirmation marks the render as done, pending the order-printed
// callback to the storefront
func (j *PrintJob) AwaitConfirmation() error {
	if err := j.transition(JobStatusAwaitingConfirmation); err != nil {
		return err
	}
	now := time.Now()
	j.PrintedAt = &now
	return nil
}

// Complete marks the job as completed
func (j *PrintJob) Complete() error {
	if err := j.transition(JobStatusCompleted); err != nil {
		return err
	}
	if j.PrintedAt == nil {
		now := time.Now()
		j.PrintedAt = &now
	}
	j.AddDomainEvent(NewPrintJobCompletedEvent(j))
	return nil
}

// Cancel marks a not-yet-started job as cancelled
func (j *PrintJob) Cancel() error {
	if err := j.transition(JobStatusCancelled); err != nil {
		return err
	}
	j.AddDomainEvent(NewPrintJobCancelledEvent(j))
	return nil
}

// Fail marks the job as failed with an error message
func (j *PrintJob) Fail(errorMessage string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}
	old := j.Status
	j.Status = JobStatusFailed
	j.ErrorMessage = errorMessage
	j.Touch()
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobStatusChangedEvent(j, old, JobStatusFailed))
	j.AddDomainEvent(NewPrintJobFailedEvent(j))
	return nil
}

// IsTerminal returns true if the job is in a terminal state
func (j *PrintJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

func (j *PrintJob) transition(target JobStatus) error {
	if !j.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot transition from "+j.Status.String()+" to "+target.String())
	}
	old := j.Status
	j.Status = target
	j.Touch()
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobStatusChangedEvent(j, old, target))
	return nil
}
