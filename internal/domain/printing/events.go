package printing

import (
	"github.com/google/uuid"

	"github.com/acaishop/printing/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePrintJob = "PrintJob"

// Event type constants for PrintJob
const (
	EventTypePrintJobQueued        = "PrintJobQueued"
	EventTypePrintJobStatusChanged = "PrintJobStatusChanged"
	EventTypePrintJobCompleted     = "PrintJobCompleted"
	EventTypePrintJobCancelled     = "PrintJobCancelled"
	EventTypePrintJobFailed        = "PrintJobFailed"
)

// PrintJobQueuedEvent is published when a job enters the queue
type PrintJobQueuedEvent struct {
	shared.BaseDomainEvent
	JobID    uuid.UUID `json:"job_id"`
	OrderID  string    `json:"order_id"`
	BatchID  uuid.UUID `json:"batch_id"`
	Position int       `json:"position"`
}

// NewPrintJobQueuedEvent creates a new PrintJobQueuedEvent
func NewPrintJobQueuedEvent(job *PrintJob) *PrintJobQueuedEvent {
	return &PrintJobQueuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobQueued, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		BatchID:         job.BatchID,
		Position:        job.Position,
	}
}

// PrintJobStatusChangedEvent is published on every status transition
type PrintJobStatusChangedEvent struct {
	shared.BaseDomainEvent
	JobID     uuid.UUID `json:"job_id"`
	OrderID   string    `json:"order_id"`
	OldStatus JobStatus `json:"old_status"`
	NewStatus JobStatus `json:"new_status"`
}

// NewPrintJobStatusChangedEvent creates a new PrintJobStatusChangedEvent
func NewPrintJobStatusChangedEvent(job *PrintJob, from, to JobStatus) *PrintJobStatusChangedEvent {
	return &PrintJobStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobStatusChanged, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		OldStatus:       from,
		NewStatus:       to,
	}
}

// PrintJobCompletedEvent is published when a job completes
type PrintJobCompletedEvent struct {
	shared.BaseDomainEvent
	JobID   uuid.UUID `json:"job_id"`
	OrderID string    `json:"order_id"`
	BatchID uuid.UUID `json:"batch_id"`
}

// NewPrintJobCompletedEvent creates a new PrintJobCompletedEvent
func NewPrintJobCompletedEvent(job *PrintJob) *PrintJobCompletedEvent {
	return &PrintJobCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCompleted, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		BatchID:         job.BatchID,
	}
}

// PrintJobCancelledEvent is published when a queued job is cancelled
type PrintJobCancelledEvent struct {
	shared.BaseDomainEvent
	JobID   uuid.UUID `json:"job_id"`
	OrderID string    `json:"order_id"`
	BatchID uuid.UUID `json:"batch_id"`
}

// NewPrintJobCancelledEvent creates a new PrintJobCancelledEvent
func NewPrintJobCancelledEvent(job *PrintJob) *PrintJobCancelledEvent {
	return &PrintJobCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCancelled, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		BatchID:         job.BatchID,
	}
}

// PrintJobFailedEvent is published when a job fails
type PrintJobFailedEvent struct {
	shared.BaseDomainEvent
	JobID        uuid.UUID `json:"job_id"`
	OrderID      string    `json:"order_id"`
	BatchID      uuid.UUID `json:"batch_id"`
	ErrorMessage string    `json:"error_message"`
}

// NewPrintJobFailedEvent creates a new PrintJobFailedEvent
func NewPrintJobFailedEvent(job *PrintJob) *PrintJobFailedEvent {
	return &PrintJobFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobFailed, AggregateTypePrintJob, job.ID),
		JobID:           job.ID,
		OrderID:         job.OrderID,
		BatchID:         job.BatchID,
		ErrorMessage:    job.ErrorMessage,
	}
}
