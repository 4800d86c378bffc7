package printing

import (
	"time"

	"github.com/google/uuid"

	domainprinting "github.com/acaishop/printing/internal/domain/printing"
)

// JobSnapshot is a point-in-time copy of a print job's state
type JobSnapshot struct {
	JobID        uuid.UUID  `json:"job_id"`
	BatchID      uuid.UUID  `json:"batch_id"`
	OrderID      string     `json:"order_id"`
	Position     int        `json:"position"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	PrintedAt    *time.Time `json:"printed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func snapshotJob(job *domainprinting.PrintJob) JobSnapshot {
	var printedAt *time.Time
	if job.PrintedAt != nil {
		t := *job.PrintedAt
		printedAt = &t
	}
	return JobSnapshot{
		JobID:        job.ID,
		BatchID:      job.BatchID,
		OrderID:      job.OrderID,
		Position:     job.Position,
		Status:       job.Status.String(),
		ErrorMessage: job.ErrorMessage,
		PrintedAt:    printedAt,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

// BatchResponse reports a batch and its jobs in queue order
type BatchResponse struct {
	BatchID  uuid.UUID     `json:"batch_id"`
	Jobs     []JobSnapshot `json:"jobs"`
	Finished bool          `json:"finished"`
}

func toBatchResponse(batchID uuid.UUID, jobs []JobSnapshot) *BatchResponse {
	finished := true
	for _, j := range jobs {
		if !domainprinting.JobStatus(j.Status).IsTerminal() {
			finished = false
			break
		}
	}
	return &BatchResponse{BatchID: batchID, Jobs: jobs, Finished: finished}
}

// DocumentResponse reports a generated and stored receipt document
type DocumentResponse struct {
	OrderID      string  `json:"order_id"`
	FileName     string  `json:"file_name"`
	Path         string  `json:"path"`
	URL          string  `json:"url"`
	Size         int64   `json:"size"`
	PageHeightMM float64 `json:"page_height_mm"`
}
