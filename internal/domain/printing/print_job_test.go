package printing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrintJob(t *testing.T) {
	batchID := uuid.New()

	tests := []struct {
		name        string
		orderID     string
		batchID     uuid.UUID
		position    int
		expectError bool
		errorMsg    string
	}{
		{
			name:     "valid job",
			orderID:  "A-1042",
			batchID:  batchID,
			position: 0,
		},
		{
			name:        "empty order ID",
			orderID:     "",
			batchID:     batchID,
			position:    0,
			expectError: true,
			errorMsg:    "Order ID cannot be empty",
		},
		{
			name:        "nil batch ID",
			orderID:     "A-1042",
			batchID:     uuid.Nil,
			position:    0,
			expectError: true,
			errorMsg:    "Batch ID cannot be empty",
		},
		{
			name:        "negative position",
			orderID:     "A-1042",
			batchID:     batchID,
			position:    -1,
			expectError: true,
			errorMsg:    "Queue position cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := NewPrintJob(tt.orderID, tt.batchID, tt.position)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, job)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, JobStatusQueued, job.Status)
			assert.Equal(t, tt.orderID, job.OrderID)
			assert.Len(t, job.GetDomainEvents(), 1)
			assert.Equal(t, EventTypePrintJobQueued, job.GetDomainEvents()[0].EventType())
		})
	}
}

func TestPrintJobLifecycle(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		job, err := NewPrintJob("A-1", uuid.New(), 0)
		require.NoError(t, err)

		require.NoError(t, job.StartRendering())
		assert.Equal(t, JobStatusRendering, job.Status)

		require.NoError(t, job.AwaitConfirmation())
		assert.Equal(t, JobStatusAwaitingConfirmation, job.Status)
		require.NotNil(t, job.PrintedAt)

		require.NoError(t, job.Complete())
		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.True(t, job.IsTerminal())
	})

	t.Run("cancel before rendering", func(t *testing.T) {
		job, err := NewPrintJob("A-2", uuid.New(), 1)
		require.NoError(t, err)

		require.NoError(t, job.Cancel())
		assert.Equal(t, JobStatusCancelled, job.Status)
		assert.True(t, job.IsTerminal())
	})

	t.Run("cannot cancel while rendering", func(t *testing.T) {
		job, err := NewPrintJob("A-3", uuid.New(), 0)
		require.NoError(t, err)
		require.NoError(t, job.StartRendering())

		err = job.Cancel()
		require.Error(t, err)
		assert.Equal(t, JobStatusRendering, job.Status)
	})

	t.Run("fail from rendering", func(t *testing.T) {
		job, err := NewPrintJob("A-4", uuid.New(), 0)
		require.NoError(t, err)
		require.NoError(t, job.StartRendering())

		require.NoError(t, job.Fail("device unavailable"))
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, "device unavailable", job.ErrorMessage)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		job, err := NewPrintJob("A-5", uuid.New(), 0)
		require.NoError(t, err)
		require.NoError(t, job.StartRendering())
		require.NoError(t, job.AwaitConfirmation())
		require.NoError(t, job.Complete())

		assert.Error(t, job.StartRendering())
		assert.Error(t, job.Cancel())
		assert.Error(t, job.Fail("late failure"))
		assert.Equal(t, JobStatusCompleted, job.Status)
	})
}

func TestJobStatusTransitions(t *testing.T) {
	tests := []struct {
		from    JobStatus
		to      JobStatus
		allowed bool
	}{
		{JobStatusQueued, JobStatusRendering, true},
		{JobStatusQueued, JobStatusCancelled, true},
		{JobStatusQueued, JobStatusFailed, true},
		{JobStatusQueued, JobStatusCompleted, false},
		{JobStatusRendering, JobStatusAwaitingConfirmation, true},
		{JobStatusRendering, JobStatusCompleted, true},
		{JobStatusRendering, JobStatusCancelled, false},
		{JobStatusAwaitingConfirmation, JobStatusCompleted, true},
		{JobStatusAwaitingConfirmation, JobStatusRendering, false},
		{JobStatusCompleted, JobStatusRendering, false},
		{JobStatusCancelled, JobStatusRendering, false},
		{JobStatusFailed, JobStatusQueued, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}
