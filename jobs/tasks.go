package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOwnershipIntegrity scans the catalog for orphaned records.
	TaskOwnershipIntegrity = "catalog:ownership_integrity"
)

// OwnershipIntegrityPayload carries scheduling metadata for the scan.
type OwnershipIntegrityPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewOwnershipIntegrityTask constructs an Asynq task for the integrity scan.
func NewOwnershipIntegrityTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(OwnershipIntegrityPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOwnershipIntegrity, body, asynq.Queue(QueueDefault)), nil
}
