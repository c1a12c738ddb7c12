package dto

// RegisterRequesterRequest upserts a requester's marketplace credentials.
type RegisterRequesterRequest struct {
	AccountID string `json:"account_id"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Email     string `json:"email"`
}

// RegisterTaskRequest records a task group and task on first observation.
// Reward is optional; when absent the marketplace is queried for it.
type RegisterTaskRequest struct {
	TaskGroupID string `json:"task_group_id"`
	TaskID      string `json:"task_id"`
	AccountID   string `json:"account_id"`
	Host        string `json:"host"`
	Reward      string `json:"reward,omitempty"`
}

// ReportDurationRequest records a worker's self-reported completion time, in
// minutes (fractional allowed). Re-reporting overwrites.
type ReportDurationRequest struct {
	TaskID          string  `json:"task_id"`
	WorkerID        string  `json:"worker_id"`
	SubmissionID    string  `json:"submission_id"`
	DurationMinutes float64 `json:"duration_minutes"`
	Consented       bool    `json:"consented"`
}
