package workspace

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one queued inference request. Conversations are in-memory, so
// the job row carries the result text itself plus the tag needed to
// route it back into the right conversation on delivery.
type Job struct {
	ID string `gorm:"primaryKey;size:26"` // ULID length

	UserID         uint64 `gorm:"not null;index;index:uniq_job_idempo,unique,priority:1"`
	ConversationID string `gorm:"size:26;index;not null"`
	Seq            uint64 `gorm:"not null"`

	ModelID string `gorm:"size:64;not null"`
	Prompt  string `gorm:"type:text;not null"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_job_idempo,unique,priority:2"`

	Status JobStatus `gorm:"type:varchar(16);index;not null"`

	// Filled when succeeded
	ResultText *string `gorm:"type:text"`

	// Filled when failed
	Error *string `gorm:"type:text"`

	// Set once the result has been folded into the conversation.
	Applied bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string { return "inference_jobs" }
