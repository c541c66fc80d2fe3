package domain

import "time"

const (
	ETLStatusSuccess = "SUCCESS"
	ETLStatusFailed  = "FAILED"
)

// ETLJobStatus is the idempotence ledger for raw-file ingestion. FileName is
// the unique key; a SUCCESS row means the file is never reprocessed.
type ETLJobStatus struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName    string    `gorm:"column:file_name;uniqueIndex;not null" json:"file_name"`
	Status      string    `gorm:"column:status;not null" json:"status"`
	LastUpdated time.Time `gorm:"column:last_updated;not null" json:"last_updated"`
}

func (ETLJobStatus) TableName() string {
	return "etl_job_status"
}
