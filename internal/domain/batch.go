package domain

import "time"

// BatchStatus represents the lifecycle state of an import batch.
// Values include BatchStatusPending, BatchStatusProcessing,
// BatchStatusCompleted, and BatchStatusFailed.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// Terminal reports whether the status is a terminal state.
// A batch in a terminal state is never reopened.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// ImportBatch represents one import attempt and its progress metadata.
type ImportBatch struct {
	ID               string      `gorm:"type:text;primaryKey" json:"id"`
	SourceType       SourceType  `gorm:"type:text;not null;index" json:"source_type"`
	SourceFile       string      `gorm:"type:text" json:"source_file"`
	TotalRecords     int         `gorm:"default:0" json:"total_records"`
	ProcessedRecords int         `gorm:"default:0" json:"processed_records"`
	ErrorRecords     int         `gorm:"default:0" json:"error_records"`
	Status           BatchStatus `gorm:"type:text;index;default:pending" json:"status"`
	RawPayloadKey    string      `gorm:"type:text" json:"raw_payload_key,omitempty"`
	StartedAt        *time.Time  `json:"started_at,omitempty"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// TableName returns the database table name for ImportBatch.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ImportBatch) TableName() string {
	return "import_batches"
}

// Progress returns the completion percentage for the batch.
// Completed batches report 100, failed batches report 0, otherwise
// processed/total scaled to 0-100.
func (b *ImportBatch) Progress() float64 {
	switch b.Status {
	case BatchStatusCompleted:
		return 100
	case BatchStatusFailed:
		return 0
	}
	if b.TotalRecords == 0 {
		return 0
	}
	return float64(b.ProcessedRecords) / float64(b.TotalRecords) * 100
}

// RecordStatus represents the processing status of a single import record.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusProcessed RecordStatus = "processed"
	RecordStatusError     RecordStatus = "error"
)

// ImportRecord represents one row or entry within an import batch.
// SourceData holds the payload exactly as received; ProcessedData holds
// the validated and transformed payload. Immutable once written except
// for status.
type ImportRecord struct {
	ID               string       `gorm:"type:text;primaryKey" json:"id"`
	BatchID          string       `gorm:"type:text;not null;index" json:"batch_id"`
	RowNumber        int          `gorm:"default:0" json:"row_number"`
	SourceData       JSONMap      `gorm:"type:text;not null" json:"source_data"`
	ProcessedData    JSONMap      `gorm:"type:text" json:"processed_data,omitempty"`
	ValidationErrors StringArray  `gorm:"type:text" json:"validation_errors,omitempty"`
	Status           RecordStatus `gorm:"type:text;index;default:pending" json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TableName returns the database table name for ImportRecord.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ImportRecord) TableName() string {
	return "import_records"
}
