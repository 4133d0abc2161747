package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
	"github.com/fkoehler/kickflow/internal/parser"
	"github.com/fkoehler/kickflow/internal/storage"
	"github.com/fkoehler/kickflow/internal/transform"
	"github.com/fkoehler/kickflow/internal/validate"
)

// BatchStore is the batch persistence surface the coordinator needs.
type BatchStore interface {
	Create(ctx context.Context, batch *domain.ImportBatch) error
	Update(ctx context.Context, batch *domain.ImportBatch) error
	GetByID(ctx context.Context, id string) (*domain.ImportBatch, error)
}

// RecordStore is the per-row persistence surface the coordinator needs.
type RecordStore interface {
	Create(ctx context.Context, record *domain.ImportRecord) error
	CreateBatch(ctx context.Context, records []domain.ImportRecord) error
	ListProcessedByBatch(ctx context.Context, batchID string) ([]domain.ImportRecord, error)
}

// ProductExtractor derives catalog products from a completed batch.
// Failures must not change the batch outcome.
type ProductExtractor interface {
	ExtractFromBatch(ctx context.Context, batchID string) error
}

// OrderMaterializer turns a completed batch's records into orders.
// Failures must not change the batch outcome.
type OrderMaterializer interface {
	MaterializeFromBatch(ctx context.Context, batchID string) error
}

// Result summarizes one import run.
type Result struct {
	BatchID          string             `json:"batch_id"`
	Status           domain.BatchStatus `json:"status"`
	TotalRecords     int                `json:"total_records"`
	ProcessedRecords int                `json:"processed_records"`
	ErrorRecords     int                `json:"error_records"`
	Errors           []string           `json:"errors,omitempty"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// ImportService coordinates the import pipeline: parse, validate, transform,
// persist, then derive catalog products and orders.
type ImportService struct {
	batches    BatchStore
	records    RecordStore
	validators *validate.Registry
	archive    storage.ObjectStorage // nil disables payload archiving
	products   ProductExtractor      // nil disables product extraction
	orders     OrderMaterializer     // nil disables order materialization
}

// NewImportService creates a new ImportService.
// Parameters:
//   - batches: batch persistence.
//   - records: per-row persistence.
//   - validators: per-source validator registry.
//   - archive: raw payload archive, may be nil.
//   - products: product extraction hook, may be nil.
//   - orders: order materialization hook, may be nil.
// Returns:
//   - *ImportService: coordinator bound to the given dependencies.
func NewImportService(batches BatchStore, records RecordStore, validators *validate.Registry, archive storage.ObjectStorage, products ProductExtractor, orders OrderMaterializer) *ImportService {
	return &ImportService{
		batches:    batches,
		records:    records,
		validators: validators,
		archive:    archive,
		products:   products,
		orders:     orders,
	}
}

// CreateBatch creates the initial pending batch record. It is called before
// processing starts so the caller can hand out the batch ID immediately.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - source: source type of the upload.
//   - filename: original filename, empty for API imports.
// Returns:
//   - *domain.ImportBatch: created batch in pending state.
//   - error: non-nil if persistence fails.
func (s *ImportService) CreateBatch(ctx context.Context, source domain.SourceType, filename string) (*domain.ImportBatch, error) {
	if filename == "" {
		filename = "api_import"
	}
	now := time.Now().UTC()
	batch := &domain.ImportBatch{
		ID:         uuid.New().String(),
		SourceType: source,
		SourceFile: filename,
		Status:     domain.BatchStatusPending,
		StartedAt:  &now,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create import batch: %w", err)
	}
	logger.CtxInfo(ctx, "created import batch %s for source %s", batch.ID, source)
	return batch, nil
}

// ProcessFile parses an uploaded file and processes its records for an
// existing batch. The raw payload is archived best-effort when an archive
// is configured.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: batch created via CreateBatch.
//   - source: source type of the upload.
//   - filename: original filename, used for format detection.
//   - content: raw file bytes.
// Returns:
//   - *Result: summary of the run.
//   - error: non-nil on unhandled processing errors.
func (s *ImportService) ProcessFile(ctx context.Context, batchID string, source domain.SourceType, filename string, content []byte) (*Result, error) {
	ctx = logger.SetBatchID(ctx, batchID)

	if s.archive != nil {
		key := storage.ImportKey(batchID, filename)
		if err := s.archive.Upload(ctx, key, bytes.NewReader(content), int64(len(content)), "application/octet-stream"); err != nil {
			logger.CtxWarn(ctx, "failed to archive raw payload: %v", err)
		} else if batch, err := s.batches.GetByID(ctx, batchID); err == nil {
			batch.RawPayloadKey = key
			if err := s.batches.Update(ctx, batch); err != nil {
				logger.CtxWarn(ctx, "failed to record payload key: %v", err)
			}
		}
	}

	parsed, err := parser.Parse(content, parser.Options{Filename: filename})
	if err != nil {
		if batch, getErr := s.batches.GetByID(ctx, batchID); getErr == nil {
			s.markFailed(ctx, batch, 0)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	for _, warning := range parsed.Warnings {
		logger.CtxWarn(ctx, "parse warning: %s", warning)
	}

	result, err := s.ProcessRecords(ctx, batchID, source, parsed.Records)
	if result != nil {
		result.Warnings = append(parsed.Warnings, result.Warnings...)
	}
	return result, err
}

// ProcessRecords runs the pipeline for already-parsed records. A validation
// failure is a terminal batch outcome, not an error; errors are reserved for
// unhandled failures, which also mark the batch failed. Per-row persistence
// failures are counted in the error total without failing the batch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: batch created via CreateBatch.
//   - source: source type of the records.
//   - data: parsed records in file order.
// Returns:
//   - *Result: summary of the run.
//   - error: non-nil on unhandled processing errors.
func (s *ImportService) ProcessRecords(ctx context.Context, batchID string, source domain.SourceType, data []map[string]interface{}) (*Result, error) {
	ctx = logger.SetBatchID(ctx, batchID)
	log := logger.With(logger.Fields{logger.FieldCount: len(data)})
	log.Info(ctx, "starting batch processing")

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("batch %s not found: %w", batchID, err)
	}

	batch.Status = domain.BatchStatusProcessing
	batch.TotalRecords = len(data)
	if err := s.batches.Update(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to mark batch processing: %w", err)
	}

	validation := s.validateData(data, source)
	if !validation.IsValid() {
		log.WithStatus(string(domain.BatchStatusFailed)).
			Error(ctx, "validation failed with %d errors", len(validation.Errors))
		s.markFailed(ctx, batch, len(data))
		return &Result{
			BatchID:      batchID,
			Status:       domain.BatchStatusFailed,
			TotalRecords: len(data),
			ErrorRecords: len(data),
			Errors:       validation.Errors,
			Warnings:     validation.Warnings,
		}, nil
	}

	transformer := transform.ForSource(source)
	transformed := transformer.Transform(ctx, validation.NormalizedData)

	stored := s.storeRecords(ctx, batchID, transformed, data)

	s.runHooks(ctx, batchID, stored)

	batch.Status = domain.BatchStatusCompleted
	batch.ProcessedRecords = stored
	batch.ErrorRecords = len(data) - stored
	completed := time.Now().UTC()
	batch.CompletedAt = &completed
	if err := s.batches.Update(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to mark batch completed: %w", err)
	}

	log.WithStatus(string(domain.BatchStatusCompleted)).
		Info(ctx, "batch processed: %d/%d records", stored, len(data))

	return &Result{
		BatchID:          batchID,
		Status:           domain.BatchStatusCompleted,
		TotalRecords:     len(data),
		ProcessedRecords: stored,
		ErrorRecords:     len(data) - stored,
		Errors:           append(validation.Errors, transformed.Errors...),
		Warnings:         append(validation.Warnings, transformed.Warnings...),
	}, nil
}

// BatchStatus returns the current state of a batch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: batch ID.
// Returns:
//   - *domain.ImportBatch: batch record.
//   - error: non-nil if lookup fails.
func (s *ImportService) BatchStatus(ctx context.Context, batchID string) (*domain.ImportBatch, error) {
	return s.batches.GetByID(ctx, batchID)
}

// validateData runs the source's validator. Sources without a registered
// validator pass through unvalidated.
func (s *ImportService) validateData(data []map[string]interface{}, source domain.SourceType) *validate.Result {
	validator, ok := s.validators.ForSource(source)
	if !ok {
		return &validate.Result{NormalizedData: data}
	}
	return validator.ValidateBatch(data)
}

// storeRecords persists one ImportRecord per transformed record, pairing it
// with the original source row. Rows the transformer dropped are persisted as
// error records carrying their failure messages. The bulk insert is the fast
// path; when it fails, rows are retried one by one so a single bad row cannot
// take down the batch. Returns the number of processed rows persisted.
func (s *ImportService) storeRecords(ctx context.Context, batchID string, transformed *transform.Result, original []map[string]interface{}) int {
	records := make([]domain.ImportRecord, 0, len(transformed.Transformed)+len(transformed.RowErrors))
	for idx, record := range transformed.Transformed {
		rowNumber := idx + 1
		if srcRow, ok := record["_source_row"].(int); ok {
			rowNumber = srcRow
		}
		sourceData := record
		if rowNumber-1 < len(original) {
			sourceData = original[rowNumber-1]
		}
		records = append(records, domain.ImportRecord{
			ID:            uuid.New().String(),
			BatchID:       batchID,
			RowNumber:     rowNumber,
			SourceData:    domain.JSONMap(sourceData),
			ProcessedData: domain.JSONMap(record),
			Status:        domain.RecordStatusProcessed,
		})
	}

	droppedRows := make([]int, 0, len(transformed.RowErrors))
	for row := range transformed.RowErrors {
		droppedRows = append(droppedRows, row)
	}
	sort.Ints(droppedRows)
	for _, row := range droppedRows {
		var sourceData map[string]interface{}
		if row >= 1 && row-1 < len(original) {
			sourceData = original[row-1]
		}
		records = append(records, domain.ImportRecord{
			ID:               uuid.New().String(),
			BatchID:          batchID,
			RowNumber:        row,
			SourceData:       domain.JSONMap(sourceData),
			ValidationErrors: domain.StringArray(transformed.RowErrors[row]),
			Status:           domain.RecordStatusError,
		})
	}

	if err := s.records.CreateBatch(ctx, records); err == nil {
		return len(transformed.Transformed)
	}

	// Bulk insert failed; retry row by row to isolate the failing rows.
	stored := 0
	for i := range records {
		if err := s.records.Create(ctx, &records[i]); err != nil {
			logger.CtxWarn(ctx, "row %d: failed to store record: %v", records[i].RowNumber, err)
			continue
		}
		if records[i].Status == domain.RecordStatusProcessed {
			stored++
		}
	}
	return stored
}

// runHooks triggers product extraction and order materialization. Hook
// failures are logged and swallowed so they never change the batch outcome.
func (s *ImportService) runHooks(ctx context.Context, batchID string, stored int) {
	if stored == 0 {
		return
	}
	if s.products != nil {
		if err := s.products.ExtractFromBatch(ctx, batchID); err != nil {
			logger.CtxError(ctx, "product extraction failed: %v", err)
		}
	}
	if s.orders != nil {
		if err := s.orders.MaterializeFromBatch(ctx, batchID); err != nil {
			logger.CtxError(ctx, "order materialization failed: %v", err)
		}
	}
}

func (s *ImportService) markFailed(ctx context.Context, batch *domain.ImportBatch, errorRecords int) {
	batch.Status = domain.BatchStatusFailed
	batch.ErrorRecords = errorRecords
	completed := time.Now().UTC()
	batch.CompletedAt = &completed
	if err := s.batches.Update(ctx, batch); err != nil {
		logger.CtxError(ctx, "failed to mark batch failed: %v", err)
	}
}
