package service

import (
	"context"
	"fmt"

	"github.com/fkoehler/kickflow/internal/catalog"
	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
)

// ProductService extracts catalog entries from processed import records so
// imported sales always reference a real product, even when the item was
// never tracked as inventory.
type ProductService struct {
	records  RecordStore
	resolver catalog.Resolver
}

// NewProductService creates a new ProductService.
// Parameters:
//   - records: per-row import record reads.
//   - resolver: catalog entity resolver.
// Returns:
//   - *ProductService: service bound to the given dependencies.
func NewProductService(records RecordStore, resolver catalog.Resolver) *ProductService {
	return &ProductService{records: records, resolver: resolver}
}

// ExtractFromBatch upserts products and sizes referenced by a batch's
// processed records. Rows without a product name are skipped.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: completed import batch.
// Returns:
//   - error: non-nil if reading records fails; per-record failures are
//     logged and skipped.
func (s *ProductService) ExtractFromBatch(ctx context.Context, batchID string) error {
	ctx = logger.SetBatchID(ctx, batchID)

	records, err := s.records.ListProcessedByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to load batch records: %w", err)
	}

	resolved := 0
	for _, record := range records {
		if err := s.extractRecord(ctx, record.ProcessedData); err != nil {
			logger.CtxError(ctx, "row %d: product extraction failed: %v", record.RowNumber, err)
			continue
		}
		resolved++
	}

	logger.CtxInfo(ctx, "product extraction done: %d of %d records resolved", resolved, len(records))
	return nil
}

func (s *ProductService) extractRecord(ctx context.Context, data domain.JSONMap) error {
	name := stringAt(data, "product_name")
	if name == "" {
		name = stringAt(data, "item_name")
	}
	sku := stringAt(data, "sku")
	if name == "" && sku == "" {
		return nil
	}

	product, err := s.resolver.GetOrCreateProduct(ctx, sku, name, stringAt(data, "brand"))
	if err != nil {
		return err
	}

	if size := stringAt(data, "size"); size != "" {
		if _, err := s.resolver.GetOrCreateSize(ctx, product.CategoryID, size); err != nil {
			return err
		}
	}
	return nil
}
