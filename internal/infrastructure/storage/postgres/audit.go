package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"jobquote/internal/core/id"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/quotation"
)

// CompressionAlgo specifies how details are stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the details size above which payloads are compressed.
const DefaultCompressThreshold = 10 * 1024

// auditRow is the audit_log row layout.
type auditRow struct {
	ID                id.ID             `db:"id"`
	QuotationID       id.ID             `db:"quotation_id"`
	Action            audit.Action      `db:"action"`
	OldStatus         *quotation.Status `db:"old_status"`
	NewStatus         *quotation.Status `db:"new_status"`
	PrincipalID       string            `db:"principal_id"`
	PrincipalRole     string            `db:"principal_role"`
	Comment           string            `db:"comment"`
	Details           []byte            `db:"details"`
	DetailsCompressed []byte            `db:"details_compressed"`
	CompressionAlgo   CompressionAlgo   `db:"compression_algo"`
	CreatedAt         time.Time         `db:"created_at"`
}

var auditColumns = ExtractDBColumns[auditRow]()

// AuditStore implements audit.Store on the audit_log table.
// audit_log has no foreign key to quotations, so history outlives deleted quotations.
type AuditStore struct {
	txManager         *TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Store = (*AuditStore)(nil)

// NewAuditStore creates a new audit store.
func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditStore{
		txManager:         txManager,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Append inserts e in the transaction carried by ctx.
func (s *AuditStore) Append(ctx context.Context, e *audit.Entry) error {
	row := s.encode(e)

	sql, args, err := s.builder.
		Insert("audit_log").
		SetMap(StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByQuotation returns entries oldest first.
func (s *AuditStore) ListByQuotation(ctx context.Context, quotationID id.ID) ([]audit.Entry, error) {
	sql, args, err := s.builder.
		Select(auditColumns...).
		From("audit_log").
		Where(squirrel.Eq{"quotation_id": quotationID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := s.decode(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *AuditStore) encode(e *audit.Entry) auditRow {
	row := auditRow{
		ID:              e.ID,
		QuotationID:     e.QuotationID,
		Action:          e.Action,
		OldStatus:       e.OldStatus,
		NewStatus:       e.NewStatus,
		PrincipalID:     e.PrincipalID,
		PrincipalRole:   e.PrincipalRole,
		Comment:         e.Comment,
		Details:         e.Details,
		CompressionAlgo: CompressionNone,
		CreatedAt:       e.CreatedAt,
	}
	if len(e.Details) > s.compressThreshold {
		row.DetailsCompressed = s.encoder.EncodeAll(e.Details, nil)
		row.Details = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row
}

func (s *AuditStore) decode(row auditRow) (audit.Entry, error) {
	details := row.Details
	if row.CompressionAlgo == CompressionZstd && len(row.DetailsCompressed) > 0 {
		decompressed, err := s.decoder.DecodeAll(row.DetailsCompressed, nil)
		if err != nil {
			return audit.Entry{}, fmt.Errorf("decompress details: %w", err)
		}
		details = decompressed
	}

	return audit.Entry{
		ID:            row.ID,
		QuotationID:   row.QuotationID,
		Action:        row.Action,
		OldStatus:     row.OldStatus,
		NewStatus:     row.NewStatus,
		PrincipalID:   row.PrincipalID,
		PrincipalRole: row.PrincipalRole,
		Comment:       row.Comment,
		Details:       json.RawMessage(details),
		CreatedAt:     row.CreatedAt,
	}, nil
}
