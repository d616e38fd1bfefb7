package repository

import (
	"context"
	"errors"
	"fmt"

	"tourkorea/explorer/internal/domain"

	"github.com/jackc/pgx/v5"
)

type DetailRepository interface {
	SaveDetail(ctx context.Context, detail *domain.DetailRecord) error
	// GetDetail returns the last stored snapshot, or nil when the spot was never synced.
	GetDetail(ctx context.Context, contentID string) (*domain.DetailRecord, error)
}

type detailRepository struct {
	db DB
}

func NewDetailRepository(db DB) DetailRepository {
	return &detailRepository{
		db: db,
	}
}

func (r *detailRepository) SaveDetail(ctx context.Context, detail *domain.DetailRecord) error {
	query := `
	INSERT INTO tour_details (content_id, content_type_id, area_code, title, data, synced_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (content_id)
	DO UPDATE SET content_type_id = $2, area_code = $3, title = $4, data = $5, synced_at = NOW()`
	_, err := r.db.Exec(ctx, query,
		detail.ContentID,
		detail.ContentTypeID.String(),
		detail.AreaCode,
		detail.Title,
		detail,
	)
	if err != nil {
		return fmt.Errorf("failed to save detail %s: %w", detail.ContentID, err)
	}

	return nil
}

func (r *detailRepository) GetDetail(ctx context.Context, contentID string) (*domain.DetailRecord, error) {
	var detail domain.DetailRecord
	err := r.db.QueryRow(ctx, `SELECT data FROM tour_details WHERE content_id = $1`, contentID).Scan(&detail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load detail %s: %w", contentID, err)
	}
	return &detail, nil
}
