package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourkorea/explorer/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrBookmarkNotFound = errors.New("bookmark not found")

type Bookmark struct {
	ID            uuid.UUID          `json:"id"`
	UserID        string             `json:"userId"`
	ContentID     string             `json:"contentId"`
	ContentTypeID domain.ContentType `json:"contentTypeId"`
	Title         string             `json:"title"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type BookmarkRepository interface {
	// Add stores the bookmark; adding the same content twice refreshes the title and keeps the original id.
	Add(ctx context.Context, bookmark *Bookmark) (*Bookmark, error)
	Remove(ctx context.Context, userID, contentID string) error
	List(ctx context.Context, userID string) ([]Bookmark, error)
}

type bookmarkRepository struct {
	db DB
}

func NewBookmarkRepository(db DB) BookmarkRepository {
	return &bookmarkRepository{
		db: db,
	}
}

func (r *bookmarkRepository) Add(ctx context.Context, bookmark *Bookmark) (*Bookmark, error) {
	query := `
	INSERT INTO bookmarks (id, user_id, content_id, content_type_id, title)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, content_id)
	DO UPDATE SET title = EXCLUDED.title, content_type_id = EXCLUDED.content_type_id
	RETURNING id, created_at`

	saved := *bookmark
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		saved.ID,
		saved.UserID,
		saved.ContentID,
		saved.ContentTypeID.String(),
		saved.Title,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add bookmark %s for %s: %w", saved.ContentID, saved.UserID, err)
	}

	return &saved, nil
}

func (r *bookmarkRepository) Remove(ctx context.Context, userID, contentID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND content_id = $2`, userID, contentID)
	if err != nil {
		return fmt.Errorf("failed to remove bookmark %s for %s: %w", contentID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

func (r *bookmarkRepository) List(ctx context.Context, userID string) ([]Bookmark, error) {
	rows, err := r.db.Query(ctx, `
	SELECT id, user_id, content_id, content_type_id, title, created_at
	FROM bookmarks
	WHERE user_id = $1
	ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks for %s: %w", userID, err)
	}

	bookmarks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Bookmark, error) {
		var b Bookmark
		err := row.Scan(&b.ID, &b.UserID, &b.ContentID, &b.ContentTypeID, &b.Title, &b.CreatedAt)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookmarks for %s: %w", userID, err)
	}

	return bookmarks, nil
}
