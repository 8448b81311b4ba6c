package repository

import (
	"context"

	"cloudinbox/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// LatestMetadata returns the most recently generated catalog artifact
// joined with its owning user, or nil when none has been generated yet.
func (r *CatalogRepository) LatestMetadata(ctx context.Context) (*entities.CatalogMetadata, error) {
	var (
		meta     entities.CatalogMetadata
		userID   *string
		email    *string
		fullName *string
		role     *string
		isActive *bool
	)
	err := r.db.QueryRow(ctx, `
		SELECT m.id, m.created_at, m.user_id, m.link,
		       u.id, u.email, u.full_name, u.role, u.is_active
		FROM pdf_catalog_metadata m
		LEFT JOIN app_users u ON u.id = m.user_id
		ORDER BY m.created_at DESC
		LIMIT 1
	`).Scan(&meta.ID, &meta.CreatedAt, &meta.UserID, &meta.Link,
		&userID, &email, &fullName, &role, &isActive)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &entities.UpstreamError{Msg: "No se pudo obtener el catálogo", Err: err}
	}

	if userID != nil {
		meta.User = &entities.User{
			ID:       *userID,
			FullName: fullName,
		}
		if email != nil {
			meta.User.Email = *email
		}
		if role != nil {
			meta.User.Role = *role
		}
		if isActive != nil {
			meta.User.IsActive = *isActive
		}
	}
	return &meta, nil
}
