package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

func (r *userRepository) Upsert(ctx context.Context, user *model.UpsertUser) (*model.User, error) {
	query := `
		INSERT INTO users (
			id, email, name, first_name, last_name, profile_image_url,
			global_role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, email, name, first_name, last_name, phone,
			profile_image_url, timezone, global_role, created_at, updated_at
	`
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	var out model.User
	err = r.db.GetContext(ctx, &out, query,
		id,
		user.Email,
		user.Name,
		user.FirstName,
		user.LastName,
		user.ProfileImageURL,
		model.GlobalRoleUser,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &out, nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, name, first_name, last_name, phone,
			profile_image_url, timezone, global_role, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, name, first_name, last_name, phone,
			profile_image_url, timezone, global_role, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $1, first_name = $2, last_name = $3, phone = $4,
			timezone = $5, global_role = $6, updated_at = $7
		WHERE id = $8
	`
	user.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Timezone,
		user.GlobalRole,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user", nil)
	}

	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, email, name, first_name, last_name, phone,
			profile_image_url, timezone, global_role, created_at, updated_at
		FROM users
		ORDER BY name ASC
	`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
