package repository

import (
	"context"

	"lexaid-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users and auth tokens
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user record
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, phone_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.PhoneNumber,
	).Scan(&user.ID, &user.CreatedAt)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, name, phone_number, created_at
		FROM users
		WHERE email = $1`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PhoneNumber,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// EmailExists reports whether a user with the email is registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

// CreateToken issues a new bearer token for a user
func (r *UserRepository) CreateToken(ctx context.Context, userID uuid.UUID) (*models.AuthToken, error) {
	token := &models.AuthToken{
		Token:  uuid.New(),
		UserID: userID,
	}
	query := `
		INSERT INTO auth_tokens (token, user_id)
		VALUES ($1, $2)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, token.Token, token.UserID).Scan(&token.CreatedAt)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// GetUserByToken resolves a bearer token to its user
func (r *UserRepository) GetUserByToken(ctx context.Context, token uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT u.id, u.email, u.password_hash, u.name, u.phone_number, u.created_at
		FROM users u
		JOIN auth_tokens t ON t.user_id = u.id
		WHERE t.token = $1`

	err := r.db.QueryRow(ctx, query, token).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PhoneNumber,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}
