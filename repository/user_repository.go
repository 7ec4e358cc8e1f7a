package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Blockbuster/model"
)

// UserRepository defines data operations for users.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByID(id int64) (*model.User, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	DB *sql.DB
}

// NewMySQLUserRepository creates a new instance of mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{DB: db}
}

// CreateUser adds a new user and returns its id.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := r.DB.Exec(query, user.Username, user.Email, user.PasswordHash, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateUser: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateUser: %w", err)
	}
	return id, nil
}

// GetUserByUsername retrieves a user by username. Missing users return (nil, nil).
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE username = ?`
	row := r.DB.QueryRow(query, username)

	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user by username %s: %w", username, err)
	}
	return user, nil
}

// GetUserByID retrieves a user by id. Missing users return (nil, nil).
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user by ID %d: %w", id, err)
	}
	return user, nil
}
