package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MangKong-coder/rest-api/domain"
)

// SQL implements the user and post stores on top of database/sql. Queries use
// $N placeholders, which both SQLite and PostgreSQL accept.
type SQL struct {
	DB *sql.DB
}

func New(db *sql.DB) *SQL {
	return &SQL{DB: db}
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQL) CreateUser(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	if u.Status == "" {
		u.Status = domain.DefaultStatus
	}
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password, name, status, createdAt, updatedAt) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		u.ID, u.Email, u.Password, u.Name, u.Status, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user %s: %w", u.Email, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (s *SQL) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userWhere(ctx, "id", id)
}

func (s *SQL) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userWhere(ctx, "email", email)
}

func (s *SQL) userWhere(ctx context.Context, column, value string) (*domain.User, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, email, password, name, status, createdAt, updatedAt FROM users WHERE "+column+" = $1", value)
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user by %s: %w", column, err)
	}
	u.Posts, err = s.userPostIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SQL) userPostIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT post_id FROM users_posts WHERE user_id = $1 AND relation_type = $2 ORDER BY createdAt ASC", userID, relationAuthor)
	if err != nil {
		return nil, fmt.Errorf("select users_posts: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan users_posts: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQL) UpdateUserStatus(ctx context.Context, userID, status string) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE users SET status = $1, updatedAt = $2 WHERE id = $3", status, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return expectAffected(res)
}

const relationAuthor = "AUTHOR"

// AddUserPost appends postID to the user's posts.
func (s *SQL) AddUserPost(ctx context.Context, userID, postID string) error {
	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO users_posts (user_id, post_id, relation_type, createdAt, updatedAt) VALUES ($1, $2, $3, $4, $5)",
		userID, postID, relationAuthor, now, now)
	if err != nil {
		return fmt.Errorf("insert users_posts: %w", err)
	}
	return nil
}

// RemoveUserPost detaches postID from the user's posts. Removing an id that
// is not listed is not an error.
func (s *SQL) RemoveUserPost(ctx context.Context, userID, postID string) error {
	_, err := s.DB.ExecContext(ctx,
		"DELETE FROM users_posts WHERE user_id = $1 AND post_id = $2", userID, postID)
	if err != nil {
		return fmt.Errorf("delete users_posts: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	// sqlite: "UNIQUE constraint failed", postgres: SQLSTATE 23505
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "23505")
}
