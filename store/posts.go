package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MangKong-coder/rest-api/domain"
)

const postColumns = "p.id, p.title, p.content, p.imageUrl, p.creator, u.name, p.createdAt, p.updatedAt"

func (s *SQL) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// ListPosts returns up to limit posts, newest first, skipping offset.
func (s *SQL) ListPosts(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts p JOIN users u ON u.id = p.creator ORDER BY p.createdAt DESC, p.id ASC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()
	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.ImageURL, &p.CreatorID, &p.CreatorName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *SQL) PostByID(ctx context.Context, id string) (*domain.Post, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts p JOIN users u ON u.id = p.creator WHERE p.id = $1", id)
	p := &domain.Post{}
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.ImageURL, &p.CreatorID, &p.CreatorName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select post: %w", err)
	}
	return p, nil
}

func (s *SQL) CreatePost(ctx context.Context, p *domain.Post) error {
	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO posts (id, title, content, imageUrl, creator, createdAt, updatedAt) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		p.ID, p.Title, p.Content, p.ImageURL, p.CreatorID, now, now)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// UpdatePost saves title, content and image. The creator is never rewritten.
func (s *SQL) UpdatePost(ctx context.Context, p *domain.Post) error {
	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx,
		"UPDATE posts SET title = $1, content = $2, imageUrl = $3, updatedAt = $4 WHERE id = $5",
		p.Title, p.Content, p.ImageURL, now, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func (s *SQL) DeletePost(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectAffected(res)
}
