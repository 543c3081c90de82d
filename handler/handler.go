package handler

import (
	"context"
	"time"

	"github.com/MangKong-coder/rest-api/domain"
	"github.com/MangKong-coder/rest-api/storage"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	UserByID(ctx context.Context, id string) (*domain.User, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, userID, status string) error
	AddUserPost(ctx context.Context, userID, postID string) error
	RemoveUserPost(ctx context.Context, userID, postID string) error
}

type PostStore interface {
	CountPosts(ctx context.Context) (int, error)
	ListPosts(ctx context.Context, offset, limit int) ([]domain.Post, error)
	PostByID(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, p *domain.Post) error
	UpdatePost(ctx context.Context, p *domain.Post) error
	DeletePost(ctx context.Context, id string) error
}

// Broadcaster pushes an event to every real-time client listening on channel.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

type Handler struct {
	Users        UserStore
	Posts        PostStore
	Images       storage.ImageStore
	Notifier     Broadcaster
	JWTSecret    string
	TokenTTL     time.Duration
	EnableSignup bool
	Environment  string
}
