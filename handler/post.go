package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MangKong-coder/rest-api/domain"
	"github.com/MangKong-coder/rest-api/storage"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

const (
	perPage      = 2
	maxPage      = math.MaxInt32 / perPage
	postsChannel = "posts"
	msgInvalid   = "Validation failed, entered data is invalid."
)

var sanitizerUGC = bluemonday.UGCPolicy()

type CreatorDTO struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type PostDTO struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"contentHtml"`
	ImageURL    string     `json:"imageUrl"`
	Creator     CreatorDTO `json:"creator"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func newPostDTO(p domain.Post) PostDTO {
	return PostDTO{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: safeMd(p.Content),
		ImageURL:    p.ImageURL,
		Creator:     CreatorDTO{ID: p.CreatorID, Name: p.CreatorName},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type postRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
	Image   string `json:"image" form:"image"`
}

// PostEvent is the payload broadcast on the "posts" channel. Post is a
// PostDTO for create and update, and the post id for delete.
type PostEvent struct {
	Action string `json:"action"`
	Post   any    `json:"post"`
}

type postsResponse struct {
	Message    string    `json:"message"`
	Posts      []PostDTO `json:"posts"`
	TotalItems int       `json:"totalItems"`
}

type postResponse struct {
	Message string      `json:"message"`
	Post    PostDTO     `json:"post"`
	Creator *CreatorDTO `json:"creator,omitempty"`
}

func (h *Handler) GetPosts(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	ctx := c.Request().Context()

	totalItems, err := h.Posts.CountPosts(ctx)
	if err != nil {
		return err
	}
	posts, err := h.Posts.ListPosts(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return err
	}

	dtos := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		dtos = append(dtos, newPostDTO(p))
	}
	return c.JSON(http.StatusOK, postsResponse{
		Message:    "Fetched posts successfully.",
		Posts:      dtos,
		TotalItems: totalItems,
	})
}

func (h *Handler) CreatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	post := domain.Post{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CreatorID: UserID(c),
	}
	if fields := post.Validate(); len(fields) > 0 {
		return domain.Validation(msgInvalid, fields...)
	}
	fh, ok, err := imageFile(c)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Validation("No image provided.")
	}

	ctx := c.Request().Context()
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	post.ImageURL, err = h.storeImage(ctx, fh)
	if err != nil {
		return err
	}
	if err := h.Posts.CreatePost(ctx, &post); err != nil {
		h.clearImage(c, post.ImageURL)
		return err
	}
	// The post and the user's post index are written separately; a failure
	// here leaves the post without an entry in the index.
	if err := h.Users.AddUserPost(ctx, user.ID, post.ID); err != nil {
		return err
	}
	post.CreatorName = user.Name

	dto := newPostDTO(post)
	h.Notifier.Broadcast(postsChannel, PostEvent{Action: "create", Post: dto})
	return c.JSON(http.StatusCreated, postResponse{
		Message: "Post created successfully!",
		Post:    dto,
		Creator: &CreatorDTO{ID: user.ID, Name: user.Name},
	})
}

func (h *Handler) GetPost(c echo.Context) error {
	post, err := h.findPost(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postResponse{
		Message: "Post fetched.",
		Post:    newPostDTO(*post),
	})
}

func (h *Handler) UpdatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	update := domain.Post{
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
	}
	if fields := update.Validate(); len(fields) > 0 {
		return domain.Validation(msgInvalid, fields...)
	}
	fh, uploaded, err := imageFile(c)
	if err != nil {
		return err
	}
	if !uploaded {
		key, ok := storage.CleanKey(req.Image)
		if req.Image == "" || !ok {
			return domain.Validation("No file picked.")
		}
		update.ImageURL = key
	}

	ctx := c.Request().Context()
	post, err := h.ownPost(c)
	if err != nil {
		return err
	}
	// Without an upload the post can only keep the image it already has.
	if !uploaded && update.ImageURL != post.ImageURL {
		return domain.Validation("No file picked.")
	}
	if uploaded {
		update.ImageURL, err = h.storeImage(ctx, fh)
		if err != nil {
			return err
		}
	}
	oldImage := post.ImageURL
	post.Title = update.Title
	post.Content = update.Content
	post.ImageURL = update.ImageURL
	if err := h.Posts.UpdatePost(ctx, post); err != nil {
		if uploaded {
			h.clearImage(c, update.ImageURL)
		}
		return err
	}
	if update.ImageURL != oldImage {
		h.clearImage(c, oldImage)
	}

	dto := newPostDTO(*post)
	h.Notifier.Broadcast(postsChannel, PostEvent{Action: "update", Post: dto})
	return c.JSON(http.StatusOK, postResponse{
		Message: "Post updated!",
		Post:    dto,
	})
}

func (h *Handler) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.ownPost(c)
	if err != nil {
		return err
	}
	h.clearImage(c, post.ImageURL)
	if err := h.Posts.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	if err := h.Users.RemoveUserPost(ctx, post.CreatorID, post.ID); err != nil {
		return err
	}

	h.Notifier.Broadcast(postsChannel, PostEvent{Action: "delete", Post: post.ID})
	return c.JSON(http.StatusOK, map[string]string{"message": "Deleted post."})
}

func (h *Handler) findPost(ctx context.Context, id string) (*domain.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("Could not find post.")
	}
	post, err := h.Posts.PostByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Could not find post.")
	}
	return post, err
}

// ownPost loads the post named in the path and checks that the
// authenticated user created it.
func (h *Handler) ownPost(c echo.Context) (*domain.Post, error) {
	post, err := h.findPost(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(UserID(c)) {
		return nil, domain.Authorization("Not authorized!")
	}
	return post, nil
}

func mdToHTML(md string) []byte {
	// create markdown parser with extensions
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	// create HTML renderer with extensions
	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}

func safeMd(content string) string {
	return string(sanitizerUGC.SanitizeBytes(mdToHTML(content)))
}
