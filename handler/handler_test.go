package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MangKong-coder/rest-api/storage"
	"github.com/MangKong-coder/rest-api/store"
	"github.com/labstack/echo/v4"
)

type recordedEvent struct {
	Channel string
	Event   PostEvent
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingBroadcaster) Broadcast(channel string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Channel: channel, Event: payload.(PostEvent)})
}

func (r *recordingBroadcaster) last() (recordedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return recordedEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

type testEnv struct {
	e        *echo.Echo
	h        *Handler
	store    *store.SQL
	events   *recordingBroadcaster
	imageDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(store.DriverSQLite, filepath.Join(dir, "feed.db")+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	imageDir := filepath.Join(dir, "images")
	images, err := storage.NewLocal(imageDir)
	if err != nil {
		t.Fatalf("image store: %v", err)
	}

	s := store.New(db)
	events := &recordingBroadcaster{}
	h := &Handler{
		Users:        s,
		Posts:        s,
		Images:       images,
		Notifier:     events,
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		EnableSignup: true,
		Environment:  "pro",
	}
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	h.Register(e)
	return &testEnv{e: e, h: h, store: s, events: events, imageDir: imageDir}
}

func (env *testEnv) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.e.ServeHTTP(rr, req)
	return rr
}

func (env *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return env.serve(req, token)
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

var pngUpload = &upload{filename: "cat.png", contentType: "image/png", data: []byte("\x89PNG\r\n\x1a\nfake")}

func (env *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, file *upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, file.filename))
		hdr.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(file.data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return env.serve(req, token)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// signupAndLogin registers a user and returns a bearer token and the user id.
func (env *testEnv) signupAndLogin(t *testing.T, email, name string) (string, string) {
	t.Helper()
	rr := env.doJSON(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": "secret123", "name": name,
	})
	expectStatus(t, rr, http.StatusCreated)

	rr = env.doJSON(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	expectStatus(t, rr, http.StatusOK)
	var resp struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	decode(t, rr, &resp)
	if resp.Token == "" || resp.UserID == "" {
		t.Fatalf("login returned empty token or user id: %s", rr.Body.String())
	}
	return resp.Token, resp.UserID
}

// createPost creates a post through the API and returns it.
func (env *testEnv) createPost(t *testing.T, token, title, content string) PostDTO {
	t.Helper()
	rr := env.doMultipart(t, http.MethodPost, "/feed/post", token, map[string]string{
		"title": title, "content": content,
	}, pngUpload)
	expectStatus(t, rr, http.StatusCreated)
	var resp postResponse
	decode(t, rr, &resp)
	return resp.Post
}

func (env *testEnv) imagePath(key string) string {
	return filepath.Join(env.imageDir, filepath.Base(key))
}
