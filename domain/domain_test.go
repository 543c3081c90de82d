package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatusCode(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("v"), http.StatusUnprocessableEntity},
		{Authentication("a"), http.StatusUnauthorized},
		{Authorization("a"), http.StatusForbidden},
		{NotFound("n"), http.StatusNotFound},
		{Internal("i", errors.New("x")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.Kind.StatusCode(); got != tt.want {
			t.Errorf("%s: status %d, want %d", tt.err.Kind, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Authorization("nope"))
	if KindOf(wrapped) != KindAuthorization {
		t.Errorf("KindOf(wrapped) = %s", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("plain errors should be internal")
	}

	cause := errors.New("disk full")
	if !errors.Is(Internal("save", cause), cause) {
		t.Error("Internal should unwrap to its cause")
	}
}

func TestPostValidate(t *testing.T) {
	tests := []struct {
		name   string
		post   Post
		fields []string
	}{
		{"valid", Post{Title: "Hello World", Content: "Lorem ipsum"}, nil},
		{"exact minimum", Post{Title: "Hello", Content: "Lorem"}, nil},
		{"short title", Post{Title: "Hi", Content: "Lorem ipsum"}, []string{"title"}},
		{"padded title", Post{Title: "  Hi  ", Content: "Lorem ipsum"}, []string{"title"}},
		{"both short", Post{Title: "", Content: "x"}, []string{"title", "content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.post.Validate()
			if len(got) != len(tt.fields) {
				t.Fatalf("got %d field errors, want %d: %+v", len(got), len(tt.fields), got)
			}
			for i, f := range tt.fields {
				if got[i].Field != f {
					t.Errorf("field[%d] = %s, want %s", i, got[i].Field, f)
				}
			}
		})
	}
}

func TestPostOwnedBy(t *testing.T) {
	p := Post{CreatorID: "u1"}
	if !p.OwnedBy("u1") {
		t.Error("creator should own the post")
	}
	if p.OwnedBy("u2") || p.OwnedBy("") {
		t.Error("other users must not own the post")
	}
	if (Post{}).OwnedBy("") {
		t.Error("a post without creator is owned by nobody")
	}
}

func TestUserEmail(t *testing.T) {
	if got := NormalizeEmail("  A@X.Com "); got != "a@x.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
	for _, email := range []string{"a@x.com", "first.last@example.org"} {
		if err := (User{Email: email}).ValidateEmail(); err != nil {
			t.Errorf("%q rejected: %v", email, err)
		}
	}
	for _, email := range []string{"", "nope", "A <a@x.com>"} {
		if err := (User{Email: email}).ValidateEmail(); err == nil {
			t.Errorf("%q accepted", email)
		}
	}
}

func TestUserHasPost(t *testing.T) {
	u := User{Posts: []string{"p1", "p2"}}
	if !u.HasPost("p2") || u.HasPost("p3") {
		t.Errorf("HasPost mismatch for %v", u.Posts)
	}
}
