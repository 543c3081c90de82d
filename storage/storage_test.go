package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNewKey(t *testing.T) {
	tests := []struct {
		filename string
		suffix   string
	}{
		{"cat.png", "-cat.png"},
		{`C:\Users\me\cat.png`, "-cat.png"},
		{"../../etc/passwd", "-passwd"},
		{"my photo (1).jpg", "-my-photo-1-.jpg"},
		{"", "-image"},
		{"...", "-image"},
	}
	for _, tt := range tests {
		key := NewKey(tt.filename)
		if !strings.HasPrefix(key, Prefix+"/") || !strings.HasSuffix(key, tt.suffix) {
			t.Errorf("NewKey(%q) = %q, want prefix %q and suffix %q", tt.filename, key, Prefix+"/", tt.suffix)
		}
		if _, ok := CleanKey(key); !ok {
			t.Errorf("NewKey(%q) = %q is not a clean key", tt.filename, key)
		}
	}
	if NewKey("a.png") == NewKey("a.png") {
		t.Error("keys must be unique")
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"images/a.png", "images/a.png", true},
		{"/images/a.png", "images/a.png", true},
		{`images\a.png`, "images/a.png", true},
		{"images/./a.png", "images/a.png", true},
		{"images/../main.go", "", false},
		{"../images/a.png", "", false},
		{"uploads/a.png", "", false},
		{"images", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CleanKey(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("CleanKey(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLocal(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	key, err := l.Save(ctx, "cat.png", "image/png", 4, strings.NewReader("meow"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	rc, contentType, err := l.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "meow" || contentType != "image/png" {
		t.Errorf("open returned %q %q", data, contentType)
	}

	if err := l.Remove(ctx, key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := l.Remove(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove: got %v, want ErrNotFound", err)
	}
	if _, _, err := l.Open(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("open removed: got %v", err)
	}
	if _, _, err := l.Open(ctx, "images/../../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("open outside root: got %v", err)
	}
	if err := l.Remove(ctx, "../feed.db"); err == nil {
		t.Error("remove outside root succeeded")
	}
}
