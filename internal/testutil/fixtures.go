package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/auth"
	"github.com/vidstream/vidstream-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	fullName string
	password string
}

// NewUserBuilder creates a new UserBuilder with unique defaults
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: "user_" + suffix,
		email:    "user_" + suffix + "@example.com",
		fullName: "Test User",
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithFullName(name string) *UserBuilder {
	b.fullName = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:             uuid.New(),
		Username:       b.username,
		Email:          b.email,
		FullName:       b.fullName,
		AvatarURL:      "https://media.test/avatar/" + b.username,
		AvatarPublicID: "avatar/" + b.username,
		WatchHistory:   []uuid.UUID{},
		PasswordHash:   hash,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// LoginData is the data of a successful login envelope
type LoginData struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// BuildAndLogin creates the user and logs in through the API
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, *LoginData) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	resp := PostJSON(t, ts.APIURL("/users/login"), map[string]string{
		"username": user.Username,
		"password": password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}

	var data LoginData
	DecodeSuccess(t, resp, &data)
	return user, &data
}

// VideoBuilder creates test videos
type VideoBuilder struct {
	owner *domain.User
	title string
}

func NewVideoBuilder() *VideoBuilder {
	return &VideoBuilder{title: "video " + uuid.New().String()[:8]}
}

func (b *VideoBuilder) WithOwner(owner *domain.User) *VideoBuilder {
	b.owner = owner
	return b
}

func (b *VideoBuilder) WithTitle(title string) *VideoBuilder {
	b.title = title
	return b
}

// Build creates the video in the database, creating an owner if none was set
func (b *VideoBuilder) Build(t *testing.T, db *gorm.DB) *domain.Video {
	t.Helper()

	if b.owner == nil {
		owner, _ := NewUserBuilder().Build(t, db)
		b.owner = owner
	}

	video := &domain.Video{
		ID:          uuid.New(),
		OwnerID:     b.owner.ID,
		VideoFile:   "https://media.test/videos/" + b.title,
		Thumbnail:   "https://media.test/thumbs/" + b.title,
		Title:       b.title,
		Description: "description of " + b.title,
		Duration:    42.5,
		IsPublished: true,
	}

	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video: %v", err)
	}
	return video
}

// PostJSON sends body as JSON
func PostJSON(t *testing.T, url string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodPost, url, body, "", cookies...)
}

// DoJSON sends a JSON request, optionally with a bearer token and cookies
func DoJSON(t *testing.T, method, url string, body any, bearer string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}

// MultipartRequest builds a multipart/form-data request. files maps form
// field names to local file paths.
func MultipartRequest(t *testing.T, method, url string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field %s: %v", name, err)
		}
	}
	for field, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read %s: %v", path, err)
		}
		part, err := writer.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			t.Fatalf("failed to create form file %s: %v", field, err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write form file %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// FindCookie returns the named cookie from resp, or nil
func FindCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// UniqueHandle returns a username that will not collide between tests
func UniqueHandle(prefix string) string {
	return fmt.Sprintf("%s_%s", strings.ToLower(prefix), uuid.New().String()[:8])
}
