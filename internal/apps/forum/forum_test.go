package forum_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/forum"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "forum-test-secret"

type stubModerator struct {
	mu      sync.Mutex
	verdict moderation.Verdict
	texts   []string
}

func (m *stubModerator) IsContentSafe(ctx context.Context, text string) moderation.Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return m.verdict
}

func (m *stubModerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

type failingLogger struct{ calls int }

func (f *failingLogger) Log(ctx context.Context, entry services.FlaggedEntry) error {
	f.calls++
	return errors.New("audit store down")
}

var safe = moderation.Verdict{Safe: true, Reason: "ok"}

type forumEnv struct {
	app       *fiber.App
	db        *gorm.DB
	moderator *stubModerator
}

func setup(t *testing.T, logger forum.FlaggedLogger) *forumEnv {
	t.Helper()

	cfg := &config.Config{JWTSecret: testSecret}
	db := dbtest.Open(t, &forum.ForumPost{}, &forum.ForumReply{})
	mod := &stubModerator{verdict: safe}
	if logger == nil {
		logger = services.NewFlaggedLogService(db)
	}

	plugin := forum.New(mod, logger)
	app := fiber.New()
	api := app.Group("/api/p", middleware.JWTProtected(cfg))
	plugin.RegisterRoutes(api, db, cfg)
	admin := app.Group("/api/admin")
	plugin.RegisterAdminRoutes(admin, db, cfg)

	return &forumEnv{app: app, db: db, moderator: mod}
}

func (e *forumEnv) user(t *testing.T, name string) (uuid.UUID, string) {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, e.db.Create(&u).Error)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": u.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return u.ID, signed
}

func (e *forumEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *forumEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *forumEnv) createPost(t *testing.T, token string) string {
	t.Helper()
	status, body := e.do(t, "POST", "/api/p/forum/posts", token, fiber.Map{"title": "Hello", "content": "Feeling better today"})
	require.Equal(t, fiber.StatusCreated, status)
	return body["post"].(map[string]interface{})["id"].(string)
}

func TestCreatePost(t *testing.T) {
	t.Run("Safe post is stored", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "alice")

		status, body := env.do(t, "POST", "/api/p/forum/posts", token, fiber.Map{"title": "Hello", "content": "Feeling better today"})

		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, "Post added successfully!", body["message"])
		assert.Equal(t, "success", body["level"])
		assert.Equal(t, int64(1), env.count(t, &forum.ForumPost{}))
		assert.Equal(t, int64(0), env.count(t, &models.FlaggedLog{}))
		assert.Equal(t, []string{"Hello\nFeeling better today"}, env.moderator.texts)
	})

	t.Run("Unsafe post is blocked and audited", func(t *testing.T) {
		env := setup(t, nil)
		userID, token := env.user(t, "bob")
		env.moderator.verdict = moderation.Verdict{Safe: false, Reason: "Gemini: mentions self-harm"}

		status, body := env.do(t, "POST", "/api/p/forum/posts", token, fiber.Map{"title": "Help", "content": "I want to hurt someone"})

		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "Post contains unsafe content and was blocked.", body["message"])
		assert.Equal(t, "danger", body["level"])
		assert.Equal(t, int64(0), env.count(t, &forum.ForumPost{}))

		var logs []models.FlaggedLog
		require.NoError(t, env.db.Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.Equal(t, userID, logs[0].UserID)
		assert.Equal(t, models.SourcePost, logs[0].SourceType)
		assert.Equal(t, "Help\nI want to hurt someone", logs[0].Text)
		assert.Equal(t, "Gemini: mentions self-harm", logs[0].Reason)
		assert.Equal(t, "suicide", logs[0].Category)
	})

	t.Run("Explicit provider category wins", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "carol")
		env.moderator.verdict = moderation.Verdict{Safe: false, Reason: "contains suicide talk", Categories: []string{"violence"}}

		status, _ := env.do(t, "POST", "/api/p/forum/posts", token, fiber.Map{"title": "t", "content": "c"})

		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		var log models.FlaggedLog
		require.NoError(t, env.db.First(&log).Error)
		assert.Equal(t, "violence", log.Category)
	})

	t.Run("Audit failure still blocks", func(t *testing.T) {
		logger := &failingLogger{}
		env := setup(t, logger)
		_, token := env.user(t, "dave")
		env.moderator.verdict = moderation.Verdict{Safe: false, Reason: "bad"}

		status, _ := env.do(t, "POST", "/api/p/forum/posts", token, fiber.Map{"title": "t", "content": "c"})

		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, 1, logger.calls)
		assert.Equal(t, int64(0), env.count(t, &forum.ForumPost{}))
	})

	t.Run("Missing fields skip moderation", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "erin")

		status, body := env.do(t, "POST", "/api/p/forum/posts", token, fiber.Map{"title": "  ", "content": "text"})

		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Please fill out all fields.", body["message"])
		assert.Equal(t, 0, env.moderator.calls())
	})

	t.Run("Requires a token", func(t *testing.T) {
		env := setup(t, nil)

		status, _ := env.do(t, "POST", "/api/p/forum/posts", "", fiber.Map{"title": "t", "content": "c"})

		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, 0, env.moderator.calls())
	})
}

func TestCreateReply(t *testing.T) {
	t.Run("Safe reply is stored", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "alice")
		postID := env.createPost(t, token)

		status, body := env.do(t, "POST", "/api/p/forum/posts/"+postID+"/replies", token, fiber.Map{"content": "Glad to hear it"})

		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, "Reply added successfully.", body["message"])
		assert.Equal(t, int64(1), env.count(t, &forum.ForumReply{}))
	})

	t.Run("Unsafe reply is blocked and audited", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "bob")
		postID := env.createPost(t, token)
		env.moderator.verdict = moderation.Verdict{Safe: false, Reason: "Harassment"}

		status, body := env.do(t, "POST", "/api/p/forum/posts/"+postID+"/replies", token, fiber.Map{"content": "you are worthless"})

		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "Reply blocked due to unsafe content.", body["message"])
		assert.Equal(t, int64(0), env.count(t, &forum.ForumReply{}))

		var log models.FlaggedLog
		require.NoError(t, env.db.First(&log).Error)
		assert.Equal(t, models.SourceReply, log.SourceType)
		assert.Equal(t, "you are worthless", log.Text)
		assert.Equal(t, "abuse", log.Category)
	})

	t.Run("Empty reply skips moderation", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "carol")
		postID := env.createPost(t, token)
		before := env.moderator.calls()

		status, body := env.do(t, "POST", "/api/p/forum/posts/"+postID+"/replies", token, fiber.Map{"content": "   "})

		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Reply cannot be empty.", body["message"])
		assert.Equal(t, before, env.moderator.calls())
	})

	t.Run("Unknown post", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "dave")

		status, _ := env.do(t, "POST", "/api/p/forum/posts/"+uuid.NewString()+"/replies", token, fiber.Map{"content": "hi"})

		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, 0, env.moderator.calls())
	})
}

func TestEditAndDelete(t *testing.T) {
	t.Run("Only the owner may edit", func(t *testing.T) {
		env := setup(t, nil)
		_, owner := env.user(t, "alice")
		_, other := env.user(t, "mallory")
		postID := env.createPost(t, owner)
		before := env.moderator.calls()

		status, body := env.do(t, "PUT", "/api/p/forum/posts/"+postID, other, fiber.Map{"title": "x", "content": "y"})

		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "Unauthorized action.", body["message"])
		assert.Equal(t, before, env.moderator.calls())
	})

	t.Run("Blocked edit keeps the stored post", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "bob")
		postID := env.createPost(t, token)
		env.moderator.verdict = moderation.Verdict{Safe: false, Reason: "threat detected"}

		status, _ := env.do(t, "PUT", "/api/p/forum/posts/"+postID, token, fiber.Map{"title": "Hello", "content": "bad"})

		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		var post forum.ForumPost
		require.NoError(t, env.db.First(&post, "id = ?", postID).Error)
		assert.Equal(t, "Feeling better today", post.Content)
		assert.Equal(t, int64(1), env.count(t, &models.FlaggedLog{}))
	})

	t.Run("Safe edit is applied", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "carol")
		postID := env.createPost(t, token)

		status, _ := env.do(t, "PUT", "/api/p/forum/posts/"+postID, token, fiber.Map{"title": "Hello", "content": "Updated"})

		assert.Equal(t, fiber.StatusOK, status)
		var post forum.ForumPost
		require.NoError(t, env.db.First(&post, "id = ?", postID).Error)
		assert.Equal(t, "Updated", post.Content)
	})

	t.Run("Deleting a post removes its replies", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "dave")
		postID := env.createPost(t, token)
		status, _ := env.do(t, "POST", "/api/p/forum/posts/"+postID+"/replies", token, fiber.Map{"content": "r"})
		require.Equal(t, fiber.StatusCreated, status)

		status, _ = env.do(t, "DELETE", "/api/p/forum/posts/"+postID, token, nil)

		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, int64(0), env.count(t, &forum.ForumPost{}))
		assert.Equal(t, int64(0), env.count(t, &forum.ForumReply{}))
	})

	t.Run("Admin removal ignores ownership", func(t *testing.T) {
		env := setup(t, nil)
		_, token := env.user(t, "erin")
		postID := env.createPost(t, token)

		status, _ := env.do(t, "DELETE", "/api/admin/forum/posts/"+postID, "", nil)

		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, int64(0), env.count(t, &forum.ForumPost{}))
	})
}

func TestListPosts(t *testing.T) {
	env := setup(t, nil)
	_, token := env.user(t, "alice")
	postID := env.createPost(t, token)
	status, _ := env.do(t, "POST", "/api/p/forum/posts/"+postID+"/replies", token, fiber.Map{"content": "first"})
	require.Equal(t, fiber.StatusCreated, status)

	status, body := env.do(t, "GET", "/api/p/forum", token, nil)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])
	posts := body["data"].([]interface{})
	require.Len(t, posts, 1)
	post := posts[0].(map[string]interface{})
	assert.Equal(t, "alice", post["author"])
	assert.Len(t, post["replies"], 1)
}

func TestPurgeUserData(t *testing.T) {
	env := setup(t, nil)
	aliceID, alice := env.user(t, "alice")
	_, bob := env.user(t, "bob")

	alicePost := env.createPost(t, alice)
	bobPost := env.createPost(t, bob)
	env.do(t, "POST", "/api/p/forum/posts/"+alicePost+"/replies", bob, fiber.Map{"content": "bob on alice"})
	env.do(t, "POST", "/api/p/forum/posts/"+bobPost+"/replies", alice, fiber.Map{"content": "alice on bob"})
	env.do(t, "POST", "/api/p/forum/posts/"+bobPost+"/replies", bob, fiber.Map{"content": "bob on bob"})
	require.NoError(t, env.db.Create(&models.FlaggedLog{UserID: aliceID, Text: "t", Reason: "r", SourceType: models.SourcePost}).Error)

	plugin := forum.New(env.moderator, services.NewFlaggedLogService(env.db))
	require.NoError(t, env.db.Transaction(func(tx *gorm.DB) error {
		return plugin.PurgeUserData(tx, aliceID)
	}))

	var replies []forum.ForumReply
	require.NoError(t, env.db.Find(&replies).Error)
	require.Len(t, replies, 1)
	assert.Equal(t, "bob on bob", replies[0].Content)
	assert.Equal(t, int64(1), env.count(t, &forum.ForumPost{}))
	assert.Equal(t, int64(1), env.count(t, &models.FlaggedLog{}))
}
