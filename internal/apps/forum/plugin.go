package forum

import (
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plugin implements apps.AdminPlugin for the moderated community forum.
type Plugin struct {
	moderator ContentModerator
	flagged   FlaggedLogger
}

// New creates a new forum Plugin.
func New(moderator ContentModerator, flagged FlaggedLogger) *Plugin {
	return &Plugin{moderator: moderator, flagged: flagged}
}

func (p *Plugin) ID() string { return "forum" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{
		&ForumPost{},
		&ForumReply{},
	}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewForumHandler(NewForumService(db, p.moderator, p.flagged))

	router.Get("/forum", handler.ListPosts)
	router.Post("/forum/posts", handler.CreatePost)
	router.Get("/forum/posts/:id", handler.GetPost)
	router.Put("/forum/posts/:id", handler.UpdatePost)
	router.Delete("/forum/posts/:id", handler.DeletePost)
	router.Post("/forum/posts/:id/replies", handler.CreateReply)
	router.Put("/forum/replies/:id", handler.UpdateReply)
	router.Delete("/forum/replies/:id", handler.DeleteReply)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewForumHandler(NewForumService(db, p.moderator, p.flagged))

	router.Delete("/forum/posts/:id", handler.RemovePost)
	router.Delete("/forum/replies/:id", handler.RemoveReply)
}

// PurgeUserData lets account deletion remove forum content.
func (p *Plugin) PurgeUserData(tx *gorm.DB, userID uuid.UUID) error {
	return NewForumService(tx, p.moderator, p.flagged).PurgeUserData(tx, userID)
}
