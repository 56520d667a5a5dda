package forum

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ForumHandler handles HTTP requests for the community forum.
type ForumHandler struct {
	service *ForumService
}

// NewForumHandler creates a new ForumHandler.
func NewForumHandler(service *ForumService) *ForumHandler {
	return &ForumHandler{service: service}
}

type postRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

type replyRequest struct {
	Content string `json:"content" form:"content"`
}

// ListPosts handles GET /api/p/forum
func (h *ForumHandler) ListPosts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	posts, total, err := h.service.ListPosts(c.UserContext(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch posts", Level: dto.LevelDanger,
		})
	}

	return c.JSON(fiber.Map{
		"data": posts, "total": total,
		"limit": limit, "offset": offset,
	})
}

// GetPost handles GET /api/p/forum/posts/:id
func (h *ForumHandler) GetPost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "post")
	}

	post, err := h.service.GetPost(c.UserContext(), postID)
	if err != nil {
		return forumError(c, err, models.SourcePost)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/p/forum/posts
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	post, err := h.service.CreatePost(c.UserContext(), userID, req.Title, req.Content)
	if err != nil {
		return forumError(c, err, models.SourcePost)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post added successfully!", "level": dto.LevelSuccess, "post": post,
	})
}

// UpdatePost handles PUT /api/p/forum/posts/:id
func (h *ForumHandler) UpdatePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "post")
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	post, err := h.service.UpdatePost(c.UserContext(), userID, postID, req.Title, req.Content)
	if err != nil {
		return forumError(c, err, models.SourcePost)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated successfully.", "level": dto.LevelSuccess, "post": post,
	})
}

// DeletePost handles DELETE /api/p/forum/posts/:id
func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "post")
	}

	if err := h.service.DeletePost(c.UserContext(), userID, postID); err != nil {
		return forumError(c, err, models.SourcePost)
	}
	return c.JSON(dto.MessageResponse{Message: "Post deleted.", Level: dto.LevelInfo})
}

// CreateReply handles POST /api/p/forum/posts/:id/replies
func (h *ForumHandler) CreateReply(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "post")
	}

	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	reply, err := h.service.CreateReply(c.UserContext(), userID, postID, req.Content)
	if err != nil {
		return forumError(c, err, models.SourceReply)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Reply added successfully.", "level": dto.LevelSuccess, "reply": reply,
	})
}

// UpdateReply handles PUT /api/p/forum/replies/:id
func (h *ForumHandler) UpdateReply(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	replyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "reply")
	}

	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	reply, err := h.service.UpdateReply(c.UserContext(), userID, replyID, req.Content)
	if err != nil {
		return forumError(c, err, models.SourceReply)
	}

	return c.JSON(fiber.Map{
		"message": "Reply updated successfully.", "level": dto.LevelSuccess, "reply": reply,
	})
}

// DeleteReply handles DELETE /api/p/forum/replies/:id
func (h *ForumHandler) DeleteReply(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	replyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "reply")
	}

	if err := h.service.DeleteReply(c.UserContext(), userID, replyID); err != nil {
		return forumError(c, err, models.SourceReply)
	}
	return c.JSON(dto.MessageResponse{Message: "Reply deleted.", Level: dto.LevelInfo})
}

// RemovePost handles DELETE /api/admin/forum/posts/:id
func (h *ForumHandler) RemovePost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "post")
	}
	if err := h.service.RemovePost(c.UserContext(), postID); err != nil {
		return forumError(c, err, models.SourcePost)
	}
	return c.JSON(dto.MessageResponse{Message: "Post removed by moderator.", Level: dto.LevelInfo})
}

// RemoveReply handles DELETE /api/admin/forum/replies/:id
func (h *ForumHandler) RemoveReply(c *fiber.Ctx) error {
	replyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "reply")
	}
	if err := h.service.RemoveReply(c.UserContext(), replyID); err != nil {
		return forumError(c, err, models.SourceReply)
	}
	return c.JSON(dto.MessageResponse{Message: "Reply removed by moderator.", Level: dto.LevelInfo})
}

func forumError(c *fiber.Ctx, err error, sourceType string) error {
	var blocked *BlockedError
	switch {
	case errors.As(err, &blocked):
		message := "Post contains unsafe content and was blocked."
		if sourceType == models.SourceReply {
			message = "Reply blocked due to unsafe content."
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    true,
			"message":  message,
			"level":    dto.LevelDanger,
			"reason":   blocked.Verdict.Reason,
			"category": blocked.Category,
		})
	case errors.Is(err, ErrMissingFields):
		return flash(c, fiber.StatusBadRequest, "Please fill out all fields.", dto.LevelWarning)
	case errors.Is(err, ErrEmptyReply):
		return flash(c, fiber.StatusBadRequest, "Reply cannot be empty.", dto.LevelWarning)
	case errors.Is(err, ErrTitleTooLong):
		return flash(c, fiber.StatusBadRequest, "Title must be at most 200 characters.", dto.LevelWarning)
	case errors.Is(err, ErrForbidden):
		return flash(c, fiber.StatusForbidden, "Unauthorized action.", dto.LevelDanger)
	case errors.Is(err, ErrPostNotFound):
		return flash(c, fiber.StatusNotFound, "Post not found.", dto.LevelDanger)
	case errors.Is(err, ErrReplyNotFound):
		return flash(c, fiber.StatusNotFound, "Reply not found.", dto.LevelDanger)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return flash(c, fiber.StatusRequestTimeout, "Request cancelled before moderation finished.", dto.LevelWarning)
	default:
		slog.Error("forum request failed", "path", c.Path(), "error", err)
		return flash(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.", dto.LevelDanger)
	}
}

func flash(c *fiber.Ctx, status int, message, level string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message, Level: level})
}

func unauthorized(c *fiber.Ctx) error {
	return flash(c, fiber.StatusUnauthorized, "Unauthorized", dto.LevelDanger)
}

func badBody(c *fiber.Ctx) error {
	return flash(c, fiber.StatusBadRequest, "Invalid request body", dto.LevelWarning)
}

func invalidID(c *fiber.Ctx, what string) error {
	return flash(c, fiber.StatusBadRequest, "Invalid "+what+" ID", dto.LevelWarning)
}
