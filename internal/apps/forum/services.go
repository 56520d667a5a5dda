package forum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxTitleLen = 200

// ContentModerator is the moderation seam the forum depends on.
type ContentModerator interface {
	IsContentSafe(ctx context.Context, text string) moderation.Verdict
}

// FlaggedLogger records blocked submissions.
type FlaggedLogger interface {
	Log(ctx context.Context, entry services.FlaggedEntry) error
}

// ForumService runs every submission through moderation before it is stored.
type ForumService struct {
	db        *gorm.DB
	moderator ContentModerator
	flagged   FlaggedLogger
}

// NewForumService creates a new ForumService.
func NewForumService(db *gorm.DB, moderator ContentModerator, flagged FlaggedLogger) *ForumService {
	return &ForumService{db: db, moderator: moderator, flagged: flagged}
}

// ListPosts returns posts newest first with their replies oldest first.
func (s *ForumService) ListPosts(ctx context.Context, limit, offset int) ([]ForumPost, int64, error) {
	var posts []ForumPost
	var total int64

	db := s.db.WithContext(ctx)
	if err := db.Model(&ForumPost{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Replies", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC")
	}).Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetPost returns one post with its replies.
func (s *ForumService) GetPost(ctx context.Context, postID uuid.UUID) (*ForumPost, error) {
	var post ForumPost
	err := s.db.WithContext(ctx).Preload("Replies", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC")
	}).First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	posts := []ForumPost{post}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// CreatePost moderates title and content together and stores the post
// only on a safe verdict.
func (s *ForumService) CreatePost(ctx context.Context, userID uuid.UUID, title, content string) (*ForumPost, error) {
	title, content, err := validatePost(title, content)
	if err != nil {
		return nil, err
	}

	if err := s.screen(ctx, userID, postText(title, content), models.SourcePost); err != nil {
		return nil, err
	}

	post := &ForumPost{UserID: userID, Title: title, Content: content}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// UpdatePost checks ownership, then moderates the new text. A blocked
// edit leaves the stored post untouched.
func (s *ForumService) UpdatePost(ctx context.Context, userID, postID uuid.UUID, title, content string) (*ForumPost, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}

	title, content, err = validatePost(title, content)
	if err != nil {
		return nil, err
	}

	if err := s.screen(ctx, userID, postText(title, content), models.SourcePost); err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
		"title":   title,
		"content": content,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// DeletePost removes an owned post and its replies.
func (s *ForumService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	return s.removePost(ctx, post.ID)
}

// CreateReply moderates the reply text and stores it on a safe verdict.
func (s *ForumService) CreateReply(ctx context.Context, userID, postID uuid.UUID, content string) (*ForumReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyReply
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	if err := s.screen(ctx, userID, content, models.SourceReply); err != nil {
		return nil, err
	}

	reply := &ForumReply{PostID: postID, UserID: userID, Content: content}
	if err := s.db.WithContext(ctx).Create(reply).Error; err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}
	return reply, nil
}

// UpdateReply checks ownership, then moderates the new text.
func (s *ForumService) UpdateReply(ctx context.Context, userID, replyID uuid.UUID, content string) (*ForumReply, error) {
	reply, err := s.findReply(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.UserID != userID {
		return nil, ErrForbidden
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyReply
	}

	if err := s.screen(ctx, userID, content, models.SourceReply); err != nil {
		return nil, err
	}

	reply.Content = content
	if err := s.db.WithContext(ctx).Model(reply).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("failed to update reply: %w", err)
	}
	return reply, nil
}

// DeleteReply removes an owned reply.
func (s *ForumService) DeleteReply(ctx context.Context, userID, replyID uuid.UUID) error {
	reply, err := s.findReply(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.UserID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(reply).Error
}

// RemovePost deletes any post regardless of owner. Admin only.
func (s *ForumService) RemovePost(ctx context.Context, postID uuid.UUID) error {
	if _, err := s.findPost(ctx, postID); err != nil {
		return err
	}
	return s.removePost(ctx, postID)
}

// RemoveReply deletes any reply regardless of owner. Admin only.
func (s *ForumService) RemoveReply(ctx context.Context, replyID uuid.UUID) error {
	reply, err := s.findReply(ctx, replyID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(reply).Error
}

// PurgeUserData deletes the user's posts, the replies under them and the
// user's own replies. Flagged logs are not touched.
func (s *ForumService) PurgeUserData(tx *gorm.DB, userID uuid.UUID) error {
	ownPosts := tx.Model(&ForumPost{}).Select("id").Where("user_id = ?", userID)
	if err := tx.Where("user_id = ? OR post_id IN (?)", userID, ownPosts).Delete(&ForumReply{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&ForumPost{}).Error
}

// screen asks the moderator about text and, on an unsafe verdict, writes
// the audit log and returns a *BlockedError.
func (s *ForumService) screen(ctx context.Context, userID uuid.UUID, text, sourceType string) error {
	verdict := s.moderator.IsContentSafe(ctx, text)
	if err := ctx.Err(); err != nil {
		return err
	}
	if verdict.Safe {
		return nil
	}

	category := verdict.PrimaryCategory(text)
	entry := services.FlaggedEntry{
		UserID:     userID,
		Text:       text,
		Reason:     verdict.Reason,
		Category:   category,
		SourceType: sourceType,
	}
	if err := s.flagged.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("blocked submission not recorded",
			"action", "forum_"+sourceType,
			"user_id", userID.String(),
			"error", err,
		)
	}

	return &BlockedError{SourceType: sourceType, Category: category, Verdict: verdict}
}

func (s *ForumService) removePost(ctx context.Context, postID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&ForumReply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ForumPost{}, "id = ?", postID).Error
	})
}

func (s *ForumService) findPost(ctx context.Context, postID uuid.UUID) (*ForumPost, error) {
	var post ForumPost
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *ForumService) findReply(ctx context.Context, replyID uuid.UUID) (*ForumReply, error) {
	var reply ForumReply
	if err := s.db.WithContext(ctx).First(&reply, "id = ?", replyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	return &reply, nil
}

func (s *ForumService) attachAuthors(ctx context.Context, posts []ForumPost) error {
	ids := make(map[uuid.UUID]struct{})
	for _, p := range posts {
		ids[p.UserID] = struct{}{}
		for _, r := range p.Replies {
			ids[r.UserID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	list := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Unscoped().Select("id", "username").Where("id IN ?", list).Find(&users).Error; err != nil {
		return err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	for i := range posts {
		posts[i].Author = names[posts[i].UserID]
		for j := range posts[i].Replies {
			posts[i].Replies[j].Author = names[posts[i].Replies[j].UserID]
		}
	}
	return nil
}

func validatePost(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", ErrMissingFields
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", "", ErrTitleTooLong
	}
	return title, content, nil
}

// postText is the text a post is moderated (and audited) as.
func postText(title, content string) string {
	return title + "\n" + content
}
