package service

import (
	"context"
	"errors"

	"campus/internal/authz"
	"campus/internal/models"
	"campus/internal/observability"
	"campus/internal/repository"
)

// ModerationNotifier publishes moderation events toward affected users.
// Implemented by notifications.Notifier; nil disables publishing.
type ModerationNotifier interface {
	PublishContentHidden(ctx context.Context, userID uint, contentType string, contentID uint) error
	PublishUserBlocked(ctx context.Context, userID, schoolID uint) error
}

// ModerationService covers hide/unhide of content and moderator blocks.
// Moderators act only inside their current scope; admins act anywhere.
type ModerationService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	blockRepo   repository.BlockRepository
	registry    *authz.BlockRegistry
	scopes      *authz.ScopeResolver
	notifier    ModerationNotifier
	logger      *observability.Logger
}

type ModeratorBlockInput struct {
	Actor         authz.Principal
	BlockedUserID uint
	SchoolID      uint
	Reason        string
}

func NewModerationService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	blockRepo repository.BlockRepository,
	registry *authz.BlockRegistry,
	scopes *authz.ScopeResolver,
	notifier ModerationNotifier,
	logger *observability.Logger,
) *ModerationService {
	return &ModerationService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		blockRepo:   blockRepo,
		registry:    registry,
		scopes:      scopes,
		notifier:    notifier,
		logger:      logger,
	}
}

// canModerate reports whether the actor may moderate content in the
// given school. School-less content is admin-only territory.
func (s *ModerationService) canModerate(ctx context.Context, actor authz.Principal, schoolID *uint) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.Kind != authz.PrincipalModerator || schoolID == nil {
		return false, nil
	}
	return s.scopes.InScope(ctx, actor.UserID, *schoolID)
}

func (s *ModerationService) setPostStatus(ctx context.Context, actor authz.Principal, postID uint, status models.ContentStatus) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canModerate(ctx, actor, post.SchoolID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		observability.ScopeDenials.Inc()
		return nil, models.NewForbiddenError("Content is outside your moderation scope")
	}
	if post.Status == status {
		return post, nil
	}
	if err := s.postRepo.UpdateStatus(ctx, postID, status); err != nil {
		return nil, err
	}
	post.Status = status
	return post, nil
}

// HidePost marks the post hidden by moderation; it stays visible only
// to its owner and admins.
func (s *ModerationService) HidePost(ctx context.Context, actor authz.Principal, postID uint) (*models.Post, error) {
	post, err := s.setPostStatus(ctx, actor, postID, models.ContentStatusHidden)
	if err != nil {
		return nil, err
	}
	s.logger.Info("post hidden by moderation", "post_id", postID, "moderator_id", actor.UserID)
	if s.notifier != nil {
		if err := s.notifier.PublishContentHidden(ctx, post.UserID, "post", postID); err != nil {
			s.logger.Warn("content hidden notification failed", "post_id", postID, "error", err)
		}
	}
	return post, nil
}

func (s *ModerationService) UnhidePost(ctx context.Context, actor authz.Principal, postID uint) (*models.Post, error) {
	return s.setPostStatus(ctx, actor, postID, models.ContentStatusNormal)
}

func (s *ModerationService) setCommentStatus(ctx context.Context, actor authz.Principal, commentID uint, status models.ContentStatus) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canModerate(ctx, actor, post.SchoolID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		observability.ScopeDenials.Inc()
		return nil, models.NewForbiddenError("Content is outside your moderation scope")
	}
	if comment.Status == status {
		return comment, nil
	}
	if err := s.commentRepo.UpdateStatus(ctx, commentID, status); err != nil {
		return nil, err
	}
	comment.Status = status
	return comment, nil
}

func (s *ModerationService) HideComment(ctx context.Context, actor authz.Principal, commentID uint) (*models.Comment, error) {
	comment, err := s.setCommentStatus(ctx, actor, commentID, models.ContentStatusHidden)
	if err != nil {
		return nil, err
	}
	s.logger.Info("comment hidden by moderation", "comment_id", commentID, "moderator_id", actor.UserID)
	if s.notifier != nil {
		if err := s.notifier.PublishContentHidden(ctx, comment.UserID, "comment", commentID); err != nil {
			s.logger.Warn("content hidden notification failed", "comment_id", commentID, "error", err)
		}
	}
	return comment, nil
}

func (s *ModerationService) UnhideComment(ctx context.Context, actor authz.Principal, commentID uint) (*models.Comment, error) {
	return s.setCommentStatus(ctx, actor, commentID, models.ContentStatusNormal)
}

// BlockUser places a school-scoped moderator block. The registry
// enforces the scope rule; an out-of-scope attempt changes nothing.
func (s *ModerationService) BlockUser(ctx context.Context, in ModeratorBlockInput) error {
	if in.Actor.Kind != authz.PrincipalModerator && !in.Actor.IsAdmin() {
		return models.NewForbiddenError("Only staff can block users in a school")
	}
	err := s.registry.AddModeratorBlock(ctx, in.Actor.UserID, in.BlockedUserID, in.SchoolID, in.Reason)
	if err != nil {
		switch {
		case errors.Is(err, authz.ErrOutOfScope):
			observability.ScopeDenials.Inc()
			return models.NewForbiddenError("School is outside your moderation scope")
		case errors.Is(err, authz.ErrAlreadyBlocked):
			return models.NewConflictError("User is already blocked in this school")
		}
		return err
	}
	s.logger.Info("moderator block placed",
		"moderator_id", in.Actor.UserID, "blocked_user_id", in.BlockedUserID, "school_id", in.SchoolID)
	if s.notifier != nil {
		if err := s.notifier.PublishUserBlocked(ctx, in.BlockedUserID, in.SchoolID); err != nil {
			s.logger.Warn("user blocked notification failed", "blocked_user_id", in.BlockedUserID, "error", err)
		}
	}
	return nil
}

func (s *ModerationService) UnblockUser(ctx context.Context, actor authz.Principal, blockedUserID, schoolID uint) error {
	err := s.registry.RemoveModeratorBlock(ctx, actor.UserID, blockedUserID, schoolID)
	if err != nil {
		if errors.Is(err, authz.ErrNotBlocked) {
			return models.NewNotFoundError("ModeratorBlock", blockedUserID)
		}
		return err
	}
	return nil
}

// ListBlocks returns the blocks the actor placed. Admins may inspect
// any moderator's blocks.
func (s *ModerationService) ListBlocks(ctx context.Context, actor authz.Principal, moderatorID uint) ([]models.ModeratorBlock, error) {
	if moderatorID != actor.UserID && !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Cannot list another moderator's blocks")
	}
	return s.blockRepo.ListModeratorBlocks(ctx, moderatorID)
}
