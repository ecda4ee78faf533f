package service

import (
	"context"
	"strings"

	"campus/internal/authz"
	"campus/internal/models"
	"campus/internal/observability"
	"campus/internal/repository"
)

// CommentService owns the comment lifecycle. Replies nest exactly one
// level: a reply's parent must be a top-level comment on the same post.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	filter      *authz.VisibilityFilter
}

type CreateCommentInput struct {
	Actor     authz.Principal
	PostID    uint
	ParentID  *uint
	Body      string
	IsPrivate bool
}

type UpdateCommentInput struct {
	Actor     authz.Principal
	CommentID uint
	Body      string
	IsPrivate *bool
}

// CommentPage is one page of a filtered, sorted comment listing.
type CommentPage struct {
	Comments []*models.Comment `json:"comments"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
	HasMore  bool              `json:"has_more"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	filter *authz.VisibilityFilter,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		filter:      filter,
	}
}

const maxCommentLen = 10000

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Actor.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Login required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if len(in.Body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	visible, err := s.filter.CanViewPost(ctx, post, in.Actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			return nil, models.NewValidationError("Replies cannot nest more than one level")
		}
	}

	comment := &models.Comment{
		Body:      in.Body,
		UserID:    in.Actor.UserID,
		PostID:    in.PostID,
		ParentID:  in.ParentID,
		IsPrivate: in.IsPrivate,
		Status:    models.ContentStatusNormal,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the viewer's page of a post's comments. The
// parent post must itself be visible; comment visibility is evaluated
// per comment against the post's school.
func (s *CommentService) ListComments(ctx context.Context, viewer authz.Principal, postID uint, page, size int) (*CommentPage, error) {
	if page < 1 {
		page = 1
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	visible, err := s.filter.CanViewPost(ctx, post, viewer)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Post", postID)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	filtered, err := s.filter.FilterComments(ctx, comments, post.SchoolID, viewer)
	if err != nil {
		return nil, err
	}
	observability.VisibilityDecisions.WithLabelValues("visible").Add(float64(len(filtered)))
	observability.VisibilityDecisions.WithLabelValues("hidden").Add(float64(len(comments) - len(filtered)))
	authz.SortCommentsByPriority(filtered)
	pageItems, hasMore := authz.Paginate(filtered, page, size)
	return &CommentPage{
		Comments: pageItems,
		Page:     page,
		Size:     size,
		HasMore:  hasMore,
	}, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.Owns(comment.UserID) && !in.Actor.IsAdmin() {
		return nil, models.NewForbiddenError("Only the owner or an admin can edit a comment")
	}

	if in.Body != "" {
		if len(in.Body) > maxCommentLen {
			return nil, models.NewValidationError("Comment too long (max 10000 characters)")
		}
		comment.Body = in.Body
	}
	if in.IsPrivate != nil {
		comment.IsPrivate = *in.IsPrivate
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor authz.Principal, id uint) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(comment.UserID) && !actor.IsAdmin() {
		return models.NewForbiddenError("Only the owner or an admin can delete a comment")
	}
	return s.commentRepo.Delete(ctx, id)
}

func (s *CommentService) LikeComment(ctx context.Context, actor authz.Principal, commentID uint) error {
	if actor.IsAnonymous() {
		return models.NewUnauthorizedError("Login required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return err
	}
	visible, err := s.filter.CanViewComment(ctx, comment, post.SchoolID, actor)
	if err != nil {
		return err
	}
	if !visible {
		return models.NewNotFoundError("Comment", commentID)
	}
	return s.commentRepo.Like(ctx, actor.UserID, commentID)
}

func (s *CommentService) UnlikeComment(ctx context.Context, actor authz.Principal, commentID uint) error {
	if actor.IsAnonymous() {
		return models.NewUnauthorizedError("Login required")
	}
	return s.commentRepo.Unlike(ctx, actor.UserID, commentID)
}
