package service

import (
	"context"
	"errors"
	"strings"

	"campus/internal/authz"
	"campus/internal/models"
	"campus/internal/observability"
	"campus/internal/repository"
)

// PostService owns the post lifecycle. Listing always runs the same
// pipeline: fetch candidates, visibility-filter for the viewer, sort by
// priority, paginate last so page numbers are stable for that viewer.
type PostService struct {
	postRepo repository.PostRepository
	trees    *authz.TreeStore
	locks    *authz.LockTable
	filter   *authz.VisibilityFilter
}

type CreatePostInput struct {
	Actor     authz.Principal
	Title     string
	Body      string
	SchoolID  *uint
	IsPrivate bool
}

type UpdatePostInput struct {
	Actor     authz.Principal
	PostID    uint
	Title     string
	Body      string
	IsPrivate *bool
}

type FeedInput struct {
	Viewer   authz.Principal
	SchoolID *uint
	UserID   *uint
	Page     int
	Size     int
}

// FeedPage is one page of a filtered, sorted listing.
type FeedPage struct {
	Posts   []*models.Post `json:"posts"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
	HasMore bool           `json:"has_more"`
}

func NewPostService(
	postRepo repository.PostRepository,
	trees *authz.TreeStore,
	locks *authz.LockTable,
	filter *authz.VisibilityFilter,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		trees:    trees,
		locks:    locks,
		filter:   filter,
	}
}

const (
	maxPostTitleLen = 300
	maxPostBodyLen  = 50000
)

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Actor.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Login required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxPostTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxPostBodyLen {
		return nil, models.NewValidationError("Body too long (max 50000 characters)")
	}
	if in.SchoolID != nil && !s.trees.Snapshot().Contains(*in.SchoolID) {
		return nil, models.NewNotFoundError("School", *in.SchoolID)
	}

	post := &models.Post{
		Title:     in.Title,
		Body:      in.Body,
		UserID:    in.Actor.UserID,
		SchoolID:  in.SchoolID,
		IsPrivate: in.IsPrivate,
		Status:    models.ContentStatusNormal,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns the post if the viewer may see it. Invisible content
// is indistinguishable from missing content.
func (s *PostService) GetPost(ctx context.Context, viewer authz.Principal, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	visible, err := s.filter.CanViewPost(ctx, post, viewer)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.Owns(post.UserID) && !in.Actor.IsAdmin() {
		return nil, models.NewForbiddenError("Only the owner or an admin can edit a post")
	}
	if !s.locks.CanEdit(in.PostID, in.Actor.UserID, in.Actor.IsAdmin()) {
		observability.EditLockContention.Inc()
		return nil, models.NewConflictError("Post is locked for editing by another user")
	}

	if in.Title != "" {
		if len(in.Title) > maxPostTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = in.Title
	}
	if in.Body != "" {
		if len(in.Body) > maxPostBodyLen {
			return nil, models.NewValidationError("Body too long (max 50000 characters)")
		}
		post.Body = in.Body
	}
	if in.IsPrivate != nil {
		post.IsPrivate = *in.IsPrivate
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, actor authz.Principal, id uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(post.UserID) && !actor.IsAdmin() {
		return models.NewForbiddenError("Only the owner or an admin can delete a post")
	}
	if !s.locks.CanEdit(id, actor.UserID, actor.IsAdmin()) {
		observability.EditLockContention.Inc()
		return models.NewConflictError("Post is locked for editing by another user")
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.locks.ForceRelease(id)
	return nil
}

// AcquireLock takes the edit lock for the actor. Only the owner or an
// admin may hold a post's lock; re-acquiring an already held lock
// succeeds.
func (s *PostService) AcquireLock(ctx context.Context, actor authz.Principal, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !actor.Owns(post.UserID) && !actor.IsAdmin() {
		return models.NewForbiddenError("Only the owner or an admin can lock a post")
	}
	if err := s.locks.Acquire(postID, actor.UserID); err != nil {
		if errors.Is(err, authz.ErrAlreadyLocked) {
			observability.EditLockContention.Inc()
			return models.NewConflictError("Post is locked for editing by another user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (s *PostService) ReleaseLock(ctx context.Context, actor authz.Principal, postID uint) error {
	if actor.IsAdmin() {
		if _, held := s.locks.Holder(postID); !held {
			return models.NewValidationError("Post is not locked")
		}
		s.locks.ForceRelease(postID)
		return nil
	}
	if err := s.locks.Release(postID, actor.UserID); err != nil {
		switch {
		case errors.Is(err, authz.ErrNotLocked):
			return models.NewValidationError("Post is not locked")
		case errors.Is(err, authz.ErrNotHolder):
			return models.NewForbiddenError("Lock is held by another user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Feed runs the listing pipeline for the viewer. With SchoolID set the
// candidates are the school's whole subtree; with UserID set, that
// author's posts.
func (s *PostService) Feed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	var (
		posts []*models.Post
		err   error
	)
	switch {
	case in.SchoolID != nil:
		snapshot := s.trees.Snapshot()
		if !snapshot.Contains(*in.SchoolID) {
			return nil, models.NewNotFoundError("School", *in.SchoolID)
		}
		descendants, derr := snapshot.Descendants(*in.SchoolID)
		if derr != nil {
			return nil, models.NewInternalError(derr)
		}
		schoolIDs := make([]uint, 0, len(descendants))
		for id := range descendants {
			schoolIDs = append(schoolIDs, id)
		}
		posts, err = s.postRepo.ListBySchools(ctx, schoolIDs, 0)
	case in.UserID != nil:
		posts, err = s.postRepo.ListByUser(ctx, *in.UserID, 0)
	default:
		posts, err = s.postRepo.List(ctx, 0)
	}
	if err != nil {
		return nil, err
	}

	visible, err := s.filter.FilterPosts(ctx, posts, in.Viewer)
	if err != nil {
		return nil, err
	}
	observability.VisibilityDecisions.WithLabelValues("visible").Add(float64(len(visible)))
	observability.VisibilityDecisions.WithLabelValues("hidden").Add(float64(len(posts) - len(visible)))
	authz.SortPostsByPriority(visible)
	page, hasMore := authz.Paginate(visible, in.Page, in.Size)
	return &FeedPage{
		Posts:   page,
		Page:    in.Page,
		Size:    in.Size,
		HasMore: hasMore,
	}, nil
}

// LikePost records a like; the post must be visible to the actor.
func (s *PostService) LikePost(ctx context.Context, actor authz.Principal, postID uint) error {
	if actor.IsAnonymous() {
		return models.NewUnauthorizedError("Login required")
	}
	if _, err := s.GetPost(ctx, actor, postID); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, actor.UserID, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, actor authz.Principal, postID uint) error {
	if actor.IsAnonymous() {
		return models.NewUnauthorizedError("Login required")
	}
	return s.postRepo.Unlike(ctx, actor.UserID, postID)
}
