package authz

import (
	"context"
	"sort"

	"campus/internal/models"
)

// VisibilityFilter composes privacy flags, moderation status, scope and
// block relations into a single allow/deny decision per item and
// viewer. It is consulted by every listing path after raw candidates
// are fetched from storage and before any pagination.
type VisibilityFilter struct {
	blocks *BlockRegistry
	store  BlockStore
	scopes *ScopeResolver
}

// NewVisibilityFilter creates a filter over the given registry. The
// registry's store and resolver are reused for batched lookups.
func NewVisibilityFilter(blocks *BlockRegistry) *VisibilityFilter {
	return &VisibilityFilter{blocks: blocks, store: blocks.store, scopes: blocks.scopes}
}

// itemFacts is the projection of a post or comment the rules need.
type itemFacts struct {
	ownerID  uint
	schoolID *uint
	private  bool
	hidden   bool
}

func postFacts(p *models.Post) itemFacts {
	return itemFacts{
		ownerID:  p.UserID,
		schoolID: p.SchoolID,
		private:  p.IsPrivate,
		hidden:   p.Status == models.ContentStatusHidden,
	}
}

func commentFacts(c *models.Comment, postSchoolID *uint) itemFacts {
	return itemFacts{
		ownerID:  c.UserID,
		schoolID: postSchoolID,
		private:  c.IsPrivate,
		hidden:   c.Status == models.ContentStatusHidden,
	}
}

// authorSchool keys an effective moderator block.
type authorSchool struct {
	author uint
	school uint
}

// blockIndex caches the block lookups for one Filter call, so a batch
// of n items costs a constant number of store queries instead of n.
type blockIndex struct {
	viewerBlocked map[uint]struct{}
	modBlocked    map[authorSchool]struct{}
}

// buildIndex loads the blocks relevant to the given authors and viewer.
// Moderator blocks are kept only when the placing moderator still has
// scope over the school; each moderator's scope is computed once.
func (f *VisibilityFilter) buildIndex(ctx context.Context, authorIDs []uint, viewer Principal) (*blockIndex, error) {
	idx := &blockIndex{
		viewerBlocked: map[uint]struct{}{},
		modBlocked:    map[authorSchool]struct{}{},
	}

	blocks, err := f.store.ModeratorBlocksForUsers(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	scopeByMod := map[uint]map[uint]struct{}{}
	for _, b := range blocks {
		scope, ok := scopeByMod[b.ModeratorID]
		if !ok {
			scope, err = f.scopes.ScopeOf(ctx, b.ModeratorID)
			if err != nil {
				return nil, err
			}
			scopeByMod[b.ModeratorID] = scope
		}
		if _, inScope := scope[b.SchoolID]; inScope {
			idx.modBlocked[authorSchool{author: b.BlockedUserID, school: b.SchoolID}] = struct{}{}
		}
	}

	if !viewer.IsAnonymous() {
		blocked, err := f.store.BlockedUserIDs(ctx, viewer.UserID)
		if err != nil {
			return nil, err
		}
		for _, id := range blocked {
			idx.viewerBlocked[id] = struct{}{}
		}
	}
	return idx, nil
}

// decide applies the rule chain for one item, short-circuiting on the
// first applicable rule:
//  1. admins see everything
//  2. owners see their own material, hidden or private included
//  3. private items are hidden from everyone else
//  4. moderation-hidden items are hidden from everyone else
//  5. items whose author is moderator-blocked in the item's school are hidden
//  6. items whose author the viewer has blocked are hidden
//  7. otherwise visible
func decide(facts itemFacts, viewer Principal, idx *blockIndex) bool {
	if viewer.IsAdmin() {
		return true
	}
	if viewer.Owns(facts.ownerID) {
		return true
	}
	if facts.private {
		return false
	}
	if facts.hidden {
		return false
	}
	if facts.schoolID != nil {
		if _, blocked := idx.modBlocked[authorSchool{author: facts.ownerID, school: *facts.schoolID}]; blocked {
			return false
		}
	}
	if _, blocked := idx.viewerBlocked[facts.ownerID]; blocked {
		return false
	}
	return true
}

// FilterPosts returns the posts the viewer may see, preserving input
// order.
func (f *VisibilityFilter) FilterPosts(ctx context.Context, posts []*models.Post, viewer Principal) ([]*models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}
	authors := make([]uint, 0, len(posts))
	seen := map[uint]struct{}{}
	for _, p := range posts {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			authors = append(authors, p.UserID)
		}
	}
	idx, err := f.buildIndex(ctx, authors, viewer)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if decide(postFacts(p), viewer, idx) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FilterComments returns the comments the viewer may see, preserving
// input order. Comments take the school of their parent post for the
// moderator-block rule; privacy and status are their own.
func (f *VisibilityFilter) FilterComments(ctx context.Context, comments []*models.Comment, postSchoolID *uint, viewer Principal) ([]*models.Comment, error) {
	if len(comments) == 0 {
		return comments, nil
	}
	authors := make([]uint, 0, len(comments))
	seen := map[uint]struct{}{}
	for _, c := range comments {
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			authors = append(authors, c.UserID)
		}
	}
	idx, err := f.buildIndex(ctx, authors, viewer)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if decide(commentFacts(c, postSchoolID), viewer, idx) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CanViewPost decides visibility for a single post.
func (f *VisibilityFilter) CanViewPost(ctx context.Context, post *models.Post, viewer Principal) (bool, error) {
	filtered, err := f.FilterPosts(ctx, []*models.Post{post}, viewer)
	if err != nil {
		return false, err
	}
	return len(filtered) == 1, nil
}

// CanViewComment decides visibility for a single comment.
func (f *VisibilityFilter) CanViewComment(ctx context.Context, comment *models.Comment, postSchoolID *uint, viewer Principal) (bool, error) {
	filtered, err := f.FilterComments(ctx, []*models.Comment{comment}, postSchoolID, viewer)
	if err != nil {
		return false, err
	}
	return len(filtered) == 1, nil
}

// SortPostsByPriority orders posts in place: staff-authored posts
// (admins and moderators of any scope) first, then like count
// descending, then creation time descending. The sort is stable so
// equal-rank posts keep their input order and repeated "load more"
// pages never reshuffle.
func SortPostsByPriority(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		aStaff, bStaff := a.User.IsStaff(), b.User.IsStaff()
		if aStaff != bStaff {
			return aStaff
		}
		if a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// SortCommentsByPriority orders comments with the same comparator as
// posts.
func SortCommentsByPriority(comments []*models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		aStaff, bStaff := a.User.IsStaff(), b.User.IsStaff()
		if aStaff != bStaff {
			return aStaff
		}
		if a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Paginate slices the fully filtered and sorted sequence and reports
// whether more items follow. Pages are 1-based to match the HTTP
// query convention; values below 1 select the first page. Filtering
// after slicing would produce short pages, so callers must paginate
// last.
func Paginate[T any](items []T, page, size int) ([]T, bool) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		return nil, false
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, false
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], end < len(items)
}
