// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"campus/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers        int
	NumModerators   int
	NumPosts        int
	CommentsPerPost int
	// PrivateRatio is the fraction of posts and comments flagged private.
	PrivateRatio float64
	// MaxDays spreads created_at timestamps over the recent past.
	MaxDays     int
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	r    *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, r: r, nextID: 1000}
}

// backdate returns a created_at spread over the recent past.
func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.r.Intn(maxDays)
	hoursBack := f.r.Intn(24)
	minsBack := f.r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func (f *Factory) persist(entity interface{}, assignID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		assignID(f.nextID)
		log.Printf("[dry-run] %T (no DB write)", entity)
		return nil
	}
	return f.db.Create(entity).Error
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Role:     models.UserRoleUser,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}
	return user, f.persist(user, func(id uint) { user.ID = id })
}

// CreateSchool constructs and persists a school under the given parent.
// A nil parent creates a root.
func (f *Factory) CreateSchool(parent *models.School, overrides ...func(*models.School)) (*models.School, error) {
	noun := gofakeit.NounAbstract()
	school := &models.School{
		Name:        fmt.Sprintf("%s %s", gofakeit.City(), "High"),
		Slug:        fmt.Sprintf("%s-%d", noun, gofakeit.Number(100, 999)),
		Description: gofakeit.Sentence(12),
	}
	if parent != nil {
		school.ParentID = &parent.ID
		school.Name = fmt.Sprintf("%s Department", gofakeit.HackerNoun())
	}

	for _, override := range overrides {
		override(school)
	}
	return school, f.persist(school, func(id uint) { school.ID = id })
}

// CreatePost constructs and persists a post by the given user, filed
// under the given school (nil for uncategorized).
func (f *Factory) CreatePost(user *models.User, school *models.School, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:     gofakeit.Sentence(5),
		Body:      gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:    user.ID,
		IsPrivate: f.r.Float64() < f.opts.PrivateRatio,
		Status:    models.ContentStatusNormal,
		CreatedAt: f.backdate(),
	}
	if school != nil {
		post.SchoolID = &school.ID
	}

	for _, override := range overrides {
		override(post)
	}
	return post, f.persist(post, func(id uint) { post.ID = id })
}

// CreateComment constructs and persists a comment on the provided post
// authored by the provided user. A non-nil parent makes it a reply.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Body:      gofakeit.Sentence(8),
		UserID:    user.ID,
		PostID:    post.ID,
		IsPrivate: f.r.Float64() < f.opts.PrivateRatio,
		Status:    models.ContentStatusNormal,
		CreatedAt: f.backdate(),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	for _, override := range overrides {
		override(comment)
	}
	return comment, f.persist(comment, func(id uint) { comment.ID = id })
}

// CreateLike persists a like from `user` on `post`.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.persist(like, func(id uint) { like.ID = id })
}

// CreateCommentLike persists a like from `user` on `comment`.
func (f *Factory) CreateCommentLike(user *models.User, comment *models.Comment) error {
	like := &models.CommentLike{UserID: user.ID, CommentID: comment.ID}
	return f.persist(like, func(id uint) { like.ID = id })
}

// CreateAssignment persists a moderator assignment scoping the user to
// the given school subtree.
func (f *Factory) CreateAssignment(moderator *models.User, school *models.School) (*models.ModeratorAssignment, error) {
	assignment := &models.ModeratorAssignment{ModeratorID: moderator.ID}
	if school != nil {
		assignment.SchoolID = &school.ID
	}
	return assignment, f.persist(assignment, func(id uint) { assignment.ID = id })
}

// CreateModeratorBlock persists a school-scoped block of a user by a
// moderator.
func (f *Factory) CreateModeratorBlock(moderator, blocked *models.User, school *models.School) (*models.ModeratorBlock, error) {
	block := &models.ModeratorBlock{
		ModeratorID:   moderator.ID,
		BlockedUserID: blocked.ID,
		SchoolID:      school.ID,
		Reason:        gofakeit.Sentence(6),
	}
	return block, f.persist(block, func(id uint) { block.ID = id })
}

// CreateUserBlock persists a directional personal block.
func (f *Factory) CreateUserBlock(blocker, blocked *models.User) (*models.UserBlock, error) {
	block := &models.UserBlock{BlockerID: blocker.ID, BlockedID: blocked.ID}
	return block, f.persist(block, func(id uint) { block.ID = id })
}

// CreateLoginState persists a successful-login baseline so the lockout
// policy has a fingerprint to compare against.
func (f *Factory) CreateLoginState(user *models.User) (*models.LoginState, error) {
	deviceTypes := []string{"Windows", "macOS", "Linux", "Android", "iOS"}
	state := &models.LoginState{
		UserID:         user.ID,
		HasFingerprint: true,
		LastIP:         gofakeit.IPv4Address(),
		LastDeviceType: deviceTypes[f.r.Intn(len(deviceTypes))],
		LastDeviceID:   uuid.New().String(),
	}
	if f.opts.DryRun {
		log.Printf("[dry-run] %T (no DB write)", state)
		return state, nil
	}
	return state, f.db.Create(state).Error
}
