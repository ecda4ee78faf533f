package seed

import (
	"fmt"
	"log"

	"campus/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed populates the database with demo data: the built-in school
// forest, an admin, scoped moderators, users with login baselines,
// posts, comments, likes, and a sprinkling of blocks.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	if err := Schools(db); err != nil {
		return fmt.Errorf("failed to seed schools: %w", err)
	}

	var roots []models.School
	if err := db.Where("parent_id IS NULL").Find(&roots).Error; err != nil {
		return fmt.Errorf("failed to load root schools: %w", err)
	}
	var schools []models.School
	if err := db.Find(&schools).Error; err != nil {
		return fmt.Errorf("failed to load schools: %w", err)
	}
	log.Printf("✓ %d schools available (%d roots)", len(schools), len(roots))

	f := NewFactory(db, opts)

	admin, err := createAdmin(f)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	moderators, users, err := createUsers(f, roots, opts)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d moderators and %d users created", len(moderators), len(users))

	posts, err := createPosts(f, users, schools, opts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := createComments(f, users, posts, opts); err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	if err := createLikes(f, users, posts); err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	if err := createBlocks(f, moderators, users, roots); err != nil {
		return fmt.Errorf("failed to create blocks: %w", err)
	}

	_ = admin // seeded for login convenience, not referenced by content

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

// SeedWithPreset runs Seed using a named or file-based preset. Preset
// schools, when present, are added alongside the built-in forest.
func SeedWithPreset(db *gorm.DB, nameOrPath string, clean bool) error {
	preset, err := LoadPreset(nameOrPath)
	if err != nil {
		return err
	}
	if len(preset.Schools) > 0 {
		for _, root := range preset.Schools {
			if err := upsertPresetSchool(db, root, nil); err != nil {
				return fmt.Errorf("seed preset school %s: %w", root.Slug, err)
			}
		}
	}
	opts := preset.Options()
	opts.ShouldClean = clean
	return Seed(db, opts)
}

func upsertPresetSchool(db *gorm.DB, item PresetSchool, parentID *uint) error {
	school := models.School{
		Name:          item.Name,
		Slug:          item.Slug,
		Description:   item.Description,
		ParentID:      parentID,
		CreatedByRole: models.UserRoleAdmin,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "parent_id", "updated_at"}),
	}).Create(&school).Error; err != nil {
		return err
	}
	if school.ID == 0 {
		if err := db.Where("slug = ?", item.Slug).First(&school).Error; err != nil {
			return err
		}
	}
	for _, child := range item.Children {
		if err := upsertPresetSchool(db, child, &school.ID); err != nil {
			return err
		}
	}
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE comment_likes, likes, comments, posts, moderator_blocks,
		user_blocks, moderator_assignments, login_states, schools, users
		RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createAdmin(f *Factory) (*models.User, error) {
	admin, err := f.CreateUser(func(u *models.User) {
		u.Username = "dean"
		u.Email = "dean@campus.example"
		u.Role = models.UserRoleAdmin
		u.Bio = "Keeper of the keys."
	})
	if err != nil {
		return nil, err
	}
	if _, err := f.CreateLoginState(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// createUsers seeds moderators scoped round-robin over the root schools,
// then regular users. Every account gets a login-state baseline so the
// lockout policy has fingerprints to compare against.
func createUsers(f *Factory, roots []models.School, opts Options) ([]*models.User, []*models.User, error) {
	moderators := make([]*models.User, 0, opts.NumModerators)
	for i := 0; i < opts.NumModerators; i++ {
		mod, err := f.CreateUser(func(u *models.User) {
			u.Role = models.UserRoleModerator
		})
		if err != nil {
			return nil, nil, err
		}
		if len(roots) > 0 {
			root := roots[i%len(roots)]
			if _, err := f.CreateAssignment(mod, &root); err != nil {
				return nil, nil, err
			}
		}
		if _, err := f.CreateLoginState(mod); err != nil {
			return nil, nil, err
		}
		moderators = append(moderators, mod)
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, nil, err
		}
		if _, err := f.CreateLoginState(user); err != nil {
			return nil, nil, err
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return moderators, users, nil
}

func createPosts(f *Factory, users []*models.User, schools []models.School, opts Options) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.r.Intn(len(users))]

		// roughly one post in ten is uncategorized
		var school *models.School
		if len(schools) > 0 && f.r.Intn(10) != 0 {
			school = &schools[f.r.Intn(len(schools))]
		}

		post, err := f.CreatePost(author, school)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}
	return posts, nil
}

func createComments(f *Factory, users []*models.User, posts []*models.Post, opts Options) error {
	if len(users) == 0 || opts.CommentsPerPost <= 0 {
		return nil
	}
	for _, post := range posts {
		count := f.r.Intn(opts.CommentsPerPost + 1)
		var topLevel []*models.Comment
		for i := 0; i < count; i++ {
			author := users[f.r.Intn(len(users))]

			// a third of comments reply to an earlier one on the post
			var parent *models.Comment
			if len(topLevel) > 0 && f.r.Intn(3) == 0 {
				parent = topLevel[f.r.Intn(len(topLevel))]
			}

			comment, err := f.CreateComment(author, post, parent)
			if err != nil {
				return err
			}
			if parent == nil {
				topLevel = append(topLevel, comment)
			}
		}
	}
	return nil
}

func createLikes(f *Factory, users []*models.User, posts []*models.Post) error {
	if len(users) == 0 {
		return nil
	}
	for _, post := range posts {
		count := f.r.Intn(len(users)/2 + 1)
		// pick distinct likers; the likes table has a unique (user, post) pair
		perm := f.r.Perm(len(users))
		for i := 0; i < count && i < len(perm); i++ {
			if err := f.CreateLike(users[perm[i]], post); err != nil {
				return err
			}
		}
	}
	return nil
}

// createBlocks gives each moderator a couple of scoped blocks and adds a
// few personal blocks between users, so filtered feeds show up in demos.
func createBlocks(f *Factory, moderators, users []*models.User, roots []models.School) error {
	if len(users) < 3 {
		return nil
	}
	for i, mod := range moderators {
		if len(roots) == 0 {
			break
		}
		root := roots[i%len(roots)]
		perm := f.r.Perm(len(users))
		for j := 0; j < 2 && j < len(perm); j++ {
			if _, err := f.CreateModeratorBlock(mod, users[perm[j]], &root); err != nil {
				return err
			}
		}
	}

	seen := make(map[[2]uint]bool)
	pairs := len(users) / 10
	for i := 0; i < pairs; i++ {
		blocker := users[f.r.Intn(len(users))]
		blocked := users[f.r.Intn(len(users))]
		key := [2]uint{blocker.ID, blocked.ID}
		if blocker.ID == blocked.ID || seen[key] {
			continue
		}
		seen[key] = true
		if _, err := f.CreateUserBlock(blocker, blocked); err != nil {
			return err
		}
	}
	return nil
}
