package seed

import (
	"fmt"
	"log"

	"aurachat/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with demo users and their activity.
type Seeder struct {
	db      *gorm.DB
	Factory *Factory
}

// NewSeeder creates a Seeder backed by db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, Factory: NewFactory(db, opts)}
}

// ClearAll removes every row from the application tables, children first.
func (s *Seeder) ClearAll() error {
	if s.Factory.opts.DryRun {
		log.Println("[dry-run] ClearAll skipped")
		return nil
	}
	log.Println("🧹 Clearing existing data...")
	tables := []any{
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.Post{},
		&models.UserProfile{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates count users with profiles.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.Factory.CreateUser()
		if err != nil {
			return users, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
		if (i+1)%25 == 0 {
			log.Printf("Created %d users...", i+1)
		}
	}
	log.Printf("✓ %d users created", len(users))
	return users, nil
}

// SeedFollows makes every user follow up to perUser random others.
func (s *Seeder) SeedFollows(users []*models.User, perUser int) (int, error) {
	if len(users) < 2 || perUser <= 0 {
		return 0, nil
	}
	created := 0
	for _, follower := range users {
		n := 0
		for _, idx := range s.Factory.rng.Perm(len(users)) {
			if n == perUser {
				break
			}
			followed := users[idx]
			if followed.ID == follower.ID {
				continue
			}
			if err := s.Factory.CreateFollow(follower, followed); err != nil {
				return created, err
			}
			n++
			created++
		}
	}
	log.Printf("✓ %d follows created", created)
	return created, nil
}

// Engagement is the result of SeedEngagement.
type Engagement struct {
	Posts    []*models.Post
	Likes    int
	Comments int
}

// SeedEngagement spreads posts across users, then has random users like
// and comment on them.
func (s *Seeder) SeedEngagement(users []*models.User, posts int) (*Engagement, error) {
	out := &Engagement{}
	if len(users) == 0 || posts <= 0 {
		return out, nil
	}
	rng := s.Factory.rng

	for i := 0; i < posts; i++ {
		author := users[rng.Intn(len(users))]
		post, err := s.Factory.CreatePost(author)
		if err != nil {
			return out, fmt.Errorf("create post %d: %w", i, err)
		}
		out.Posts = append(out.Posts, post)
		if (i+1)%50 == 0 {
			log.Printf("Created %d posts...", i+1)
		}
	}

	for _, post := range out.Posts {
		likers := rng.Intn(len(users) + 1)
		for _, idx := range rng.Perm(len(users))[:likers] {
			if err := s.Factory.CreateLike(users[idx], post); err != nil {
				return out, fmt.Errorf("like post %d: %w", post.ID, err)
			}
			out.Likes++
		}
		for c := rng.Intn(4); c > 0; c-- {
			commenter := users[rng.Intn(len(users))]
			if _, err := s.Factory.CreateComment(commenter, post); err != nil {
				return out, fmt.Errorf("comment on post %d: %w", post.ID, err)
			}
			out.Comments++
		}
	}

	log.Printf("✓ %d posts, %d likes, %d comments created", len(out.Posts), out.Likes, out.Comments)
	return out, nil
}
