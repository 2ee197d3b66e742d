// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"aurachat/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the plain-text password of every seeded account.
const DemoPassword = "password123"

// Options tune the factory and the seeder.
type Options struct {
	// DryRun assigns synthetic IDs and writes nothing.
	DryRun bool
	// SkipBcrypt stores a cheap hash so large seeds finish quickly.
	SkipBcrypt bool
	// MaxDays spreads created_at over the last MaxDays days.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	hash string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		// #nosec G404: acceptable for seeding
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		log.Fatalf("hash demo password: %v", err)
	}
	f.hash = string(hashed)
	return f.hash
}

// username turns a fake first name into a valid login: lowercase letters,
// digits and underscores, at most 20 characters.
func (f *Factory) username() string {
	base := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(gofakeit.FirstName()))
	if len(base) > 12 {
		base = base[:12]
	}
	if len(base) < 3 {
		base = "aura"
	}
	return fmt.Sprintf("%s_%d", base, f.rng.Intn(1_000_000))
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a user with a filled-in profile.
// Optional override functions may modify the user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := f.username()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: f.passwordHash(),
		IsActive: true,
	}
	for _, override := range overrides {
		override(user)
	}

	profile := models.NewDefaultProfile(0, gofakeit.Name())
	profile.Bio = gofakeit.Sentence(10)
	profile.Location = gofakeit.City()
	profile.CustomStatus = gofakeit.HipsterSentence(4)
	if f.rng.Intn(3) == 0 {
		profile.ThemePreference = models.ThemeDark
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		profile.UserID = user.ID
		user.Profile = profile
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// BuildPost constructs a post for user without persisting it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Content:   gofakeit.Paragraph(1, 3, 12, " "),
		UserID:    user.ID,
		CreatedAt: f.pastTime(),
	}
	if f.rng.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a post for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: user=%d", post.UserID)
		return post, nil
	}

	if err := f.db.Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on post authored by user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post. An existing like is kept.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(like).Error
}

// CreateFollow persists follower -> followed. Self follows are ignored.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	if f.opts.DryRun || follower.ID == followed.ID {
		return nil
	}
	follow := &models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(follow).Error
}
