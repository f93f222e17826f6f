// Package seed creates demo data for development databases and tests.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Inkwell-demo-2024!"

// Options tune generated data.
type Options struct {
	// SkipBcrypt hashes with the minimum bcrypt cost, for fast test runs.
	SkipBcrypt bool
	// MaxDays spreads pub dates over that many days back from now.
	MaxDays int
}

// Factory builds domain entities and persists them through the repositories.
type Factory struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	opts     Options
	rng      *rand.Rand
	hash     string
}

func NewFactory(db *gorm.DB, opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		opts:     opts,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.hash = string(hashed)
	return f.hash, nil
}

// CreateUser persists a fake user. Optional overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}

	first, last := gofakeit.FirstName(), gofakeit.LastName()
	user := &models.User{
		Username:  fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), gofakeit.Number(100, 9999)),
		Email:     gofakeit.Email(),
		Password:  hash,
		FirstName: first,
		LastName:  last,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by author, filed under one of groups or
// none, with a pub date somewhere in the last MaxDays days.
func (f *Factory) BuildPost(author *models.User, groups []models.Group) *models.Post {
	post := &models.Post{
		Text:     gofakeit.Paragraph(1, f.rng.Intn(4)+1, 12, " "),
		AuthorID: author.ID,
		PubDate:  f.pubDate(),
	}
	if len(groups) > 0 && f.rng.Intn(4) != 0 {
		g := groups[f.rng.Intn(len(groups))]
		post.GroupID = &g.ID
	}
	return post
}

// CreatePost persists a post built by BuildPost.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, groups []models.Group) (*models.Post, error) {
	post := f.BuildPost(author, groups)
	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a fake comment on post by author.
func (f *Factory) CreateComment(ctx context.Context, post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     gofakeit.Sentence(f.rng.Intn(12) + 3),
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Follow makes user follow author unless they are the same user.
func (f *Factory) Follow(ctx context.Context, user, author *models.User) error {
	if user.ID == author.ID {
		return nil
	}
	_, err := f.follows.Ensure(ctx, user.ID, author.ID)
	return err
}

func (f *Factory) pubDate() time.Time {
	back := time.Duration(f.rng.Intn(f.opts.MaxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}
