package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Plan sets how much data a seeding run creates.
type Plan struct {
	Users int
	Posts int
	// CommentsPerPost is the upper bound of comments on each post.
	CommentsPerPost int
	// FollowsPerUser is how many other users each user follows, at most.
	FollowsPerUser int
}

// Summary counts what a run created.
type Summary struct {
	Groups   int
	Users    int
	Posts    int
	Comments int
	Follows  int
}

// Seeder fills a database with demo groups, users, posts, comments and follows.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll deletes every seeded table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range []any{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "Database cleared")
	return nil
}

// Run creates the built-in groups and the data described by plan.
func (s *Seeder) Run(ctx context.Context, plan Plan) (*Summary, error) {
	sum := &Summary{}

	groups, err := Groups(ctx, s.db)
	if err != nil {
		return nil, err
	}
	sum.Groups = len(groups)

	users := make([]*models.User, 0, plan.Users)
	for i := 0; i < plan.Users; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for i := 0; i < plan.Posts; i++ {
		author := users[s.rng.Intn(len(users))]
		post, err := s.factory.CreatePost(ctx, author, groups)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		if plan.CommentsPerPost <= 0 {
			continue
		}
		for j := s.rng.Intn(plan.CommentsPerPost + 1); j > 0; j-- {
			if _, err := s.factory.CreateComment(ctx, post, users[s.rng.Intn(len(users))]); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
	}

	for _, u := range users {
		for _, idx := range s.rng.Perm(len(users))[:min(plan.FollowsPerUser, len(users))] {
			author := users[idx]
			if author.ID == u.ID {
				continue
			}
			if err := s.factory.Follow(ctx, u, author); err != nil {
				return nil, fmt.Errorf("create follow: %w", err)
			}
			sum.Follows++
		}
	}

	middleware.Logger.InfoContext(ctx, "Seeding complete",
		slog.Int("groups", sum.Groups),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("follows", sum.Follows),
	)
	return sum, nil
}
