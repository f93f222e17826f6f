package service

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// FollowService moves a (follower, author) pair between following and not following.
type FollowService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewFollowService(users repository.UserRepository, follows repository.FollowRepository) *FollowService {
	return &FollowService{users: users, follows: follows}
}

// Follow subscribes followerID to username. Following oneself is silently skipped
// and following twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID uint, username string) (err error) {
	ctx, span := observability.StartSpan(ctx, "FollowService", "Follow")
	defer func() { observability.EndSpan(span, err) }()

	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == followerID {
		return nil
	}

	created, err := s.follows.Ensure(ctx, followerID, author.ID)
	if err != nil {
		return err
	}
	if created {
		observability.FollowChanges.WithLabelValues("follow").Inc()
		middleware.Logger.InfoContext(ctx, "Follow created",
			slog.Uint64("user_id", uint64(followerID)), slog.Uint64("author_id", uint64(author.ID)))
	}
	return nil
}

// Unfollow removes every pairing of followerID with username. Unfollowing an
// author that is not followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, username string) (err error) {
	ctx, span := observability.StartSpan(ctx, "FollowService", "Unfollow")
	defer func() { observability.EndSpan(span, err) }()

	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	removed, err := s.follows.Remove(ctx, followerID, author.ID)
	if err != nil {
		return err
	}
	if removed > 0 {
		observability.FollowChanges.WithLabelValues("unfollow").Inc()
		middleware.Logger.InfoContext(ctx, "Follow removed",
			slog.Uint64("user_id", uint64(followerID)), slog.Uint64("author_id", uint64(author.ID)),
			slog.Int64("rows", removed))
	}
	return nil
}
