// Package service implements the application's use cases on top of the repositories.
package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/paginator"
	"inkwell/internal/repository"
)

// DefaultPostsPerPage is the feed page size when none is configured.
const DefaultPostsPerPage = 10

// PostPage is one page of a post feed.
type PostPage = paginator.Page[*models.Post]

// GroupFeed is a page of a group's posts with the group itself.
type GroupFeed struct {
	Group *models.Group
	Page  PostPage
}

// ProfileFeed is a page of an author's posts.
type ProfileFeed struct {
	Author    *models.User
	Page      PostPage
	PostCount int64
	// Following is nil for anonymous viewers.
	Following *bool
}

// FeedService builds the paginated, newest-first post listings.
type FeedService struct {
	posts   repository.PostRepository
	groups  repository.GroupRepository
	users   repository.UserRepository
	follows repository.FollowRepository
	perPage int
}

func NewFeedService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	perPage int,
) *FeedService {
	if perPage <= 0 {
		perPage = DefaultPostsPerPage
	}
	return &FeedService{
		posts:   posts,
		groups:  groups,
		users:   users,
		follows: follows,
		perPage: perPage,
	}
}

// Index returns a page of every post.
func (s *FeedService) Index(ctx context.Context, rawPage string) (PostPage, error) {
	return s.page(ctx, "Index", repository.PostQuery{}, rawPage)
}

// Group returns a page of the posts in the group with the given slug.
func (s *FeedService) Group(ctx context.Context, slug, rawPage string) (*GroupFeed, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := s.page(ctx, "Group", repository.PostQuery{GroupID: group.ID}, rawPage)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Page: page}, nil
}

// Profile returns a page of the posts by username. viewerID is 0 for guests.
func (s *FeedService) Profile(ctx context.Context, username, rawPage string, viewerID uint) (*ProfileFeed, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	page, err := s.page(ctx, "Profile", repository.PostQuery{AuthorID: author.ID}, rawPage)
	if err != nil {
		return nil, err
	}

	feed := &ProfileFeed{Author: author, Page: page, PostCount: page.TotalCount}
	if viewerID != 0 {
		following, err := s.follows.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
		feed.Following = &following
	}
	return feed, nil
}

// Following returns a page of posts by the authors userID follows.
func (s *FeedService) Following(ctx context.Context, userID uint, rawPage string) (PostPage, error) {
	return s.page(ctx, "Following", repository.PostQuery{FollowerID: userID}, rawPage)
}

func (s *FeedService) page(ctx context.Context, name string, q repository.PostQuery, rawPage string) (page PostPage, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService", name)
	defer func() { observability.EndSpan(span, err) }()

	total, err := s.posts.Count(ctx, q)
	if err != nil {
		return PostPage{}, err
	}
	number, limit, offset := paginator.Window(rawPage, total, s.perPage)
	if total == 0 {
		return paginator.New[*models.Post](nil, number, s.perPage, 0), nil
	}

	items, err := s.posts.List(ctx, q, limit, offset)
	if err != nil {
		return PostPage{}, err
	}
	return paginator.New(items, number, s.perPage, total), nil
}
