package service

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Form   validation.CommentForm
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// CreateComment adds a comment to an existing post. An invalid form yields
// validation.FormErrors and nothing is written.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService", "CreateComment")
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if errs := validation.Validate(&in.Form); errs != nil {
		return nil, errs
	}

	comment = &models.Comment{
		PostID:   in.PostID,
		AuthorID: in.UserID,
		Text:     in.Form.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.CommentsCreated.Inc()
	middleware.Logger.InfoContext(ctx, "Comment created",
		slog.Uint64("comment_id", uint64(comment.ID)), slog.Uint64("post_id", uint64(comment.PostID)))
	return comment, nil
}
