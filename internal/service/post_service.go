package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// detailTitleLen is how much of the text the post detail page uses as its title.
const detailTitleLen = 30

// ImageStore validates and persists uploaded post images.
type ImageStore interface {
	Validate(content []byte, contentType string) error
	Save(filename string, content []byte) (string, error)
	Remove(rel string) error
}

// ImageUpload is a file submitted with the post form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PostInput carries a submitted post form.
type PostInput struct {
	UserID uint
	Form   validation.PostForm
	// Image is nil when no file was uploaded.
	Image *ImageUpload
}

// PostDetail is a post with what its detail page shows around it.
type PostDetail struct {
	Post            *models.Post
	Title           string
	AuthorPostCount int64
	Comments        []models.Comment
}

// ErrNotAuthor is returned by edit operations when only the author may edit
// and the caller is someone else.
var ErrNotAuthor = models.NewForbiddenError("Only the author can edit this post")

type PostService struct {
	posts         repository.PostRepository
	groups        repository.GroupRepository
	comments      repository.CommentRepository
	images        ImageStore
	requireAuthor bool
}

func NewPostService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	comments repository.CommentRepository,
	images ImageStore,
	requireAuthor bool,
) *PostService {
	return &PostService{
		posts:         posts,
		groups:        groups,
		comments:      comments,
		images:        images,
		requireAuthor: requireAuthor,
	}
}

// Groups lists the groups a post can be filed under.
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}

// Detail loads a post with its comments and the author's post count.
func (s *PostService) Detail(ctx context.Context, id uint) (detail *PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "Detail")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.posts.Count(ctx, repository.PostQuery{AuthorID: post.AuthorID})
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		Post:            post,
		Title:           models.Truncate(post.Text, detailTitleLen),
		AuthorPostCount: count,
		Comments:        comments,
	}, nil
}

// Create validates the form and stores a new post by in.UserID.
// An invalid form yields validation.FormErrors and nothing is written.
func (s *PostService) Create(ctx context.Context, in PostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	groupID, err := s.checkForm(ctx, in)
	if err != nil {
		return nil, err
	}

	post = &models.Post{
		Text:     in.Form.Text,
		AuthorID: in.UserID,
		GroupID:  groupID,
	}
	if in.Image != nil {
		if post.Image, err = s.images.Save(in.Image.Filename, in.Image.Content); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		_ = s.images.Remove(post.Image)
		return nil, err
	}

	observability.PostsCreated.Inc()
	middleware.Logger.InfoContext(ctx, "Post created",
		slog.Uint64("post_id", uint64(post.ID)), slog.Uint64("author_id", uint64(post.AuthorID)))
	return post, nil
}

// GetForEdit loads a post for the edit form on behalf of editorID.
func (s *PostService) GetForEdit(ctx context.Context, id, editorID uint) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "GetForEdit")
	defer func() { observability.EndSpan(span, err) }()

	post, err = s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEditor(ctx, post, editorID); err != nil {
		return post, err
	}
	return post, nil
}

// Update applies a submitted edit form to post id. pub_date and author never change.
// Without a new upload the current image is kept.
func (s *PostService) Update(ctx context.Context, id uint, in PostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "Update")
	defer func() { observability.EndSpan(span, err) }()

	post, err = s.GetForEdit(ctx, id, in.UserID)
	if err != nil {
		return post, err
	}

	groupID, err := s.checkForm(ctx, in)
	if err != nil {
		return post, err
	}

	oldImage := post.Image
	post.Text = in.Form.Text
	post.GroupID = groupID
	if in.Image != nil {
		if post.Image, err = s.images.Save(in.Image.Filename, in.Image.Content); err != nil {
			return post, err
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			_ = s.images.Remove(post.Image)
		}
		return post, err
	}
	if post.Image != oldImage {
		_ = s.images.Remove(oldImage)
	}

	middleware.Logger.InfoContext(ctx, "Post updated", slog.Uint64("post_id", uint64(post.ID)))
	return post, nil
}

// checkEditor enforces the author-only rule when it is enabled. Non-author
// edits are logged in both modes.
func (s *PostService) checkEditor(ctx context.Context, post *models.Post, editorID uint) error {
	if post.AuthorID == editorID {
		return nil
	}
	middleware.Logger.WarnContext(ctx, "Post edit by non-author",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("author_id", uint64(post.AuthorID)),
		slog.Uint64("editor_id", uint64(editorID)),
		slog.Bool("blocked", s.requireAuthor),
	)
	if s.requireAuthor {
		return ErrNotAuthor
	}
	return nil
}

// checkForm validates the form fields, the group choice and the image.
func (s *PostService) checkForm(ctx context.Context, in PostInput) (*uint, error) {
	errs := validation.Validate(&in.Form)
	if errs == nil {
		errs = validation.FormErrors{}
	}

	var groupID *uint
	if in.Form.Group != "" && !errs.Has("group") {
		id, err := strconv.ParseUint(in.Form.Group, 10, 64)
		if err != nil || id == 0 {
			errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		} else if group, err := s.groups.GetByID(ctx, uint(id)); err != nil {
			if !models.IsCode(err, models.CodeNotFound) {
				return nil, err
			}
			errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			groupID = &group.ID
		}
	}

	if in.Image != nil {
		if err := s.images.Validate(in.Image.Content, in.Image.ContentType); err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Field == "" {
				return nil, err
			}
			errs.Add(appErr.Field, appErr.Message)
		}
	}

	if errs.Any() {
		return nil, errs
	}
	return groupID, nil
}
