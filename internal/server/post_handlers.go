package server

import (
	"strconv"

	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.feedService.Index(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/index", fiber.Map{"Page": page})
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.Group(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/group_list", fiber.Map{
		"Group": feed.Group,
		"Page":  feed.Page,
	})
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	feed, err := s.feedService.Profile(c.UserContext(), c.Params("username"), c.Query("page"), viewerID)
	if err != nil {
		return err
	}
	return s.render(c, "posts/profile", fiber.Map{
		"Author":    feed.Author,
		"Page":      feed.Page,
		"PostCount": feed.PostCount,
		"Following": feed.Following != nil && *feed.Following,
		"CanFollow": viewerID != 0 && viewerID != feed.Author.ID,
	})
}

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	detail, err := s.postService.Detail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return s.render(c, "posts/post_detail", fiber.Map{
		"Post":            detail.Post,
		"Title":           detail.Title,
		"AuthorPostCount": detail.AuthorPostCount,
		"Comments":        detail.Comments,
	})
}

// CreatePostForm handles GET /create/
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, validation.PostForm{}, nil, nil)
}

// CreatePost handles POST /create/
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	upload, err := readUpload(c)
	if err != nil {
		return err
	}

	user := currentUser(c)
	_, err = s.postService.Create(c.UserContext(), service.PostInput{
		UserID: user.ID,
		Form:   form,
		Image:  upload,
	})
	if errs, ok := asFormErrors(err); ok {
		return s.renderPostForm(c, form, errs, nil)
	}
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusFound)
}

// EditPostForm handles GET /posts/:id/edit/
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetForEdit(c.UserContext(), id, currentUserID(c))
	if models.IsCode(err, models.CodeForbidden) {
		return c.Redirect(postURL(id), fiber.StatusFound)
	}
	if err != nil {
		return err
	}

	form := validation.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return s.renderPostForm(c, form, nil, post)
}

// EditPost handles POST /posts/:id/edit/
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	upload, err := readUpload(c)
	if err != nil {
		return err
	}

	post, err := s.postService.Update(c.UserContext(), id, service.PostInput{
		UserID: currentUserID(c),
		Form:   form,
		Image:  upload,
	})
	if models.IsCode(err, models.CodeForbidden) {
		return c.Redirect(postURL(id), fiber.StatusFound)
	}
	if errs, ok := asFormErrors(err); ok {
		return s.renderPostForm(c, form, errs, post)
	}
	if err != nil {
		return err
	}
	return c.Redirect(postURL(id), fiber.StatusFound)
}

// renderPostForm shows the create form, or the edit form when post is set.
func (s *Server) renderPostForm(c *fiber.Ctx, form validation.PostForm, errs validation.FormErrors, post *models.Post) error {
	groups, err := s.postService.Groups(c.UserContext())
	if err != nil {
		return err
	}
	if errs == nil {
		errs = validation.FormErrors{}
	}
	return s.render(c, "posts/create_post", fiber.Map{
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
		"IsEdit": post != nil,
		"Post":   post,
	})
}

// AddComment handles POST /posts/:id/comment/. An invalid comment is dropped
// and the user lands back on the post either way.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var form validation.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	_, err = s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: currentUserID(c),
		PostID: id,
		Form:   form,
	})
	if _, invalid := asFormErrors(err); err != nil && !invalid {
		return err
	}
	return c.Redirect(postURL(id), fiber.StatusFound)
}
