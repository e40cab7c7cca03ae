package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title       *string  `json:"title"`
	Content     *string  `json:"content"`
	Tags        []string `json:"tags"`
	HeaderImage *string  `json:"header_image"`
	Published   *bool    `json:"published"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:       r.Title,
		Content:     r.Content,
		Tags:        r.Tags,
		HeaderImage: r.HeaderImage,
		Published:   r.Published,
	}
}

// ListPosts handles GET /api/blogs
// @Summary List posts
// @Description Published posts plus the caller's own drafts. Filters combine with AND.
// @Tags posts
// @Produce json
// @Param author query string false "Author UUID"
// @Param name query string false "Author first or last name contains"
// @Param title query string false "Title or slug contains"
// @Param tags query string false "Comma-separated tags, any of"
// @Param popular query bool false "Order by likes"
// @Param rated query bool false "Order by comments"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Envelope{data=PageView[PostView]}
// @Router /blogs [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	list, err := s.posts.List(c.UserContext(), middleware.UserID(c), service.PostQuery{
		Author:  c.Query("author"),
		Name:    c.Query("name"),
		Title:   c.Query("title"),
		Tags:    models.ParseList(c.Query("tags")),
		Popular: c.QueryBool("popular"),
		Rated:   c.QueryBool("rated"),
	}, parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, func(p *models.Post) PostView { return postView(p, true) }), "")
}

// CreatePost handles POST /api/blogs
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "Post"
// @Success 201 {object} models.Envelope{data=PostView}
// @Failure 400 {object} models.Envelope
// @Router /blogs [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	post, err := s.posts.Create(c.UserContext(), middleware.UserID(c), req.input())
	if err != nil {
		return fail(c, err)
	}
	return respondCreated(c, postView(post, false), "Post created")
}

// GetPost handles GET /api/blogs/:ref
// @Summary Get a post by UUID or slug
// @Tags posts
// @Produce json
// @Param ref path string true "Post UUID or slug"
// @Success 200 {object} models.Envelope{data=PostView}
// @Failure 404 {object} models.Envelope
// @Router /blogs/{ref} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.posts.Get(c.UserContext(), middleware.UserID(c), c.Params("ref"))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, postView(post, false), "")
}

// UpdatePost handles PATCH /api/blogs/:ref
// @Summary Update a post
// @Description Author only. The slug never changes.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ref path string true "Post UUID or slug"
// @Param request body postRequest true "Fields to change"
// @Success 200 {object} models.Envelope{data=PostView}
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /blogs/{ref} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	post, err := s.posts.Update(c.UserContext(), middleware.UserID(c), c.Params("ref"), req.input())
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, postView(post, false), "Post updated")
}

// DeletePost handles DELETE /api/blogs/:ref
// @Summary Delete a post with its comments, replies and likes
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param ref path string true "Post UUID or slug"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /blogs/{ref} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.posts.Delete(c.UserContext(), middleware.UserID(c), c.Params("ref")); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Post deleted")
}
