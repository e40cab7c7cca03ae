package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

func postLikeView(l *models.PostLike) LikeView {
	return LikeView{UUID: l.UUID.String(), User: userSummary(l.User), CreatedAt: l.CreatedAt}
}

func commentLikeView(l *models.CommentLike) LikeView {
	return LikeView{UUID: l.UUID.String(), User: userSummary(l.User), CreatedAt: l.CreatedAt}
}

// ListPostLikes handles GET /api/blog/:uuid/likes
// @Summary List a post's likes
// @Tags likes
// @Produce json
// @Param uuid path string true "Post UUID"
// @Success 200 {object} models.Envelope{data=PageView[LikeView]}
// @Failure 404 {object} models.Envelope
// @Router /blog/{uuid}/likes [get]
func (s *Server) ListPostLikes(c *fiber.Ctx) error {
	list, err := s.likes.ListPostLikes(c.UserContext(), middleware.UserID(c), c.Params("uuid"), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, postLikeView), "")
}

// LikePost handles POST /api/blog/:uuid/likes
// @Summary Like a post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Post UUID"
// @Success 201 {object} models.Envelope{data=LikeView}
// @Failure 404 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /blog/{uuid}/likes [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	like, err := s.likes.LikePost(c.UserContext(), middleware.UserID(c), c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return respondCreated(c, postLikeView(like), "Post liked")
}

// GetPostLike handles GET /api/blog/likes/:uuid
// @Summary Get a post like
// @Tags likes
// @Produce json
// @Param uuid path string true "Like UUID"
// @Success 200 {object} models.Envelope{data=LikeView}
// @Failure 404 {object} models.Envelope
// @Router /blog/likes/{uuid} [get]
func (s *Server) GetPostLike(c *fiber.Ctx) error {
	like, err := s.likes.GetPostLike(c.UserContext(), middleware.UserID(c), c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, postLikeView(like), "")
}

// DeletePostLike handles DELETE /api/blog/likes/:uuid
// @Summary Remove my like from a post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Like UUID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /blog/likes/{uuid} [delete]
func (s *Server) DeletePostLike(c *fiber.Ctx) error {
	if err := s.likes.DeletePostLike(c.UserContext(), middleware.UserID(c), c.Params("uuid")); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Like removed")
}

// ListCommentLikes handles GET /api/blog/comments/:uuid/likes
// @Summary List the likes of a comment or reply
// @Tags likes
// @Produce json
// @Param uuid path string true "Comment or reply UUID"
// @Success 200 {object} models.Envelope{data=PageView[LikeView]}
// @Failure 404 {object} models.Envelope
// @Router /blog/comments/{uuid}/likes [get]
func (s *Server) ListCommentLikes(c *fiber.Ctx) error {
	ctx := c.UserContext()
	parent, err := s.replies.ResolveParent(ctx, c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	list, err := s.likes.ListCommentLikes(ctx, middleware.UserID(c), parent, parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, commentLikeView), "")
}

// LikeComment handles POST /api/blog/comments/:uuid/likes
// @Summary Like a comment or reply
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Comment or reply UUID"
// @Success 201 {object} models.Envelope{data=LikeView}
// @Failure 404 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /blog/comments/{uuid}/likes [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	parent, err := s.replies.ResolveParent(ctx, c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	like, err := s.likes.LikeComment(ctx, middleware.UserID(c), parent)
	if err != nil {
		return fail(c, err)
	}
	return respondCreated(c, commentLikeView(like), "Liked")
}

// GetCommentLike handles GET /api/blog/comments/likes/:uuid
// @Summary Get a comment or reply like
// @Tags likes
// @Produce json
// @Param uuid path string true "Like UUID"
// @Success 200 {object} models.Envelope{data=LikeView}
// @Failure 404 {object} models.Envelope
// @Router /blog/comments/likes/{uuid} [get]
func (s *Server) GetCommentLike(c *fiber.Ctx) error {
	like, err := s.likes.GetCommentLike(c.UserContext(), middleware.UserID(c), c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, commentLikeView(like), "")
}

// DeleteCommentLike handles DELETE /api/blog/comments/likes/:uuid
// @Summary Remove my like from a comment or reply
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Like UUID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /blog/comments/likes/{uuid} [delete]
func (s *Server) DeleteCommentLike(c *fiber.Ctx) error {
	if err := s.likes.DeleteCommentLike(c.UserContext(), middleware.UserID(c), c.Params("uuid")); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Like removed")
}
