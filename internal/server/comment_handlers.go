package server

import (
	"inkwell/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type contentRequest struct {
	Content string `json:"content"`
}

// ListComments handles GET /api/blog/:uuid/comments
// @Summary List a post's comments
// @Tags comments
// @Produce json
// @Param uuid path string true "Post UUID"
// @Param latest query bool false "Newest first"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Envelope{data=PageView[NodeView]}
// @Failure 404 {object} models.Envelope
// @Router /blog/{uuid}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	list, err := s.comments.List(c.UserContext(), middleware.UserID(c), c.Params("uuid"), c.QueryBool("latest"), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, commentView), "")
}

// CreateComment handles POST /api/blog/:uuid/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Post UUID"
// @Param request body contentRequest true "Comment"
// @Success 201 {object} models.Envelope{data=NodeView}
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /blog/{uuid}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	comment, err := s.comments.Create(c.UserContext(), middleware.UserID(c), c.Params("uuid"), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return respondCreated(c, commentView(comment), "Comment created")
}

// GetComment handles GET /api/blog/comments/:uuid
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param uuid path string true "Comment UUID"
// @Success 200 {object} models.Envelope{data=NodeView}
// @Failure 404 {object} models.Envelope
// @Router /blog/comments/{uuid} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	comment, err := s.comments.Get(c.UserContext(), middleware.UserID(c), c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, commentView(comment), "")
}

// UpdateComment handles PATCH /api/blog/comments/:uuid
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Comment UUID"
// @Param request body contentRequest true "New content"
// @Success 200 {object} models.Envelope{data=NodeView}
// @Failure 403 {object} models.Envelope
// @Router /blog/comments/{uuid} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	comment, err := s.comments.Update(c.UserContext(), middleware.UserID(c), c.Params("uuid"), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, commentView(comment), "Comment updated")
}

// DeleteComment handles DELETE /api/blog/comments/:uuid
// @Summary Delete a comment with its replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Comment UUID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /blog/comments/{uuid} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if err := s.comments.Delete(c.UserContext(), middleware.UserID(c), c.Params("uuid")); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Comment deleted")
}

// ListReplies handles GET /api/blog/comments/:uuid/reply
// @Summary List replies to a comment or reply
// @Tags comments
// @Produce json
// @Param uuid path string true "Comment or reply UUID"
// @Success 200 {object} models.Envelope{data=PageView[NodeView]}
// @Failure 404 {object} models.Envelope
// @Router /blog/comments/{uuid}/reply [get]
func (s *Server) ListReplies(c *fiber.Ctx) error {
	ctx := c.UserContext()
	parent, err := s.replies.ResolveParent(ctx, c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	list, err := s.replies.List(ctx, middleware.UserID(c), parent, parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, pageOf(list, replyView), "")
}

// CreateReply handles POST /api/blog/comments/:uuid/reply
// @Summary Reply to a comment or reply
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Comment or reply UUID"
// @Param request body contentRequest true "Reply"
// @Success 201 {object} models.Envelope{data=NodeView}
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /blog/comments/{uuid}/reply [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	ctx := c.UserContext()
	parent, err := s.replies.ResolveParent(ctx, c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	reply, err := s.replies.Create(ctx, middleware.UserID(c), parent, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return respondCreated(c, replyView(reply), "Reply created")
}

// GetReply handles GET /api/blog/comments/reply/:uuid
// @Summary Get a reply
// @Tags comments
// @Produce json
// @Param uuid path string true "Reply UUID"
// @Success 200 {object} models.Envelope{data=NodeView}
// @Failure 404 {object} models.Envelope
// @Router /blog/comments/reply/{uuid} [get]
func (s *Server) GetReply(c *fiber.Ctx) error {
	reply, err := s.replies.Get(c.UserContext(), middleware.UserID(c), c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, replyView(reply), "")
}

// UpdateReply handles PATCH /api/blog/comments/reply/:uuid
// @Summary Edit a reply
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Reply UUID"
// @Param request body contentRequest true "New content"
// @Success 200 {object} models.Envelope{data=NodeView}
// @Failure 403 {object} models.Envelope
// @Router /blog/comments/reply/{uuid} [patch]
func (s *Server) UpdateReply(c *fiber.Ctx) error {
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	reply, err := s.replies.Update(c.UserContext(), middleware.UserID(c), c.Params("uuid"), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, replyView(reply), "Reply updated")
}

// DeleteReply handles DELETE /api/blog/comments/reply/:uuid
// @Summary Delete a reply with its replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Reply UUID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /blog/comments/reply/{uuid} [delete]
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	if err := s.replies.Delete(c.UserContext(), middleware.UserID(c), c.Params("uuid")); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Reply deleted")
}

