package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/media/images
// @Summary Upload an avatar or header image
// @Description The image is resized and stored as WebP. Use the returned URL as profile_pic or header_image.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param kind formData string true "avatar or header"
// @Param image formData file true "JPEG, PNG, GIF or WebP image"
// @Success 201 {object} models.Envelope{data=object{url=string}}
// @Failure 400 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /media/images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, models.NewFieldError("image", "An image file is required."))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()

	url, err := s.media.SaveImage(c.UserContext(), middleware.UserID(c), c.FormValue("kind"), fh.Filename, f)
	if err != nil {
		return fail(c, err)
	}
	return respondCreated(c, fiber.Map{"url": url}, "Image uploaded")
}
