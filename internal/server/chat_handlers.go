package server

import (
	"errors"
	"log/slog"

	"polyglot/internal/chat"
	"polyglot/internal/middleware"
	"polyglot/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Chat handles POST /api/chat
// @Summary Chat with the assistant
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{message=string} true "Message"
// @Success 200 {object} object{reply=string}
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/chat [post]
func (s *Server) Chat(c *fiber.Ctx) error {
	if s.chat == nil {
		return chatUnavailable(c)
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	reply, err := s.chat.Reply(c.UserContext(), req.Message)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return respondError(c, err)
		}
		if errors.Is(err, chat.ErrNotConfigured) {
			return chatUnavailable(c)
		}
		middleware.Logger.ErrorContext(c.UserContext(), "chat completion failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{Error: "Failed to get response"})
	}
	return c.JSON(fiber.Map{"reply": reply})
}

func chatUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "Chat is not configured"})
}

// UploadProfilePicture handles POST /api/uploads/profile-picture. Storage is
// not wired yet, so a valid upload is answered with the configured placeholder URL.
// @Summary Upload a profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} object{url=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/uploads/profile-picture [post]
func (s *Server) UploadProfilePicture(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil || file.Size == 0 {
		return respondError(c, models.NewValidationError("Invalid file upload"))
	}

	middleware.Logger.InfoContext(c.UserContext(), "profile picture received",
		slog.String("filename", file.Filename),
		slog.String("content_type", file.Header.Get(fiber.HeaderContentType)),
		slog.Int64("size", file.Size),
	)
	return c.JSON(fiber.Map{"url": s.config.UploadPlaceholderURL})
}
