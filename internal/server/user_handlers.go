package server

import (
	"polyglot/internal/middleware"
	"polyglot/internal/models"
	"polyglot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReconcileUser handles POST /api/users. It links the caller's external
// identity to an internal user, creating one on first sign-in. Body fields
// override the names carried by the identity token.
// @Summary Reconcile external identity
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,email=string} false "Overrides"
// @Success 200 {object} models.User
// @Success 201 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users [post]
func (s *Server) ReconcileUser(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return respondError(c, models.NewUnauthenticatedError("Authentication required"))
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return nil
		}
	}
	if req.Username == "" {
		req.Username = identity.Username
	}
	if req.Email == "" {
		req.Email = identity.Email
	}

	user, created, err := s.userService.Reconcile(c.UserContext(), service.ReconcileInput{
		ExternalRef: identity.Ref,
		Username:    req.Username,
		Email:       req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(user)
}

// GetMyProfile handles GET /api/users/me
// @Summary Get my profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Router /api/users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.userService.Profile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetMyLikedPosts handles GET /api/users/me/liked-posts
// @Summary List posts I upvoted
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PostSummary
// @Router /api/users/me/liked-posts [get]
func (s *Server) GetMyLikedPosts(c *fiber.Ctx) error {
	posts, err := s.userService.LikedPosts(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetMyLanguages handles GET /api/users/me/languages
// @Summary List languages I follow
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FollowedLanguage
// @Router /api/users/me/languages [get]
func (s *Server) GetMyLanguages(c *fiber.Ctx) error {
	languages, err := s.userService.FollowedLanguages(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(languages)
}

// GetFollowStatus handles GET /api/languages/:name/follow
// @Summary Get follow status
// @Tags languages
// @Produce json
// @Security BearerAuth
// @Param name path string true "Language name"
// @Success 200 {object} object{following=bool}
// @Router /api/languages/{name}/follow [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	following, err := s.userService.IsFollowing(c.UserContext(), currentUserID(c), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// FollowLanguage handles POST /api/languages/:name/follow
// @Summary Follow a language
// @Tags languages
// @Produce json
// @Security BearerAuth
// @Param name path string true "Language name"
// @Success 200 {object} object{following=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/languages/{name}/follow [post]
func (s *Server) FollowLanguage(c *fiber.Ctx) error {
	if err := s.userService.Follow(c.UserContext(), currentUserID(c), c.Params("name")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": true})
}

// UnfollowLanguage handles DELETE /api/languages/:name/follow
// @Summary Unfollow a language
// @Tags languages
// @Produce json
// @Security BearerAuth
// @Param name path string true "Language name"
// @Success 200 {object} object{following=bool}
// @Router /api/languages/{name}/follow [delete]
func (s *Server) UnfollowLanguage(c *fiber.Ctx) error {
	if err := s.userService.Unfollow(c.UserContext(), currentUserID(c), c.Params("name")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}
