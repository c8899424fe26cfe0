package server

import (
	"polyglot/internal/models"
	"polyglot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LegacySignup handles POST /signup
// @Summary Legacy signup
// @Description Register an account for the standalone REST API
// @Tags legacy
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /signup [post]
func (s *Server) LegacySignup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// LegacyLogin handles POST /login
// @Summary Legacy login
// @Description Exchange email and password for a bearer token
// @Tags legacy
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login request"
// @Success 200 {object} object{token=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) LegacyLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"token": token})
}

// LegacyCreatePost handles POST /posts
// @Summary Legacy create post
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{language_id=int,title=string,content=string} true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) LegacyCreatePost(c *fiber.Ctx) error {
	var req struct {
		LanguageID uint   `json:"language_id"`
		Title      string `json:"title"`
		Content    string `json:"content"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePostLegacy(c.UserContext(), currentUserID(c), req.LanguageID, req.Title, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// LegacyGetPosts handles GET /posts/:languageId
// @Summary Legacy list posts of a language
// @Tags legacy
// @Produce json
// @Param languageId path int true "Language ID"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/{languageId} [get]
func (s *Server) LegacyGetPosts(c *fiber.Ctx) error {
	languageID, err := s.parseID(c, "languageId")
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListPostsByLanguageID(c.UserContext(), languageID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// LegacyCreateReply handles POST /replies
// @Summary Legacy create reply
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post_id=int,content=string} true "Reply"
// @Success 200 {object} models.Reply
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /replies [post]
func (s *Server) LegacyCreateReply(c *fiber.Ctx) error {
	var req struct {
		PostID  uint   `json:"post_id"`
		Content string `json:"content"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	reply, err := s.postService.CreateReply(c.UserContext(), service.CreateReplyInput{
		UserID:  currentUserID(c),
		PostID:  req.PostID,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reply)
}

// LegacyGetReplies handles GET /replies/:postId
// @Summary Legacy list replies of a post
// @Tags legacy
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {array} models.Reply
// @Router /replies/{postId} [get]
func (s *Server) LegacyGetReplies(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	replies, err := s.postService.ListReplies(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(replies)
}

// LegacyCreateLike handles POST /likes. The request goes through the same
// toggle ledger as the forum API, so repeating it clears the vote.
// @Summary Legacy like or dislike
// @Tags legacy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post_id=int,reply_id=int,like_type=bool} true "Exactly one of post_id or reply_id"
// @Success 200 {object} models.VoteResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /likes [post]
func (s *Server) LegacyCreateLike(c *fiber.Ctx) error {
	var req struct {
		PostID   *uint `json:"post_id"`
		ReplyID  *uint `json:"reply_id"`
		LikeType *bool `json:"like_type"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if req.LikeType == nil {
		return respondError(c, models.NewValidationError("like_type is required"))
	}

	target, err := models.TargetFromColumns(req.PostID, req.ReplyID)
	if err != nil {
		return respondError(c, models.NewValidationError("Exactly one of post_id or reply_id is required"))
	}

	result, err := s.voteService.ApplyReaction(c.UserContext(), currentUserID(c), target, *req.LikeType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
