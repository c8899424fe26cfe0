package server

import (
	"polyglot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetLanguages handles GET /api/languages
// @Summary List languages
// @Tags languages
// @Produce json
// @Success 200 {array} models.LanguageOption
// @Router /api/languages [get]
func (s *Server) GetLanguages(c *fiber.Ctx) error {
	languages, err := s.postService.ListLanguages(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(languages)
}

// GetPosts handles GET /api/posts?language=
// @Summary List posts
// @Description Newest first, optionally filtered by language name
// @Tags posts
// @Produce json
// @Param language query string false "Language name, or all"
// @Success 200 {array} models.PostSummary
// @Router /api/posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.GetPosts(c.UserContext(), c.Query("language"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/posts/search?q=...
// @Summary Search posts by title
// @Tags posts
// @Produce json
// @Param q query string true "Title substring"
// @Success 200 {array} models.PostSummary
// @Router /api/posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	posts, err := s.postService.SearchPostsByTitle(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetTrendingPosts handles GET /api/posts/trending?limit=
// @Summary List trending posts
// @Tags posts
// @Produce json
// @Param limit query int false "Maximum results"
// @Success 200 {array} models.PostSummary
// @Router /api/posts/trending [get]
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	posts, err := s.trending.Top(c.UserContext(), c.QueryInt("limit", service.TrendingLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /api/posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPostByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetPostComments handles GET /api/posts/:id/comments
// @Summary List comments of a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /api/posts/{id}/comments [get]
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.postService.GetPostComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,content=string,languageName=string} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title        string `json:"title"`
		Content      string `json:"content"`
		LanguageName string `json:"languageName"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:       currentUserID(c),
		Title:        req.Title,
		Content:      req.Content,
		LanguageName: req.LanguageName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.Reply
// @Failure 404 {object} models.ErrorResponse
// @Router /api/posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	reply, err := s.postService.CreateReply(c.UserContext(), service.CreateReplyInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}
