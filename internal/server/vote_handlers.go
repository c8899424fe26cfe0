package server

import (
	"polyglot/internal/models"

	"github.com/gofiber/fiber/v2"
)

type voteRequest struct {
	LikeType *bool `json:"likeType"`
}

// VotePost handles POST /api/posts/:id/vote
// @Summary Vote on a post
// @Description Repeating the same vote clears it; the opposite vote switches it
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{likeType=bool} true "Vote"
// @Success 200 {object} models.VoteResult
// @Failure 404 {object} models.ErrorResponse
// @Router /api/posts/{id}/vote [post]
func (s *Server) VotePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.applyVote(c, models.PostTarget(id))
}

// VoteComment handles POST /api/comments/:id/vote
// @Summary Vote on a comment
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{likeType=bool} true "Vote"
// @Success 200 {object} models.VoteResult
// @Failure 404 {object} models.ErrorResponse
// @Router /api/comments/{id}/vote [post]
func (s *Server) VoteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.applyVote(c, models.ReplyTarget(id))
}

func (s *Server) applyVote(c *fiber.Ctx, target models.TargetRef) error {
	var req voteRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if req.LikeType == nil {
		return respondError(c, models.NewValidationError("likeType is required"))
	}

	result, err := s.voteService.ApplyReaction(c.UserContext(), currentUserID(c), target, *req.LikeType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetPostVote handles GET /api/posts/:id/vote. likeType is null when the
// caller has not voted.
// @Summary Get the caller's vote on a post
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{likeType=bool}
// @Router /api/posts/{id}/vote [get]
func (s *Server) GetPostVote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.voteService.LikeStatus(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likeType": status})
}

// GetLikedComments handles GET /api/comments/liked
// @Summary List comment ids the caller upvoted
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} int
// @Router /api/comments/liked [get]
func (s *Server) GetLikedComments(c *fiber.Ctx) error {
	ids, err := s.voteService.LikedReplyIDs(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ids)
}
