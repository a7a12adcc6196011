package rest

import (
	"github.com/gofiber/fiber/v2"
)

const msgCommentNotFound = "Comment not found"

type commentRequest struct {
	Content         string  `json:"content"`
	PostID          string  `json:"postId"`
	ParentCommentID *string `json:"parentCommentId"`
}

type commentUpdateRequest struct {
	Content string `json:"content"`
}

func (h *handlers) listComments(c *fiber.Ctx) error {
	postID, err := pathID(c, "postId", msgPostNotFound)
	if err != nil {
		return err
	}

	comments, err := h.Comments.ListByPost(c.UserContext(), postID)
	if err != nil {
		return err
	}

	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toComment(cm))
	}
	return c.JSON(out)
}

func (h *handlers) createComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if !validUUID(req.PostID) {
		return notFoundErr(msgPostNotFound)
	}

	parentID := req.ParentCommentID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil && !validUUID(*parentID) {
		return notFoundErr("Parent comment not found")
	}

	cm, err := h.Comments.Create(c.UserContext(), currentUserID(c), req.PostID, parentID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(commentEnvelope{Message: "Comment created successfully", Comment: toComment(cm)})
}

func (h *handlers) updateComment(c *fiber.Ctx) error {
	id, err := pathID(c, "id", msgCommentNotFound)
	if err != nil {
		return err
	}

	var req commentUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	cm, err := h.Comments.Update(c.UserContext(), currentUserID(c), id, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(commentEnvelope{Message: "Comment updated successfully", Comment: toComment(cm)})
}

func (h *handlers) deleteComment(c *fiber.Ctx) error {
	id, err := pathID(c, "id", msgCommentNotFound)
	if err != nil {
		return err
	}

	if err := h.Comments.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: "Comment deleted successfully"})
}
