package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docqa/ragserver/internal/service"
)

type ChatHandler struct {
	answers *service.AnswerService
}

func NewChatHandler(answers *service.AnswerService) *ChatHandler {
	return &ChatHandler{answers: answers}
}

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	Sources        []string `json:"sources"`
}

// Chat answers a question against the indexed corpus. Failures past request
// validation surface inside the response body, never as an error status.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorDetail(c, http.StatusBadRequest, "message is required")
		return
	}
	answer := h.answers.Answer(c.Request.Context(), req.Message, req.ConversationID)
	c.JSON(http.StatusOK, chatResponse{
		Response:       answer.Response,
		ConversationID: answer.ConversationID,
		Sources:        answer.Sources,
	})
}
