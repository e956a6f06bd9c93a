package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/bind"
	"github.com/shashiranjanraj/campusmart/pkg/response"
)

// ChatController serves the support chat endpoint.
type ChatController struct {
	chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// Handle answers one support message. POST /api/support/chat
func (c *ChatController) Handle(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	reply, err := c.chat.Reply(r.Context(), in.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"response": reply})
}
