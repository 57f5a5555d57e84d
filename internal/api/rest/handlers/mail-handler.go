package handlers

import (
	"encoding/json"
	"log"

	"github.com/MediExpress/auth_service/internal/dto"
	"github.com/MediExpress/auth_service/internal/services"
)

type MailHandler struct {
	MailService *services.MailService
}

func NewMailHandler(ms *services.MailService) *MailHandler {
	return &MailHandler{MailService: ms}
}

func (h *MailHandler) HandleMessage(message string) error {
	var event dto.ResetPasswordEvent

	if err := json.Unmarshal([]byte(message), &event); err != nil {
		log.Printf("invalid event payload: %s\n", message)
		return err
	}

	log.Printf("Reset password event received: user_id=%d email=%s",
		event.UserID, event.Email)

	err := h.MailService.SendResetEmail(event.Email, event.Token)
	if err != nil {
		log.Printf("[MAIL] send failed: %v", err)
	}
	return err
}
