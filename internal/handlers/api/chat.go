package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"corysite/internal/logger"
	"corysite/internal/models"
)

// maxChatMessage bounds one visitor message.
const maxChatMessage = 2000

// fallbackReply answers visitors when no chat backend is configured or it fails.
const fallbackReply = "Thanks for reaching out! Our team usually replies within one business day. " +
	"Want to see Cory in action? Book a demo and we'll walk you through it."

// Poster delivers a JSON payload. *webhook.Client satisfies it.
type Poster interface {
	Post(ctx context.Context, url string, payload any) ([]byte, error)
}

// ChatMessage is the payload relayed to the chat backend.
type ChatMessage struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	PageURL   string `json:"pageUrl,omitempty"`
}

// ChatReply is returned to the widget.
type ChatReply struct {
	Reply    string `json:"reply"`
	Fallback bool   `json:"fallback"`
}

// ChatHandler proxies the site chat widget to its backend.
type ChatHandler struct {
	poster     Poster
	webhookURL string
	leads      LeadCapturer
	log        logger.Logger
}

// NewChatHandler creates a chat proxy. With an empty webhookURL every message
// gets the fallback reply.
func NewChatHandler(poster Poster, webhookURL string, capturer LeadCapturer, log logger.Logger) *ChatHandler {
	return &ChatHandler{poster: poster, webhookURL: webhookURL, leads: capturer, log: log}
}

// Send relays one message and returns the backend's reply. A message that
// carries an email is also captured as a chat lead.
func (h *ChatHandler) Send(c fiber.Ctx) error {
	var msg ChatMessage
	if err := json.Unmarshal(c.Body(), &msg); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	msg.Message = strings.TrimSpace(msg.Message)
	msg.SessionID = strings.TrimSpace(msg.SessionID)
	switch {
	case msg.Message == "":
		return jsonFieldErrors(c, fiber.StatusBadRequest, "message is required", map[string]string{"message": "cannot be blank"})
	case len(msg.Message) > maxChatMessage:
		return jsonFieldErrors(c, fiber.StatusBadRequest, "message is too long", map[string]string{"message": "the length must be no more than 2000"})
	case msg.SessionID == "":
		return jsonFieldErrors(c, fiber.StatusBadRequest, "sessionId is required", map[string]string{"sessionId": "cannot be blank"})
	}

	if strings.TrimSpace(msg.Email) != "" && h.leads != nil {
		lead := &models.Lead{
			Source:  models.SourceChat,
			Name:    msg.Name,
			Email:   msg.Email,
			Message: msg.Message,
			PageURL: msg.PageURL,
		}
		if err := h.leads.Capture(c.Context(), lead); err != nil {
			return captureError(c, err)
		}
	}

	return jsonSuccess(c, h.reply(c.Context(), msg))
}

func (h *ChatHandler) reply(ctx context.Context, msg ChatMessage) ChatReply {
	if h.poster == nil || h.webhookURL == "" {
		return ChatReply{Reply: fallbackReply, Fallback: true}
	}

	body, err := h.poster.Post(ctx, h.webhookURL, msg)
	if err != nil {
		h.log.WithError(err).Warn("chat backend unavailable", logger.Fields{"session_id": msg.SessionID})
		return ChatReply{Reply: fallbackReply, Fallback: true}
	}

	reply, err := decodeReply(body)
	if err != nil {
		h.log.WithError(err).Warn("chat backend returned an unusable reply", logger.Fields{"session_id": msg.SessionID})
		return ChatReply{Reply: fallbackReply, Fallback: true}
	}
	return ChatReply{Reply: reply}
}

// decodeReply accepts {"reply": "..."}, {"output": "..."} or a plain text body.
func decodeReply(body []byte) (string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", errors.New("empty reply")
	}

	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	var parsed struct {
		Reply  string `json:"reply"`
		Output string `json:"output"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.Reply != "" {
		return parsed.Reply, nil
	}
	if parsed.Output != "" {
		return parsed.Output, nil
	}
	return "", errors.New("reply has no text")
}
