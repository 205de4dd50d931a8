package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/welth-app/welth/internal/api/dto"
	"github.com/welth-app/welth/internal/api/middleware"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/utils"
	"github.com/welth-app/welth/internal/services"
)

// UIMessageStreamHeader marks a response as a UI message stream
const UIMessageStreamHeader = middleware.UIMessageStreamHeader

// ChatHandler handles the assistant endpoints
type ChatHandler struct {
	chatService *services.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      log,
	}
}

// Chat runs one chat turn and streams the reply
// @Summary Chat with the assistant
// @Description Streams the assistant reply as a UI message stream (text/event-stream)
// @Tags Chat
// @Accept json
// @Produce text/event-stream
// @Param request body dto.ChatRequest true "Conversation so far"
// @Success 200 {string} string "UI message stream"
// @Failure 400 {object} utils.ErrorResponse "Missing user message"
// @Failure 401 {object} utils.ErrorResponse "Unauthenticated"
// @Failure 403 {object} utils.ErrorResponse "Premium required"
// @Failure 500 {object} utils.ErrorResponse "Generation not configured"
// @Security BearerAuth
// @Router /api/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	// A body that does not decode counts as a conversation without messages
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = dto.ChatRequest{}
	}

	userID, _ := middleware.GetUserID(r)
	username, _ := middleware.GetUsername(r)

	reply, err := h.chatService.Start(r.Context(), services.ChatTurnInput{
		Messages: req.Messages,
		UserID:   userID,
		Username: username,
	})
	if err != nil {
		utils.WriteErr(w, err)
		return
	}
	defer reply.Close()

	stream := newUIStream(w)
	messageID := uuid.NewString()
	textID := uuid.NewString()

	if err := stream.send(dto.StreamEvent{Type: "start", MessageID: messageID}); err != nil {
		return
	}
	if err := stream.send(dto.StreamEvent{Type: "text-start", ID: textID}); err != nil {
		return
	}

	err = reply.Each(r.Context(), func(delta string) error {
		return stream.send(dto.StreamEvent{Type: "text-delta", ID: textID, Delta: delta})
	})
	switch {
	case err == nil:
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		h.logger.With("user_id", userID).Debug("Chat stream abandoned by client")
		return
	case errors.Code(err) == errors.ErrCodeGeneration:
		log := h.logger.With("user_id", userID)
		log.ErrorWithErr(err, "Chat generation failed")
		if werr := stream.send(dto.StreamEvent{Type: "error", ErrorText: errors.As(err).Message}); werr != nil {
			log.WarnWithErr(werr, "Chat error event write failed")
			return
		}
		if werr := stream.done(); werr != nil {
			log.WarnWithErr(werr, "Chat stream write failed")
		}
		return
	default:
		h.logger.With("user_id", userID).WarnWithErr(err, "Chat stream write failed")
		return
	}

	if err := stream.send(dto.StreamEvent{Type: "text-end", ID: textID}); err != nil {
		return
	}
	if err := stream.send(dto.StreamEvent{Type: "finish"}); err != nil {
		return
	}
	if err := stream.done(); err != nil {
		h.logger.With("user_id", userID).WarnWithErr(err, "Chat stream write failed")
	}
}

// History returns the caller's recent conversation
// @Summary Chat history
// @Description Up to 50 stored turns in chronological order
// @Tags Chat
// @Produce json
// @Success 200 {object} dto.HistoryResponse
// @Failure 401 {object} utils.ErrorResponse "Unauthenticated"
// @Failure 403 {object} utils.ErrorResponse "Premium required"
// @Security BearerAuth
// @Router /api/chat/history [get]
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	turns, err := h.chatService.Transcript(r.Context(), userID)
	if err != nil {
		utils.WriteErr(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.NewHistoryResponse(turns))
}

// uiStream writes server-sent events in the UI message stream format
type uiStream struct {
	w  io.Writer
	rc *http.ResponseController
}

func newUIStream(w http.ResponseWriter) *uiStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set(UIMessageStreamHeader, "v1")
	w.WriteHeader(http.StatusOK)

	return &uiStream{w: w, rc: http.NewResponseController(w)}
}

func (s *uiStream) send(ev dto.StreamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.write(payload)
}

// done terminates the stream
func (s *uiStream) done() error {
	return s.write([]byte("[DONE]"))
}

func (s *uiStream) write(data []byte) error {
	if _, err := io.WriteString(s.w, "data: "); err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if _, err := io.WriteString(s.w, "\n\n"); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil && !stderrors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
