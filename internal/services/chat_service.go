package services

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/welth-app/welth/internal/domain/chat"
	"github.com/welth-app/welth/internal/generation"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/metrics"
)

// User-facing messages of the chat pipeline
const (
	MsgMissingUserMessage = "Missing user message"
	MsgUnauthenticated    = "Usuario no autenticado"
	MsgChatPremium        = "Premium requerido para usar el chat."
)

// System instruction building blocks
const (
	PersonaDirective         = "Eres WelthIA, un asistente de hábitos y bienestar. Responde en español, con tono claro, empático y accionable."
	PersonalizationDirective = "Personaliza tus respuestas usando el historial del usuario cuando sea relevante."
)

// ErrReplyConsumed is returned when a Reply is read twice
var ErrReplyConsumed = stderrors.New("reply already consumed")

// ChatTurnInput is one POST to the chat endpoint. An empty UserID means the
// caller has no session.
type ChatTurnInput struct {
	Messages []chat.IncomingMessage
	UserID   string
	Username string
}

// ChatService runs the chat turn pipeline
type ChatService struct {
	generator generation.Generator
	configErr error
	provider  string
	chats     chat.Repository
	history   *HistoryLoader
	accounts  *AccountService
	logger    *logger.Logger
}

// NewChatService creates a new chat service. generator may be nil, in which
// case configErr is returned for every turn.
func NewChatService(
	generator generation.Generator,
	configErr error,
	provider string,
	chats chat.Repository,
	history *HistoryLoader,
	accounts *AccountService,
	log *logger.Logger,
) *ChatService {
	if generator == nil && configErr == nil {
		configErr = errors.ConfigError("text generation is not configured")
	}
	return &ChatService{
		generator: generator,
		configErr: configErr,
		provider:  provider,
		chats:     chats,
		history:   history,
		accounts:  accounts,
		logger:    log,
	}
}

// BuildSystemPrompt assembles the system instruction. The username line and
// plan block are added only when present.
func BuildSystemPrompt(username, planSummary string) string {
	parts := []string{PersonaDirective, PersonalizationDirective}
	if username != "" {
		parts = append(parts, "Nombre de usuario: "+username+".")
	}
	if planSummary != "" {
		parts = append(parts, "Resumen del último plan del usuario (usa esto como contexto):\n"+planSummary)
	}
	return strings.Join(parts, "\n\n")
}

// Start runs every gate of the pipeline and opens the generation stream.
// Gate failures are returned as AppErrors in pipeline order: CONFIG_ERROR,
// BAD_REQUEST, UNAUTHENTICATED, PREMIUM_REQUIRED, GENERATION_ERROR.
func (s *ChatService) Start(ctx context.Context, in ChatTurnInput) (*Reply, error) {
	if s.generator == nil {
		metrics.RecordChatTurn(metrics.OutcomeConfigError)
		s.logger.ErrorWithErr(s.configErr, "Chat generation is not configured")
		return nil, errors.As(s.configErr)
	}

	userText, ok := chat.ExtractLastUserText(in.Messages)
	if !ok {
		metrics.RecordChatTurn(metrics.OutcomeBadRequest)
		return nil, errors.BadRequest(MsgMissingUserMessage)
	}

	if in.UserID == "" {
		metrics.RecordChatTurn(metrics.OutcomeUnauthenticated)
		return nil, errors.Unauthenticated(MsgUnauthenticated)
	}

	if !s.accounts.IsPremium(ctx, in.UserID) {
		metrics.RecordChatTurn(metrics.OutcomePremiumRequired)
		return nil, errors.PremiumRequired(MsgChatPremium)
	}

	summary, _, err := s.history.LoadLatestPlanSummary(ctx, in.UserID)
	if err != nil {
		logDegraded(s.logger, in.UserID, "plan_summary_read", err)
	}

	turns, err := s.history.LoadRecentTurns(ctx, in.UserID, GenerationHistoryLimit)
	if err != nil {
		logDegraded(s.logger, in.UserID, "chat_history_read", err)
	}

	s.persist(ctx, in.UserID, chat.RoleUser, userText)

	req := generation.Request{System: BuildSystemPrompt(in.Username, summary)}
	for _, t := range turns {
		req.Messages = append(req.Messages, generation.Message{Role: t.Role, Content: t.Content})
	}
	req.Messages = append(req.Messages, generation.Message{Role: chat.RoleUser, Content: userText})

	genCtx, cancel := context.WithCancel(ctx)
	chunks, err := s.generator.Stream(genCtx, req)
	if err != nil {
		cancel()
		metrics.RecordChatTurn(metrics.OutcomeGenerationError)
		s.logger.WithFields(map[string]interface{}{"user_id": in.UserID}).ErrorWithErr(err, "Failed to start generation")
		return nil, errors.Generation(err)
	}

	userID := in.UserID
	return &Reply{
		chunks: chunks,
		cancel: cancel,
		finalize: func(text string) {
			s.persist(context.WithoutCancel(ctx), userID, chat.RoleAssistant, text)
		},
		observe: func(completed bool, d time.Duration) {
			metrics.RecordGeneration(s.provider, completed, d)
			if completed {
				metrics.RecordChatTurn(metrics.OutcomeStreamed)
			}
		},
		started: time.Now(),
	}, nil
}

// Transcript returns up to TranscriptHistoryLimit turns of a premium user,
// oldest first. A failed read yields an empty transcript.
func (s *ChatService) Transcript(ctx context.Context, userID string) ([]*chat.Turn, error) {
	if userID == "" {
		return nil, errors.Unauthenticated(MsgUnauthenticated)
	}
	if !s.accounts.IsPremium(ctx, userID) {
		return nil, errors.PremiumRequired(MsgChatPremium)
	}

	turns, err := s.history.LoadRecentTurns(ctx, userID, TranscriptHistoryLimit)
	if err != nil {
		logDegraded(s.logger, userID, "chat_history_read", err)
		return []*chat.Turn{}, nil
	}
	if turns == nil {
		turns = []*chat.Turn{}
	}
	return turns, nil
}

// persist stores a turn on a best-effort basis. Blank text is skipped.
func (s *ChatService) persist(ctx context.Context, userID string, role chat.Role, text string) {
	if role == chat.RoleAssistant {
		text = strings.TrimSpace(text)
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	err := s.chats.Create(ctx, &chat.Turn{UserID: userID, Role: role, Content: text})
	if err != nil {
		logDegraded(s.logger, userID, "chat_"+string(role)+"_write", errors.UpstreamWrite("chat turn", err))
	}
}

// Reply is a live generation stream. Each must be called at most once; the
// assistant turn is persisted only when the stream ends normally.
type Reply struct {
	chunks   <-chan generation.Chunk
	cancel   context.CancelFunc
	finalize func(text string)
	observe  func(completed bool, d time.Duration)
	started  time.Time

	mu       sync.Mutex
	consumed bool
}

// Each calls fn with every text delta in order. It returns nil after the
// stream completes and the reply has been finalized, ctx.Err() when ctx is
// cancelled, a GENERATION_ERROR when the model fails, or the first error
// returned by fn. Only the nil case persists the reply.
func (r *Reply) Each(ctx context.Context, fn func(delta string) error) error {
	r.mu.Lock()
	if r.consumed {
		r.mu.Unlock()
		return ErrReplyConsumed
	}
	r.consumed = true
	r.mu.Unlock()

	defer r.cancel()

	var text strings.Builder
	for {
		select {
		case <-ctx.Done():
			r.done(false)
			return ctx.Err()
		case c, ok := <-r.chunks:
			if !ok {
				if err := ctx.Err(); err != nil {
					r.done(false)
					return err
				}
				r.finalize(text.String())
				r.done(true)
				return nil
			}
			if c.Err != nil {
				r.done(false)
				return errors.Generation(c.Err)
			}
			text.WriteString(c.Text)
			if err := fn(c.Text); err != nil {
				r.done(false)
				return err
			}
		}
	}
}

// Close abandons the stream without persisting anything
func (r *Reply) Close() {
	r.cancel()
}

func (r *Reply) done(completed bool) {
	if r.observe != nil {
		r.observe(completed, time.Since(r.started))
	}
}
