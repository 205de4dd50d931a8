package services

import (
	"context"

	"github.com/welth-app/welth/internal/domain/chat"
	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/pkg/errors"
)

// History window sizes
const (
	GenerationHistoryLimit = 20
	TranscriptHistoryLimit = 50
)

// HistoryLoader reads the optional context of a conversation. Every failure
// comes back as an UPSTREAM_READ_ERROR alongside an empty result.
type HistoryLoader struct {
	chats chat.Repository
	plans plan.Repository
}

// NewHistoryLoader creates a new history loader
func NewHistoryLoader(chats chat.Repository, plans plan.Repository) *HistoryLoader {
	return &HistoryLoader{chats: chats, plans: plans}
}

// LoadRecentTurns returns the newest limit turns of the user, oldest first
func (l *HistoryLoader) LoadRecentTurns(ctx context.Context, userID string, limit int) ([]*chat.Turn, error) {
	turns, err := l.chats.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, errors.UpstreamRead("chat history", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// LoadLatestPlanSummary returns the summary of the user's newest plan. ok is
// false when the user has no plan or the read failed.
func (l *HistoryLoader) LoadLatestPlanSummary(ctx context.Context, userID string) (summary string, ok bool, err error) {
	summary, ok, err = l.plans.LatestSummary(ctx, userID)
	if err != nil {
		return "", false, errors.UpstreamRead("plan summary", err)
	}
	return summary, ok, nil
}
