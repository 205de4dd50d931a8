package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/welth-app/welth/internal/domain/chat"
	"github.com/welth-app/welth/internal/pkg/errors"
)

// ChatRepository implements chat.Repository over the chat_messages table
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sql.DB) chat.Repository {
	return &ChatRepository{db: db}
}

// Create appends a turn
func (r *ChatRepository) Create(ctx context.Context, t *chat.Turn) error {
	defer observe("insert", "chat_messages", time.Now())
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_messages (id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, string(t.Role), t.Content, toMicros(t.CreatedAt)); err != nil {
		return errors.DatabaseError("Failed to insert chat message", err)
	}
	return nil
}

// ListRecent returns the newest turns first
func (r *ChatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*chat.Turn, error) {
	defer observe("select", "chat_messages", time.Now())
	query := `
		SELECT id, user_id, role, content, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list chat messages", err)
	}
	defer rows.Close()

	var turns []*chat.Turn
	for rows.Next() {
		var t chat.Turn
		var role string
		var createdAt int64

		if err := rows.Scan(&t.ID, &t.UserID, &role, &t.Content, &createdAt); err != nil {
			return nil, errors.DatabaseError("Failed to scan chat message", err)
		}
		t.Role = chat.ParseRole(role)
		t.CreatedAt = fromMicros(createdAt)
		turns = append(turns, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate chat messages", err)
	}
	return turns, nil
}
