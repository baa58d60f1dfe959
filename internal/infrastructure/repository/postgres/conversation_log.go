package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/papl-tools/papl-assistant/internal/core/domain"
)

// ConversationLog persists question/answer exchanges together with the
// document ids the answer was grounded in.
type ConversationLog struct {
	db *sql.DB
}

func NewConversationLog(db *sql.DB) *ConversationLog {
	return &ConversationLog{db: db}
}

func (r *ConversationLog) Append(ctx context.Context, exchange domain.Exchange) error {
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}
	sources, err := json.Marshal(exchange.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO conversation_exchanges (id, conversation_id, question, answer, sources, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, exchange.ID, exchange.ConversationID, exchange.Question, exchange.Answer, sources, exchange.CreatedAt)
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	return nil
}

func (r *ConversationLog) ListRecent(ctx context.Context, conversationID string, limit int) ([]domain.Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, conversation_id, question, answer, sources, created_at
FROM conversation_exchanges
WHERE conversation_id = $1
ORDER BY created_at DESC
LIMIT $2
`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Exchange, 0, limit)
	for rows.Next() {
		var exchange domain.Exchange
		var sourcesRaw []byte
		if err := rows.Scan(
			&exchange.ID,
			&exchange.ConversationID,
			&exchange.Question,
			&exchange.Answer,
			&sourcesRaw,
			&exchange.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		if err := json.Unmarshal(sourcesRaw, &exchange.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
		out = append(out, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}

	if len(out) == 0 {
		return nil, domain.WrapError(domain.ErrConversationNotFound, "list exchanges", fmt.Errorf("conversation %q has no exchanges", conversationID))
	}

	// Returned in descending order from SQL; reverse to keep chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
