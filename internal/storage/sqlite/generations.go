package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
)

const defaultHistoryLimit = 50

// LogGeneration records a generation attempt.
func (s *Storage) LogGeneration(entry *models.GenerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if entry.RequestID == "" || entry.Mode == "" || entry.Status == "" {
		return ErrInvalidInput
	}

	if entry.ID == "" {
		entry.ID = generateID("gen")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO generation_logs (
			id, request_id, mode, engine, prompt, prompt_tokens, steps, cfg_scale,
			style_preset, sampler, status, error_kind, error_message, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.RequestID, entry.Mode, entry.Engine, entry.Prompt, entry.PromptTokens,
		entry.Steps, entry.CfgScale, entry.StylePreset, nullString(entry.Sampler), entry.Status,
		nullString(entry.ErrorKind), nullString(entry.ErrorMessage), entry.DurationMs, entry.CreatedAt,
	)
	return err
}

// ListGenerations returns recorded generations, newest first.
func (s *Storage) ListGenerations(filter models.GenerationFilter) ([]*models.GenerationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, filter.Mode)
	}

	query := `
		SELECT id, request_id, mode, engine, prompt, prompt_tokens, steps, cfg_scale,
		       style_preset, sampler, status, error_kind, error_message, duration_ms, created_at
		FROM generation_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.GenerationLog
	for rows.Next() {
		var entry models.GenerationLog
		var sampler, errorKind, errorMessage sql.NullString
		var duration sql.NullInt64

		err := rows.Scan(
			&entry.ID, &entry.RequestID, &entry.Mode, &entry.Engine, &entry.Prompt, &entry.PromptTokens,
			&entry.Steps, &entry.CfgScale, &entry.StylePreset, &sampler, &entry.Status,
			&errorKind, &errorMessage, &duration, &entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Sampler = sampler.String
		entry.ErrorKind = errorKind.String
		entry.ErrorMessage = errorMessage.String
		entry.DurationMs = duration.Int64
		logs = append(logs, &entry)
	}

	return logs, rows.Err()
}
