package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/wikidocu"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ wikidocu.ThreadStore  = (*ThreadStore)(nil)
	_ wikidocu.ThreadLister = (*ThreadStore)(nil)
)

// ThreadStore implements wikidocu.ThreadStore using SQLite.
type ThreadStore struct {
	db  *DB
	now func() time.Time
}

// NewThreadStore creates a new ThreadStore.
func NewThreadStore(db *DB) *ThreadStore {
	return &ThreadStore{db: db, now: time.Now}
}

// SaveThread replaces the stored state of thread in a single transaction.
// A thread without an ID is assigned a new one.
func (s *ThreadStore) SaveThread(ctx context.Context, thread *wikidocu.Thread) (err error) {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}
	if err := thread.Validate(); err != nil {
		return err
	}
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = s.now().UTC()
	}
	if thread.UpdatedAt.IsZero() {
		thread.UpdatedAt = thread.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Deleting the thread row cascades to every child table.
	if _, err = tx.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, thread.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO threads (id, created_at, updated_at) VALUES (?, ?, ?)
	`, thread.ID, formatTime(thread.CreatedAt), formatTime(thread.UpdatedAt)); err != nil {
		return err
	}

	for i, m := range thread.Messages {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO messages (thread_id, position, role, content) VALUES (?, ?, ?, ?)
		`, thread.ID, i, string(m.Role), m.Content); err != nil {
			return err
		}
	}
	for i, q := range thread.SearchQueries {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO search_queries (thread_id, position, query) VALUES (?, ?, ?)
		`, thread.ID, i, q); err != nil {
			return err
		}
	}
	for i, r := range thread.ResearchResults {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO research_results (thread_id, position, result) VALUES (?, ?, ?)
		`, thread.ID, i, r); err != nil {
			return err
		}
	}
	for i, src := range thread.Sources {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO sources (thread_id, position, turn_id, origin, start_line, end_line, reasoning, relevant_content, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, thread.ID, i, src.TurnID, src.Origin, src.StartLine, src.EndLine, src.Reasoning,
			src.RelevantContent, hashContent(src.RelevantContent)); err != nil {
			return err
		}
	}
	for i, turn := range thread.Turns {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO turns (id, thread_id, position, turn_index, question, search_query, route, evidence, answer, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, turn.ID, thread.ID, i, turn.Index, turn.Question, turn.SearchQuery, string(turn.Route),
			turn.Evidence, turn.Answer, formatTime(turn.CreatedAt)); err != nil {
			return err
		}
		for j, src := range turn.Sources {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO turn_sources (turn_id, position, origin, start_line, end_line, reasoning, relevant_content, content_hash)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, turn.ID, j, src.Origin, src.StartLine, src.EndLine, src.Reasoning,
				src.RelevantContent, hashContent(src.RelevantContent)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// FindThreadByID retrieves a thread by ID.
func (s *ThreadStore) FindThreadByID(ctx context.Context, id string) (*wikidocu.Thread, error) {
	thread := &wikidocu.Thread{ID: id}
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, updated_at FROM threads WHERE id = ?
	`, id).Scan(&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wikidocu.Errorf(wikidocu.ENOTFOUND, "thread not found")
	}
	if err != nil {
		return nil, err
	}
	if thread.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if thread.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	if thread.Messages, err = s.findMessages(ctx, id); err != nil {
		return nil, err
	}
	if thread.SearchQueries, err = s.findStrings(ctx, `SELECT query FROM search_queries WHERE thread_id = ? ORDER BY position`, id); err != nil {
		return nil, err
	}
	if thread.ResearchResults, err = s.findStrings(ctx, `SELECT result FROM research_results WHERE thread_id = ? ORDER BY position`, id); err != nil {
		return nil, err
	}
	if thread.Sources, err = s.findSources(ctx, `
		SELECT turn_id, origin, start_line, end_line, reasoning, relevant_content, content_hash
		FROM sources WHERE thread_id = ? ORDER BY position
	`, id); err != nil {
		return nil, err
	}
	if thread.Turns, err = s.findTurns(ctx, id); err != nil {
		return nil, err
	}

	return thread, nil
}

// DeleteThread permanently removes a thread and everything recorded in it.
func (s *ThreadStore) DeleteThread(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return wikidocu.Errorf(wikidocu.ENOTFOUND, "thread not found")
	}
	return nil
}

// ListThreads returns thread summaries, most recently updated first.
func (s *ThreadStore) ListThreads(ctx context.Context, limit, offset int) ([]*wikidocu.ThreadSummary, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT t.id, t.updated_at,
			(SELECT COUNT(*) FROM turns WHERE thread_id = t.id),
			COALESCE((SELECT question FROM turns WHERE thread_id = t.id ORDER BY position DESC LIMIT 1), '')
		FROM threads t
		ORDER BY t.updated_at DESC, t.id`)
	appendPagination(&query, &args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*wikidocu.ThreadSummary
	for rows.Next() {
		var sum wikidocu.ThreadSummary
		var updatedAt string
		if err := rows.Scan(&sum.ID, &updatedAt, &sum.Turns, &sum.LastQuestion); err != nil {
			return nil, err
		}
		if sum.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		summaries = append(summaries, &sum)
	}
	return summaries, rows.Err()
}

func (s *ThreadStore) findMessages(ctx context.Context, threadID string) ([]wikidocu.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content FROM messages WHERE thread_id = ? ORDER BY position
	`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []wikidocu.Message
	for rows.Next() {
		var m wikidocu.Message
		var role string
		if err := rows.Scan(&role, &m.Content); err != nil {
			return nil, err
		}
		m.Role = wikidocu.Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *ThreadStore) findStrings(ctx context.Context, query, threadID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// findSources reads source rows and checks each against the hash recorded
// when it was saved, so cited text is never returned altered.
func (s *ThreadStore) findSources(ctx context.Context, query string, args ...any) ([]wikidocu.SourceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []wikidocu.SourceRecord
	for rows.Next() {
		var src wikidocu.SourceRecord
		var hash string
		if err := rows.Scan(&src.TurnID, &src.Origin, &src.StartLine, &src.EndLine,
			&src.Reasoning, &src.RelevantContent, &hash); err != nil {
			return nil, err
		}
		if hash != hashContent(src.RelevantContent) {
			return nil, wikidocu.Errorf(wikidocu.EINTERNAL, "source %s lines %d-%d does not match its content hash",
				src.Origin, src.StartLine, src.EndLine)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (s *ThreadStore) findTurns(ctx context.Context, threadID string) ([]*wikidocu.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, turn_index, question, search_query, route, evidence, answer, created_at
		FROM turns WHERE thread_id = ? ORDER BY position
	`, threadID)
	if err != nil {
		return nil, err
	}

	var turns []*wikidocu.Turn
	for rows.Next() {
		var turn wikidocu.Turn
		var route, createdAt string
		if err := rows.Scan(&turn.ID, &turn.Index, &turn.Question, &turn.SearchQuery, &route,
			&turn.Evidence, &turn.Answer, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		turn.Route = wikidocu.Route(route)
		if turn.CreatedAt, err = parseRFC3339(createdAt, "turn created_at"); err != nil {
			rows.Close()
			return nil, err
		}
		turns = append(turns, &turn)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The connection pool holds one connection, so turn sources are read
	// only after the turns cursor is closed.
	for _, turn := range turns {
		turn.Sources, err = s.findSources(ctx, `
			SELECT ? AS turn_id, origin, start_line, end_line, reasoning, relevant_content, content_hash
			FROM turn_sources WHERE turn_id = ? ORDER BY position
		`, turn.ID, turn.ID)
		if err != nil {
			return nil, err
		}
	}
	return turns, nil
}
