package conversations

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/db"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// SQLiteConversationStore implements ConversationStore using a SQLite
// database. The full record is stored as JSON; the columns that
// listings and filters need are denormalized for querying.
type SQLiteConversationStore struct {
	dbPath string
	db     *sqlx.DB
}

var _ ConversationStore = (*SQLiteConversationStore)(nil)

const conversationSchema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    analysis_id TEXT NOT NULL,
    data TEXT NOT NULL,
    job_title TEXT NOT NULL DEFAULT '',
    first_instruction TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_analysis_id ON conversations(analysis_id);
CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
`

type conversationRow struct {
	ID               string    `db:"id"`
	AnalysisID       string    `db:"analysis_id"`
	Data             string    `db:"data"`
	JobTitle         string    `db:"job_title"`
	FirstInstruction string    `db:"first_instruction"`
	MessageCount     int       `db:"message_count"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// NewSQLiteConversationStore creates a SQLite-based conversation store.
func NewSQLiteConversationStore(ctx context.Context, dbPath string) (*SQLiteConversationStore, error) {
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := database.ExecContext(ctx, conversationSchema); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "failed to initialize conversations schema")
	}

	return &SQLiteConversationStore{
		dbPath: dbPath,
		db:     database,
	}, nil
}

// Save upserts a conversation record.
func (s *SQLiteConversationStore) Save(ctx context.Context, record convtypes.ConversationRecord) error {
	if record.ID == "" {
		record.ID = convtypes.GenerateID()
	}
	record.UpdatedAt = time.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation record")
	}

	summary := record.ToSummary()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, analysis_id, data, job_title, first_instruction, message_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			analysis_id = excluded.analysis_id,
			data = excluded.data,
			job_title = excluded.job_title,
			first_instruction = excluded.first_instruction,
			message_count = excluded.message_count,
			updated_at = excluded.updated_at`,
		record.ID, record.AnalysisID, string(data),
		summary.JobTitle, summary.FirstInstruction, summary.MessageCount,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save conversation record")
	}

	return nil
}

// Load retrieves a conversation record by ID.
func (s *SQLiteConversationStore) Load(ctx context.Context, id string) (convtypes.ConversationRecord, error) {
	var data string
	err := s.db.GetContext(ctx, &data, "SELECT data FROM conversations WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return convtypes.ConversationRecord{}, errors.Wrapf(ErrNotFound, "id %s", id)
		}
		return convtypes.ConversationRecord{}, errors.Wrap(err, "failed to load conversation record")
	}

	var record convtypes.ConversationRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return convtypes.ConversationRecord{}, errors.Wrap(err, "failed to unmarshal conversation record")
	}

	return record, nil
}

// FindByAnalysis returns every conversation anchored to the given
// analysis, most recently updated first.
func (s *SQLiteConversationStore) FindByAnalysis(ctx context.Context, analysisID string) ([]convtypes.ConversationRecord, error) {
	var rows []string
	err := s.db.SelectContext(ctx, &rows,
		"SELECT data FROM conversations WHERE analysis_id = ? ORDER BY updated_at DESC", analysisID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query conversations by analysis")
	}

	records := make([]convtypes.ConversationRecord, 0, len(rows))
	for _, data := range rows {
		var record convtypes.ConversationRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal conversation record")
		}
		records = append(records, record)
	}

	return records, nil
}

// List returns summaries of all stored conversations.
func (s *SQLiteConversationStore) List(ctx context.Context) ([]convtypes.ConversationSummary, error) {
	return s.Query(ctx, convtypes.QueryOptions{})
}

// Delete removes a conversation record.
func (s *SQLiteConversationStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete conversation record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check delete result")
	}
	if affected == 0 {
		return errors.Wrapf(ErrNotFound, "id %s", id)
	}

	return nil
}

// Query searches for conversations matching the given criteria. Filters
// and pagination run in SQL over the denormalized columns.
func (s *SQLiteConversationStore) Query(ctx context.Context, options convtypes.QueryOptions) ([]convtypes.ConversationSummary, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, analysis_id, job_title, first_instruction, message_count, created_at, updated_at FROM conversations`)

	var conditions []string
	var args []interface{}

	if options.AnalysisID != "" {
		conditions = append(conditions, "analysis_id = ?")
		args = append(args, options.AnalysisID)
	}
	if options.StartDate != nil {
		conditions = append(conditions, "updated_at >= ?")
		args = append(args, *options.StartDate)
	}
	if options.EndDate != nil {
		conditions = append(conditions, "updated_at <= ?")
		args = append(args, *options.EndDate)
	}
	if options.SearchTerm != "" {
		conditions = append(conditions, "(job_title LIKE ? OR data LIKE ?)")
		pattern := "%" + options.SearchTerm + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	query.WriteString(" ORDER BY " + orderClause(options))

	if options.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, options.Limit)
		if options.Offset > 0 {
			query.WriteString(" OFFSET ?")
			args = append(args, options.Offset)
		}
	} else if options.Offset > 0 {
		query.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, options.Offset)
	}

	var rows []conversationRow
	if err := s.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		return nil, errors.Wrap(err, "failed to query conversations")
	}

	summaries := make([]convtypes.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, convtypes.ConversationSummary{
			ID:               row.ID,
			AnalysisID:       row.AnalysisID,
			JobTitle:         row.JobTitle,
			FirstInstruction: row.FirstInstruction,
			MessageCount:     row.MessageCount,
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
		})
	}

	return summaries, nil
}

func orderClause(options convtypes.QueryOptions) string {
	direction := "DESC"
	if options.SortOrder == "asc" {
		direction = "ASC"
	}

	switch options.SortBy {
	case "created":
		return "created_at " + direction
	case "messages":
		return "message_count " + direction
	default:
		return "updated_at " + direction
	}
}

// Close closes the database connection.
func (s *SQLiteConversationStore) Close() error {
	return s.db.Close()
}
