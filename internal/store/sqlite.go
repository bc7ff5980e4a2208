package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS requests (
	id           TEXT PRIMARY KEY,
	user_prompt  TEXT NOT NULL,
	date         TEXT NOT NULL DEFAULT '',
	generate_for TEXT NOT NULL DEFAULT '',
	context_json TEXT NOT NULL DEFAULT '{}',
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS artifacts (
	request_id TEXT NOT NULL REFERENCES requests(id),
	revision   INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (request_id, revision)
);

CREATE TABLE IF NOT EXISTS answers (
	request_id  TEXT NOT NULL REFERENCES requests(id),
	question_id TEXT NOT NULL,
	value       TEXT NOT NULL,
	merged_at   INTEGER NOT NULL,
	by_default  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (request_id, question_id)
);
`

// SQLiteStore is the Store implementation over mattn/go-sqlite3 with WAL
// journaling.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (and migrates) the store at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(types.STORE_OPEN_FAILED, "opening sqlite store", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, types.WrapError(types.STORE_OPEN_FAILED, "pinging sqlite store", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, types.WrapError(types.STORE_MIGRATION_FAILED, "applying store schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// SaveRequest persists the request row, any new artifact rows, and the
// answer map. Artifact inserts use OR IGNORE so revisions already on
// disk stay byte-identical no matter what is passed in.
func (s *SQLiteStore) SaveRequest(ctx context.Context, req *artifact.Request) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.WrapError(types.STORE_QUERY_FAILED, "beginning save transaction", err)
	}
	defer tx.Rollback()

	contextJSON, err := json.Marshal(req.Context)
	if err != nil {
		return types.WrapError(types.STORE_QUERY_FAILED, "marshaling request context", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO requests (id, user_prompt, date, generate_for, context_json) VALUES (?, ?, ?, ?, ?)`,
		req.ID.String(), req.UserPrompt, req.Date, req.GenerateFor, string(contextJSON)); err != nil {
		return types.WrapError(types.STORE_QUERY_FAILED, "inserting request row", err)
	}

	for _, row := range artifactRows(req) {
		payload, err := json.Marshal(row.value)
		if err != nil {
			return types.WrapError(types.STORE_QUERY_FAILED,
				fmt.Sprintf("marshaling %s artifact", row.kind), err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO artifacts (request_id, revision, kind, payload) VALUES (?, ?, ?, ?)`,
			req.ID.String(), row.revision, string(row.kind), string(payload)); err != nil {
			return types.WrapError(types.STORE_QUERY_FAILED, "inserting artifact row", err)
		}
	}

	for qid, a := range req.Answers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (request_id, question_id, value, merged_at, by_default) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(request_id, question_id) DO UPDATE SET
			   value = excluded.value, merged_at = excluded.merged_at, by_default = excluded.by_default`,
			req.ID.String(), qid, a.Value, a.MergedAt, a.ByDefault); err != nil {
			return types.WrapError(types.STORE_QUERY_FAILED, "upserting answer row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.WrapError(types.STORE_QUERY_FAILED, "committing save transaction", err)
	}
	return nil
}

type row struct {
	revision int
	kind     artifact.Kind
	value    any
}

func artifactRows(req *artifact.Request) []row {
	var rows []row
	if req.Lexical != nil {
		rows = append(rows, row{req.Lexical.Meta.Revision, artifact.KindLexicalReport, req.Lexical})
	}
	for _, f := range req.Frames {
		rows = append(rows, row{f.Meta.Revision, artifact.KindSemanticFrame, f})
	}
	for _, c := range req.Coverages {
		rows = append(rows, row{c.Meta.Revision, artifact.KindCoverageReport, c})
	}
	if req.Contract != nil {
		rows = append(rows, row{req.Contract.Meta.Revision, artifact.KindTaskContract, req.Contract})
	}
	return rows
}

// GetRequest reconstructs a request from its rows.
func (s *SQLiteStore) GetRequest(ctx context.Context, id types.ID) (*artifact.Request, error) {
	req := &artifact.Request{ID: id, Answers: make(map[string]artifact.Answer)}

	var contextJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_prompt, date, generate_for, context_json FROM requests WHERE id = ?`,
		id.String()).Scan(&req.UserPrompt, &req.Date, &req.GenerateFor, &contextJSON)
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.STORE_NOT_FOUND,
			fmt.Sprintf("request %s not found", id))
	}
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "loading request row", err)
	}
	if contextJSON != "" && contextJSON != "{}" {
		if err := json.Unmarshal([]byte(contextJSON), &req.Context); err != nil {
			return nil, types.WrapError(types.STORE_QUERY_FAILED, "unmarshaling request context", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, payload FROM artifacts WHERE request_id = ? ORDER BY revision ASC`,
		id.String())
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "loading artifact rows", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, types.WrapError(types.STORE_QUERY_FAILED, "scanning artifact row", err)
		}
		if err := attachArtifact(req, artifact.Kind(kind), []byte(payload)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "iterating artifact rows", err)
	}

	answerRows, err := s.db.QueryContext(ctx,
		`SELECT question_id, value, merged_at, by_default FROM answers WHERE request_id = ?`, id.String())
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "loading answer rows", err)
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var qid, value string
		var mergedAt int
		var byDefault bool
		if err := answerRows.Scan(&qid, &value, &mergedAt, &byDefault); err != nil {
			return nil, types.WrapError(types.STORE_QUERY_FAILED, "scanning answer row", err)
		}
		req.Answers[qid] = artifact.Answer{Value: value, MergedAt: mergedAt, ByDefault: byDefault}
	}
	if err := answerRows.Err(); err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "iterating answer rows", err)
	}

	req.Rehydrate()
	return req, nil
}

func attachArtifact(req *artifact.Request, kind artifact.Kind, payload []byte) error {
	switch kind {
	case artifact.KindLexicalReport:
		var lr artifact.LexicalReport
		if err := json.Unmarshal(payload, &lr); err != nil {
			return types.WrapError(types.STORE_QUERY_FAILED, "unmarshaling lexical report", err)
		}
		req.Lexical = &lr
	case artifact.KindSemanticFrame:
		var sf artifact.SemanticFrame
		if err := json.Unmarshal(payload, &sf); err != nil {
			return types.WrapError(types.STORE_QUERY_FAILED, "unmarshaling semantic frame", err)
		}
		req.Frames = append(req.Frames, &sf)
	case artifact.KindCoverageReport:
		var cr artifact.CoverageReport
		if err := json.Unmarshal(payload, &cr); err != nil {
			return types.WrapError(types.STORE_QUERY_FAILED, "unmarshaling coverage report", err)
		}
		req.Coverages = append(req.Coverages, &cr)
	case artifact.KindTaskContract:
		var tc artifact.TaskContract
		if err := json.Unmarshal(payload, &tc); err != nil {
			return types.WrapError(types.STORE_QUERY_FAILED, "unmarshaling task contract", err)
		}
		req.Contract = &tc
	default:
		return types.NewError(types.STORE_QUERY_FAILED,
			fmt.Sprintf("unknown artifact kind %q in store", kind))
	}
	return nil
}

// ListRequests returns summaries of every stored request, newest first.
func (s *SQLiteStore) ListRequests(ctx context.Context) ([]RequestSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.user_prompt, r.created_at,
		       EXISTS (SELECT 1 FROM artifacts a WHERE a.request_id = r.id AND a.kind = ?)
		FROM requests r
		ORDER BY r.created_at DESC`,
		string(artifact.KindTaskContract))
	if err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "listing requests", err)
	}
	defer rows.Close()

	var out []RequestSummary
	for rows.Next() {
		var summary RequestSummary
		var id string
		var createdAt time.Time
		if err := rows.Scan(&id, &summary.UserPrompt, &createdAt, &summary.HasContract); err != nil {
			return nil, types.WrapError(types.STORE_QUERY_FAILED, "scanning request summary", err)
		}
		summary.ID = types.ID(id)
		summary.CreatedAt = createdAt
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.STORE_QUERY_FAILED, "iterating request summaries", err)
	}
	return out, nil
}
