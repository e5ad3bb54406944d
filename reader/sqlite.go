package reader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vegasq/tablequery/internal/logging"
)

const schema = `CREATE TABLE IF NOT EXISTS tables (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	title   TEXT NOT NULL UNIQUE,
	content TEXT NOT NULL
)`

// SQLiteStore keeps tables in a SQLite database, one row per table, with
// the cells stored as a JSON array of arrays.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put stores rows under title, replacing any existing table with that title,
// and returns the table ID.
func (s *SQLiteStore) Put(ctx context.Context, title string, rows [][]string) (int64, error) {
	content := EncodeJSONTable(rows)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tables (title, content) VALUES (?, ?)
		 ON CONFLICT(title) DO UPDATE SET content = excluded.content`,
		title, content)
	if err != nil {
		return 0, fmt.Errorf("failed to store table %q: %w", title, err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM tables WHERE title = ?`, title).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read back table %q: %w", title, err)
	}
	logging.Info("table stored", "store", "sqlite", "table", title, "id", id, "rows", len(rows))
	return id, nil
}

// List returns every stored table, ordered by ID.
func (s *SQLiteStore) List(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM tables ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []TableInfo
	for rows.Next() {
		var info TableInfo
		if err := rows.Scan(&info.ID, &info.Title); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// TableByName loads the table with exactly this title.
func (s *SQLiteStore) TableByName(ctx context.Context, name string) (*Table, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, content FROM tables WHERE title = ?`, name)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Warn("table not found", "store", "sqlite", "table", name)
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	logging.TableLoad("sqlite", t.Title, len(t.Rows))
	return t, nil
}

// TableByID loads the table with this ID.
func (s *SQLiteStore) TableByID(ctx context.Context, id int64) (*Table, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, content FROM tables WHERE id = ?`, id)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Warn("table not found", "store", "sqlite", "id", id)
		return nil, fmt.Errorf("%w: id %d", ErrTableNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	logging.TableLoad("sqlite", t.Title, len(t.Rows))
	return t, nil
}

func scanTable(row *sql.Row) (*Table, error) {
	var (
		t       Table
		content string
	)
	if err := row.Scan(&t.ID, &t.Title, &content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan table: %w", err)
	}
	rows, err := DecodeJSONTable(content)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", t.Title, err)
	}
	t.Rows = rows
	return &t, nil
}
