// 包 store 提供运行历史存储（SQLite），包含表迁移/写入/查询等操作。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dohrano/internal/model"
)

// ErrNoRun 表示该年份尚无运行记录。
var ErrNoRun = errors.New("store: no run for year")

// SQLite 封装 *sql.DB，基于 modernc.org/sqlite（纯 Go 实现）。
type SQLite struct {
	db *sql.DB
}

// Run 为一次运行的概要。
type Run struct {
	ID          string
	Year        int
	GeneratedAt time.Time
	Records     int
	OK          int
	Errors      int
}

// StoredRecord 为存储中的记录（已拍平的游戏/平台/时长）。
type StoredRecord struct {
	PostID     model.PostID
	Author     string
	Status     model.Status
	URL        string
	InsertedAt time.Time
	Game       string
	Platform   string
	Playtime   sql.NullFloat64
	SourceLine sql.NullString
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// migrate 执行建表语句，保持幂等。
func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            year INTEGER NOT NULL,
            generated_at TIMESTAMP NOT NULL,
            records INTEGER NOT NULL,
            ok INTEGER NOT NULL,
            errors INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS records (
            run_id TEXT NOT NULL REFERENCES runs(id),
            seq INTEGER NOT NULL,
            post_id TEXT NOT NULL,
            author TEXT,
            status TEXT NOT NULL,
            url TEXT,
            inserted_at TIMESTAMP,
            game TEXT,
            platform TEXT,
            playtime REAL,
            source_line TEXT,
            PRIMARY KEY (run_id, seq)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_runs_year ON runs(year, generated_at);`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec migrate: %w", err)
		}
	}
	return nil
}

// SaveRun 在一个事务中写入运行概要与全部记录，返回运行 ID。
func (s *SQLite) SaveRun(ctx context.Context, year int, at time.Time, records []model.Record) (Run, error) {
	run := Run{ID: uuid.NewString(), Year: year, GeneratedAt: at.UTC(), Records: len(records)}
	for _, r := range records {
		if r.Status.OK() {
			run.OK++
		} else {
			run.Errors++
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs(id, year, generated_at, records, ok, errors) VALUES(?,?,?,?,?,?)`,
		run.ID, run.Year, run.GeneratedAt, run.Records, run.OK, run.Errors); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records(run_id, seq, post_id, author, status, url, inserted_at, game, platform, playtime, source_line)
        VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare insert record: %w", err)
	}
	defer stmt.Close()
	for i, r := range records {
		sr := flatten(r)
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(sr.PostID), sr.Author, string(sr.Status), sr.URL,
			sr.InsertedAt, sr.Game, sr.Platform, sr.Playtime, sr.SourceLine); err != nil {
			return Run{}, fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

func flatten(r model.Record) StoredRecord {
	sr := StoredRecord{
		PostID:     r.ID,
		Author:     r.Author,
		Status:     r.Status,
		URL:        r.URL,
		InsertedAt: r.InsertedAt.UTC(),
	}
	if r.SourceLine != nil {
		sr.SourceLine = sql.NullString{String: *r.SourceLine, Valid: true}
	}
	for _, f := range r.SourceData {
		switch f.Kind {
		case model.KindGame:
			if sr.Game == "" {
				sr.Game, _ = f.Text()
			}
		case model.KindPlatform:
			if sr.Platform == "" {
				sr.Platform, _ = f.Text()
			}
		case model.KindPlaytime:
			if h, ok := f.Hours(); ok && !sr.Playtime.Valid {
				sr.Playtime = sql.NullFloat64{Float64: float64(h), Valid: true}
			}
		}
	}
	return sr
}

// LatestRun 返回某年最近一次运行。
func (s *SQLite) LatestRun(ctx context.Context, year int) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `SELECT id, year, generated_at, records, ok, errors FROM runs
        WHERE year = ? ORDER BY generated_at DESC LIMIT 1`, year).
		Scan(&r.ID, &r.Year, &r.GeneratedAt, &r.Records, &r.OK, &r.Errors)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	return r, nil
}

// ListRecords 返回某次运行的记录，顺序与写入一致。
func (s *SQLite) ListRecords(ctx context.Context, runID string) ([]StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT post_id, COALESCE(author,''), status, COALESCE(url,''), inserted_at,
        COALESCE(game,''), COALESCE(platform,''), playtime, source_line FROM records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()
	var out []StoredRecord
	for rows.Next() {
		var r StoredRecord
		var id, status string
		var at sql.NullTime
		if err := rows.Scan(&id, &r.Author, &status, &r.URL, &at, &r.Game, &r.Platform, &r.Playtime, &r.SourceLine); err != nil {
			return nil, fmt.Errorf("scan records: %w", err)
		}
		r.PostID = model.PostID(id)
		r.Status = model.Status(status)
		if at.Valid {
			r.InsertedAt = at.Time
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// PruneRuns 仅保留某年最近 keep 次运行。
func (s *SQLite) PruneRuns(ctx context.Context, year, keep int) error {
	if keep <= 0 {
		return nil
	}
	old := `SELECT id FROM runs WHERE year = ? ORDER BY generated_at DESC LIMIT -1 OFFSET ?`
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE run_id IN (`+old+`)`, year, keep); err != nil {
		return fmt.Errorf("prune records: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+old+`)`, year, keep); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}
