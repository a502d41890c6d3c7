// Package sqlite keeps imported exchange files in a SQLite database: one batches row per
// file header and one details row per detail record, with the record's columns kept as
// JSON so a file can be re-emitted exactly.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/georgesolomos/eiep/internal/eiep"
)

var ErrBatchNotFound = errors.New("batch not found")

// Header is the part of a file header the store records.
type Header interface {
	FileType() string
	Version() string
	Sender() string
	Recipient() string
	Identifier() string
	ReportDate() string
	NumRecords() int
}

// Detail is the part of a detail record the store records.
type Detail interface {
	ToRow() []string
	IcpIdentifier() string
	FlowDirection() eiep.FlowDirection
	ActiveEnergy() decimal.NullDecimal
	ReactiveEnergy() decimal.NullDecimal
}

type Store struct {
	db *sql.DB
}

// New opens the database at dbPath and creates the schema. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_type TEXT NOT NULL,
		version TEXT NOT NULL,
		sender TEXT NOT NULL,
		recipient TEXT NOT NULL,
		identifier TEXT NOT NULL,
		report_date TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		imported_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS details (
		batch_id INTEGER NOT NULL REFERENCES batches(id),
		line INTEGER NOT NULL,
		icp TEXT NOT NULL,
		flow_direction TEXT NOT NULL,
		active_energy TEXT,
		reactive_energy TEXT,
		columns TEXT NOT NULL,
		PRIMARY KEY (batch_id, line)
	);

	CREATE INDEX IF NOT EXISTS idx_details_icp ON details(icp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Batch is one file being imported inside a transaction.
type Batch struct {
	tx   *sql.Tx
	stmt *sql.Stmt
	id   int64
	next int
}

// BeginBatch records header and opens a transaction for its detail records. With an
// in-memory database nothing else can use the store until the batch is committed or
// rolled back.
func (s *Store) BeginBatch(ctx context.Context, header Header) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO batches (file_type, version, sender, recipient, identifier, report_date, record_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		header.FileType(), header.Version(), header.Sender(), header.Recipient(),
		header.Identifier(), header.ReportDate(), header.NumRecords(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert batch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO details (batch_id, line, icp, flow_direction, active_energy, reactive_energy, columns)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare detail insert: %w", err)
	}
	return &Batch{tx: tx, stmt: stmt, id: id}, nil
}

func (b *Batch) ID() int64 {
	return b.id
}

// Add stores one detail record. Records are numbered in the order they're added.
func (b *Batch) Add(ctx context.Context, d Detail) error {
	columns, err := json.Marshal(d.ToRow())
	if err != nil {
		return err
	}
	b.next++
	_, err = b.stmt.ExecContext(ctx,
		b.id, b.next, d.IcpIdentifier(), string(d.FlowDirection()),
		d.ActiveEnergy(), d.ReactiveEnergy(), string(columns),
	)
	if err != nil {
		return fmt.Errorf("failed to insert detail %d: %w", b.next, err)
	}
	return nil
}

func (b *Batch) Commit() error {
	b.stmt.Close()
	return b.tx.Commit()
}

func (b *Batch) Rollback() error {
	b.stmt.Close()
	return b.tx.Rollback()
}

// BatchInfo is a stored header.
type BatchInfo struct {
	ID          int64
	FileType    string
	Version     string
	Sender      string
	Recipient   string
	Identifier  string
	ReportDate  string
	RecordCount int
	ImportedAt  time.Time
}

func (s *Store) GetBatch(ctx context.Context, id int64) (BatchInfo, error) {
	var info BatchInfo
	var importedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, file_type, version, sender, recipient, identifier, report_date, record_count, imported_at
		FROM batches WHERE id = ?`, id).Scan(
		&info.ID, &info.FileType, &info.Version, &info.Sender, &info.Recipient,
		&info.Identifier, &info.ReportDate, &info.RecordCount, &importedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return BatchInfo{}, fmt.Errorf("%w: %d", ErrBatchNotFound, id)
	}
	if err != nil {
		return BatchInfo{}, err
	}
	info.ImportedAt, err = time.Parse(time.RFC3339, importedAt)
	if err != nil {
		return BatchInfo{}, err
	}
	return info, nil
}

func (s *Store) CountDetails(ctx context.Context, batchID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM details WHERE batch_id = ?`, batchID).Scan(&n)
	return n, err
}

// ListICPs returns the distinct ICPs of a batch in ascending order.
func (s *Store) ListICPs(ctx context.Context, batchID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT icp FROM details WHERE batch_id = ? ORDER BY icp`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var icps []string
	for rows.Next() {
		var icp string
		if err := rows.Scan(&icp); err != nil {
			return nil, err
		}
		icps = append(icps, icp)
	}
	return icps, rows.Err()
}

// DetailRows returns the stored columns of a batch in file order.
func (s *Store) DetailRows(ctx context.Context, batchID int64) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT columns FROM details WHERE batch_id = ? ORDER BY line`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var columns []string
		if err := json.Unmarshal([]byte(raw), &columns); err != nil {
			return nil, err
		}
		out = append(out, columns)
	}
	return out, rows.Err()
}

// ActiveEnergyTotal sums the active energy of a batch, skipping null values.
func (s *Store) ActiveEnergyTotal(ctx context.Context, batchID int64) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT active_energy FROM details WHERE batch_id = ?`, batchID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var v decimal.NullDecimal
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, err
		}
		if v.Valid {
			total = total.Add(v.Decimal)
		}
	}
	return total, rows.Err()
}
