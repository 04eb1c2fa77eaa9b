// Package manifest keeps a SQLite ledger of every link a materializer
// run created, so later invocations can verify or summarize the tree
// without re-reading the JSON metadata.
package manifest

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/dinoprep/internal/materialize"
)

// DefaultName is the manifest filename used inside the output root
// when no explicit path is configured.
const DefaultName = ".dinoprep.db"

// Writer appends link records to a manifest database. It implements
// materialize.Recorder. Inserts are batched inside a transaction;
// Close commits the tail of the batch.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmt      *sql.Stmt
	batchSize int
	count     int
}

// NewWriter opens (or creates) the manifest at dbPath and initializes
// the schema.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", dbPath, err)
	}

	// Bulk-insert tuning; the manifest is rebuildable, durability is
	// not worth the fsync cost here.
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS links (
		path TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		category TEXT NOT NULL,
		phase TEXT NOT NULL,
		bucket TEXT NOT NULL,
		kind INTEGER NOT NULL,
		created INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_links_category ON links(category, phase, bucket);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create manifest schema: %w", err)
	}

	w := &Writer{db: db, batchSize: 1000}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmt, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO links (path, source, category, phase, bucket, kind, created)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	return err
}

// Record implements materialize.Recorder.
func (w *Writer) Record(l materialize.Link) error {
	_, err := w.stmt.Exec(l.Path, l.Source, l.Category, string(l.Phase), l.Bucket, int(l.Mode), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert link %s: %w", l.Path, err)
	}

	w.count++
	if w.count%w.batchSize == 0 {
		if err := w.tx.Commit(); err != nil {
			return err
		}
		return w.beginTx()
	}
	return nil
}

// Close commits pending records and closes the database.
func (w *Writer) Close() error {
	if w.tx != nil {
		if err := w.tx.Commit(); err != nil {
			_ = w.db.Close()
			return err
		}
	}
	return w.db.Close()
}
