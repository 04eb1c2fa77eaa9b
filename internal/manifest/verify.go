package manifest

import (
	"database/sql"
	"fmt"
	"os"
)

// Entry is one recorded link.
type Entry struct {
	Path     string
	Source   string
	Category string
	Phase    string
	Bucket   string
}

// VerifyResult summarizes a manifest check.
type VerifyResult struct {
	Checked int
	// BrokenLinks are recorded paths that no longer exist in the tree.
	BrokenLinks []Entry
	// MissingSources are links whose source file disappeared, leaving a
	// dangling symlink.
	MissingSources []Entry
}

// OK reports whether every manifest entry still resolves.
func (r *VerifyResult) OK() bool {
	return len(r.BrokenLinks) == 0 && len(r.MissingSources) == 0
}

// Verify walks every entry of the manifest at dbPath and checks that
// the link still exists and its source still resolves.
func Verify(dbPath string) (*VerifyResult, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("manifest not found: %s: %w", dbPath, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT path, source, category, phase, bucket FROM links ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := &VerifyResult{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Source, &e.Category, &e.Phase, &e.Bucket); err != nil {
			return nil, err
		}
		res.Checked++

		// Lstat the link itself so a dangling symlink still counts as
		// present, then stat the source to catch the dangling case.
		if _, err := os.Lstat(e.Path); err != nil {
			res.BrokenLinks = append(res.BrokenLinks, e)
			continue
		}
		if _, err := os.Stat(e.Source); err != nil {
			res.MissingSources = append(res.MissingSources, e)
		}
	}
	return res, rows.Err()
}
