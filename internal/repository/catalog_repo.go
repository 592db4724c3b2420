package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/exportsafe/lcaudit/internal/catalog"
	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/extraction"
	"github.com/exportsafe/lcaudit/internal/rules"
)

// Catalog metadata keys.
const (
	MetaSeedSource      = "seed_source"
	MetaSeededAt        = "seeded_at"
	MetaFieldSetVersion = "field_set_version"
)

// CatalogRepo persists the rule catalog. Jurisdiction tables are stored as
// JSON documents keyed by their upper-case code.
type CatalogRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db, now: time.Now}
}

// IsEmpty reports whether the catalog has never been seeded.
func (r *CatalogRepo) IsEmpty() (bool, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM catalog_meta WHERE key = ?", MetaSeededAt).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count meta: %w", err)
	}
	return n == 0, nil
}

// Seed replaces the whole catalog with c in one transaction and records
// where it came from.
func (r *CatalogRepo) Seed(c catalog.Catalog, source string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := insertCorrections(tx, c.Corrections); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM jurisdictions"); err != nil {
		return fmt.Errorf("clear jurisdictions: %w", err)
	}
	for _, j := range c.Jurisdictions {
		if err := r.upsertJurisdiction(tx, j); err != nil {
			return err
		}
	}

	meta := map[string]string{
		MetaSeedSource:      source,
		MetaSeededAt:        r.now().UTC().Format(time.RFC3339),
		MetaFieldSetVersion: strconv.Itoa(domain.FieldSetVersion),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			"INSERT INTO catalog_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			k, v,
		); err != nil {
			return fmt.Errorf("set meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Meta returns a metadata value, or ErrNotFound.
func (r *CatalogRepo) Meta(key string) (string, error) {
	var v string
	err := r.db.QueryRow("SELECT value FROM catalog_meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return v, nil
}

// Load reads the full catalog. Corrections keep their stored order and
// jurisdictions are sorted by code.
func (r *CatalogRepo) Load() (catalog.Catalog, error) {
	var c catalog.Catalog

	rows, err := r.db.Query("SELECT pattern, replacement FROM corrections ORDER BY position")
	if err != nil {
		return c, fmt.Errorf("query corrections: %w", err)
	}
	for rows.Next() {
		var cor extraction.Correction
		if err := rows.Scan(&cor.Pattern, &cor.Replacement); err != nil {
			rows.Close()
			return c, fmt.Errorf("scan correction: %w", err)
		}
		c.Corrections = append(c.Corrections, cor)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return c, err
	}
	rows.Close()

	jrows, err := r.db.Query("SELECT code, definition FROM jurisdictions ORDER BY code")
	if err != nil {
		return c, fmt.Errorf("query jurisdictions: %w", err)
	}
	defer jrows.Close()
	for jrows.Next() {
		var code, def string
		if err := jrows.Scan(&code, &def); err != nil {
			return c, fmt.Errorf("scan jurisdiction: %w", err)
		}
		j, err := decodeJurisdiction(code, def)
		if err != nil {
			return c, err
		}
		c.Jurisdictions = append(c.Jurisdictions, j)
	}
	return c, jrows.Err()
}

// ReplaceCorrections swaps the whole correction list and returns the number
// of rows written.
func (r *CatalogRepo) ReplaceCorrections(cs []extraction.Correction) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	n, err := insertCorrections(tx, cs)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// GetJurisdiction returns one table, or ErrNotFound.
func (r *CatalogRepo) GetJurisdiction(code string) (rules.Jurisdiction, error) {
	code = normalizeCode(code)
	var def string
	err := r.db.QueryRow("SELECT definition FROM jurisdictions WHERE code = ?", code).Scan(&def)
	if errors.Is(err, sql.ErrNoRows) {
		return rules.Jurisdiction{}, fmt.Errorf("jurisdiction %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return rules.Jurisdiction{}, fmt.Errorf("get jurisdiction: %w", err)
	}
	return decodeJurisdiction(code, def)
}

// UpsertJurisdiction inserts or replaces the table for j.Code.
func (r *CatalogRepo) UpsertJurisdiction(j rules.Jurisdiction) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := r.upsertJurisdiction(tx, j); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteJurisdiction removes a table, or returns ErrNotFound.
func (r *CatalogRepo) DeleteJurisdiction(code string) error {
	code = normalizeCode(code)
	res, err := r.db.Exec("DELETE FROM jurisdictions WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("delete jurisdiction: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("jurisdiction %s: %w", code, ErrNotFound)
	}
	return nil
}

// --- helpers ---

func insertCorrections(tx *sql.Tx, cs []extraction.Correction) (int, error) {
	if _, err := tx.Exec("DELETE FROM corrections"); err != nil {
		return 0, fmt.Errorf("clear corrections: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO corrections (position, pattern, replacement) VALUES (?,?,?)")
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, c := range cs {
		res, err := stmt.Exec(i, c.Pattern, c.Replacement)
		if err != nil {
			return inserted, fmt.Errorf("insert correction %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}
	return inserted, nil
}

func (r *CatalogRepo) upsertJurisdiction(tx *sql.Tx, j rules.Jurisdiction) error {
	j.Code = normalizeCode(j.Code)
	def, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode jurisdiction %s: %w", j.Code, err)
	}
	_, err = tx.Exec(
		`INSERT INTO jurisdictions (code, name, definition, updated_at) VALUES (?,?,?,?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name, definition = excluded.definition, updated_at = excluded.updated_at`,
		j.Code, j.Name, string(def), r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert jurisdiction %s: %w", j.Code, err)
	}
	return nil
}

func decodeJurisdiction(code, def string) (rules.Jurisdiction, error) {
	var j rules.Jurisdiction
	if err := json.Unmarshal([]byte(def), &j); err != nil {
		return j, fmt.Errorf("decode jurisdiction %s: %w", code, err)
	}
	return j, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
