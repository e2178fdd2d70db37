package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/orangebook"
	"github.com/fdatools/openfda-mcp/orangebook/entities"
)

// BuildInfo describes the source files a build was fed. It is written to the
// metadata table for health reporting.
type BuildInfo struct {
	DataVersion    string
	OrangeBookFile string
	PurpleBookFile string
	FetchedAt      time.Time
}

// Build creates or refreshes the database file at path from a parsed Orange
// Book dataset and Purple Book biologic list. Existing rows are cleared
// first, so the file always reflects exactly one publication pair. The FTS
// indexes are repopulated wholesale at the end.
func Build(path string, data *orangebook.Dataset, biologics []entities.Biologic, info BuildInfo) error {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("Failed to close database after build", "path", path, "error", err)
		}
	}()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	start := time.Now()

	if err := clearData(db); err != nil {
		return err
	}
	if err := insertProducts(db, data.Products); err != nil {
		return err
	}
	if err := insertPatents(db, data.Patents); err != nil {
		return err
	}
	if err := insertExclusivities(db, data.Exclusivities); err != nil {
		return err
	}
	if err := insertBiologics(db, biologics); err != nil {
		return err
	}
	if err := rebuildSearchIndexes(db); err != nil {
		return err
	}
	if err := writeMetadata(db, data, biologics, info); err != nil {
		return err
	}
	if err := optimize(db); err != nil {
		return err
	}

	logging.Info("Drug database built",
		"path", path,
		"products", len(data.Products),
		"patents", len(data.Patents),
		"exclusivities", len(data.Exclusivities),
		"biologics", len(biologics),
		"duration", time.Since(start).Round(time.Millisecond).String())
	return nil
}

// clearData empties the data tables. Rows absent from the new publication
// files must not survive from a previous build.
func clearData(db *sql.DB) error {
	for _, table := range []string{"products", "patents", "exclusivity", "biologics"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func insertProducts(db *sql.DB, products []entities.Product) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin products transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO products (
			ingredient, dosage_form, route, trade_name, applicant,
			applicant_full_name, strength, appl_type, appl_no, product_no,
			te_code, approval_date, rld, rs, marketing_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare products insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(
			p.Ingredient, p.DosageForm, p.Route, p.TradeName, p.Applicant,
			p.ApplicantFullName, p.Strength, p.ApplType, p.ApplNo, p.ProductNo,
			p.TECode, p.ApprovalDate, p.RLD, p.RS, p.MarketingType,
		); err != nil {
			return fmt.Errorf("failed to insert product %s-%s-%s: %w", p.ApplType, p.ApplNo, p.ProductNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}
	return nil
}

func insertPatents(db *sql.DB, patents []entities.Patent) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin patents transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO patents (
			appl_type, appl_no, product_no, patent_no, patent_expire_date,
			drug_substance_flag, drug_product_flag, patent_use_code,
			delist_flag, submission_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare patents insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range patents {
		if _, err := stmt.Exec(
			p.ApplType, p.ApplNo, p.ProductNo, p.PatentNo, p.PatentExpireDate,
			p.DrugSubstanceFlag, p.DrugProductFlag, p.PatentUseCode,
			p.DelistFlag, p.SubmissionDate,
		); err != nil {
			return fmt.Errorf("failed to insert patent %s for %s%s: %w", p.PatentNo, p.ApplType, p.ApplNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patents: %w", err)
	}
	return nil
}

func insertExclusivities(db *sql.DB, exclusivities []entities.Exclusivity) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin exclusivity transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO exclusivity (
			appl_type, appl_no, product_no, exclusivity_code, exclusivity_date
		) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare exclusivity insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range exclusivities {
		if _, err := stmt.Exec(
			e.ApplType, e.ApplNo, e.ProductNo, e.ExclusivityCode, e.ExclusivityDate,
		); err != nil {
			return fmt.Errorf("failed to insert exclusivity %s for %s%s: %w", e.ExclusivityCode, e.ApplType, e.ApplNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit exclusivity: %w", err)
	}
	return nil
}

func insertBiologics(db *sql.DB, biologics []entities.Biologic) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin biologics transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO biologics (
			applicant_name, bla_number, proper_name, proprietary_name, bla_type,
			strength, dosage_form, route, marketing_status, licensure_date,
			ref_product_proper_name, ref_product_proprietary_name,
			biosimilar, interchangeable, interchangeable_exclusivity,
			exclusivity_expiration, orphan_exclusivity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare biologics insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range biologics {
		if _, err := stmt.Exec(
			b.ApplicantName, b.BLANumber, b.ProperName, b.ProprietaryName, b.BLAType,
			b.Strength, b.DosageForm, b.Route, b.MarketingStatus, b.LicensureDate,
			b.RefProductProperName, b.RefProductProprietaryName,
			boolToInt(b.Biosimilar), boolToInt(b.Interchangeable), b.InterchangeableExclusivity,
			b.ExclusivityExpiration, b.OrphanExclusivity,
		); err != nil {
			return fmt.Errorf("failed to insert biologic %s: %w", b.BLANumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit biologics: %w", err)
	}
	return nil
}

// rebuildSearchIndexes clears and repopulates the FTS tables from their
// content tables. Upserts can recycle rowids, so an incremental sync is not
// safe here and a full copy is.
func rebuildSearchIndexes(db *sql.DB) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"clear products_fts", `INSERT INTO products_fts(products_fts) VALUES('delete-all')`},
		{"populate products_fts", `
			INSERT INTO products_fts (rowid, ingredient, trade_name, applicant_full_name)
			SELECT id, ingredient, trade_name, applicant_full_name FROM products`},
		{"clear biologics_fts", `INSERT INTO biologics_fts(biologics_fts) VALUES('delete-all')`},
		{"populate biologics_fts", `
			INSERT INTO biologics_fts (rowid, proper_name, proprietary_name, applicant_name)
			SELECT id, proper_name, proprietary_name, applicant_name FROM biologics`},
	}
	for _, step := range steps {
		if _, err := db.Exec(step.sql); err != nil {
			return fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}
	return nil
}

func writeMetadata(db *sql.DB, data *orangebook.Dataset, biologics []entities.Biologic, info BuildInfo) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin metadata transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	entries := map[string]string{
		"data_version":      info.DataVersion,
		"orange_book_file":  info.OrangeBookFile,
		"purple_book_file":  info.PurpleBookFile,
		"fetched_at":        info.FetchedAt.UTC().Format(time.RFC3339),
		"built_at":          time.Now().UTC().Format(time.RFC3339),
		"product_count":     strconv.Itoa(len(data.Products)),
		"patent_count":      strconv.Itoa(len(data.Patents)),
		"exclusivity_count": strconv.Itoa(len(data.Exclusivities)),
		"biologic_count":    strconv.Itoa(len(biologics)),
	}
	for key, value := range entries {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to write metadata %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata: %w", err)
	}
	return nil
}

// optimize refreshes planner statistics and truncates the WAL so the file is
// self-contained before it is published to its serving path.
func optimize(db *sql.DB) error {
	for _, pragma := range []string{"ANALYZE", "PRAGMA optimize", "PRAGMA wal_checkpoint(TRUNCATE)"} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to run %s: %w", pragma, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
