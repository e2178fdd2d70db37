package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/fdatools/openfda-mcp/orangebook/entities"
)

const productColumns = `ingredient, dosage_form, route, trade_name, applicant,
	applicant_full_name, strength, appl_type, appl_no, product_no,
	te_code, approval_date, rld, rs, marketing_type`

const biologicColumns = `applicant_name, bla_number, proper_name, proprietary_name, bla_type,
	strength, dosage_form, route, marketing_status, licensure_date,
	ref_product_proper_name, ref_product_proprietary_name,
	biosimilar, interchangeable, interchangeable_exclusivity,
	exclusivity_expiration, orphan_exclusivity`

// ftsMatchExpression turns free text into an FTS5 query: each token becomes a
// quoted prefix term, so "ibupro 200" matches IBUPROFEN rows. Quoting keeps
// user input from being parsed as FTS operators. Returns "" when the input
// has no indexable tokens.
func ftsMatchExpression(input string) string {
	var terms []string
	for _, field := range strings.Fields(input) {
		token := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, field)
		if token == "" {
			continue
		}
		terms = append(terms, `"`+token+`"*`)
	}
	return strings.Join(terms, " ")
}

// SearchProducts runs a full-text search over ingredient, trade name and
// applicant name, best matches first.
func (s *Store) SearchProducts(ctx context.Context, query string, limit int) ([]entities.Product, error) {
	match := ftsMatchExpression(query)
	if match == "" {
		return []entities.Product{}, nil
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM products_fts f
		JOIN products p ON p.id = f.rowid
		WHERE f.products_fts MATCH ?
		ORDER BY f.rank, p.id
		LIMIT ?`, prefixColumns(productColumns, "p")),
		match, limit)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ProductByApplNo returns the first product recorded under an application
// number, in file order, or nil when the application is unknown.
func (s *Store) ProductByApplNo(ctx context.Context, applNo string) (*entities.Product, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM products WHERE appl_no = ? ORDER BY id LIMIT 1`, productColumns),
		applNo)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("product lookup failed for %s: %w", applNo, err)
	}
	return p, nil
}

// PatentsByApplication returns every patent filed against an application,
// regardless of product number.
func (s *Store) PatentsByApplication(ctx context.Context, applType, applNo string) ([]entities.Patent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT appl_type, appl_no, product_no, patent_no, patent_expire_date,
			drug_substance_flag, drug_product_flag, patent_use_code,
			delist_flag, submission_date
		FROM patents
		WHERE appl_type = ? AND appl_no = ?
		ORDER BY id`,
		applType, applNo)
	if err != nil {
		return nil, fmt.Errorf("patent lookup failed for %s%s: %w", applType, applNo, err)
	}
	defer rows.Close()

	patents := []entities.Patent{}
	for rows.Next() {
		var p entities.Patent
		if err := rows.Scan(
			&p.ApplType, &p.ApplNo, &p.ProductNo, &p.PatentNo, &p.PatentExpireDate,
			&p.DrugSubstanceFlag, &p.DrugProductFlag, &p.PatentUseCode,
			&p.DelistFlag, &p.SubmissionDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patent row: %w", err)
		}
		patents = append(patents, p)
	}
	return patents, rows.Err()
}

// ExclusivitiesByApplication returns every exclusivity grant recorded against
// an application, regardless of product number.
func (s *Store) ExclusivitiesByApplication(ctx context.Context, applType, applNo string) ([]entities.Exclusivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT appl_type, appl_no, product_no, exclusivity_code, exclusivity_date
		FROM exclusivity
		WHERE appl_type = ? AND appl_no = ?
		ORDER BY id`,
		applType, applNo)
	if err != nil {
		return nil, fmt.Errorf("exclusivity lookup failed for %s%s: %w", applType, applNo, err)
	}
	defer rows.Close()

	exclusivities := []entities.Exclusivity{}
	for rows.Next() {
		var e entities.Exclusivity
		if err := rows.Scan(&e.ApplType, &e.ApplNo, &e.ProductNo, &e.ExclusivityCode, &e.ExclusivityDate); err != nil {
			return nil, fmt.Errorf("failed to scan exclusivity row: %w", err)
		}
		exclusivities = append(exclusivities, e)
	}
	return exclusivities, rows.Err()
}

// SearchBiologics runs a full-text search over proper name, proprietary name
// and applicant, best matches first.
func (s *Store) SearchBiologics(ctx context.Context, query string, limit int) ([]entities.Biologic, error) {
	match := ftsMatchExpression(query)
	if match == "" {
		return []entities.Biologic{}, nil
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM biologics_fts f
		JOIN biologics b ON b.id = f.rowid
		WHERE f.biologics_fts MATCH ?
		ORDER BY f.rank, b.id
		LIMIT ?`, prefixColumns(biologicColumns, "b")),
		match, limit)
	if err != nil {
		return nil, fmt.Errorf("biologic search failed: %w", err)
	}
	defer rows.Close()

	biologics := []entities.Biologic{}
	for rows.Next() {
		var b entities.Biologic
		var biosimilar, interchangeable int
		if err := rows.Scan(
			&b.ApplicantName, &b.BLANumber, &b.ProperName, &b.ProprietaryName, &b.BLAType,
			&b.Strength, &b.DosageForm, &b.Route, &b.MarketingStatus, &b.LicensureDate,
			&b.RefProductProperName, &b.RefProductProprietaryName,
			&biosimilar, &interchangeable, &b.InterchangeableExclusivity,
			&b.ExclusivityExpiration, &b.OrphanExclusivity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan biologic row: %w", err)
		}
		b.Biosimilar = biosimilar != 0
		b.Interchangeable = interchangeable != 0
		biologics = append(biologics, b)
	}
	return biologics, rows.Err()
}

// DistinctIngredients lists unique product ingredients in alphabetical order,
// used to seed drug name suggestions.
func (s *Store) DistinctIngredients(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ingredient FROM products WHERE ingredient != '' ORDER BY ingredient LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ingredient listing failed: %w", err)
	}
	defer rows.Close()

	var ingredients []string
	for rows.Next() {
		var ingredient string
		if err := rows.Scan(&ingredient); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient row: %w", err)
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, rows.Err()
}

// RecordCounts reports how many rows each data table holds.
type RecordCounts struct {
	Products      int `json:"products"`
	Patents       int `json:"patents"`
	Exclusivities int `json:"exclusivities"`
	Biologics     int `json:"biologics"`
}

// Counts reads live row counts from the data tables.
func (s *Store) Counts(ctx context.Context) (RecordCounts, error) {
	var counts RecordCounts
	tables := []struct {
		name string
		dest *int
	}{
		{"products", &counts.Products},
		{"patents", &counts.Patents},
		{"exclusivity", &counts.Exclusivities},
		{"biologics", &counts.Biologics},
	}
	for _, t := range tables {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(t.dest); err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", t.name, err)
		}
	}
	return counts, nil
}

// Metadata returns the key/value pairs the builder recorded.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("metadata read failed: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entities.Product, error) {
	var p entities.Product
	if err := row.Scan(
		&p.Ingredient, &p.DosageForm, &p.Route, &p.TradeName, &p.Applicant,
		&p.ApplicantFullName, &p.Strength, &p.ApplType, &p.ApplNo, &p.ProductNo,
		&p.TECode, &p.ApprovalDate, &p.RLD, &p.RS, &p.MarketingType,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]entities.Product, error) {
	products := []entities.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias for use in joins.
func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
