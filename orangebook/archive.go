package orangebook

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/orangebook/entities"
)

// Expected tilde-delimited field counts per Orange Book file. Rows with fewer
// fields are skipped, never fatal.
const (
	productFieldCount     = 14
	patentFieldCount      = 10
	exclusivityFieldCount = 5
)

// ErrArchiveIncomplete reports an Orange Book ZIP that is missing one of its
// three required text files. This aborts the build before any insert.
var ErrArchiveIncomplete = errors.New("orange book archive incomplete")

// Dataset holds the parsed contents of one Orange Book publication.
type Dataset struct {
	Products      []entities.Product
	Patents       []entities.Patent
	Exclusivities []entities.Exclusivity
}

// ParseOrangeBookArchive extracts and parses the products, patent and
// exclusivity text files from an Orange Book ZIP download. File entries are
// located by case-insensitive substring match on the entry name.
func ParseOrangeBookArchive(zipPath string) (*Dataset, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open orange book archive: %w", err)
	}
	defer func() {
		if err := zr.Close(); err != nil {
			logging.Warn("Failed to close orange book archive", "error", err)
		}
	}()

	productsEntry, err := findArchiveEntry(&zr.Reader, "products")
	if err != nil {
		return nil, err
	}
	patentEntry, err := findArchiveEntry(&zr.Reader, "patent")
	if err != nil {
		return nil, err
	}
	exclusivityEntry, err := findArchiveEntry(&zr.Reader, "exclusivity")
	if err != nil {
		return nil, err
	}

	productsReader, err := openDecoded(productsEntry)
	if err != nil {
		return nil, err
	}
	products, err := parseProducts(productsReader, productsEntry.Name)
	if err != nil {
		return nil, err
	}

	patentReader, err := openDecoded(patentEntry)
	if err != nil {
		return nil, err
	}
	patents, err := parsePatents(patentReader, patentEntry.Name)
	if err != nil {
		return nil, err
	}

	exclusivityReader, err := openDecoded(exclusivityEntry)
	if err != nil {
		return nil, err
	}
	exclusivities, err := parseExclusivities(exclusivityReader, exclusivityEntry.Name)
	if err != nil {
		return nil, err
	}

	logging.Info("Orange book archive parsed",
		"products", len(products),
		"patents", len(patents),
		"exclusivity", len(exclusivities))

	return &Dataset{
		Products:      products,
		Patents:       patents,
		Exclusivities: exclusivities,
	}, nil
}

// findArchiveEntry locates a ZIP entry whose base name contains nameFragment.
func findArchiveEntry(zr *zip.Reader, nameFragment string) (*zip.File, error) {
	for _, f := range zr.File {
		if strings.Contains(strings.ToLower(filepath.Base(f.Name)), nameFragment) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s file found", ErrArchiveIncomplete, nameFragment)
}

// openDecoded reads a ZIP entry fully and returns a UTF-8 reader over it.
// Some Orange Book publications ship ISO-8859-1 text, so re-decode when the
// bytes are not valid UTF-8.
func openDecoded(f *zip.File) (io.Reader, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logging.Warn("Failed to close archive entry", "file", f.Name, "error", err)
		}
	}()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
	}

	if utf8.Valid(raw) {
		return bytes.NewReader(raw), nil
	}
	return charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw)), nil
}

// splitDosageFormRoute splits the packed "TABLET;ORAL" sub-field on the first
// semicolon only. Routes can themselves contain semicolons and are kept whole.
func splitDosageFormRoute(field string) (string, string) {
	form, route, found := strings.Cut(field, ";")
	if !found {
		return strings.TrimSpace(field), ""
	}
	return strings.TrimSpace(form), strings.TrimSpace(route)
}

func parseProducts(r io.Reader, name string) ([]entities.Product, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0), 1*1024*1024)

	var records []entities.Product
	lineCount := 0
	skippedEmptyLines := 0
	skippedMissingColumns := 0

	for scanner.Scan() {
		lineCount++
		line := scanner.Text()

		// First line is the column header
		if lineCount == 1 {
			continue
		}

		// Skip empty lines silently
		if len(line) == 0 {
			skippedEmptyLines++
			continue
		}

		fields := strings.Split(line, "~")

		// Check for missing columns
		if len(fields) < productFieldCount {
			skippedMissingColumns++
			continue
		}

		dosageForm, route := splitDosageFormRoute(fields[1])

		record := entities.Product{
			Ingredient:        strings.TrimSpace(fields[0]),
			DosageForm:        dosageForm,
			Route:             route,
			TradeName:         strings.TrimSpace(fields[2]),
			Applicant:         strings.TrimSpace(fields[3]),
			Strength:          strings.TrimSpace(fields[4]),
			ApplType:          strings.TrimSpace(fields[5]),
			ApplNo:            strings.TrimSpace(fields[6]),
			ProductNo:         strings.TrimSpace(fields[7]),
			TECode:            strings.TrimSpace(fields[8]),
			ApprovalDate:      strings.TrimSpace(fields[9]),
			RLD:               strings.TrimSpace(fields[10]),
			RS:                strings.TrimSpace(fields[11]),
			MarketingType:     strings.TrimSpace(fields[12]),
			ApplicantFullName: strings.TrimSpace(fields[13]),
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error in %s: %w", name, err)
	}

	// Log skip statistics if any lines were skipped
	if skippedEmptyLines > 0 || skippedMissingColumns > 0 {
		logging.Info("Products file skip statistics",
			"file", name,
			"empty_lines", skippedEmptyLines,
			"missing_columns", skippedMissingColumns,
			"total_lines", lineCount,
			"records_parsed", len(records))
	}

	return records, nil
}

func parsePatents(r io.Reader, name string) ([]entities.Patent, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0), 1*1024*1024)

	var records []entities.Patent
	lineCount := 0
	skippedEmptyLines := 0
	skippedMissingColumns := 0

	for scanner.Scan() {
		lineCount++
		line := scanner.Text()

		// First line is the column header
		if lineCount == 1 {
			continue
		}

		// Skip empty lines silently
		if len(line) == 0 {
			skippedEmptyLines++
			continue
		}

		fields := strings.Split(line, "~")

		// Check for missing columns
		if len(fields) < patentFieldCount {
			skippedMissingColumns++
			continue
		}

		record := entities.Patent{
			ApplType:          strings.TrimSpace(fields[0]),
			ApplNo:            strings.TrimSpace(fields[1]),
			ProductNo:         strings.TrimSpace(fields[2]),
			PatentNo:          strings.TrimSpace(fields[3]),
			PatentExpireDate:  strings.TrimSpace(fields[4]),
			DrugSubstanceFlag: strings.TrimSpace(fields[5]),
			DrugProductFlag:   strings.TrimSpace(fields[6]),
			PatentUseCode:     strings.TrimSpace(fields[7]),
			DelistFlag:        strings.TrimSpace(fields[8]),
			SubmissionDate:    strings.TrimSpace(fields[9]),
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error in %s: %w", name, err)
	}

	// Log skip statistics if any lines were skipped
	if skippedEmptyLines > 0 || skippedMissingColumns > 0 {
		logging.Info("Patent file skip statistics",
			"file", name,
			"empty_lines", skippedEmptyLines,
			"missing_columns", skippedMissingColumns,
			"total_lines", lineCount,
			"records_parsed", len(records))
	}

	return records, nil
}

func parseExclusivities(r io.Reader, name string) ([]entities.Exclusivity, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0), 1*1024*1024)

	var records []entities.Exclusivity
	lineCount := 0
	skippedEmptyLines := 0
	skippedMissingColumns := 0

	for scanner.Scan() {
		lineCount++
		line := scanner.Text()

		// First line is the column header
		if lineCount == 1 {
			continue
		}

		// Skip empty lines silently
		if len(line) == 0 {
			skippedEmptyLines++
			continue
		}

		fields := strings.Split(line, "~")

		// Check for missing columns
		if len(fields) < exclusivityFieldCount {
			skippedMissingColumns++
			continue
		}

		record := entities.Exclusivity{
			ApplType:        strings.TrimSpace(fields[0]),
			ApplNo:          strings.TrimSpace(fields[1]),
			ProductNo:       strings.TrimSpace(fields[2]),
			ExclusivityCode: strings.TrimSpace(fields[3]),
			ExclusivityDate: strings.TrimSpace(fields[4]),
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error in %s: %w", name, err)
	}

	// Log skip statistics if any lines were skipped
	if skippedEmptyLines > 0 || skippedMissingColumns > 0 {
		logging.Info("Exclusivity file skip statistics",
			"file", name,
			"empty_lines", skippedEmptyLines,
			"missing_columns", skippedMissingColumns,
			"total_lines", lineCount,
			"records_parsed", len(records))
	}

	return records, nil
}
