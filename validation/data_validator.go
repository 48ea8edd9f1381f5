// Package validation validates converted speclist records and user input reaching the API.
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/giygas/speclist/interfaces"
	"github.com/giygas/speclist/speclistparser/entities"
)

// Pre-compiled patterns, reused for every request
var (
	// Search terms: letters of any script, digits, spaces and the punctuation found in names
	inputRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.()/']+$`)

	codeRegex = regexp.MustCompile(`^[A-Z0-9]{3,5}$`)

	// Substring checks are cheaper than a regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "eval(", "expression(", "url(", "@import",
		// SQL injection
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Command injection
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}

	kingdoms = []string{
		entities.KingdomArchaea,
		entities.KingdomBacteria,
		entities.KingdomEukaryota,
		entities.KingdomViruses,
		entities.KingdomOther,
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ReportDataQuality counts duplicate codes, optional field coverage and records per kingdom
func (v *DataValidatorImpl) ReportDataQuality(records []entities.Record) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateCodes: []string{},
		KingdomCounts:  make(map[string]int, len(kingdoms)),
	}

	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if seen[record.Code] {
			report.DuplicateCodes = append(report.DuplicateCodes, record.Code)
		}
		seen[record.Code] = true

		if record.CommonName == "" {
			report.RecordsWithoutCommonName++
		}
		if record.Synonym != "" {
			report.RecordsWithSynonym++
		}
		report.KingdomCounts[record.Kingdom]++
	}

	return report
}

// ValidateInput validates search terms
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	if len(strings.Fields(input)) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, periods, parentheses, slashes and apostrophes are allowed")
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateCode validates a species code and returns it upper-cased
func (v *DataValidatorImpl) ValidateCode(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	if len(input) != len(trimmedInput) {
		return "", fmt.Errorf("code cannot contain whitespace")
	}

	code := strings.ToUpper(trimmedInput)
	if !codeRegex.MatchString(code) {
		return "", fmt.Errorf("code should have 3 to 5 letters or digits")
	}

	return code, nil
}

// ValidateKingdom accepts a kingdom code (A, B, E, V, O) or its name, case-insensitive
func (v *DataValidatorImpl) ValidateKingdom(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	upper := strings.ToUpper(trimmedInput)
	if slices.Contains(kingdoms, upper) {
		return upper, nil
	}

	for _, kingdom := range kingdoms {
		if strings.EqualFold(entities.KingdomName(kingdom), trimmedInput) {
			return kingdom, nil
		}
	}

	return "", fmt.Errorf("kingdom should be one of A, B, E, V, O")
}

// ValidateTaxonNode validates a taxonomy node identifier.
// strconv.ParseUint rejects signs and non-digits.
func (v *DataValidatorImpl) ValidateTaxonNode(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	if len(trimmedInput) > 10 {
		return "", fmt.Errorf("taxon node too long: maximum 10 digits")
	}

	node, err := strconv.ParseUint(trimmedInput, 10, 64)
	if err != nil {
		return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	return strconv.FormatUint(node, 10), nil
}

// hasExcessiveRepetition checks for the same byte repeated more than 10 times in a row
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
