// Package validation checks user-supplied tool parameters before they reach
// the query layer.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regex patterns, compiled once at package initialization and
// reused for all validations
var (
	// Drug names: alphanumeric plus the punctuation seen in FDA trade
	// names (hyphens, periods, apostrophes, slashes, parentheses, commas)
	drugNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'/(),]+$`)

	// Dangerous patterns as strings (strings.Contains is 5-10x faster
	// than regex for simple substring matching)
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
	}
)

const applicationNumberDigits = 6

// ValidateDrugName validates a free-text drug name search term.
func ValidateDrugName(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("drug name cannot be empty")
	}

	if len(input) < 2 {
		return fmt.Errorf("drug name too short: minimum 2 characters")
	}

	if len(input) > 100 {
		return fmt.Errorf("drug name too long: maximum 100 characters")
	}

	// Word count validation to prevent DoS with many short search terms
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !drugNameRegex.MatchString(input) {
		return fmt.Errorf("drug name contains invalid characters. Only letters, numbers, spaces, and common name punctuation are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateApplicationNumber validates an FDA application number and returns
// it normalized to the zero-padded 6 digit form the Orange Book uses, so
// "18989" matches the stored "018989".
// No regex used - strconv.Atoi() validates numeric format for free
func ValidateApplicationNumber(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("application number cannot be empty")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return "", fmt.Errorf("application number contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmedInput) > applicationNumberDigits {
		return "", fmt.Errorf("application number should have at most %d digits", applicationNumberDigits)
	}

	number, err := strconv.Atoi(trimmedInput)
	if err != nil || number < 0 {
		return "", fmt.Errorf("application number contains invalid characters. Only numeric characters are allowed")
	}

	return fmt.Sprintf("%0*d", applicationNumberDigits, number), nil
}

// hasExcessiveRepetition checks for DoS patterns with the same character
// repeated more than 10 times consecutively
func hasExcessiveRepetition(input string) bool {
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
