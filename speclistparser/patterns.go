package speclistparser

import (
	"fmt"
	"regexp"

	"github.com/giygas/speclist/speclistparser/entities"
)

// unicodeSpace is the body of a whitespace class. RE2's \s is ASCII only;
// names decoded from ISO-8859-1 may carry U+00A0 or U+0085.
const unicodeSpace = `\s\v\p{Z}\x{85}`

// Primary rows, e.g.
// AADNV V  648330: N=Aedes albopictus densovirus (isolate Boublik/1994)
const DefaultPrimaryPattern = `(?P<code>[A-Z0-9]{3,5})[` + unicodeSpace + `]+(?P<kingdom>[ABEVO])[` + unicodeSpace + `]+(?P<taxon_node>[0-9]+):[` + unicodeSpace + `]N=(?P<scientific_name>[\p{L}\p{N}_()\-/` + unicodeSpace + `]+)`

// Secondary rows, e.g.
// C=Edeltanne | S=European silver fir
const DefaultSecondaryPattern = `C=(?P<common_name>[\p{L}\p{N}_` + unicodeSpace + `]+)|S=(?P<synonym>[\p{L}\p{N}_` + unicodeSpace + `]+)`

// Patterns holds the compiled primary and secondary line expressions
type Patterns struct {
	Primary   *regexp.Regexp
	Secondary *regexp.Regexp
}

var defaultPatterns = Patterns{
	Primary:   regexp.MustCompile(DefaultPrimaryPattern),
	Secondary: regexp.MustCompile(DefaultSecondaryPattern),
}

// CompilePatterns compiles and checks a pair of line expressions.
// Every named group must be a record column and the primary expression must capture the code.
func CompilePatterns(primary, secondary string) (Patterns, error) {
	primaryRe, err := regexp.Compile(primary)
	if err != nil {
		return Patterns{}, fmt.Errorf("invalid primary pattern: %w", err)
	}

	secondaryRe, err := regexp.Compile(secondary)
	if err != nil {
		return Patterns{}, fmt.Errorf("invalid secondary pattern: %w", err)
	}

	if primaryRe.SubexpIndex(entities.ColumnCode) < 0 {
		return Patterns{}, fmt.Errorf("primary pattern must capture %q", entities.ColumnCode)
	}

	for _, re := range []*regexp.Regexp{primaryRe, secondaryRe} {
		for _, name := range re.SubexpNames() {
			if name != "" && !entities.IsKnownColumn(name) {
				return Patterns{}, fmt.Errorf("pattern %q captures unknown column %q", re.String(), name)
			}
		}
	}

	return Patterns{Primary: primaryRe, Secondary: secondaryRe}, nil
}

// Columns returns the union of named groups, primary first, in pattern order
func (p Patterns) Columns() []string {
	seen := make(map[string]bool)
	var columns []string

	for _, re := range []*regexp.Regexp{p.Primary, p.Secondary} {
		for _, name := range re.SubexpNames() {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			columns = append(columns, name)
		}
	}

	return columns
}
