package speclistparser

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/giygas/speclist/speclistparser/entities"
)

func collect(t *testing.T, p *Parser, input string, stats *ParseStats) []entities.Record {
	t.Helper()

	var records []entities.Record
	for record, err := range p.Records(strings.NewReader(input), stats) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		records = append(records, record)
	}
	return records
}

func TestParsePrimaryLineFields(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected entities.Record
	}{
		{
			name: "virus with isolate",
			line: "AADNV V  648330: N=Aedes albopictus densovirus (isolate Boublik/1994)",
			expected: entities.Record{
				Code: "AADNV", Kingdom: "V", TaxonNode: "648330",
				ScientificName: "Aedes albopictus densovirus (isolate Boublik/1994)",
			},
		},
		{
			name: "four character code",
			line: "AAV2  V   10804: N=Adeno-associated virus 2",
			expected: entities.Record{
				Code: "AAV2", Kingdom: "V", TaxonNode: "10804",
				ScientificName: "Adeno-associated virus 2",
			},
		},
		{
			name: "trailing whitespace is stripped",
			line: "ARCFU A    2234: N=Archaeoglobus fulgidus   \t\r",
			expected: entities.Record{
				Code: "ARCFU", Kingdom: "A", TaxonNode: "2234",
				ScientificName: "Archaeoglobus fulgidus",
			},
		},
		{
			name: "name stops at unsupported punctuation",
			line: "ACEPA B 1144791: N=Acetobacter pasteurianus subsp. pasteurianus",
			expected: entities.Record{
				Code: "ACEPA", Kingdom: "B", TaxonNode: "1144791",
				ScientificName: "Acetobacter pasteurianus subsp",
			},
		},
		{
			name: "no-break space inside the name",
			line: "AADNV V  648330: N=Foo\u00a0bar baz",
			expected: entities.Record{
				Code: "AADNV", Kingdom: "V", TaxonNode: "648330",
				ScientificName: "Foo\u00a0bar baz",
			},
		},
		{
			name: "vertical tab inside the name",
			line: "AADNV V  648330: N=Foo\vbar",
			expected: entities.Record{
				Code: "AADNV", Kingdom: "V", TaxonNode: "648330",
				ScientificName: "Foo\vbar",
			},
		},
		{
			name: "accented letters are part of the name",
			line: "ABCDE E   12345: N=Pléthodon çinereus",
			expected: entities.Record{
				Code: "ABCDE", Kingdom: "E", TaxonNode: "12345",
				ScientificName: "Pléthodon çinereus",
			},
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := collect(t, p, tt.line+"\n", nil)
			if len(records) != 1 {
				t.Fatalf("Expected 1 record, got %d", len(records))
			}
			if records[0] != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, records[0])
			}
		})
	}
}

func TestUnknownKingdomIsNotPrimary(t *testing.T) {
	records := collect(t, NewParser(), "ABCDE X   12345: N=Nothing here\n", nil)
	if len(records) != 0 {
		t.Errorf("Expected no records for kingdom X, got %+v", records)
	}
}

func TestSecondaryLinesAttachToLatestPrimary(t *testing.T) {
	input := strings.Join([]string{
		"AADNV V  648330: N=Aedes albopictus densovirus",
		"                 C=mosquito virus",
		"ABDAC E  515833: N=Abdopus aculeatus",
		"                 C=Algae octopus",
		"                 S=Octopus aculeatus",
	}, "\n")

	records := collect(t, NewParser(), input, nil)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].CommonName != "mosquito virus" || records[0].Synonym != "" {
		t.Errorf("First record got wrong secondary values: %+v", records[0])
	}
	if records[1].CommonName != "Algae octopus" || records[1].Synonym != "Octopus aculeatus" {
		t.Errorf("Second record got wrong secondary values: %+v", records[1])
	}
}

func TestLaterSecondaryValueWins(t *testing.T) {
	input := strings.Join([]string{
		"ABIAL E   45372: N=Abies alba",
		"                 C=Silver fir",
		"                 C=Edeltanne",
		"                 C=   ",
	}, "\n")

	records := collect(t, NewParser(), input, nil)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].CommonName != "Edeltanne" {
		t.Errorf("Expected the last non-empty common name, got %q", records[0].CommonName)
	}
}

func TestOrphanSecondaryLinesAreDropped(t *testing.T) {
	input := strings.Join([]string{
		" C=Common name",
		" S=Synonym",
		"AADNV V  648330: N=Aedes albopictus densovirus",
	}, "\n")

	var stats ParseStats
	records := collect(t, NewParser(), input, &stats)

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].CommonName != "" || records[0].Synonym != "" {
		t.Errorf("Orphan lines leaked into the record: %+v", records[0])
	}
	if stats.OrphanSecondaryLines != 2 {
		t.Errorf("Expected 2 orphan lines, got %d", stats.OrphanSecondaryLines)
	}
}

func TestLastRecordIsFlushedAtEOF(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"with trailing newline", "ABAGR E  404104: N=Abalistes stellaris\n                 C=Starry triggerfish\n"},
		{"without trailing newline", "ABAGR E  404104: N=Abalistes stellaris\n                 C=Starry triggerfish"},
		{"followed by footer", "ABAGR E  404104: N=Abalistes stellaris\n                 C=Starry triggerfish\n=====\nCopyright\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := collect(t, NewParser(), tt.input, nil)
			if len(records) != 1 {
				t.Fatalf("Expected 1 record, got %d", len(records))
			}
			if records[0].Code != "ABAGR" || records[0].CommonName != "Starry triggerfish" {
				t.Errorf("Unexpected record %+v", records[0])
			}
		})
	}
}

func TestPrimaryOnlyInputYieldsOneRecordPerLine(t *testing.T) {
	lines := []string{
		"AADNV V  648330: N=Aedes albopictus densovirus",
		"ABDAC E  515833: N=Abdopus aculeatus",
		"ARCFU A    2234: N=Archaeoglobus fulgidus",
		"ACEPA B 1144791: N=Acetobacter pasteurianus",
	}

	records := collect(t, NewParser(), strings.Join(lines, "\n"), nil)
	if len(records) != len(lines) {
		t.Fatalf("Expected %d records, got %d", len(lines), len(records))
	}
	for i, record := range records {
		if record.CommonName != "" || record.Synonym != "" {
			t.Errorf("Record %d should have no secondary values: %+v", i, record)
		}
	}
}

func TestGarbageBetweenPrimariesIsIgnored(t *testing.T) {
	input := strings.Join([]string{
		"AADNV V  648330: N=Aedes albopictus densovirus",
		"%%% this is not a speclist line %%%",
		"ABDAC E  515833: N=Abdopus aculeatus",
	}, "\n")

	var stats ParseStats
	records := collect(t, NewParser(), input, &stats)

	expected := []entities.Record{
		{Code: "AADNV", Kingdom: "V", TaxonNode: "648330", ScientificName: "Aedes albopictus densovirus"},
		{Code: "ABDAC", Kingdom: "E", TaxonNode: "515833", ScientificName: "Abdopus aculeatus"},
	}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Expected %+v, got %+v", expected, records)
	}
	if stats.SkippedLines != 1 {
		t.Errorf("Expected 1 skipped line, got %d", stats.SkippedLines)
	}
}

func TestEmptyInputYieldsNothing(t *testing.T) {
	var stats ParseStats
	records := collect(t, NewParser(), "", &stats)

	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
	if stats != (ParseStats{}) {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
}

func TestSampleFileStats(t *testing.T) {
	var stats ParseStats
	var records []entities.Record

	for record, err := range NewParser().RecordsFromFile(filepath.Join("testdata", "speclist_sample.txt"), &stats) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		records = append(records, record)
	}

	expected := ParseStats{
		Lines:                40,
		PrimaryLines:         8,
		SecondaryLines:       6,
		OrphanSecondaryLines: 4,
		SkippedLines:         22,
		Records:              8,
	}
	if stats != expected {
		t.Errorf("Expected stats %+v, got %+v", expected, stats)
	}

	if len(records) != 8 {
		t.Fatalf("Expected 8 records, got %d", len(records))
	}
	if records[1].CommonName != "AAV" {
		t.Errorf("Expected common name cut at the hyphen, got %q", records[1].CommonName)
	}
	if last := records[len(records)-1]; last.Code != "9ZZZZ" || last.Kingdom != entities.KingdomOther {
		t.Errorf("Unexpected last record %+v", last)
	}
}

func TestRecordsFromFileIsRestartable(t *testing.T) {
	seq := NewParser().RecordsFromFile(filepath.Join("testdata", "speclist_sample.txt"), nil)

	var first, second []entities.Record
	for record, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		first = append(first, record)
	}
	for record, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		second = append(second, record)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Second iteration differs from the first: %d vs %d records", len(first), len(second))
	}
}

func TestRecordsStopsOnBreak(t *testing.T) {
	var stats ParseStats
	count := 0

	for _, err := range NewParser().RecordsFromFile(filepath.Join("testdata", "speclist_sample.txt"), &stats) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		if count == 2 {
			break
		}
	}

	if count != 2 {
		t.Errorf("Expected to stop after 2 records, got %d", count)
	}
	if stats.Records != 2 {
		t.Errorf("Expected the parser to stop reading after 2 records, got %d", stats.Records)
	}
}

func TestRecordsFromMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	var gotErr error
	for _, err := range NewParser().RecordsFromFile(path, nil) {
		gotErr = err
	}

	if !errors.Is(gotErr, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got %v", gotErr)
	}
	if !errors.Is(gotErr, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", gotErr)
	}
}

func TestOverlongLineIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.txt")
	content := "AADNV V  648330: N=Aedes albopictus densovirus\n" + strings.Repeat("x", maxLineSize+1) + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var records int
	var gotErr error
	for _, err := range NewParser().RecordsFromFile(path, nil) {
		if err != nil {
			gotErr = err
			continue
		}
		records++
	}

	if gotErr == nil {
		t.Fatal("Expected a read error for an overlong line")
	}
	if records != 0 {
		t.Errorf("Expected no records before the error, got %d", records)
	}
}

func TestParserColumns(t *testing.T) {
	expected := []string{"code", "kingdom", "taxon_node", "scientific_name", "common_name", "synonym"}

	if got := NewParser().Columns(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected columns %v, got %v", expected, got)
	}
	if !reflect.DeepEqual(entities.Columns, expected) {
		t.Errorf("entities.Columns drifted from the pattern groups: %v", entities.Columns)
	}
}

func TestNewParserWithPatterns(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		wantErr   string
	}{
		{"defaults", DefaultPrimaryPattern, DefaultSecondaryPattern, ""},
		{"invalid regexp", `(?P<code>[A-Z`, DefaultSecondaryPattern, "invalid primary pattern"},
		{"invalid secondary", DefaultPrimaryPattern, `C=(`, "invalid secondary pattern"},
		{"missing code", `(?P<kingdom>[ABEVO])`, DefaultSecondaryPattern, "must capture"},
		{"unknown column", DefaultPrimaryPattern, `R=(?P<rank>\w+)`, "unknown column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParserWithPatterns(tt.primary, tt.secondary)
			if tt.wantErr == "" {
				if err != nil || p == nil {
					t.Fatalf("Expected a parser, got error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCustomPatternsDriveColumns(t *testing.T) {
	p, err := NewParserWithPatterns(
		`(?P<code>[A-Z0-9]{3,5})\s+(?P<kingdom>[ABEVO])\s+(?P<taxon_node>[0-9]+):`,
		`C=(?P<common_name>[\p{L}\s]+)`,
	)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"code", "kingdom", "taxon_node", "common_name"}
	if got := p.Columns(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected columns %v, got %v", expected, got)
	}

	records := collect(t, p, "ABIAL E   45372: N=Abies alba\n C=Silver fir\n S=Ignored\n", nil)
	if len(records) != 1 || records[0].CommonName != "Silver fir" || records[0].Synonym != "" {
		t.Errorf("Unexpected records %+v", records)
	}
}

func TestParseSecondaryUnicodeSpaces(t *testing.T) {
	input := "AADNV V  648330: N=Foo\u00a0bar baz\n" +
		"                 C=nick\u00a0name x\n" +
		"                 S=old\u2009name\n"

	records := collect(t, NewParser(), input, nil)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.ScientificName != "Foo\u00a0bar baz" {
		t.Errorf("Expected full scientific name, got %q", record.ScientificName)
	}
	if record.CommonName != "nick\u00a0name x" {
		t.Errorf("Expected full common name, got %q", record.CommonName)
	}
	if record.Synonym != "old\u2009name" {
		t.Errorf("Expected full synonym, got %q", record.Synonym)
	}
}
