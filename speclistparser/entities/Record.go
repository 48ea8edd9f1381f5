package entities

import "fmt"

// Column names, in CSV order
const (
	ColumnCode           = "code"
	ColumnKingdom        = "kingdom"
	ColumnTaxonNode      = "taxon_node"
	ColumnScientificName = "scientific_name"
	ColumnCommonName     = "common_name"
	ColumnSynonym        = "synonym"
)

// Columns is the fixed output column order
var Columns = []string{
	ColumnCode,
	ColumnKingdom,
	ColumnTaxonNode,
	ColumnScientificName,
	ColumnCommonName,
	ColumnSynonym,
}

// Kingdom codes used by the speclist
const (
	KingdomArchaea   = "A"
	KingdomBacteria  = "B"
	KingdomEukaryota = "E"
	KingdomViruses   = "V"
	KingdomOther     = "O"
)

// Record is one species/taxon entry of the speclist
type Record struct {
	Code           string `json:"code"`
	Kingdom        string `json:"kingdom"`
	TaxonNode      string `json:"taxon_node"`
	ScientificName string `json:"scientific_name"`
	CommonName     string `json:"common_name,omitempty"`
	Synonym        string `json:"synonym,omitempty"`
}

// IsKnownColumn reports whether name maps to a Record field
func IsKnownColumn(name string) bool {
	switch name {
	case ColumnCode, ColumnKingdom, ColumnTaxonNode, ColumnScientificName, ColumnCommonName, ColumnSynonym:
		return true
	}
	return false
}

// Get returns the value of the given column
func (r *Record) Get(column string) (string, error) {
	switch column {
	case ColumnCode:
		return r.Code, nil
	case ColumnKingdom:
		return r.Kingdom, nil
	case ColumnTaxonNode:
		return r.TaxonNode, nil
	case ColumnScientificName:
		return r.ScientificName, nil
	case ColumnCommonName:
		return r.CommonName, nil
	case ColumnSynonym:
		return r.Synonym, nil
	}
	return "", fmt.Errorf("unknown column %q", column)
}

// Set assigns value to the given column
func (r *Record) Set(column, value string) error {
	switch column {
	case ColumnCode:
		r.Code = value
	case ColumnKingdom:
		r.Kingdom = value
	case ColumnTaxonNode:
		r.TaxonNode = value
	case ColumnScientificName:
		r.ScientificName = value
	case ColumnCommonName:
		r.CommonName = value
	case ColumnSynonym:
		r.Synonym = value
	default:
		return fmt.Errorf("unknown column %q", column)
	}
	return nil
}

// KingdomName returns a readable name for a kingdom code
func KingdomName(code string) string {
	switch code {
	case KingdomArchaea:
		return "Archaea"
	case KingdomBacteria:
		return "Bacteria"
	case KingdomEukaryota:
		return "Eukaryota"
	case KingdomViruses:
		return "Viruses"
	case KingdomOther:
		return "Other"
	}
	return ""
}
