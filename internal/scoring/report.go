package scoring

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/spigell/lead-scorer/internal/ai"
)

// ScoredLead is the final result for one lead.
type ScoredLead struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Company      string    `json:"company"`
	Intent       ai.Intent `json:"intent"`
	Score        int       `json:"score"`
	Reasoning    string    `json:"reasoning"`
	RulePoints   int       `json:"rule_points"`
	IntentPoints int       `json:"intent_points"`
}

var reportHeader = []string{"name", "role", "company", "intent", "score", "rule_points", "intent_points", "reasoning"}

func (s ScoredLead) record() []string {
	return []string{
		s.Name,
		s.Role,
		s.Company,
		string(s.Intent),
		strconv.Itoa(s.Score),
		strconv.Itoa(s.RulePoints),
		strconv.Itoa(s.IntentPoints),
		s.Reasoning,
	}
}

// Rank returns a copy of results ordered by descending score. Leads with equal
// scores keep their input order.
func Rank(results []ScoredLead) []ScoredLead {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b ScoredLead) int {
		return b.Score - a.Score
	})
	return ranked
}

// ReportByIntent groups results by intent label, preserving order within each
// group.
func ReportByIntent(results []ScoredLead) map[ai.Intent][]ScoredLead {
	report := make(map[ai.Intent][]ScoredLead)
	for _, r := range results {
		report[r.Intent] = append(report[r.Intent], r)
	}
	return report
}

// WriteCSV writes results with a header row.
func WriteCSV(w io.Writer, results []ScoredLead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, r := range results {
		if err := cw.Write(r.record()); err != nil {
			return eris.Wrapf(err, "write csv row for %q", r.Name)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}

// WriteXLSX writes results to a single-sheet workbook.
func WriteXLSX(w io.Writer, results []ScoredLead) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, col := range reportHeader {
		header.AddCell().SetString(col)
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Role)
		row.AddCell().SetString(r.Company)
		row.AddCell().SetString(string(r.Intent))
		row.AddCell().SetInt(r.Score)
		row.AddCell().SetInt(r.RulePoints)
		row.AddCell().SetInt(r.IntentPoints)
		row.AddCell().SetString(r.Reasoning)
	}

	return eris.Wrap(file.Write(w), "write xlsx")
}

// WriteFile writes results to path, choosing XLSX or CSV by extension.
func WriteFile(path string, results []ScoredLead) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(f, results)
	}
	return WriteCSV(f, results)
}

// DumpToTmpFile writes results as indented JSON into a temporary file and
// returns its name.
func DumpToTmpFile(results []ScoredLead) (string, error) {
	file, err := os.CreateTemp("", "scored_leads_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}
	return file.Name(), nil
}
