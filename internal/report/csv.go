package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FileName is the advisory default name for exported reports.
const FileName = "prompt-optimizer-report.csv"

// ErrEmptyReport is returned when an export is requested for a report with
// no users. Callers must skip file creation entirely.
var ErrEmptyReport = errors.New("nothing to export")

// CSVHeader is fixed; consumers key on these exact column names.
const CSVHeader = "User,Total Prompts,Total Executions,Total Original Tokens,Total Optimized Tokens,Total Savings,Estimated Cost Savings ($)"

// WriteCSV writes the report as UTF-8 comma-separated text, one row per
// user in Usernames order. Usernames are always quoted with internal quotes
// doubled; cost savings are formatted to six decimal places.
func WriteCSV(w io.Writer, summaries map[string]*UserSummary) error {
	if len(summaries) == 0 {
		return ErrEmptyReport
	}

	if _, err := io.WriteString(w, CSVHeader+"\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, name := range Usernames(summaries) {
		s := summaries[name]
		row := strings.Join([]string{
			quoteField(s.Username),
			strconv.FormatInt(s.TotalPrompts, 10),
			strconv.FormatInt(s.TotalExecutions, 10),
			strconv.FormatInt(s.TotalOriginalTokens, 10),
			strconv.FormatInt(s.TotalOptimizedTokens, 10),
			strconv.FormatInt(s.TotalSavings, 10),
			strconv.FormatFloat(s.EstimatedCostSavings, 'f', 6, 64),
		}, ",")
		if _, err := io.WriteString(w, row+"\n"); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	return nil
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
