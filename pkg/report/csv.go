package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/drodil/depspector/pkg/types"
)

var csvHeader = []string{"package", "file", "line", "severity", "type", "message", "code", "id"}

// WriteCSV writes one row per issue across results, columns
// package/file/line/severity/type/message/code/id, per spec.md §6.
func WriteCSV(results []types.AnalysisResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, result := range results {
		pkg := result.Package
		if pkg == "" {
			pkg = "unknown"
		}
		for _, issue := range result.Issues {
			file := issue.File
			if file == "" {
				file = result.PackagePath
			}
			row := []string{
				pkg,
				file,
				strconv.Itoa(issue.Line),
				issue.Severity.String(),
				issue.IssueType,
				issue.Message,
				issue.Code,
				issue.ID,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}
