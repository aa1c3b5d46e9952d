package report

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// WriteCSV renders the table as a comma-delimited report in which only
// non-numeric fields are quoted: headers and string cells get double
// quotes (embedded quotes doubled), numeric cells are written bare, nil
// cells are empty. The company identity is the first column.
func WriteCSV(t *Table, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(quote(model.ColCompanyURL))
	for _, col := range t.Columns() {
		sb.WriteByte(',')
		sb.WriteString(quote(col))
	}
	sb.WriteByte('\n')

	for _, id := range t.Companies() {
		row := t.Get(id)
		sb.WriteString(quote(string(id)))
		for _, col := range t.Columns() {
			sb.WriteByte(',')
			sb.WriteString(renderCell(row[col]))
		}
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "report: write csv")
	}
	return nil
}

// WriteCSVFile writes the report to path.
func WriteCSVFile(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := WriteCSV(t, f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "report: close %s", path)
	}
	return nil
}

func renderCell(v Value) string {
	switch c := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case string:
		return quote(c)
	default:
		return ""
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
