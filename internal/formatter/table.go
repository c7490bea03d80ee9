package formatter

import (
	"strconv"
	"strings"

	"github.com/alevsk/meshgen/internal/catalog"
	"github.com/alevsk/meshgen/internal/types"
	"github.com/jedib0t/go-pretty/v6/table"
)

// shortDigest is how many hex characters of a file digest a table shows
const shortDigest = 12

func newTable(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(nil)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateColumns = true
	tw.SetTitle(title)
	return tw
}

// buildReportTables builds the metadata (when present), files and fetch tables
func buildReportTables(data *ReportData) []table.Writer {
	var tables []table.Writer

	if data.Metadata != nil {
		metadataTable := newTable("METADATA")
		metadataTable.AppendHeader(table.Row{"KEY", "VALUE"})
		metadataTable.AppendRows([]table.Row{
			{"PROFILE", data.Metadata.Profile},
			{"REPO URL", data.Metadata.RepoURL},
			{"OBSERVABILITY NAMESPACE", data.Metadata.ObservabilityNamespace},
			{"OUTPUT DIR", data.Metadata.OutputDir},
			{"SUCCESS", data.Metadata.Success},
			{"TIMESTAMP", data.Metadata.Timestamp},
		})
		tables = append(tables, metadataTable)
	}

	// rows keep write order
	filesTable := newTable("FILES")
	filesTable.AppendHeader(table.Row{"PATH", "SECTION", "SOURCE", "BYTES", "SHA256", "WRITTEN"})
	for _, f := range data.Files {
		digest := f.SHA256
		if len(digest) > shortDigest {
			digest = digest[:shortDigest]
		}
		filesTable.AppendRow(table.Row{f.Path, f.Section, string(f.Source), f.Bytes, digest, f.Written})
	}
	written, size := (&types.Report{Files: data.Files}).Written()
	filesTable.AppendFooter(table.Row{"", "", "WRITTEN", size, "", written})
	tables = append(tables, filesTable)

	fetchTable := newTable("REMOTE FETCH")
	fetchTable.AppendHeader(table.Row{"URL", "STATUS", "ATTEMPTS", "ERROR"})
	status := ""
	if data.Fetch.StatusCode != 0 {
		status = strconv.Itoa(data.Fetch.StatusCode)
	}
	fetchTable.AppendRow(table.Row{data.Fetch.URL, status, data.Fetch.Attempts, data.Fetch.Error})
	tables = append(tables, fetchTable)

	return tables
}

// buildCatalogTable lists every entry of a catalog in order
func buildCatalogTable(data *CatalogData) table.Writer {
	catalogTable := newTable("CATALOG (" + strings.ToUpper(data.Profile) + ")")
	catalogTable.AppendHeader(table.Row{"PATH", "SECTION", "SOURCE", "PLACEHOLDERS"})
	for _, e := range data.Entries {
		catalogTable.AppendRow(table.Row{e.Path, string(e.Section), entrySource(e), strings.Join(e.Placeholders, ",")})
	}
	return catalogTable
}

func entrySource(e catalog.Entry) string {
	if e.Remote {
		return string(types.FileSourceRemote)
	}
	return string(types.FileSourceTemplate)
}
