// Package templates renders the HTML pages of the web shell. The .templ
// files are the source; run templ generate after editing them.
package templates

import (
	"fmt"
	"net/url"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/table"
)

const styleTag = `<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
header{background:#243b53;color:#fff;padding:.75rem 1.5rem}
header a{color:#fff;text-decoration:none;font-weight:600}
main{max-width:72rem;margin:1.5rem auto;padding:0 1.5rem}
section{background:#fff;border:1px solid #d9e2ec;border-radius:6px;padding:1rem 1.25rem;margin-bottom:1rem}
h2{font-size:1rem;margin:0 0 .75rem}
pre{background:#102a43;color:#f0f4f8;padding:1rem;overflow:auto;font-size:.8rem}
label{display:block;margin:.35rem 0}
.alert{border-left:4px solid #e12d39;background:#ffe3e3;padding:.75rem 1rem}
.notice{border-left:4px solid #27ab83;background:#e3f9e5;padding:.75rem 1rem}
.log li.warning{color:#b44d12}.log li.error{color:#e12d39}
table.list{border-collapse:collapse;width:100%}table.list td,table.list th{padding:.35rem;border-bottom:1px solid #d9e2ec;text-align:left}
</style>`

// FormatOption is one entry of a format drop-down.
type FormatOption struct {
	Key   string
	Label string
}

// IndexParams feeds the load page.
type IndexParams struct {
	Formats  []FormatOption
	Sessions []core.SessionSummary
}

// SessionParams feeds the dataset page.
type SessionParams struct {
	Summary      core.SessionSummary
	Preview      string
	Formats      []FormatOption
	StoreEnabled bool
	Notice       string
}

// logLine is one rendered report entry; Kind doubles as its CSS class.
type logLine struct {
	Kind string
	Text string
}

func reportLines(r *core.Report) []logLine {
	lines := r.Lines()
	out := make([]logLine, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = logLine{Kind: string(e.Kind), Text: lines[i]}
	}
	return out
}

// textColumns lists the columns that can still be coerced.
func textColumns(cols []core.ColumnInfo) []string {
	var out []string
	for _, c := range cols {
		if c.Type == table.FieldText {
			out = append(out, c.Name)
		}
	}
	return out
}

func summaryLine(s core.SessionSummary) string {
	return fmt.Sprintf("%d rows × %d columns (loaded with %d rows)", s.Rows, len(s.Columns), s.OriginalRows)
}

func sessionPath(id string, suffix string) string {
	return "/sessions/" + url.PathEscape(id) + suffix
}

func apiPath(id string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
