package internal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// defaultRecordTemplate renders a record as a small markdown document
const defaultRecordTemplate = `# {{.Title}}

<{{.URL}}>

{{.Content}}
`

// RecordFormatter renders transcription records through a text/template
type RecordFormatter struct {
	tmpl *template.Template
}

// NewRecordFormatter parses a template given inline or as a file path.
// An empty setting uses the markdown default.
func NewRecordFormatter(setting string) (*RecordFormatter, error) {
	content := defaultRecordTemplate
	if setting != "" {
		content = setting
		if IsLikelyFilePath(setting) && FileExists(setting) {
			data, err := os.ReadFile(setting)
			if err != nil {
				return nil, fmt.Errorf("reading format template: %w", err)
			}
			content = string(data)
		}
	}

	tmpl, err := template.New("record").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing format template: %w", err)
	}
	return &RecordFormatter{tmpl: tmpl}, nil
}

// Format executes the template for one record
func (f *RecordFormatter) Format(record *TranscriptionRecord) (string, error) {
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, record); err != nil {
		return "", fmt.Errorf("executing format template: %w", err)
	}
	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "{{") || strings.Contains(s, "\n") {
		return false
	}

	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	for _, ext := range []string{".txt", ".md", ".tmpl", ".template"} {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}

	return !strings.Contains(s, " ")
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WriteRecord formats a record and renders it as markdown when w is a terminal
func WriteRecord(w io.Writer, f *RecordFormatter, record *TranscriptionRecord) error {
	out, err := f.Format(record)
	if err != nil {
		return err
	}

	if IsTerminal(w) {
		if rendered, err := RenderMarkdown(out); err == nil {
			out = rendered
		}
	}

	_, err = io.WriteString(w, out)
	return err
}

// RenderRecordsTable lists records with a content preview of at most previewWidth runes
func RenderRecordsTable(records []TranscriptionRecord, previewWidth int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "URL", "Content"})

	for i, r := range records {
		tw.AppendRow(table.Row{i + 1, r.Title, r.URL, preview(r.Content, previewWidth)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, WidthMax: 40},
	})
	tw.AppendFooter(table.Row{"", "", "Total", strconv.Itoa(len(records)) + " records"})

	return tw.Render()
}

// RenderFailuresTable lists the videos skipped during a playlist run
func RenderFailuresTable(failures []VideoFailure) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "URL", "Error"})

	for _, f := range failures {
		tw.AppendRow(table.Row{f.Index + 1, f.URL, f.Err.Error()})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, WidthMax: 60},
	})

	return tw.Render()
}

// preview collapses whitespace and truncates to width runes
func preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
