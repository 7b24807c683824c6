// Package output renders query objects for the CLI.
package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	jsoniter "github.com/json-iterator/go"
	"github.com/leapstack-labs/leapquery/pkg/queryobject"
	"gopkg.in/yaml.v3"
)

// Mode selects how values are rendered.
type Mode string

// Output modes.
const (
	ModeJSON  Mode = "json"
	ModeYAML  Mode = "yaml"
	ModeTable Mode = "table"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Renderer writes rendered values to the command's output streams.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer. Unknown modes fall back to JSON.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	switch mode {
	case ModeJSON, ModeYAML, ModeTable:
	default:
		mode = ModeJSON
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, styles: NewStyles(out)}
}

// Mode returns the effective output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Styles returns the styles matching the standard output writer.
func (r *Renderer) Styles() *Styles { return r.styles }

// Warnf writes a formatted warning to the error stream.
func (r *Renderer) Warnf(format string, args ...any) {
	warn := NewStyles(r.errOut).Warning.Render("warning:")
	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", warn, fmt.Sprintf(format, args...))
}

// QueryObject renders q. A nil q means no query object was requested.
func (r *Renderer) QueryObject(q *queryobject.QueryObject) error {
	switch r.mode {
	case ModeYAML:
		if q == nil {
			_, err := fmt.Fprintln(r.out, "null")
			return err
		}
		return r.yaml(q)
	case ModeTable:
		return r.queryObjectTable(q)
	default:
		if q == nil {
			_, err := fmt.Fprintln(r.out, "null")
			return err
		}
		return r.json(q)
	}
}

// Value renders an arbitrary value as JSON or YAML. Table mode renders JSON.
func (r *Renderer) Value(v any) error {
	if r.mode == ModeYAML {
		return r.yaml(v)
	}
	return r.json(v)
}

// json writes one compact JSON document per line.
func (r *Renderer) json(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.out, "%s\n", b)
	return err
}

func (r *Renderer) yaml(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Renderer) queryObjectTable(q *queryobject.QueryObject) error {
	if q == nil {
		_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render("(no query object)"))
		return nil
	}

	if _, err := fmt.Fprintln(r.out, r.styles.Muted.Render(fmt.Sprintf("%s query object", q.Dialect()))); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Value"})

	for _, key := range q.Keys() {
		value, _ := q.Get(key)
		b, err := value.MarshalJSON()
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{key, string(b)})
	}

	t.Render()
	return nil
}

// Table renders rows under the given header.
func (r *Renderer) Table(header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}
