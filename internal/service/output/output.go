package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format represents command output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates format values.
func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", v)
	}
}

// Meta identifies a single command response.
type Meta struct {
	RequestID   string `json:"request_id" yaml:"request_id"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	APIBase     string `json:"api_base" yaml:"api_base"`
}

// ErrorBody is the error section of a failed response.
type ErrorBody struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Envelope is the machine-output payload.
type Envelope struct {
	Meta     Meta       `json:"meta" yaml:"meta"`
	Data     any        `json:"data" yaml:"data"`
	Warnings []string   `json:"warnings" yaml:"warnings"`
	Error    *ErrorBody `json:"error,omitempty" yaml:"error,omitempty"`
}

func newMeta(apiBase string) Meta {
	return Meta{
		RequestID:   "req_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		GeneratedAt: time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		APIBase:     apiBase,
	}
}

// NewEnvelope wraps data for machine output.
func NewEnvelope(apiBase string, data any, warnings []string) Envelope {
	if warnings == nil {
		warnings = []string{}
	}
	return Envelope{Meta: newMeta(apiBase), Data: data, Warnings: warnings}
}

// ErrorEnvelope builds a data-less envelope carrying code and message.
func ErrorEnvelope(apiBase, code, message string) Envelope {
	env := NewEnvelope(apiBase, nil, nil)
	env.Error = &ErrorBody{Code: code, Message: message}
	return env
}

// Encode writes env to w as indented json or yaml.
func Encode(w io.Writer, env Envelope, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("format %q has no envelope encoding", format)
	}
}

// Emit runs write against w, mirrored into outputPath when it is set.
func Emit(w io.Writer, outputPath string, write func(io.Writer) error) error {
	if outputPath == "" {
		return write(w)
	}
	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	werr := write(io.MultiWriter(w, f))
	if cerr := f.Close(); werr == nil && cerr != nil {
		return fmt.Errorf("close output file: %w", cerr)
	}
	return werr
}

// Line returns a write func that prints text followed by a newline.
func Line(text string) func(io.Writer) error {
	return func(w io.Writer) error {
		if _, err := fmt.Fprintln(w, text); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
}

// RenderTable renders plain text tables with aligned columns.
func RenderTable(title string, headers []string, rows [][]string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	if len(headers) > 0 {
		_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
