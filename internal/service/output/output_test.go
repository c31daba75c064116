package output_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mekedron/airq-cli/internal/service/output"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    output.Format
		wantErr bool
	}{
		{input: "", want: output.FormatTable},
		{input: "TABLE", want: output.FormatTable},
		{input: " json ", want: output.FormatJSON},
		{input: "yaml", want: output.FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := output.ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	env := output.NewEnvelope("http://localhost:8000/api", map[string]any{"ok": true}, nil)
	if env.Meta.APIBase != "http://localhost:8000/api" {
		t.Fatalf("expected api_base in meta, got %q", env.Meta.APIBase)
	}
	requestID := env.Meta.RequestID
	if !strings.HasPrefix(requestID, "req_") || len(requestID) != len("req_")+32 {
		t.Fatalf("expected request_id req_ + 32 hex chars, got %q", requestID)
	}
	if other := output.NewEnvelope("", nil, nil).Meta.RequestID; other == requestID {
		t.Fatalf("expected unique request ids, got %q twice", requestID)
	}
	if !strings.HasSuffix(env.Meta.GeneratedAt, "Z") {
		t.Fatalf("expected generated_at to end with Z, got %q", env.Meta.GeneratedAt)
	}
	if env.Warnings == nil || len(env.Warnings) != 0 {
		t.Fatalf("expected empty warnings, got %v", env.Warnings)
	}
	if env.Error != nil {
		t.Fatalf("expected no error section, got %+v", env.Error)
	}
}

func TestEncode(t *testing.T) {
	env := output.NewEnvelope("http://localhost:8000/api", map[string]any{"ok": true}, []string{"warn"})

	var jsonOut strings.Builder
	if err := output.Encode(&jsonOut, env, output.FormatJSON); err != nil {
		t.Fatalf("encode json failed: %v", err)
	}
	if !strings.Contains(jsonOut.String(), "\"ok\": true") {
		t.Fatalf("expected json payload to include data, got %s", jsonOut.String())
	}
	if strings.Contains(jsonOut.String(), "\"error\"") {
		t.Fatalf("expected error section to be omitted, got %s", jsonOut.String())
	}

	var yamlOut strings.Builder
	if err := output.Encode(&yamlOut, env, output.FormatYAML); err != nil {
		t.Fatalf("encode yaml failed: %v", err)
	}
	if !strings.Contains(yamlOut.String(), "api_base: http://localhost:8000/api") {
		t.Fatalf("expected yaml payload to include api_base, got %s", yamlOut.String())
	}

	if err := output.Encode(io.Discard, env, output.FormatTable); err == nil {
		t.Fatal("expected table format to be rejected")
	}
}

func TestEncodeErrorEnvelope(t *testing.T) {
	env := output.ErrorEnvelope("", "AIRQ_FORECAST_ERROR", "boom")
	var sb strings.Builder
	if err := output.Encode(&sb, env, output.FormatJSON); err != nil {
		t.Fatalf("encode json failed: %v", err)
	}
	if !strings.Contains(sb.String(), "\"code\": \"AIRQ_FORECAST_ERROR\"") {
		t.Fatalf("expected error code in payload, got %s", sb.String())
	}
	if !strings.Contains(sb.String(), "\"data\": null") {
		t.Fatalf("expected null data, got %s", sb.String())
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	table := output.RenderTable("Forecast", []string{"Hour", "AQI"}, [][]string{{"+0h", "42"}, {"+10h", "7"}})
	lines := strings.Split(table, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), table)
	}
	if lines[0] != "Forecast" {
		t.Fatalf("expected title line, got %q", lines[0])
	}
	if strings.Index(lines[1], "AQI") != strings.Index(lines[3], "7") {
		t.Fatalf("expected aligned columns, got %q", table)
	}
}

func TestEmitMirrorsIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	var sb strings.Builder
	if err := output.Emit(&sb, path, output.Line("{}")); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if sb.String() != "{}\n" {
		t.Fatalf("expected writer output, got %q", sb.String())
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if string(payload) != "{}\n" {
		t.Fatalf("expected file payload to match writer, got %q", payload)
	}
}

func TestEmitWithoutPathWritesOnlyToWriter(t *testing.T) {
	var sb strings.Builder
	err := output.Emit(&sb, "", func(w io.Writer) error {
		return output.Encode(w, output.NewEnvelope("", 1, nil), output.FormatJSON)
	})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if !strings.HasSuffix(sb.String(), "}\n") {
		t.Fatalf("expected json terminated by newline, got %q", sb.String())
	}
}

func TestEmitReportsUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")
	if err := output.Emit(io.Discard, path, output.Line("x")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
