package debug

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "pipeline", map[string]bool{"pipeline": true}},
		{"multiple", "pipeline,transport", map[string]bool{"pipeline": true, "transport": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " pipeline , transport ", map[string]bool{"pipeline": true, "transport": true}},
		{"uppercase normalized", "PIPELINE,Transport", map[string]bool{"pipeline": true, "transport": true}},
		{"empty segments", "pipeline,,transport", map[string]bool{"pipeline": true, "transport": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("pipeline")

	if !Enabled("pipeline") {
		t.Error("pipeline should be enabled")
	}
	if Enabled("transport") {
		t.Error("transport should not be enabled")
	}
	if Enabled("all") {
		t.Error("all should not be enabled (not in categories)")
	}
}

func TestEnabled_All(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("all")

	for _, cat := range []string{"pipeline", "transport", "anything"} {
		if !Enabled(cat) {
			t.Errorf("%s should be enabled via 'all'", cat)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("trace") {
		t.Error("trace should be valid")
	}
	if ValidLevel("verbose") {
		t.Error("verbose should not be valid")
	}
}

func TestInitJSONAndTrace(t *testing.T) {
	orig := categories
	origLogger := slog.Default()
	defer func() {
		categories = orig
		slog.SetDefault(origLogger)
	}()
	t.Setenv("RESPIPE_DEBUG", "")
	t.Setenv("RESPIPE_LOG_LEVEL", "")

	var buf bytes.Buffer
	initTo(&buf, "pipeline", "TRACE", "json")

	Log("pipeline", "decided", "handler", "chunked")
	Bytes("pipeline", "frame", []byte("3\r\nabc\r\n"))
	Log("transport", "hidden")

	out := buf.String()
	for _, want := range []string{`"msg":"decided"`, `"handler":"chunked"`, `"msg":"frame"`, `"len":8`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("disabled category was logged:\n%s", out)
	}
}

func TestInitEnvOverridesConfig(t *testing.T) {
	orig := categories
	origLogger := slog.Default()
	defer func() {
		categories = orig
		slog.SetDefault(origLogger)
	}()
	t.Setenv("RESPIPE_DEBUG", "transport")
	t.Setenv("RESPIPE_LOG_LEVEL", "ERROR")

	var buf bytes.Buffer
	logger := initTo(&buf, "pipeline", "DEBUG", "text")

	if Enabled("pipeline") {
		t.Error("pipeline should be disabled when env names only transport")
	}
	if !Enabled("transport") {
		t.Error("transport should be enabled from env")
	}
	if logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("WARN should be filtered at ERROR level")
	}
}

func TestLog_DisabledCategory(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("")

	// Should not panic or produce output.
	Log("pipeline", "test message", "key", "value")
	Trace("pipeline", "trace message", "key", "value")
	Bytes("pipeline", "dump", []byte("x"))
}
