package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyText_AttributesAndGroups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithTimeLayout("none")).
		With(slog.String("comp", "scan"))

	logger.WithGroup("g").Info("msg", "k", 1)

	out := buf.String()

	for _, want := range []string{
		colorGray + "comp" + colorReset + "=" + colorCyan + "scan",
		colorGray + "g.k" + colorReset + "=" + colorYellow + "1",
		colorGreen + "INFO",
		"msg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}

	if strings.Contains(out, slog.TimeKey) {
		t.Errorf("time should be omitted: %q", out)
	}
}

func TestPrettyJSON_Layout(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatJSON),
		WithTimeLayout("none"),
		WithLevel(LevelTrace),
	)

	logger.Trace("deep", slog.Group("span", slog.Int("start", 0), slog.Int("end", 3)))

	out := buf.String()

	if !strings.HasPrefix(out, "{\n  ") || !strings.HasSuffix(out, "\n}\n") {
		t.Fatalf("unexpected layout %q", out)
	}

	for _, want := range []string{
		colorBlue + "TRACE",
		colorGray + "span" + colorReset + ": {",
		"\n    " + colorGray + "end",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := newPrettyTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("info enabled under warn threshold")
	}

	if !h.Enabled(t.Context(), slog.LevelError) {
		t.Error("error disabled under warn threshold")
	}
}
