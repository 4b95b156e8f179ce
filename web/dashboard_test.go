package web

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	err := Dashboard(PageData{Title: "My <Portfolio>", Benchmarks: []string{"S&P 500"}, Period: "3M"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "My &lt;Portfolio&gt;") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(out, "S&amp;P 500") {
		t.Error("benchmark labels should be escaped")
	}
	for _, id := range []string{`id="portfolio"`, `id="alerts"`, `id="benchmark"`} {
		if !strings.Contains(out, id) {
			t.Errorf("missing %s", id)
		}
	}
}

func TestDashboard_DefaultTitle(t *testing.T) {
	var buf bytes.Buffer
	Dashboard(PageData{}).Render(context.Background(), &buf)
	if !strings.Contains(buf.String(), "<title>Investment Tracker</title>") {
		t.Error("expected default title")
	}
}

func TestDashboard_ScriptEscapesAPIStrings(t *testing.T) {
	var buf bytes.Buffer
	if err := Dashboard(PageData{}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()

	for _, field := range []string{"a.symbol", "q.symbol", "x.message", "s.alert.symbol", "s.error", "e.message"} {
		if strings.Contains(out, `"<td>" + `+field) || strings.Contains(out, `"<li>" + `+field) {
			t.Errorf("%s is written into markup unescaped", field)
		}
	}
	if !strings.Contains(out, "esc(a.symbol)") || !strings.Contains(out, "esc(x.message)") {
		t.Error("expected symbols and messages to go through esc()")
	}
}
