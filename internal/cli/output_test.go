package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/cobra"
)

func testOutput(t *testing.T) (*Output, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", false, "")
	cmd.SetOut(&buf)
	return NewOutput(cmd), &buf
}

func TestTableAlignsColumns(t *testing.T) {
	output, buf := testOutput(t)

	table := NewTable(output, "SYMBOL", "PNL")
	table.AddRow("BTCUSDT", "+10.00")
	table.AddRow("ETH", "-3.50")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines: %q", len(lines), buf.String())
	}
	// The PNL column must start at the same offset in every row.
	wantCol := strings.Index(lines[2], "+10.00")
	if gotCol := strings.Index(lines[3], "-3.50"); gotCol != wantCol {
		t.Errorf("columns misaligned: %d vs %d\n%s", wantCol, gotCol, buf.String())
	}
}

func TestJSONModeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", true, "")
	cmd.SetOut(&buf)

	output := NewOutput(cmd)
	if !output.IsJSON() {
		t.Fatal("expected JSON mode")
	}
	if err := output.JSON(map[string]int{"trades": 3}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"trades": 3`) {
		t.Errorf("unexpected JSON output %q", buf.String())
	}
}

func TestVisibleLenProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("plain strings measure their rune count", prop.ForAll(
		func(s string) bool {
			return visibleLen(s) == len([]rune(s))
		},
		gen.AlphaString(),
	))

	properties.Property("color sequences add no visible width", prop.ForAll(
		func(s string) bool {
			colored := "\x1b[32m" + s + "\x1b[0m"
			return visibleLen(colored) == visibleLen(s)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
