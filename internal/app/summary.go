package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"soiagi/internal/operations"
	"soiagi/pkg/contracts/domain"
)

// RenderSummary writes a per-step audit table of a run
func RenderSummary(w io.Writer, resp *operations.OperationResponse) {
	if resp == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run " + resp.ID)
	t.AppendHeader(table.Row{"Step", "Status", "Duration", "Rows", "Mapped", "Unmapped", "Outputs"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Rows", Align: text.AlignRight},
		{Name: "Mapped", Align: text.AlignRight},
		{Name: "Unmapped", Align: text.AlignRight},
	})

	for _, id := range resp.Order {
		step, ok := resp.Steps[id]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{
			id,
			string(step.Status),
			step.Duration().Round(time.Millisecond),
			metadataString(step.Metadata, operations.MetadataRows),
			metadataString(step.Metadata, operations.MetadataMapped),
			metadataString(step.Metadata, operations.MetadataUnmapped),
			outputNames(step.Metadata),
		})
	}

	t.AppendFooter(table.Row{"", string(resp.Status), resp.Duration.Round(time.Millisecond), "", "", "", ""})
	t.Render()

	for _, id := range resp.Order {
		if step, ok := resp.Steps[id]; ok && step.Message != "" && step.Status != operations.StepStatusCompleted {
			_, _ = fmt.Fprintf(w, "%s: %s\n", id, step.Message)
		}
	}
}

// RenderSteps writes the registered steps in execution order
func RenderSteps(w io.Writer, steps []operations.Step) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Step", "Name", "Depends on"})
	for i, s := range steps {
		t.AppendRow(table.Row{i + 1, s.ID(), s.Name(), strings.Join(s.GetDependencies(), ", ")})
	}
	t.Render()
}

// RenderCodebook writes the selected variables in standardized column order
func RenderCodebook(w io.Writer, dict *domain.VariableDictionary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Variable", "Description"})
	for i, v := range dict.Variables() {
		t.AppendRow(table.Row{i + 1, v.Name, v.Description})
	}
	t.Render()
}

func metadataString(meta map[string]interface{}, key string) string {
	v, ok := meta[key]
	if !ok {
		return "-"
	}
	return fmt.Sprint(v)
}

func outputNames(meta map[string]interface{}) string {
	outputs, ok := meta[operations.MetadataOutputs].([]string)
	if !ok || len(outputs) == 0 {
		return "-"
	}
	names := make([]string, len(outputs))
	for i, o := range outputs {
		names[i] = filepath.Base(o)
	}
	return strings.Join(names, "\n")
}
