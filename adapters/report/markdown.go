package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tfea/domain/enrichment"
)

// Markdown renders a run summary: parameters, significant motifs first,
// then every scored motif as NES/FDR pairs, then skipped and failed motifs.
func Markdown(run *enrichment.Run) string {
	var b strings.Builder

	title := run.Name
	if title == "" {
		title = run.ID.String()
	}
	fmt.Fprintf(&b, "# TFEA results: %s\n\n", title)

	b.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Run ID | `%s` |\n", run.ID)
	fmt.Fprintf(&b, "| Created | %s |\n", run.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "| Seed | %d |\n", run.Seed)
	fmt.Fprintf(&b, "| Windows | %g / %g |\n", run.Params.InnerWindow, run.Params.OuterWindow)
	fmt.Fprintf(&b, "| Permutations | %d |\n", run.Params.Permutations)
	fmt.Fprintf(&b, "| FDR cutoff | %g |\n", run.Params.FDRCutoff)
	fmt.Fprintf(&b, "| Motifs | %d scored, %d skipped, %d failed |\n", len(run.Results), len(run.Skipped), len(run.Failed))
	fmt.Fprintf(&b, "| Runtime | %d ms |\n", run.RuntimeMs)
	if !run.Fingerprint.IsEmpty() {
		fmt.Fprintf(&b, "| Fingerprint | `%s` |\n", run.Fingerprint)
	}
	b.WriteString("\n")

	significant := run.SignificantResults()
	fmt.Fprintf(&b, "## Significant motifs (%d)\n\n", len(significant))
	if len(significant) == 0 {
		b.WriteString("No motif passed the FDR cutoff.\n\n")
	} else {
		writeResultTable(&b, significant)
	}

	// NES against FDR, strongest enrichment first
	ordered := make([]enrichment.Result, len(run.Results))
	copy(ordered, run.Results)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Significant != ordered[j].Significant {
			return ordered[i].Significant
		}
		return ordered[i].NES > ordered[j].NES
	})
	fmt.Fprintf(&b, "## All motifs (%d)\n\n", len(ordered))
	if len(ordered) > 0 {
		writeResultTable(&b, ordered)
	}

	if len(run.Skipped) > 0 {
		fmt.Fprintf(&b, "## Skipped motifs (%d)\n\n", len(run.Skipped))
		b.WriteString("No region within the outer window:\n\n")
		for _, motif := range run.Skipped {
			fmt.Fprintf(&b, "- %s\n", motif)
		}
		b.WriteString("\n")
	}

	if len(run.Failed) > 0 {
		fmt.Fprintf(&b, "## Failed motifs (%d)\n\n", len(run.Failed))
		for _, failure := range run.Failed {
			fmt.Fprintf(&b, "- **%s**: %s\n", failure.MotifID, failure.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeResultTable(b *strings.Builder, results []enrichment.Result) {
	b.WriteString("| Motif | ES | NES | P-value | FDR | Hits | Misses |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range results {
		fmt.Fprintf(b, "| %s | %.4f | %.4f | %.3g | %.3g | %d | %d |\n",
			r.MotifID, r.ActualES, r.NES, r.PValue, r.FDR, r.Hits, r.Misses)
	}
	b.WriteString("\n")
}

// HTML renders the Markdown summary as a standalone page
func HTML(run *enrichment.Run) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "TFEA results",
	})
	return markdown.ToHTML([]byte(Markdown(run)), p, renderer)
}

// WriteHTML writes the HTML summary to path
func WriteHTML(path string, run *enrichment.Run) error {
	if err := os.WriteFile(path, HTML(run), 0o644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}
