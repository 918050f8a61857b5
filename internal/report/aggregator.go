package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"adpulse/domain/core"
	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/internal/creative"
	apperrors "adpulse/internal/errors"
	"adpulse/internal/planner"
)

// maxReportInsights caps the hypotheses shown in the report body.
const maxReportInsights = 10

// Artifacts lists the files one run produced.
type Artifacts struct {
	InsightsPath  string `json:"insights_path"`
	CreativesPath string `json:"creatives_path"`
	ReportMDPath  string `json:"report_path"`
	ReportHTML    string `json:"report_html_path"`
}

// Aggregator fuses evidence into final confidences and writes the run
// artifacts: insights.json, creatives.json, report.md and report.html.
type Aggregator struct {
	logger zerolog.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// insightsFile is the serialized shape of insights.json.
type insightsFile struct {
	RunID      core.RunID              `json:"run_id"`
	Hypotheses []hypothesis.Hypothesis `json:"hypotheses"`
}

// Write fuses confidences, then writes every artifact under outDir.
// Returns the fused hypotheses so callers can reflect on them.
func (a *Aggregator) Write(
	runID core.RunID,
	plan planner.Plan,
	summary *dataset.Summary,
	hyps []hypothesis.Hypothesis,
	creatives *creative.Output,
	outDir string,
) ([]hypothesis.Hypothesis, Artifacts, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, Artifacts{}, apperrors.ReportError("create output directory", err)
	}

	fused := FuseConfidence(hyps)

	artifacts := Artifacts{
		InsightsPath:  filepath.Join(outDir, "insights.json"),
		CreativesPath: filepath.Join(outDir, "creatives.json"),
		ReportMDPath:  filepath.Join(outDir, "report.md"),
		ReportHTML:    filepath.Join(outDir, "report.html"),
	}

	if err := writeJSON(artifacts.InsightsPath, insightsFile{RunID: runID, Hypotheses: fused}); err != nil {
		return nil, Artifacts{}, err
	}
	if err := writeJSON(artifacts.CreativesPath, creatives); err != nil {
		return nil, Artifacts{}, err
	}

	md := a.buildReportMarkdown(plan, summary, fused, creatives)
	if err := os.WriteFile(artifacts.ReportMDPath, []byte(md), 0o644); err != nil {
		return nil, Artifacts{}, apperrors.ReportError("write report.md", err)
	}
	if err := os.WriteFile(artifacts.ReportHTML, renderHTML(md), 0o644); err != nil {
		return nil, Artifacts{}, apperrors.ReportError("write report.html", err)
	}

	a.logger.Info().
		Str("out_dir", outDir).
		Int("hypotheses", len(fused)).
		Msg("run artifacts written")
	return fused, artifacts, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.ReportError("marshal "+filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.ReportError("write "+filepath.Base(path), err)
	}
	return nil
}

func (a *Aggregator) buildReportMarkdown(
	plan planner.Plan,
	summary *dataset.Summary,
	fused []hypothesis.Hypothesis,
	creatives *creative.Output,
) string {
	var b strings.Builder
	meta := summary.Meta

	fmt.Fprintf(&b, "# Ad Performance Analysis Report\n\n")
	fmt.Fprintf(&b, "_Generated at %s_\n\n", time.Now().UTC().Format("2006-01-02 15:04:05Z"))
	fmt.Fprintf(&b, "**Query:** %s\n\n---\n\n", plan.QueryInfo.RawQuery)

	fmt.Fprintf(&b, "## Dataset Overview\n\n")
	fmt.Fprintf(&b, "- Rows: **%d**\n", meta.NRows)
	fmt.Fprintf(&b, "- Campaigns: **%d**\n", meta.NCampaigns)
	fmt.Fprintf(&b, "- Ad sets: **%d**\n", meta.NAdsets)
	fmt.Fprintf(&b, "- Creatives: **%d**\n", meta.NCreatives)
	fmt.Fprintf(&b, "- Date range: **%s to %s**\n\n", meta.DateMin, meta.DateMax)

	fmt.Fprintf(&b, "## Top Insights\n\n")
	if len(fused) == 0 {
		b.WriteString("_No hypotheses were generated._\n\n")
	} else {
		top := RankByConfidence(fused)
		if len(top) > maxReportInsights {
			top = top[:maxReportInsights]
		}
		for _, h := range top {
			name := h.CampaignName
			if name == "" {
				name = "Overall"
			}
			fmt.Fprintf(&b, "### %s: %s (%s, driver: %s, confidence: %.2f)\n\n",
				h.ID, name, h.Scope, h.DriverType, h.FinalConfidence)
			fmt.Fprintf(&b, "- **Hypothesis:** %s\n", h.Statement)
			fmt.Fprintf(&b, "- **Rationale:** %s\n", h.Rationale)
			if h.Metric != nil && h.Metric.Validated {
				b.WriteString("- **Status:** statistically validated\n")
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "## Creative Recommendations\n\n")
	if creatives == nil || len(creatives.Creatives) == 0 {
		b.WriteString("_No creative recommendations generated._\n\n")
	} else {
		for _, block := range creatives.Creatives {
			fmt.Fprintf(&b, "### Campaign: %s\n\n", block.CampaignName)
			if block.CHSCurrent != nil {
				fmt.Fprintf(&b, "- **Current CHS:** %.1f\n", *block.CHSCurrent)
			}
			if len(block.WeakComponents) > 0 {
				fmt.Fprintf(&b, "- **Weak components:** %s\n", strings.Join(block.WeakComponents, ", "))
			}
			if len(block.TestPlan) > 0 {
				fmt.Fprintf(&b, "- **Suggested test split:** %s\n", formatTestPlan(block.TestPlan))
			}
			b.WriteString("\n")
			shown := block.Suggestions
			if len(shown) > 3 {
				shown = shown[:3]
			}
			for _, s := range shown {
				fmt.Fprintf(&b, "- **Variant (%s):**\n", s.VariantStyle)
				fmt.Fprintf(&b, "  - Headline: %s\n", s.Headline)
				fmt.Fprintf(&b, "  - Message: %s\n", s.Message)
				fmt.Fprintf(&b, "  - CTA: %s\n\n", s.CTA)
			}
		}
	}

	fmt.Fprintf(&b, "## Action Checklist\n\n")
	b.WriteString("- [ ] Pause or reduce budget on campaigns with low-confidence but severely negative ROAS.\n")
	b.WriteString("- [ ] Prioritize creative tests in campaigns flagged with low CHS and low CTR.\n")
	b.WriteString("- [ ] For funnel-driven hypotheses, inspect landing page, pricing, and checkout analytics.\n")
	b.WriteString("- [ ] Re-run the analysis after at least 7 days of new data to validate changes.\n")

	return b.String()
}

// formatTestPlan prints splits with the control first, then variants in
// numeric order.
func formatTestPlan(plan map[string]int) string {
	parts := make([]string, 0, len(plan))
	if share, ok := plan["control"]; ok {
		parts = append(parts, fmt.Sprintf("control=%d%%", share))
	}
	for i := 1; ; i++ {
		key := fmt.Sprintf("variant_%d", i)
		share, ok := plan[key]
		if !ok {
			break
		}
		parts = append(parts, fmt.Sprintf("%s=%d%%", key, share))
	}
	return strings.Join(parts, ", ")
}

func renderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Ad Performance Analysis Report",
	})
	return markdown.Render(doc, renderer)
}
