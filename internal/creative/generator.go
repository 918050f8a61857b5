package creative

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"adpulse/domain/chs"
	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/internal/config"
	"adpulse/ports"
)

const (
	rngCopyStage = "copy"

	// targetConfidenceFloor is the creative-confidence below which a
	// flagged hypothesis no longer nominates its campaign.
	targetConfidenceFloor = 0.35

	// weakComponentThreshold marks a CHS component as needing work.
	weakComponentThreshold = 0.6

	maxTermsPerCampaign = 8
	minSuggestions      = 3
)

var termStopwords = termSet("our", "with", "for", "the", "and", "a", "an",
	"in", "on", "of", "to", "from", "by", "you", "your", "this", "that")

// Suggestion is one generated ad copy variant.
type Suggestion struct {
	ID               string   `json:"id"`
	Headline         string   `json:"headline"`
	Message          string   `json:"message"`
	CTA              string   `json:"cta"`
	VariantStyle     Style    `json:"variant_style"`
	CoreTerm         string   `json:"core_term"`
	TargetedWeakness []string `json:"targeted_weakness"`
	CHSTargets       []string `json:"chs_targets"`
	OverlapScore     float64  `json:"overlap_score"`
	RiskLevel        string   `json:"risk_level"`
	ReasoningChain   []string `json:"reasoning_chain"`
}

// CampaignCreatives bundles new copy and a test plan for one campaign.
type CampaignCreatives struct {
	CampaignName   string         `json:"campaign_name"`
	CHSCurrent     *float64       `json:"chs_current"`
	WeakComponents []string       `json:"weak_components"`
	Suggestions    []Suggestion   `json:"suggestions"`
	TestPlan       map[string]int `json:"test_plan"`
}

// Output is the copy generator's run result.
type Output struct {
	Creatives   []CampaignCreatives `json:"creatives"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// Generator produces CHS-aware copy suggestions for campaigns with weak
// CTR or creative health. Per-campaign RNG streams keep each campaign's
// output independent of how many other campaigns were targeted.
type Generator struct {
	analysis config.AnalysisConfig
	cfg      config.GeneratorConfig
	rng      ports.RNG
	logger   zerolog.Logger
}

// NewGenerator creates a copy generator.
func NewGenerator(analysis config.AnalysisConfig, cfg config.GeneratorConfig, rng ports.RNG, logger zerolog.Logger) *Generator {
	return &Generator{analysis: analysis, cfg: cfg, rng: rng, logger: logger}
}

// Generate selects target campaigns and produces copy variants for each.
// A campaign that yields no usable variant is dropped rather than
// failing the run.
func (g *Generator) Generate(summary *dataset.Summary, chsSummary chs.Summary, hyps []hypothesis.Hypothesis) *Output {
	targets := g.selectTargets(summary.CampaignSummaries, chsSummary, hyps)
	g.logger.Info().Int("targets", len(targets)).Msg("selected campaigns for copy generation")

	existingByCampaign := make(map[string][]string)
	for _, cs := range summary.CreativeSummaries {
		existingByCampaign[cs.CampaignName] = append(existingByCampaign[cs.CampaignName], cs.CreativeMessage)
	}

	out := &Output{GeneratedAt: time.Now().UTC()}
	for _, campaign := range targets {
		record, hasRecord := chsSummary[campaign]
		weak := inferWeakComponents(record, hasRecord)
		terms := cleanTerms(summary.TextTerms[campaign])

		stream := g.rng.Stream(rngCopyStage, campaign, g.cfg.Seed)
		suggestions := g.generateForCampaign(stream, campaign, terms, existingByCampaign[campaign], weak)
		if len(suggestions) == 0 {
			g.logger.Warn().Str("campaign", campaign).Msg("no copy suggestions produced")
			continue
		}
		if len(suggestions) > g.cfg.MaxSuggestionsPerCampaign {
			suggestions = suggestions[:g.cfg.MaxSuggestionsPerCampaign]
		}

		var chsCurrent *float64
		if hasRecord {
			v := record.CHSRecent
			chsCurrent = &v
		}

		out.Creatives = append(out.Creatives, CampaignCreatives{
			CampaignName:   campaign,
			CHSCurrent:     chsCurrent,
			WeakComponents: weak,
			Suggestions:    suggestions,
			TestPlan:       buildTestPlan(len(suggestions)),
		})
		g.logger.Info().Str("campaign", campaign).Int("suggestions", len(suggestions)).Msg("generated copy for campaign")
	}
	return out
}

// selectTargets unions the campaigns flagged by creative hypotheses,
// low CTR, and low CHS, then ranks them by combined severity so the
// campaign cap keeps the worst offenders.
func (g *Generator) selectTargets(campaigns []dataset.CampaignSummary, chsSummary chs.Summary, hyps []hypothesis.Hypothesis) []string {
	targetSet := make(map[string]bool)

	for _, h := range hyps {
		if h.DriverType != hypothesis.DriverCreative || h.CampaignName == "" {
			continue
		}
		conf := h.InitialConfidence
		if h.Creative != nil {
			conf = h.Creative.Confidence
		}
		if conf >= targetConfidenceFloor {
			targetSet[h.CampaignName] = true
		}
	}

	ctrByCampaign := make(map[string]float64, len(campaigns))
	spendByCampaign := make(map[string]float64, len(campaigns))
	for _, cs := range campaigns {
		ctrByCampaign[cs.CampaignName] = cs.CTR
		spendByCampaign[cs.CampaignName] = cs.Spend
		if cs.CTR < g.analysis.LowCTRThreshold {
			targetSet[cs.CampaignName] = true
		}
	}
	for name, record := range chsSummary {
		if record.CHSRecent < g.cfg.CHSThreshold {
			targetSet[name] = true
		}
	}

	type scored struct {
		name  string
		score float64
	}
	ranked := make([]scored, 0, len(targetSet))
	for name := range targetSet {
		chsPenalty := 0.0
		if record, ok := chsSummary[name]; ok {
			chsPenalty = 100 - record.CHSRecent
		}
		ctrPenalty := math.Max(0, 0.05-ctrByCampaign[name]) * 200
		ranked = append(ranked, scored{
			name:  name,
			score: chsPenalty + ctrPenalty + spendByCampaign[name]/10.0,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.name)
	}
	if len(names) > g.cfg.MaxCampaigns {
		names = names[:g.cfg.MaxCampaigns]
	}
	return names
}

// inferWeakComponents names the CHS components below threshold. Without
// a record, text quality is the default suspect.
func inferWeakComponents(record chs.Record, hasRecord bool) []string {
	if !hasRecord {
		return []string{"text_quality"}
	}
	var weak []string
	if record.TextQuality < weakComponentThreshold {
		weak = append(weak, "text_quality")
	}
	if record.FatigueScore < weakComponentThreshold {
		weak = append(weak, "fatigue")
	}
	if record.BehaviorRecent < weakComponentThreshold {
		weak = append(weak, "behavior")
	}
	if len(weak) == 0 {
		weak = []string{"text_quality"}
	}
	return weak
}

func (g *Generator) generateForCampaign(stream *rand.Rand, campaign string, terms, existingMessages, weak []string) []Suggestion {
	existingBlob := strings.Join(existingMessages, " ")

	styleOrder := append([]Style(nil), defaultStyles...)
	stream.Shuffle(len(styleOrder), func(i, j int) {
		styleOrder[i], styleOrder[j] = styleOrder[j], styleOrder[i]
	})

	var suggestions []Suggestion
	seen := make(map[string]bool)

	for _, style := range styleOrder {
		templates := templateBank[style]
		for v := 0; v < g.cfg.VariantsPerStyle; v++ {
			tpl := templates[stream.Intn(len(templates))]
			term := terms[stream.Intn(len(terms))]
			pain := painPoints[stream.Intn(len(painPoints))]

			headline := renderTemplate(tpl.headline, term, pain)
			body := chsTweak(renderTemplate(tpl.body, term, pain), weak, style)

			overlap := jaccard(headline+" "+body, existingBlob)
			if overlap >= g.cfg.OverlapThreshold {
				continue
			}

			key := string(style) + "|" + strings.ToLower(headline) + "|" + strings.ToLower(body)
			if seen[key] {
				continue
			}
			seen[key] = true

			suggestions = append(suggestions, Suggestion{
				ID:               suggestionID(campaign, style, len(suggestions)+1),
				Headline:         headline,
				Message:          body,
				CTA:              pickCTA(stream, style),
				VariantStyle:     style,
				CoreTerm:         term,
				TargetedWeakness: weak,
				CHSTargets:       weak,
				OverlapScore:     overlap,
				RiskLevel:        assessRisk(headline, body),
				ReasoningChain:   buildReasoning(campaign, style, term, weak),
			})
		}
	}

	if len(suggestions) < minSuggestions {
		relaxed := g.generateRelaxed(stream, campaign, terms, existingBlob, weak, minSuggestions-len(suggestions))
		for _, s := range relaxed {
			dup := false
			for _, ex := range suggestions {
				if ex.Headline == s.Headline {
					dup = true
					break
				}
			}
			if !dup {
				suggestions = append(suggestions, s)
			}
		}
	}

	stream.Shuffle(len(suggestions), func(i, j int) {
		suggestions[i], suggestions[j] = suggestions[j], suggestions[i]
	})
	return suggestions
}

// generateRelaxed fills remaining slots with a looser overlap bound so a
// campaign whose existing copy resembles every template still gets a few
// candidates.
func (g *Generator) generateRelaxed(stream *rand.Rand, campaign string, terms []string, existingBlob string, weak []string, needed int) []Suggestion {
	var pool []template
	for _, style := range defaultStyles {
		pool = append(pool, templateBank[style]...)
	}
	relaxedThreshold := math.Min(0.98, g.cfg.OverlapThreshold+0.25)

	var results []Suggestion
	for attempts := 0; len(results) < needed && attempts < needed*10; attempts++ {
		tpl := pool[stream.Intn(len(pool))]
		term := terms[stream.Intn(len(terms))]
		pain := painPoints[stream.Intn(len(painPoints))]

		headline := renderTemplate(tpl.headline, term, pain)
		body := chsTweak(renderTemplate(tpl.body, term, pain), weak, StyleRelaxed)

		overlap := jaccard(headline+" "+body, existingBlob)
		if overlap >= relaxedThreshold {
			continue
		}

		results = append(results, Suggestion{
			ID:               fmt.Sprintf("%s_rel_%04d", campaignPrefix(campaign), 1000+stream.Intn(9000)),
			Headline:         headline,
			Message:          body,
			CTA:              defaultCTAs[stream.Intn(len(defaultCTAs))],
			VariantStyle:     StyleRelaxed,
			CoreTerm:         term,
			TargetedWeakness: weak,
			CHSTargets:       weak,
			OverlapScore:     overlap,
			RiskLevel:        "low",
			ReasoningChain:   buildReasoning(campaign, StyleRelaxed, term, weak),
		})
	}
	return results
}

// cleanTerms filters a campaign's keyword pool down to usable copy
// terms: no stopwords, at least three characters, mostly alphabetic.
func cleanTerms(terms []dataset.TermCount) []string {
	var clean []string
	for _, tc := range terms {
		t := strings.ToLower(strings.TrimSpace(tc.Term))
		if len(t) < 3 || termStopwords[t] {
			continue
		}
		alpha := 0
		for _, r := range t {
			if unicode.IsLetter(r) {
				alpha++
			}
		}
		if float64(alpha)/float64(len(t)) < 0.5 {
			continue
		}
		clean = append(clean, t)
		if len(clean) == maxTermsPerCampaign {
			break
		}
	}
	if len(clean) == 0 {
		return append([]string(nil), fallbackTerms...)
	}
	return clean
}

func renderTemplate(tpl, term, pain string) string {
	r := strings.NewReplacer(
		"{term}", term,
		"{TermCap}", capitalize(term),
		"{pain}", pain,
	)
	return r.Replace(tpl)
}

// chsTweak appends component-targeted lines to the body.
func chsTweak(body string, weak []string, style Style) string {
	has := func(c string) bool {
		for _, w := range weak {
			if w == c {
				return true
			}
		}
		return false
	}
	var tweak strings.Builder
	if has("fatigue") {
		tweak.WriteString(" Try a fresh colour or pattern to reduce ad fatigue.")
	}
	if has("text_quality") {
		tweak.WriteString(" Designed for comfort and built to last. Feel it yourself.")
	}
	if has("behavior") && (style == StyleBenefit || style == StyleFeatureHighlight) {
		tweak.WriteString(" Tested for improved fit and conversion.")
	}
	return body + tweak.String()
}

func pickCTA(stream *rand.Rand, style Style) string {
	pool, ok := ctasByStyle[style]
	if !ok {
		pool = defaultCTAs
	}
	return pool[stream.Intn(len(pool))]
}

func buildReasoning(campaign string, style Style, term string, weak []string) []string {
	reasons := []string{
		fmt.Sprintf("Campaign %q flagged for creative attention.", campaign),
		fmt.Sprintf("Style %q chosen to target weaknesses: %s.", style, strings.Join(weak, ", ")),
		fmt.Sprintf("Core term %q taken from the campaign's top keywords.", term),
	}
	for _, w := range weak {
		switch w {
		case "fatigue":
			reasons = append(reasons, "Includes freshness cue to address creative fatigue.")
		case "text_quality":
			reasons = append(reasons, "Adds benefit and proof language to improve click intent.")
		case "behavior":
			reasons = append(reasons, "Includes performance-focused phrasing to drive conversions.")
		}
	}
	return reasons
}

// assessRisk flags urgency wording as medium risk and absolute claims as
// high risk.
func assessRisk(headline, body string) string {
	h := strings.ToLower(headline)
	for _, w := range []string{"sale", "limited", "last", "ends"} {
		if strings.Contains(h, w) {
			return "medium"
		}
	}
	b := strings.ToLower(body)
	for _, w := range []string{"guarantee", "cure", "never", "always"} {
		if strings.Contains(b, w) {
			return "high"
		}
	}
	return "low"
}

// buildTestPlan splits traffic across variants. With three or more
// variants the control keeps half and the rest share the remainder.
func buildTestPlan(nVariants int) map[string]int {
	if nVariants <= 1 {
		return map[string]int{"control": 100}
	}
	plan := make(map[string]int)
	if nVariants >= 3 {
		plan["control"] = 50
		per := 50 / (nVariants - 1)
		leftover := 50 - per*(nVariants-1)
		for i := 1; i < nVariants; i++ {
			share := per
			if leftover > 0 {
				share++
				leftover--
			}
			plan[fmt.Sprintf("variant_%d", i)] = share
		}
		return plan
	}
	base := 100 / nVariants
	leftover := 100 - base*nVariants
	for i := 1; i <= nVariants; i++ {
		share := base
		if leftover > 0 {
			share++
			leftover--
		}
		plan[fmt.Sprintf("variant_%d", i)] = share
	}
	return plan
}

func suggestionID(campaign string, style Style, n int) string {
	prefix := campaignPrefix(campaign)
	styleTag := string(style)
	if len(styleTag) > 3 {
		styleTag = styleTag[:3]
	}
	return fmt.Sprintf("%s_%s_%d", prefix, styleTag, n)
}

func campaignPrefix(campaign string) string {
	runes := []rune(campaign)
	if len(runes) > 6 {
		runes = runes[:6]
	}
	return strings.ReplaceAll(string(runes), " ", "")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// jaccard measures token-set overlap between two texts.
func jaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	union := len(tb)
	for t := range ta {
		if tb[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func tokenSet(text string) map[string]bool {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	set := make(map[string]bool)
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) > 2 {
			set[tok] = true
		}
	}
	return set
}
