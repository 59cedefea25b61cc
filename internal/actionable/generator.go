package actionable

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"ads-insights-go/internal/config"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

const (
	maxInsightSources    = 3
	maxHypothesisSources = 2
)

// StrategyData is the value the strategy template is executed with.
type StrategyData struct {
	InsightCount    int
	HypothesisCount int
	Brand           string
	ProductCategory string
	Findings        []string
}

// Generator turns validated findings into ad creatives and test plans.
type Generator struct {
	Brand           string
	ProductCategory string

	strategy *template.Template
	log      *logger.Logger
	now      func() time.Time
}

// New resolves the strategy template once: the configured file first, then the
// inline template, then the built-in default.
func New(cfg config.Config, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.New()
	}
	log = log.WithComponent("actionable")
	category := cfg.ProductCategory
	if category == "" {
		category = "undergarments"
	}
	brand := cfg.BrandName
	if brand == "" {
		brand = "Your Brand"
	}
	return &Generator{
		Brand:           brand,
		ProductCategory: category,
		strategy:        loadStrategy(cfg.Creative, log),
		log:             log,
		now:             time.Now,
	}
}

func loadStrategy(cc config.CreativeConfig, log *logger.Logger) *template.Template {
	text := cc.StrategyTemplate
	if cc.StrategyTemplatePath != "" {
		data, err := os.ReadFile(cc.StrategyTemplatePath)
		if err != nil {
			log.WithError(err).WithField("path", cc.StrategyTemplatePath).Warn("strategy template unreadable, using default")
		} else {
			text = string(data)
		}
	}
	if text != "" {
		t, err := template.New("strategy").Option("missingkey=zero").Parse(text)
		if err == nil {
			return t
		}
		log.WithError(err).Warn("strategy template invalid, using default")
	}
	return template.Must(template.New("strategy").Parse(config.DefaultStrategyTemplate))
}

// Generate builds creatives from the top validated insights and hypotheses,
// adds the baseline set, and recommends A/B tests.
func (g *Generator) Generate(ev types.Evaluation, objectives []string) types.CreativeResult {
	creatives := []types.Creative{}
	for i, in := range ev.ValidatedInsights {
		if i == maxInsightSources {
			break
		}
		creatives = append(creatives, g.fromInsight(in.Insight)...)
	}
	for i, h := range ev.ValidatedHypotheses {
		if i == maxHypothesisSources {
			break
		}
		creatives = append(creatives, g.fromHypothesis(h.Hypothesis)...)
	}
	creatives = append(creatives, g.baseline()...)

	tests := abTests(creatives)
	strategy := g.renderStrategy(ev, objectives)

	g.log.WithField("creatives", len(creatives)).
		WithField("ab_tests", len(tests)).
		Info("creatives generated")

	return types.CreativeResult{
		GeneratedAt:      g.now(),
		Creatives:        creatives,
		ABTests:          tests,
		CreativeStrategy: strategy,
		Summary: types.CreativeSummary{
			TotalCreatives:   len(creatives),
			CreativeTypes:    creativeTypes(creatives),
			RecommendedTests: len(tests),
		},
	}
}

func (g *Generator) fromInsight(in types.Insight) []types.Creative {
	base := "CRE_" + in.InsightID
	switch {
	case strings.Contains(in.Category, "CTR") || strings.Contains(in.Category, "Engagement"):
		return []types.Creative{
			{
				CreativeID:     base + "_A",
				Type:           "image_ad",
				Format:         "single_image",
				Headline:       "New Arrival: Comfort Meets Style",
				BodyText:       fmt.Sprintf("Discover the latest %s collection from %s. Designed for all-day comfort. Limited time offer - Shop now!", g.ProductCategory, g.Brand),
				CTA:            "Shop New Arrivals",
				Rationale:      "Fresh creative to combat fatigue and improve engagement",
				TargetAudience: "Existing customers + Lookalike 1%",
				ExpectedImpact: "10-15% CTR improvement",
				VisualConcept:  "Lifestyle imagery showing product in use",
			},
			{
				CreativeID:     base + "_B",
				Type:           "video_ad",
				Format:         "short_video",
				Headline:       "Feel the Difference",
				BodyText:       fmt.Sprintf("See why thousands choose %s %s for superior comfort. 4.8★ rated. Free shipping on orders over $50.", g.Brand, g.ProductCategory),
				CTA:            "Watch & Shop",
				Rationale:      "Video format drives higher engagement rates",
				TargetAudience: "New customers + Interest-based targeting",
				ExpectedImpact: "20-25% CTR improvement vs static",
				VisualConcept:  "15-second product demo with testimonials",
			},
		}
	case strings.Contains(in.Category, "ROAS") || strings.Contains(in.Category, "Revenue"):
		return []types.Creative{{
			CreativeID:     base + "_A",
			Type:           "carousel_ad",
			Format:         "multi_product",
			Headline:       "Bundle & Save 25%",
			BodyText:       "Mix and match your favorites. Buy 3, get 25% off. Premium quality, unbeatable value.",
			CTA:            "Shop Bundle Deal",
			Rationale:      "Bundle offers increase AOV and ROAS",
			TargetAudience: "High-intent shoppers",
			ExpectedImpact: "15-20% ROAS improvement",
			VisualConcept:  "Carousel showing bundle options",
		}}
	case strings.Contains(in.Category, "Cost") || strings.Contains(in.Title, "CPC"):
		return []types.Creative{{
			CreativeID:     base + "_A",
			Type:           "image_ad",
			Format:         "single_image",
			Headline:       "Premium Quality, Fair Price",
			BodyText:       fmt.Sprintf("No markup. Just quality %s delivered to your door. Start with our bestsellers.", g.ProductCategory),
			CTA:            "Shop Best Sellers",
			Rationale:      "Value-focused messaging to improve cost efficiency",
			TargetAudience: "Price-conscious shoppers",
			ExpectedImpact: "8-12% CPC reduction",
			VisualConcept:  "Clean product shot with price highlight",
		}}
	}
	return nil
}

// fromHypothesis may return more than one creative when the statement names
// several causes.
func (g *Generator) fromHypothesis(h types.Hypothesis) []types.Creative {
	base := "CRE_" + h.HypothesisID
	statement := strings.ToLower(h.Statement)

	var out []types.Creative
	if strings.Contains(statement, "fatigue") {
		out = append(out, types.Creative{
			CreativeID:     base + "_FRESH",
			Type:           "image_ad",
			Format:         "single_image",
			Headline:       "Introducing: Cloud Comfort Technology",
			BodyText:       "Experience next-level softness. Our new collection uses innovative fabric for all-day comfort. Try it risk-free.",
			CTA:            "Discover Cloud Comfort",
			Rationale:      "New creative angle to test fatigue hypothesis",
			TargetAudience: "Fatigued audience segments",
			ExpectedImpact: "Test for CTR lift vs existing creative",
			VisualConcept:  "New photography style, bright colors",
		})
	}
	if strings.Contains(statement, "saturation") {
		out = append(out, types.Creative{
			CreativeID:     base + "_EXPAND",
			Type:           "image_ad",
			Format:         "single_image",
			Headline:       "Join 50,000+ Happy Customers",
			BodyText:       fmt.Sprintf("Rated 4.8★ for comfort and quality. See why %s is becoming the #1 choice. First order ships free.", g.Brand),
			CTA:            "Join The Comfort Club",
			Rationale:      "Social proof for new audience expansion",
			TargetAudience: "Lookalike 2-3% (broader audiences)",
			ExpectedImpact: "Lower CPM, maintain conversion quality",
			VisualConcept:  "Community/lifestyle imagery",
		})
	}
	if strings.Contains(statement, "landing page") {
		out = append(out, types.Creative{
			CreativeID:     base + "_LP",
			Type:           "image_ad",
			Format:         "single_image",
			Headline:       "Your Perfect Fit Awaits",
			BodyText:       "Take our 60-second fit quiz. Get personalized recommendations. Free returns on all orders.",
			CTA:            "Find My Fit",
			Rationale:      "Direct to improved landing experience",
			TargetAudience: "All segments",
			ExpectedImpact: "Test conversion rate improvement",
			VisualConcept:  "Interactive quiz preview",
		})
	}
	return out
}

func (g *Generator) baseline() []types.Creative {
	return []types.Creative{
		{
			CreativeID:     "CRE_BASE_001",
			Type:           "image_ad",
			Format:         "single_image",
			Headline:       "Comfort That Lasts All Day",
			BodyText:       fmt.Sprintf("Premium %s designed for your lifestyle. Breathable, durable, and stylish. Shop the collection.", g.ProductCategory),
			CTA:            "Shop Now",
			Rationale:      "Baseline performance creative",
			TargetAudience: "Broad audience",
			ExpectedImpact: "Control group for testing",
			VisualConcept:  "Hero product shot",
		},
		{
			CreativeID:     "CRE_BASE_002",
			Type:           "image_ad",
			Format:         "single_image",
			Headline:       "Limited Time: 20% Off Sitewide",
			BodyText:       "Upgrade your essentials. Premium quality at an unbeatable price. Use code SAVE20 at checkout.",
			CTA:            "Get 20% Off",
			Rationale:      "Promotional creative for conversion",
			TargetAudience: "Cart abandoners + High intent",
			ExpectedImpact: "Higher conversion rate",
			VisualConcept:  "Promotional banner overlay",
		},
		{
			CreativeID:     "CRE_BASE_003",
			Type:           "carousel_ad",
			Format:         "multi_product",
			Headline:       "Our Best Sellers",
			BodyText:       "Customer favorites, restocked. See what everyone's raving about. 4.8★ average rating.",
			CTA:            "Shop Best Sellers",
			Rationale:      "Product showcase creative",
			TargetAudience: "New customers",
			ExpectedImpact: "Strong ROAS performance",
			VisualConcept:  "Top 5 products carousel",
		},
	}
}

// abTests always returns four tests. A variant that points at a creative this
// run did not produce falls back to a baseline creative.
func abTests(creatives []types.Creative) []types.ABTest {
	have := make(map[string]bool, len(creatives))
	for _, c := range creatives {
		have[c.CreativeID] = true
	}
	pick := func(want, fallback string) []string {
		if have[want] {
			return []string{want}
		}
		return []string{fallback}
	}

	return []types.ABTest{
		{
			TestID:        "AB_TEST_001",
			TestName:      "Creative Refresh Impact",
			Hypothesis:    "New creative will improve CTR by 15%+",
			VariantA:      types.TestVariant{Description: "Current creative (control)", CreativeIDs: []string{"CRE_BASE_001"}},
			VariantB:      types.TestVariant{Description: "Fresh creative with new visuals", CreativeIDs: pick("CRE_HYP_001_FRESH", "CRE_BASE_003")},
			SuccessMetric: "CTR",
			TargetLift:    "15%",
			DurationDays:  7,
			BudgetSplit:   "50/50",
		},
		{
			TestID:        "AB_TEST_002",
			TestName:      "Value vs. Quality Messaging",
			Hypothesis:    "Quality-focused messaging will drive higher ROAS",
			VariantA:      types.TestVariant{Description: "Price/value focused messaging", CreativeIDs: []string{"CRE_BASE_002"}},
			VariantB:      types.TestVariant{Description: "Quality/comfort focused messaging", CreativeIDs: []string{"CRE_BASE_001"}},
			SuccessMetric: "ROAS",
			TargetLift:    "10%",
			DurationDays:  14,
			BudgetSplit:   "50/50",
		},
		{
			TestID:        "AB_TEST_003",
			TestName:      "Image vs. Video Format",
			Hypothesis:    "Video ads will achieve better engagement",
			VariantA:      types.TestVariant{Description: "Static image ad", CreativeIDs: pick("CRE_INS_CTR_001_A", "CRE_BASE_001")},
			VariantB:      types.TestVariant{Description: "15-second video ad", CreativeIDs: pick("CRE_INS_CTR_001_B", "CRE_BASE_003")},
			SuccessMetric: "Engagement Rate",
			TargetLift:    "25%",
			DurationDays:  7,
			BudgetSplit:   "40/60 (favor video)",
		},
		{
			TestID:        "AB_TEST_004",
			TestName:      "Audience Expansion Test",
			Hypothesis:    "Broader lookalike audiences maintain efficiency",
			VariantA:      types.TestVariant{Description: "Current LAL 1% audience", CreativeIDs: []string{"CRE_BASE_001"}},
			VariantB:      types.TestVariant{Description: "LAL 2-3% audience with social proof", CreativeIDs: pick("CRE_HYP_002_EXPAND", "CRE_BASE_003")},
			SuccessMetric: "CPA",
			TargetLift:    "Maintain or improve CPA",
			DurationDays:  14,
			BudgetSplit:   "60/40 (favor proven audience)",
		},
	}
}

func (g *Generator) renderStrategy(ev types.Evaluation, objectives []string) string {
	data := StrategyData{
		InsightCount:    len(ev.ValidatedInsights),
		HypothesisCount: len(ev.ValidatedHypotheses),
		Brand:           g.Brand,
		ProductCategory: g.ProductCategory,
	}
	for i, in := range ev.ValidatedInsights {
		if i == maxInsightSources {
			break
		}
		data.Findings = append(data.Findings, in.Title)
	}
	if len(data.Findings) == 0 {
		data.Findings = objectives
	}

	var buf bytes.Buffer
	if err := g.strategy.Execute(&buf, data); err != nil {
		g.log.WithError(err).Warn("strategy template failed, using default")
		buf.Reset()
		_ = template.Must(template.New("strategy").Parse(config.DefaultStrategyTemplate)).Execute(&buf, data)
	}
	return buf.String()
}

func creativeTypes(creatives []types.Creative) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range creatives {
		if !seen[c.Type] {
			seen[c.Type] = true
			out = append(out, c.Type)
		}
	}
	sort.Strings(out)
	return out
}
