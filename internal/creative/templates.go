package creative

// Style names the copy-variant families the generator cycles through.
type Style string

const (
	StyleBenefit          Style = "benefit"
	StyleUrgency          Style = "urgency"
	StyleSocialProof      Style = "social_proof"
	StyleProblemSolution  Style = "problem_solution"
	StyleFeatureHighlight Style = "feature_highlight"
	StyleAudienceHook     Style = "audience_hook"
	StyleRelaxed          Style = "relaxed"
)

// defaultStyles is the generation order before shuffling.
var defaultStyles = []Style{
	StyleBenefit, StyleUrgency, StyleSocialProof,
	StyleProblemSolution, StyleFeatureHighlight, StyleAudienceHook,
}

// template pairs a headline and body pattern. {term} and {TermCap} are
// replaced with a campaign keyword, {pain} with a pain point.
type template struct {
	headline string
	body     string
}

// templateBank holds three templates per style, tuned for a DTC apparel
// vertical.
var templateBank = map[Style][]template{
	StyleBenefit: {
		{"{TermCap}: comfort that keeps up", "Engineered {term} for all-day support and a barely-there feel. Live comfortably."},
		{"Everyday {term}, effortless comfort", "Soft fabric, seamless design. Made to disappear under clothes and stay comfy all day."},
		{"Move freely with {term}", "Built to flex with you. Breathable, light, and supportive where it counts."},
	},
	StyleUrgency: {
		{"Limited drop: {TermCap} in stock", "Fresh styles just landed. Popular sizes moving fast. Grab yours before they're gone."},
		{"Last chance for {term} deals", "Sale ends soon. Restock your essentials while the offer lasts."},
		{"{TermCap} sale: ends tonight", "A small window for great comfort. Snag your size now."},
	},
	StyleSocialProof: {
		{"Loved by thousands: {TermCap}", "Rave reviews for fit and feel. Higher reorder rates than category average."},
		{"Top-rated {term} for comfort", "Customers say it's the most comfortable they've owned. See the reviews."},
		{"Recommended pick: {TermCap}", "Our best-rated essential. Tried and trusted by real customers."},
	},
	StyleProblemSolution: {
		{"Tired of {pain}? Try {TermCap}", "We fixed chafing and fit. Think soft edges and breathable fabric for daily comfort."},
		{"No more {pain}: meet {TermCap}", "A design built to eliminate common discomforts so you can focus on your day."},
		{"Say goodbye to {pain}", "{TermCap} is engineered for comfort and stability. An easy swap for a better day."},
	},
	StyleFeatureHighlight: {
		{"{TermCap} with moisture-wicking tech", "Lightweight knit with advanced breathability keeps you cool and dry."},
		{"Precision fit {term}, no bunching", "Flat seams and form-focused cuts make it invisible and dependable."},
		{"Durable {term} that stays put", "High-quality stretch for a consistent fit wash after wash."},
	},
	StyleAudienceHook: {
		{"Designed for people who move", "A tailored {term} fit for busy days. Perfect for athletes and commuters alike."},
		{"{TermCap} for minimalists", "Simple, effective design that fits every outfit and every day."},
		{"For those who value comfort", "If {term} and durability matter to you, these will become essentials."},
	},
}

// ctasByStyle maps each style to its call-to-action pool.
var ctasByStyle = map[Style][]string{
	StyleBenefit:          {"See why customers love it", "Discover comfort", "Try comfort today"},
	StyleUrgency:          {"Grab yours", "Shop the drop", "Limited - shop now"},
	StyleSocialProof:      {"Read reviews", "See why it's top-rated", "Join thousands"},
	StyleProblemSolution:  {"Try the fix", "Solve it today", "See the solution"},
	StyleFeatureHighlight: {"Learn more", "See features", "Explore details"},
	StyleAudienceHook:     {"Find your fit", "Designed for you", "Explore the collection"},
}

// defaultCTAs backs styles without a dedicated pool, including relaxed.
var defaultCTAs = []string{"Shop now", "See the collection", "View details", "Check availability", "Shop the drop"}

// painPoints feeds the {pain} placeholder of problem_solution templates.
var painPoints = []string{"chafing", "riding up", "bunching", "noticeable lines", "uneven fit"}

// fallbackTerms replaces an empty keyword pool.
var fallbackTerms = []string{"comfort", "fit", "soft"}
