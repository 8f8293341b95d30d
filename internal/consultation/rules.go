package consultation

import (
	"regexp"
	"strings"
)

// Rule is one pattern predicate for a single intent field. Rules are pure:
// given the lowercased utterance they either yield a value or decline. Each
// field owns an ordered list; the first match wins.
type Rule func(text string) (string, bool)

// Placeholder pronouns carry no information and are never accepted as goal
// or audience values.
var placeholderValues = map[string]bool{
	"it": true, "this": true, "that": true,
}

// Generic terms too vague to anchor a campaign on. Mirrors the audit the
// question planner applies when deciding whether a field needs a follow-up.
var vagueGoalTerms = map[string]bool{
	"business": true, "idea": true, "thing": true, "stuff": true,
	"product": true, "service": true,
}

var vagueAudienceTerms = map[string]bool{
	"people": true, "everyone": true, "anybody": true, "users": true,
	"customers": true, "clients": true, "the": true,
}

func isPlaceholder(v string) bool {
	return placeholderValues[strings.ToLower(strings.TrimSpace(v))]
}

func isVagueGoal(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return isPlaceholder(v) || vagueGoalTerms[v]
}

func isVagueAudience(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return isPlaceholder(v) || vagueAudienceTerms[v]
}

// regexRule adapts a compiled pattern into a Rule. The submatch at idx is
// the candidate value; reject filters out junk captures.
func regexRule(re *regexp.Regexp, idx int, reject func(string) bool) Rule {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil || idx >= len(m) {
			return "", false
		}
		v := strings.Trim(strings.TrimSpace(m[idx]), ".,!?")
		if v == "" || (reject != nil && reject(v)) {
			return "", false
		}
		return v, true
	}
}

// --- goal -------------------------------------------------------------------

var (
	reGoalVerb    = regexp.MustCompile(`(?:promote|market|advertise|sell)\s+(?:my\s+|our\s+)?(.+?)(?:\s+to\s|\s+for\s|\s+on\s|$)`)
	reGoalItsA    = regexp.MustCompile(`(?:it's|its)\s+(?:a\s+|an\s+)?(.+?)(?:\s+for\s|\s+that\s|$)`)
	reGoalWeOffer = regexp.MustCompile(`(?:we|i)\s+(?:sell|offer|provide|make|run)\s+(.+?)(?:\s+to\s|\s+for\s|$)`)
	reGoalNoun    = regexp.MustCompile(`\b(?:a|an|my|our)\s+(\w+(?:\s+\w+)?)\s+(?:business|service|product|app|website|shop|store|restaurant|cafe)\b`)
)

var goalRules = []Rule{
	regexRule(reGoalVerb, 1, isVagueGoal),
	regexRule(reGoalItsA, 1, isVagueGoal),
	regexRule(reGoalWeOffer, 1, isVagueGoal),
	regexRule(reGoalNoun, 1, isVagueGoal),
}

// --- audience ---------------------------------------------------------------

var (
	reAudienceTarget = regexp.MustCompile(`(?:target|targeting)\s+(.+?)(?:\s+aged\s|\s+between\s|\s+who\s|\s+on\s|$)`)
	reAudienceToFor  = regexp.MustCompile(`\b(?:to|for)\s+(.+?)(?:\s+on\s|\s+via\s|\s+through\s|\s+using\s|\s+with\s|$)`)
	reAudienceDemo   = regexp.MustCompile(`\b(teenagers?|teens?|millennials?|gen\s*z|boomers?|students?|professionals?|seniors?|parents?|gamers?|kids?)\b`)
	reAudienceLocal  = regexp.MustCompile(`\b((?:local|urban|rural|young|busy|middle-aged|older)\s+\w+)\b`)
)

// reAudienceVerbClause spots infinitive clauses ("to sell records") that the
// weak to/for rule would otherwise mistake for an audience.
var reAudienceVerbClause = regexp.MustCompile(`^(?:promote|market|advertise|sell|launch|buy|get|make|be|do|help|start|grow|reach|find)\b`)

func isAudienceClause(v string) bool {
	return isVagueAudience(v) || reAudienceVerbClause.MatchString(strings.ToLower(v))
}

// The to/for preposition rule is weakest and runs last; the demographic
// rules pull "kids" out of "promote my cars to kids" before it can grab the
// whole clause.
var audienceRules = []Rule{
	regexRule(reAudienceTarget, 1, isVagueAudience),
	regexRule(reAudienceLocal, 1, isVagueAudience),
	regexRule(reAudienceDemo, 1, nil),
	regexRule(reAudienceToFor, 1, isAudienceClause),
}

// --- budget -----------------------------------------------------------------

var (
	reBudgetDollar     = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)
	reBudgetK          = regexp.MustCompile(`\b(\d+)\s*k\b`)
	reBudgetThousand   = regexp.MustCompile(`\b(\d+)\s*thousand\b`)
	reBudgetDollars    = regexp.MustCompile(`\b(\d{1,3}(?:,\d{3})*)\s*(?:dollars?|bucks?)\b`)
	reBudgetQualifier  = regexp.MustCompile(`\b(under|below|over|above|around|about|approximately)\s+\$?\s*(\d[\d,]*k?)\b`)
	reBudgetDescriptor = regexp.MustCompile(`\b(small|limited|tight|minimal|large|big|substantial|monthly|weekly|annual)\s+budget\b`)
)

var budgetRules = []Rule{
	func(text string) (string, bool) {
		if m := reBudgetQualifier.FindStringSubmatch(text); m != nil {
			return m[1] + " $" + m[2], true
		}
		return "", false
	},
	func(text string) (string, bool) {
		if m := reBudgetDollar.FindStringSubmatch(text); m != nil {
			return "$" + m[1], true
		}
		return "", false
	},
	func(text string) (string, bool) {
		if m := reBudgetK.FindStringSubmatch(text); m != nil {
			return "$" + m[1] + "k", true
		}
		return "", false
	},
	func(text string) (string, bool) {
		if m := reBudgetThousand.FindStringSubmatch(text); m != nil {
			return "$" + m[1] + ",000", true
		}
		return "", false
	},
	func(text string) (string, bool) {
		if m := reBudgetDollars.FindStringSubmatch(text); m != nil {
			return "$" + m[1], true
		}
		return "", false
	},
	func(text string) (string, bool) {
		if m := reBudgetDescriptor.FindStringSubmatch(text); m != nil {
			return m[1] + " budget", true
		}
		return "", false
	},
}

// --- channels ---------------------------------------------------------------

// channelAliases maps each recognized channel's canonical name to the spoken
// forms users actually type. Order matters: more specific channels are
// checked before the generic "social media" bucket.
var channelAliases = []struct {
	Canonical string
	Aliases   []string
}{
	{"Instagram", []string{"instagram", "insta", "ig"}},
	{"Facebook", []string{"facebook", "fb"}},
	{"Twitter", []string{"twitter"}},
	{"LinkedIn", []string{"linkedin"}},
	{"Email", []string{"email", "newsletter", "newsletters"}},
	{"Google Ads", []string{"google ads", "adwords", "google advertising"}},
	{"YouTube", []string{"youtube"}},
	{"TikTok", []string{"tiktok", "tik tok"}},
	{"Local", []string{"local advertising", "local"}},
	{"Social Media", []string{"social media", "social"}},
}

var reWordBoundaryCache = map[string]*regexp.Regexp{}

func init() {
	for _, ch := range channelAliases {
		for _, a := range ch.Aliases {
			reWordBoundaryCache[a] = regexp.MustCompile(`\b` + regexp.QuoteMeta(a) + `\b`)
		}
	}
}

// NormalizeChannels turns free text into the finite list of recognized
// channel names: first-occurrence order, deduplicated, unrecognized tokens
// dropped. The generic "Social Media" bucket is removed when any specific
// channel is present.
func NormalizeChannels(text string) []string {
	lower := strings.ToLower(text)

	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	seen := map[string]bool{}
	for _, ch := range channelAliases {
		best := -1
		for _, a := range ch.Aliases {
			if loc := reWordBoundaryCache[a].FindStringIndex(lower); loc != nil {
				if best == -1 || loc[0] < best {
					best = loc[0]
				}
			}
		}
		if best >= 0 && !seen[ch.Canonical] {
			seen[ch.Canonical] = true
			hits = append(hits, hit{ch.Canonical, best})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	// Preserve order of first mention in the utterance.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	var out []string
	for _, h := range hits {
		out = append(out, h.name)
	}
	if len(out) > 1 {
		// Drop the generic bucket once a concrete channel exists.
		filtered := out[:0]
		for _, name := range out {
			if name != "Social Media" {
				filtered = append(filtered, name)
			}
		}
		if len(filtered) > 0 {
			out = filtered
		}
	}
	return out
}

// --- tone -------------------------------------------------------------------

var reToneWords = regexp.MustCompile(`\b(professional|formal|serious|casual|friendly|relaxed|informal|fun|playful|energetic|exciting|elegant|sophisticated|premium|luxury|authentic|genuine|honest|modern|trendy|contemporary|traditional|classic|timeless)\b`)

var toneRules = []Rule{
	func(text string) (string, bool) {
		matches := reToneWords.FindAllString(text, -1)
		if len(matches) == 0 {
			return "", false
		}
		seen := map[string]bool{}
		var out []string
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
		return strings.Join(out, ", "), true
	},
}

// --- timeline ---------------------------------------------------------------

var (
	reTimelineSoon    = regexp.MustCompile(`\b(asap|immediately|right away|soon|next week|this week|next month|this month)\b`)
	reTimelineMonth   = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	reTimelineSeason  = regexp.MustCompile(`\b(spring|summer|fall|autumn|winter|holiday|christmas|new year|valentine|easter|black friday)\b`)
	reTimelineIn      = regexp.MustCompile(`\bin\s+(\d+)\s+(days?|weeks?|months?)\b`)
	reTimelineByMonth = regexp.MustCompile(`\bby\s+(january|february|march|april|may|june|july|august|september|october|november|december|friday|monday|next week|next month|the end of the month|the end of the year)\b`)
)

var timelineRules = []Rule{
	regexRule(reTimelineSoon, 1, nil),
	func(text string) (string, bool) {
		if m := reTimelineIn.FindStringSubmatch(text); m != nil {
			return "in " + m[1] + " " + m[2], true
		}
		return "", false
	},
	func(text string) (string, bool) {
		if m := reTimelineByMonth.FindStringSubmatch(text); m != nil {
			return "by " + m[1], true
		}
		return "", false
	},
	regexRule(reTimelineMonth, 1, nil),
	regexRule(reTimelineSeason, 1, nil),
}

// firstMatch runs an ordered rule list and returns the first hit.
func firstMatch(rules []Rule, text string) (string, bool) {
	for _, r := range rules {
		if v, ok := r(text); ok {
			return v, true
		}
	}
	return "", false
}
