package notes

import (
	"regexp"
	"strings"

	"meeting-pick-lab/internal/domain"
)

// Classifier assigns a sentiment to a fragment of note text.
type Classifier interface {
	Classify(text string) domain.Sentiment
}

// compoundRule pairs a pattern with the sentiment it forces. Compound
// phrases override plain keyword counting, so order matters.
type compoundRule struct {
	re        *regexp.Regexp
	sentiment domain.Sentiment
}

var compoundRules = []compoundRule{
	{regexp.MustCompile(`中性偏多`), domain.SentimentBullish},
	{regexp.MustCompile(`中性偏谨慎`), domain.SentimentBearish},
	{regexp.MustCompile(`中性偏空`), domain.SentimentBearish},
	{regexp.MustCompile(`中性偏乐观`), domain.SentimentBullish},
	{regexp.MustCompile(`偏乐观`), domain.SentimentBullish},
	{regexp.MustCompile(`偏悲观`), domain.SentimentBearish},
	{regexp.MustCompile(`不太看好`), domain.SentimentBearish},
	{regexp.MustCompile(`比较看好`), domain.SentimentBullish},
	{regexp.MustCompile(`相对看好`), domain.SentimentBullish},
	{regexp.MustCompile(`整体偏多`), domain.SentimentBullish},
	{regexp.MustCompile(`整体偏空`), domain.SentimentBearish},
}

var bullishPatterns = compilePatterns([]string{
	`偏多`, `加仓`, `建仓`, `买入`, `逢低`, `布局`,
	`逐步加`, `小仓位`, `试探性`, `维持偏高仓位`,
	`重新纳入`, `择机`, `考虑配置`,
	`看好`, `增持`, `利好`, `反弹`,
	`吸纳`, `上行`, `低估`,
})

var bearishPatterns = compilePatterns([]string{
	`偏空`, `减仓`, `回避`, `卖出`, `已卖`,
	`偏谨慎`, `不加仓`, `降低.*暴露`, `不买`,
	`减少预期`, `小幅减仓`,
	`看空`, `悲观`, `承压`, `下行`,
	`高估`, `泡沫`, `利空`, `估值偏高`,
	`不建议`, `止损`, `清仓`,
})

var neutralPatterns = compilePatterns([]string{
	`中性`, `观察`, `观望`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// KeywordClassifier classifies sentiment by counting Chinese action
// keywords, with compound phrases checked first.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the default keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify returns the sentiment for the given text. Empty text is Unknown.
func (c *KeywordClassifier) Classify(text string) domain.Sentiment {
	if strings.TrimSpace(text) == "" {
		return domain.SentimentUnknown
	}

	for _, rule := range compoundRules {
		if rule.re.MatchString(text) {
			return rule.sentiment
		}
	}

	bullCount := countMatches(bullishPatterns, text)
	bearCount := countMatches(bearishPatterns, text)

	if bullCount > 0 && bullCount > bearCount {
		return domain.SentimentBullish
	}
	if bearCount > 0 && bearCount > bullCount {
		return domain.SentimentBearish
	}

	for _, re := range neutralPatterns {
		if re.MatchString(text) {
			return domain.SentimentNeutral
		}
	}
	// "维持" is neutral unless part of "维持偏高仓位" (bullish, handled above)
	if strings.Contains(text, "维持") && !strings.Contains(text, "维持偏高") {
		return domain.SentimentNeutral
	}

	return domain.SentimentUnknown
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	count := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			count++
		}
	}
	return count
}

var _ Classifier = (*KeywordClassifier)(nil)
