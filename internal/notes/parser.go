// Package notes parses meeting transcripts into sentiment-tagged picks.
// Transcripts are Markdown files with YAML frontmatter carrying the
// meeting date and ticker list; per-ticker sections hold the action-hint
// text the classifier runs on.
package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/ticker"
)

const evidenceLimit = 200

var (
	frontmatterRe    = regexp.MustCompile(`(?s)^---\n(.*?)\n---`)
	tickerSectionRe  = regexp.MustCompile(`(?m)^[ \t]*##\s+\$([A-Z0-9]+(?:\.[A-Z]+)?)(?:\s*[（(].*)?$`)
	chineseSectionRe = regexp.MustCompile(`(?m)^[ \t]*##\s+([^\n#$]+?)(?:\s*[（(].*)?$`)
	actionHintRe     = regexp.MustCompile(`###\s*潜在行动提示`)
	coreSummaryRe    = regexp.MustCompile(`###\s*核心观点摘要`)
	nextSectionRe    = regexp.MustCompile(`(?m)^(?:[ \t]*#{2,3}\s)`)
	nextH2Re         = regexp.MustCompile(`\n[ \t]*## `)
	meetingSummaryRe = regexp.MustCompile(`(?s)会议摘要[:：]\s*(.+?)(?:\n会议时间|\n原文链接|\n---|\n##|$)`)
)

// Meeting is one parsed transcript.
type Meeting struct {
	Date       time.Time
	File       string
	TickersRaw []string
	Picks      []*domain.Pick
}

type frontmatter struct {
	Created string `yaml:"created"`
	Tickers []any  `yaml:"tickers"`
}

// Parser extracts picks from meeting Markdown files.
type Parser struct {
	classifier Classifier
}

// NewParser creates a parser. A nil classifier falls back to the keyword
// classifier.
func NewParser(classifier Classifier) *Parser {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &Parser{classifier: classifier}
}

// ParseDir parses every .md file in dir, in name order. Files without
// frontmatter are skipped.
func (p *Parser) ParseDir(dir string) ([]*Meeting, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read notes dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var meetings []*Meeting
	for _, name := range names {
		m, err := p.ParseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if m != nil {
			meetings = append(meetings, m)
		}
	}
	return meetings, nil
}

// ParseFile parses a single transcript. Returns (nil, nil) when the file
// has no usable frontmatter.
func (p *Parser) ParseFile(path string) (*Meeting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", path, err)
	}
	text := string(data)

	fm := extractFrontmatter(text)
	if fm == nil {
		return nil, nil
	}

	created := fm.Created
	if len(created) > len(domain.DateLayout) {
		created = created[:len(domain.DateLayout)]
	}
	date, err := domain.ParseDate(created)
	if err != nil {
		return nil, nil
	}

	tickersRaw := make([]string, 0, len(fm.Tickers))
	for _, t := range fm.Tickers {
		tickersRaw = append(tickersRaw, strings.TrimSpace(fmt.Sprint(t)))
	}

	picks := p.extractPicks(text, tickersRaw)
	for _, pick := range picks {
		pick.MeetingDate = date
	}

	return &Meeting{
		Date:       date,
		File:       filepath.Base(path),
		TickersRaw: tickersRaw,
		Picks:      picks,
	}, nil
}

func extractFrontmatter(text string) *frontmatter {
	m := frontmatterRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var fm frontmatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
		return nil
	}
	return &fm
}

// extractPicks walks the transcript body in three passes: dedicated
// $TICKER sections, Chinese company-name sections, and frontmatter
// tickers that never got a section of their own.
func (p *Parser) extractPicks(text string, tickersRaw []string) []*domain.Pick {
	var picks []*domain.Pick
	seen := make(map[string]bool)

	for _, m := range tickerSectionRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[2]:m[3]]
		section := sectionAt(text, m[0])
		sentiment, evidence := p.classifySection(section)

		sym := ticker.MeetingToProvider(raw)
		picks = append(picks, &domain.Pick{
			TickerRaw: raw,
			Ticker:    sym,
			Sentiment: sentiment,
			Evidence:  evidence,
		})
		seen[strings.ToUpper(raw)] = true
		seen[strings.ToUpper(sym)] = true
	}

	for _, name := range sortedChineseNames() {
		sym := ticker.ChineseNames[name]
		if seen[strings.ToUpper(sym)] {
			continue
		}
		for _, m := range chineseSectionRe.FindAllStringSubmatchIndex(text, -1) {
			title := strings.TrimSpace(text[m[2]:m[3]])
			if !strings.Contains(title, name) {
				continue
			}
			section := sectionAt(text, m[0])
			sentiment, evidence := p.classifySection(section)
			picks = append(picks, &domain.Pick{
				TickerRaw: title,
				Ticker:    sym,
				Sentiment: sentiment,
				Evidence:  evidence,
			})
			seen[strings.ToUpper(sym)] = true
			break
		}
	}

	meetingSummary := findMeetingSummary(text)

	for _, raw := range tickersRaw {
		sym := ticker.MeetingToProvider(raw)
		if seen[strings.ToUpper(raw)] || seen[strings.ToUpper(sym)] {
			continue
		}

		evidence := findSummaryTableEntry(text, raw)
		sentiment := domain.SentimentUnknown
		if evidence != "" {
			sentiment = p.classifier.Classify(evidence)
		}

		if sentiment == domain.SentimentUnknown && meetingSummary != "" {
			if s, ctx := p.summaryContextSentiment(meetingSummary, raw); s != domain.SentimentUnknown {
				sentiment = s
				if evidence == "" {
					evidence = ctx
				}
			}
		}

		picks = append(picks, &domain.Pick{
			TickerRaw: raw,
			Ticker:    sym,
			Sentiment: sentiment,
			Evidence:  truncateRunes(evidence, evidenceLimit),
		})
		seen[strings.ToUpper(raw)] = true
		seen[strings.ToUpper(sym)] = true
	}

	return picks
}

func sortedChineseNames() []string {
	names := make([]string, 0, len(ticker.ChineseNames))
	for n := range ticker.ChineseNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// sectionAt returns the text of the ## section starting at start,
// ending before the next ## header.
func sectionAt(text string, start int) string {
	rest := text[start:]
	if len(rest) > 5 {
		if loc := nextH2Re.FindStringIndex(rest[5:]); loc != nil {
			return rest[:5+loc[0]]
		}
	}
	return rest
}

// classifySection runs the classifier over the action hint, falling back
// to the core summary and then the whole section.
func (p *Parser) classifySection(section string) (domain.Sentiment, string) {
	action := subsectionText(section, actionHintRe)
	sentiment := p.classifier.Classify(action)
	evidence := action

	if sentiment == domain.SentimentUnknown {
		summary := subsectionText(section, coreSummaryRe)
		sentiment = p.classifier.Classify(summary)
		if sentiment != domain.SentimentUnknown && action == "" {
			evidence = summary
		}
	}

	if sentiment == domain.SentimentUnknown {
		sentiment = p.classifier.Classify(section)
		if sentiment != domain.SentimentUnknown && action == "" {
			evidence = section
		}
	}

	return sentiment, truncateRunes(evidence, evidenceLimit)
}

// subsectionText returns the text after a ### header until the next
// header, or "" when the header is absent.
func subsectionText(section string, headerRe *regexp.Regexp) string {
	m := headerRe.FindStringIndex(section)
	if m == nil {
		return ""
	}
	after := section[m[1]:]
	if loc := nextSectionRe.FindStringIndex(after); loc != nil {
		after = after[:loc[0]]
	} else {
		after = truncateRunes(after, 500)
	}
	return strings.TrimSpace(after)
}

func findMeetingSummary(text string) string {
	m := meetingSummaryRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// findSummaryTableEntry looks the ticker up in the one-line summary table
// at the bottom of the transcript and returns its verdict column.
func findSummaryTableEntry(text string, raw string) string {
	anchor := strings.Index(text, "一句话汇报摘要")
	if anchor < 0 {
		return ""
	}
	table := text[anchor:]

	for _, pattern := range []string{"\\$" + regexp.QuoteMeta(raw), regexp.QuoteMeta(raw)} {
		rowRe, err := regexp.Compile(`(?i)\|\s*[^|]*` + pattern + `[^|]*\|\s*([^|]+)\|`)
		if err != nil {
			continue
		}
		if m := rowRe.FindStringSubmatch(table); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// summaryContextSentiment searches the meeting summary for a ticker
// mention and classifies its surrounding context.
func (p *Parser) summaryContextSentiment(summary, raw string) (domain.Sentiment, string) {
	for _, pattern := range []string{"\\$" + regexp.QuoteMeta(raw), regexp.QuoteMeta(raw)} {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			continue
		}
		m := re.FindStringIndex(summary)
		if m == nil {
			continue
		}
		start := runeBoundaryBack(summary, m[0]-20)
		end := runeBoundaryForward(summary, m[1]+100)
		context := summary[start:end]
		if s := p.classifier.Classify(context); s != domain.SentimentUnknown {
			return s, context
		}
	}
	return domain.SentimentUnknown, ""
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func runeBoundaryBack(s string, i int) int {
	if i < 0 {
		return 0
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func runeBoundaryForward(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
