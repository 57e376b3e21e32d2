package notes

import (
	"os"
	"path/filepath"
	"testing"

	"meeting-pick-lab/internal/domain"
)

const sampleNote = `---
created: 2025-03-10
tickers:
  - NVDA
  - 0700.HK
  - SMCI
---

会议摘要: 本周聚焦半导体与中概，腾讯财报后继续观察。

## $NVDA（英伟达）

### 核心观点摘要

数据中心需求依然强劲。

### 潜在行动提示

回调后计划逢低买入，逐步加仓。

## 海尔智家（Haier Smart Home）

### 潜在行动提示

出口承压，估值偏高，考虑减仓。

## 一句话汇报摘要

| 标的 | 结论 |
| --- | --- |
| $SMCI | 泡沫明显，不建议追高 |
`

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "meeting 2025-03-10.md", sampleNote)

	p := NewParser(nil)
	m, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m == nil {
		t.Fatal("expected a meeting")
	}

	if m.Date != domain.Day(m.Date) || domain.DateKey(m.Date) != "2025-03-10" {
		t.Errorf("expected date 2025-03-10, got %s", domain.DateKey(m.Date))
	}
	if len(m.Picks) != 4 {
		t.Fatalf("expected 4 picks, got %d", len(m.Picks))
	}

	byTicker := make(map[string]*domain.Pick)
	for _, pick := range m.Picks {
		byTicker[pick.Ticker] = pick
		if !pick.MeetingDate.Equal(m.Date) {
			t.Errorf("pick %s missing meeting date", pick.Ticker)
		}
	}

	nvda := byTicker["NVDA"]
	if nvda == nil || nvda.Sentiment != domain.SentimentBullish {
		t.Errorf("expected NVDA Bullish, got %+v", nvda)
	}
	if nvda != nil && nvda.Evidence == "" {
		t.Error("expected NVDA evidence from action hint")
	}

	haier := byTicker["6690.HK"]
	if haier == nil || haier.Sentiment != domain.SentimentBearish {
		t.Errorf("expected 6690.HK Bearish, got %+v", haier)
	}

	// SMCI has no section; sentiment comes from the summary table row
	smci := byTicker["SMCI"]
	if smci == nil || smci.Sentiment != domain.SentimentBearish {
		t.Errorf("expected SMCI Bearish from summary table, got %+v", smci)
	}

	// 0700.HK is in frontmatter only and nothing mentions it directly
	tencent := byTicker["0700.HK"]
	if tencent == nil {
		t.Fatal("expected 0700.HK pick from frontmatter")
	}
}

func TestParseFile_NoFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "plain.md", "# Just a heading\n\nNo frontmatter here.\n")

	p := NewParser(nil)
	m, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil meeting, got %+v", m)
	}
}

func TestParseDir_SortsByName(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "b 2025-03-10.md", sampleNote)
	writeNote(t, dir, "a 2025-02-01.md", `---
created: 2025-02-01
tickers: [AAPL]
---

## $AAPL

### 潜在行动提示

继续观望。
`)

	p := NewParser(nil)
	meetings, err := p.ParseDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(meetings))
	}
	if domain.DateKey(meetings[0].Date) != "2025-02-01" {
		t.Errorf("expected first meeting 2025-02-01, got %s", domain.DateKey(meetings[0].Date))
	}
	if meetings[1].Picks[0].Ticker != "NVDA" {
		t.Errorf("unexpected first pick in second meeting: %s", meetings[1].Picks[0].Ticker)
	}
}
