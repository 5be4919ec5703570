package detector

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

func newScorer() *SentimentScorer {
	cfg := config.Default().News
	return NewSentimentScorer(cfg.BullishKeywords, cfg.BearishKeywords)
}

func TestScore(t *testing.T) {
	s := newScorer()
	tests := []struct {
		title     string
		summary   string
		score     int
		sentiment model.Sentiment
		keywords  []string
	}{
		{"Company announces acquisition and FDA approval", "", 2, model.SentimentBullish, []string{"acquisition", "fda approval"}},
		{"Company faces lawsuit and SEC probe", "", -2, model.SentimentBearish, []string{"lawsuit", "sec probe"}},
		{"Analyst upgrade", "Shares slip on lawsuit", 0, model.SentimentNeutral, []string{"upgrade", "lawsuit"}},
		{"Quarterly update posted", "", 0, model.SentimentNeutral, nil},
	}
	for _, tt := range tests {
		got := s.Score(tt.title, tt.summary)
		if got.Score != tt.score || got.Sentiment != tt.sentiment {
			t.Errorf("%q: expected %d/%s, got %d/%s", tt.title, tt.score, tt.sentiment, got.Score, got.Sentiment)
		}
		assert.Equal(t, tt.keywords, got.Keywords, tt.title)
	}

	// scoring is pure
	first := s.Score("Record revenue beat", "")
	second := s.Score("Record revenue beat", "")
	assert.Equal(t, first, second)
}

func TestScorer_CopiesKeywordLists(t *testing.T) {
	bull := []string{"Moon"}
	s := NewSentimentScorer(bull, nil)
	bull[0] = "crash"
	assert.Equal(t, 1, s.Score("to the MOON", "").Score)
}

func TestNewsDetector_WindowAndCap(t *testing.T) {
	d := NewNewsDetector(config.Default().News)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	articles := []model.Article{
		{Headline: "Old merger talk", PublishedAt: now.Add(-30 * time.Hour)},
		{Headline: "Undated merger talk"},
		{Headline: "Quarterly update posted", PublishedAt: now.Add(-time.Hour)},
	}
	for i := 0; i < 6; i++ {
		articles = append(articles, model.Article{
			Headline:    fmt.Sprintf("Partnership number %d", i),
			PublishedAt: now.Add(-time.Duration(i+2) * time.Hour),
			Source:      "wire",
		})
	}

	got := d.Detect("NVDA", articles, now)
	// the five newest in-window items are the neutral update and partnerships 0..3
	require.Len(t, got, 4)
	for i, n := range got {
		assert.Equal(t, fmt.Sprintf("Partnership number %d", i), n.Headline)
		assert.Equal(t, "NVDA", n.Symbol)
		assert.Equal(t, 1, n.Score)
		assert.Equal(t, []string{"partnership"}, n.Keywords)
	}

	from, to := d.Window(now)
	assert.Equal(t, now.Add(-24*time.Hour), from)
	assert.Equal(t, now, to)
}

func TestNewsDetector_DefaultSource(t *testing.T) {
	d := NewNewsDetector(config.Default().News)
	now := time.Now()
	got := d.Detect("X", []model.Article{{Headline: "Sell rating reiterated", PublishedAt: now}}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].Source)
	assert.Equal(t, model.SentimentBearish, got[0].Sentiment)
}

func TestRankNews(t *testing.T) {
	items := []model.NewsSignal{
		{Headline: "a", Score: 1},
		{Headline: "b", Score: -3},
		{Headline: "c", Score: 2},
		{Headline: "d", Score: -1},
	}
	RankNews(items)
	got := []string{items[0].Headline, items[1].Headline, items[2].Headline, items[3].Headline}
	assert.Equal(t, []string{"b", "c", "a", "d"}, got)
}
