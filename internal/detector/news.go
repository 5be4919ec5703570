package detector

import (
	"math"
	"sort"
	"strings"
	"time"

	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

// SentimentScore is the keyword verdict on one article.
type SentimentScore struct {
	Score     int
	Sentiment model.Sentiment
	Keywords  []string
}

// SentimentScorer matches lower-cased keyword lists by substring containment.
type SentimentScorer struct {
	bullish []string
	bearish []string
}

// NewSentimentScorer copies and lower-cases both lists; later edits to the inputs have no effect.
func NewSentimentScorer(bullish, bearish []string) *SentimentScorer {
	return &SentimentScorer{bullish: lowerAll(bullish), bearish: lowerAll(bearish)}
}

// Score counts bullish minus bearish hits over title and summary.
func (s *SentimentScorer) Score(title, summary string) SentimentScore {
	text := strings.ToLower(title + " " + summary)
	var bull, bear []string
	for _, kw := range s.bullish {
		if strings.Contains(text, kw) {
			bull = append(bull, kw)
		}
	}
	for _, kw := range s.bearish {
		if strings.Contains(text, kw) {
			bear = append(bear, kw)
		}
	}

	score := len(bull) - len(bear)
	switch {
	case score > 0:
		return SentimentScore{Score: score, Sentiment: model.SentimentBullish, Keywords: bull}
	case score < 0:
		return SentimentScore{Score: score, Sentiment: model.SentimentBearish, Keywords: bear}
	default:
		return SentimentScore{Sentiment: model.SentimentNeutral, Keywords: append(bull, bear...)}
	}
}

// NewsDetector windows, caps and scores the articles of one ticker.
type NewsDetector struct {
	scorer   *SentimentScorer
	lookback time.Duration
	perTick  int
}

func NewNewsDetector(cfg config.NewsConfig) *NewsDetector {
	return &NewsDetector{
		scorer:   NewSentimentScorer(cfg.BullishKeywords, cfg.BearishKeywords),
		lookback: time.Duration(cfg.LookbackHours) * time.Hour,
		perTick:  cfg.MaxPerTicker,
	}
}

// Window returns the [from, now] publish range the detector accepts.
func (d *NewsDetector) Window(now time.Time) (time.Time, time.Time) {
	return now.Add(-d.lookback), now
}

// Detect keeps the newest in-window articles, at most MaxPerTicker, whose score is non-zero.
// Articles without a publish time are dropped.
func (d *NewsDetector) Detect(symbol string, articles []model.Article, now time.Time) []model.NewsSignal {
	cutoff := now.Add(-d.lookback)
	recent := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if a.PublishedAt.IsZero() || a.PublishedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, a)
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].PublishedAt.After(recent[j].PublishedAt)
	})
	if len(recent) > d.perTick {
		recent = recent[:d.perTick]
	}

	var out []model.NewsSignal
	for _, a := range recent {
		s := d.scorer.Score(a.Headline, a.Summary)
		if s.Score == 0 {
			continue
		}
		source := a.Source
		if source == "" {
			source = "Unknown"
		}
		out = append(out, model.NewsSignal{
			Symbol:      symbol,
			Headline:    a.Headline,
			Summary:     a.Summary,
			PublishedAt: a.PublishedAt,
			Source:      source,
			URL:         a.URL,
			Score:       s.Score,
			Sentiment:   s.Sentiment,
			Keywords:    s.Keywords,
		})
	}
	return out
}

// RankNews orders items by absolute score, strongest first.
func RankNews(items []model.NewsSignal) {
	sort.SliceStable(items, func(i, j int) bool {
		return math.Abs(float64(items[i].Score)) > math.Abs(float64(items[j].Score))
	})
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
