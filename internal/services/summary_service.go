package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/journai/internal/cache"
	"github.com/yoockh/journai/internal/metrics"
	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/providers/llm"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

const (
	SummaryMaxItems = 3

	EmptySummaryMessage    = "No journal entries this week yet."
	DegradedSummaryMessage = "We couldn't generate a summary right now. Please try again later."
)

// FormatEntries renders entries as "date: content" lines in the given order.
// Blank entries are skipped.
func FormatEntries(entries []models.JournalEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		content := strings.TrimSpace(e.Content)
		if content == "" {
			continue
		}
		lines = append(lines, e.Date+": "+content)
	}
	return strings.Join(lines, "\n")
}

type rawSummary struct {
	Noticed []string `json:"noticed"`
	Focus   []string `json:"focus"`
}

// ParseSummary strictly decodes completion output into a summary. Both
// arrays must be present. A surrounding markdown code fence is tolerated.
func ParseSummary(raw string) (models.WeeklySummary, error) {
	var r rawSummary
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &r); err != nil {
		return models.WeeklySummary{}, errors.Join(utils.ErrMalformedSummary, err)
	}
	if r.Noticed == nil || r.Focus == nil {
		return models.WeeklySummary{}, utils.ErrMalformedSummary
	}
	return models.WeeklySummary{
		Noticed: capItems(r.Noticed, SummaryMaxItems),
		Focus:   capItems(r.Focus, SummaryMaxItems),
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func capItems(items []string, max int) []string {
	out := make([]string, 0, max)
	for _, it := range items {
		if it = strings.TrimSpace(it); it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == max {
			break
		}
	}
	return out
}

func emptySummary(msg string) models.WeeklySummary {
	return models.WeeklySummary{Noticed: []string{}, Focus: []string{}, Message: msg}
}

type SummaryService interface {
	// Summarize never fails; empty input and exhausted attempts both yield
	// empty lists with an explanatory message.
	Summarize(ctx context.Context, entries []models.JournalEntry) models.WeeklySummary
	// WeeklySummary summarizes the week's journal, served from cache when possible.
	WeeklySummary(ctx context.Context, uid, weekID string) (models.WeeklySummary, error)
	Invalidate(ctx context.Context, uid, weekID string)
}

type summaryService struct {
	conv    ConversationService
	journal repositories.JournalRepository
	cache   cache.Cache
	ttl     time.Duration
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewSummaryService accepts a nil cache.
func NewSummaryService(conv ConversationService, journal repositories.JournalRepository, c cache.Cache, ttl time.Duration, log logrus.FieldLogger, m *metrics.Metrics) SummaryService {
	return &summaryService{conv: conv, journal: journal, cache: c, ttl: ttl, log: log, metrics: m}
}

func summaryCacheKey(uid, weekID string) string {
	return "summary:" + uid + ":" + weekID
}

func (s *summaryService) Summarize(ctx context.Context, entries []models.JournalEntry) models.WeeklySummary {
	block := FormatEntries(entries)
	if block == "" {
		s.metrics.Summary("empty")
		return emptySummary(EmptySummaryMessage)
	}

	out, err := s.conv.Complete(ctx, "summary", llm.SummaryPrompt(block, SummaryMaxItems), func(text string) bool {
		_, perr := ParseSummary(text)
		return perr == nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"entries": len(entries), "error": err}).Warn("weekly summary degraded")
		s.metrics.Summary("degraded")
		return emptySummary(DegradedSummaryMessage)
	}

	summary, err := ParseSummary(out)
	if err != nil {
		// unreachable: accept already parsed this output
		s.metrics.Summary("degraded")
		return emptySummary(DegradedSummaryMessage)
	}
	s.metrics.Summary("generated")
	return summary
}

func (s *summaryService) WeeklySummary(ctx context.Context, uid, weekID string) (models.WeeklySummary, error) {
	const op = "SummaryService.WeeklySummary"

	if uid == "" || weekID == "" {
		return models.WeeklySummary{}, utils.E(utils.CodeInvalidArgument, op, "uid and weekId are required", nil)
	}
	from, to, err := utils.WeekDates(weekID)
	if err != nil {
		return models.WeeklySummary{}, utils.E(utils.CodeInvalidArgument, op, "weekId must be YYYY-Www", err)
	}

	key := summaryCacheKey(uid, weekID)
	log := s.log.WithFields(logrus.Fields{"uid": uid, "week_id": weekID})

	entries, err := s.journal.ListJournalEntries(ctx, uid, from, to)
	if err != nil {
		log.WithError(err).Error("summary: journal read failed")
		s.metrics.Summary("degraded")
		return emptySummary(DegradedSummaryMessage), nil
	}
	fp := entriesFingerprint(entries)

	if s.cache != nil {
		var cached cachedSummary
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			log.WithError(err).Warn("summary cache read failed")
		case hit && cached.Fingerprint == fp:
			s.metrics.Summary("cached")
			return cached.Summary, nil
		}
	}

	summary := s.Summarize(ctx, entries)
	if s.cache != nil && summary.Message == "" {
		if err := s.cache.SetJSON(ctx, key, cachedSummary{Fingerprint: fp, Summary: summary}, s.ttl); err != nil {
			log.WithError(err).Warn("summary cache write failed")
		}
	}
	return summary, nil
}

// cachedSummary is only valid for the entries it was generated from. A write
// that lands after a concurrent save leaves a stale fingerprint behind.
type cachedSummary struct {
	Fingerprint string               `json:"fingerprint"`
	Summary     models.WeeklySummary `json:"summary"`
}

func entriesFingerprint(entries []models.JournalEntry) string {
	sum := sha256.Sum256([]byte(FormatEntries(entries)))
	return hex.EncodeToString(sum[:])
}

func (s *summaryService) Invalidate(ctx context.Context, uid, weekID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey(uid, weekID)); err != nil {
		s.log.WithFields(logrus.Fields{"uid": uid, "week_id": weekID, "error": err}).Warn("summary cache invalidation failed")
	}
}
