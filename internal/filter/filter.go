// Package filter suppresses results that hit the video or channel
// block-lists, contain a configured stop phrase, or whose title language is
// disallowed. It is applied at read time on both cache hits and fresh
// fetches, so block-list changes take effect without cache invalidation.
package filter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"
)

// Directories exposes the externally-owned block-list and stop-phrase
// collections the filter reads. The gateway never mutates them.
type Directories interface {
	VideoBlacklist(ctx context.Context) ([]string, error)
	VideoInBlacklist(ctx context.Context, videoID string) (bool, error)
	ChannelBlacklist(ctx context.Context) ([]string, error)
	ChannelInBlacklist(ctx context.Context, channelID string) (bool, error)
	StopPhrases(ctx context.Context) ([]string, error)
}

// Record carries the fields the filter inspects.
type Record struct {
	VideoID      string
	ChannelID    string
	Title        string
	ChannelTitle string
}

// Filterable is implemented by shaped records that can be screened.
type Filterable interface {
	FilterRecord() Record
}

// Filter evaluates suppression rules against the directories.
type Filter struct {
	dirs        Directories
	blockedLang string
	logger      *slog.Logger
}

// New creates a filter. blockedLang is an ISO 639-1 code; titles detected in
// that language are suppressed.
func New(dirs Directories, blockedLang string, logger *slog.Logger) *Filter {
	return &Filter{
		dirs:        dirs,
		blockedLang: strings.ToLower(blockedLang),
		logger:      logger.With("component", "filter"),
	}
}

// ruleSet is one materialized snapshot of the directories, loaded once per
// filter pass.
type ruleSet struct {
	videoBlacklist   map[string]bool
	channelBlacklist map[string]bool
	stopPhrases      []string
}

func (f *Filter) loadRules(ctx context.Context) (*ruleSet, error) {
	videoIDs, err := f.dirs.VideoBlacklist(ctx)
	if err != nil {
		return nil, err
	}
	channelIDs, err := f.dirs.ChannelBlacklist(ctx)
	if err != nil {
		return nil, err
	}
	phrases, err := f.dirs.StopPhrases(ctx)
	if err != nil {
		return nil, err
	}

	rules := &ruleSet{
		videoBlacklist:   make(map[string]bool, len(videoIDs)),
		channelBlacklist: make(map[string]bool, len(channelIDs)),
		stopPhrases:      phrases,
	}
	for _, id := range videoIDs {
		rules.videoBlacklist[id] = true
	}
	for _, id := range channelIDs {
		rules.channelBlacklist[id] = true
	}
	return rules, nil
}

func (f *Filter) allowed(rec Record, rules *ruleSet) bool {
	if rules.videoBlacklist[rec.VideoID] {
		return false
	}
	if rules.channelBlacklist[rec.ChannelID] {
		return false
	}
	if phraseInList(rules.stopPhrases, rec.Title) || phraseInList(rules.stopPhrases, rec.ChannelTitle) {
		return false
	}
	if f.isBlockedLanguage(rec.Title) || f.isBlockedLanguage(rec.ChannelTitle) {
		return false
	}
	return true
}

// IsAllowed reports whether a single record survives every suppression rule.
func (f *Filter) IsAllowed(ctx context.Context, rec Record) (bool, error) {
	rules, err := f.loadRules(ctx)
	if err != nil {
		return false, err
	}
	return f.allowed(rec, rules), nil
}

// VideoBlocked is the single-ID preflight for routes that would otherwise
// spend quota deriving a block-listed video.
func (f *Filter) VideoBlocked(ctx context.Context, videoID string) (bool, error) {
	return f.dirs.VideoInBlacklist(ctx, videoID)
}

// ChannelBlocked is the channel counterpart of VideoBlocked.
func (f *Filter) ChannelBlocked(ctx context.Context, channelID string) (bool, error) {
	return f.dirs.ChannelInBlacklist(ctx, channelID)
}

// AllowQuery pre-screens a search query before any upstream quota is spent.
// A query containing a stop phrase or written in the blocked language is
// rejected outright.
func (f *Filter) AllowQuery(ctx context.Context, text string) (bool, error) {
	phrases, err := f.dirs.StopPhrases(ctx)
	if err != nil {
		return false, err
	}
	if phraseInList(phrases, text) {
		return false, nil
	}
	return !f.isBlockedLanguage(text), nil
}

// isBlockedLanguage detects the text's language and compares it with the
// blocked code. Unreliable detections pass; short titles are noisy enough
// that a guess is worse than letting the other rules decide.
func (f *Filter) isBlockedLanguage(text string) bool {
	if f.blockedLang == "" || text == "" {
		return false
	}
	info := whatlanggo.Detect(text)
	return info.IsReliable() && info.Lang.Iso6391() == f.blockedLang
}

// phraseInList reports whether text contains any of the phrases,
// case-insensitively.
func phraseInList(phrases []string, text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Keep filters a collection down to the records that survive every rule,
// loading the directories once for the whole pass. It must run on cache hits
// and on freshly-fetched data alike.
func Keep[T Filterable](ctx context.Context, f *Filter, items []T) ([]T, error) {
	rules, err := f.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]T, 0, len(items))
	for _, item := range items {
		if f.allowed(item.FilterRecord(), rules) {
			kept = append(kept, item)
		}
	}
	return kept, nil
}
