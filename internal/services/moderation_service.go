package services

import (
	"regexp"
	"strings"
	"time"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/models/dtos"
	"communa/tribune/internal/models/entities"
	"communa/tribune/internal/ratewindow"
)

var linkPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)([^\s/<>"']+)`)

// ModerationService gates messages before they reach the points
// engine: anti-spam over the shared spam window, banned-word scan,
// anti-link with a domain allow-list. Detectors run spam → words →
// link; first violation wins.
type ModerationService struct {
	spam    *ratewindow.Window
	metrics *metrics.MetricsRegistry
}

func NewModerationService(spam *ratewindow.Window, metricsReg *metrics.MetricsRegistry) *ModerationService {
	return &ModerationService{
		spam:    spam,
		metrics: metricsReg,
	}
}

// CheckMessage runs every enabled detector in order and returns the
// first violation, or the neutral result.
func (svc *ModerationService) CheckMessage(groupID, senderKey, text string, cfg *entities.GroupConfig) dtos.ViolationResult {
	if cfg == nil {
		return dtos.NoViolation
	}

	if res := svc.CheckAntiSpam(groupID, senderKey, cfg); res.Violation {
		return res
	}
	if res := svc.CheckBannedWords(text, cfg); res.Violation {
		return res
	}
	if res := svc.CheckAntiLink(text, cfg); res.Violation {
		return res
	}
	return dtos.NoViolation
}

// CheckAntiSpam records one event for the sender in the spam window and
// flags a violation when the configured threshold is exceeded. Window
// width and threshold come from the group config, falling back to the
// global defaults.
func (svc *ModerationService) CheckAntiSpam(groupID, senderKey string, cfg *entities.GroupConfig) dtos.ViolationResult {
	return svc.checkAntiSpamAt(groupID, senderKey, cfg, time.Now())
}

func (svc *ModerationService) checkAntiSpamAt(groupID, senderKey string, cfg *entities.GroupConfig, now time.Time) dtos.ViolationResult {
	if !cfg.AntiSpam.Enabled || senderKey == "" {
		return dtos.NoViolation
	}

	threshold := cfg.AntiSpam.Threshold
	if threshold <= 0 {
		threshold = constants.DefaultSpamThreshold
	}
	width := time.Duration(cfg.AntiSpam.WindowSeconds) * time.Second

	count := svc.spam.RecordIn(groupID+":"+senderKey, now, width)
	if count <= threshold {
		return dtos.NoViolation
	}

	svc.metrics.ViolationsTotal.WithLabelValues("spam").Inc()
	return dtos.ViolationResult{
		Violation: true,
		Type:      "spam",
		Action:    "warn",
		Detail:    "message rate exceeded",
	}
}

// CheckBannedWords does a case-insensitive substring scan against the
// group's configured word list.
func (svc *ModerationService) CheckBannedWords(text string, cfg *entities.GroupConfig) dtos.ViolationResult {
	if !cfg.Words.Enabled || text == "" || len(cfg.Words.Words) == 0 {
		return dtos.NoViolation
	}

	lowered := strings.ToLower(text)
	for _, word := range cfg.Words.Words {
		w := strings.ToLower(strings.TrimSpace(word))
		if w == "" {
			continue
		}
		if strings.Contains(lowered, w) {
			svc.metrics.ViolationsTotal.WithLabelValues("banned_word").Inc()
			return dtos.ViolationResult{
				Violation: true,
				Type:      "banned_word",
				Action:    "delete",
				Detail:    w,
			}
		}
	}
	return dtos.NoViolation
}

// CheckAntiLink flags URLs whose domain is not on the group's
// allow-list.
func (svc *ModerationService) CheckAntiLink(text string, cfg *entities.GroupConfig) dtos.ViolationResult {
	if !cfg.AntiLink.Enabled || text == "" {
		return dtos.NoViolation
	}

	for _, match := range linkPattern.FindAllStringSubmatch(text, -1) {
		domain := strings.ToLower(match[1])
		if !domainAllowed(domain, cfg.AntiLink.AllowedDomains) {
			svc.metrics.ViolationsTotal.WithLabelValues("link").Inc()
			return dtos.ViolationResult{
				Violation: true,
				Type:      "link",
				Action:    "delete",
				Detail:    domain,
			}
		}
	}
	return dtos.NoViolation
}

func domainAllowed(domain string, allowed []string) bool {
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if domain == a || strings.HasSuffix(domain, "."+a) {
			return true
		}
	}
	return false
}
