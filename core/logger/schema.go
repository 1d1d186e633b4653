package logger

import "strings"

var allowedLevels = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
	"fatal":   "FATAL",
}

var allowedStatus = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"retry":        {},
	"rate_limited": {},
	"cancelled":    {},
	"rejected":     {},
}

var allowedOutcome = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"cancelled":    {},
	"rate_limited": {},
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases known statuses and passes unknown ones through untouched.
func normalizeStatus(status string) string {
	lowered := strings.ToLower(strings.TrimSpace(status))
	if _, ok := allowedStatus[lowered]; ok {
		return lowered
	}
	return status
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	_, ok := allowedOutcome[outcome]
	return outcome, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"outcome",
	"duration_ms",
	"messages",
	"step",
	"from",
	"to",
	"source",
	"hint",
	"doc_kind",
	"provider",
	"model",
	"chars",
	"prompt_chars",
	"history_chars",
	"reply_chars",
	"policy_number",
	"subject",
	"payload",
	"username",
	"lang",
	"mode",
	"version",
	"listen",
	"public_url",
	"url",
	"http_code",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"attempts",
	"rate_limited",
}
