package settings

import (
	"strings"
	"unicode"
)

// Canonical setting keys. All keys in the settings table are lowercase
// snake_case; legacy camelCase and UPPER_SNAKE spellings are folded into
// these by Canonicalize and by the schema migration.
const (
	KeyActiveProvider      = "active_provider"
	KeyGenerationEnabled   = "generation_enabled"
	KeyGenerationFrequency = "generation_frequency"
	KeyGenerationHour      = "generation_hour"
	KeyGenerationMinute    = "generation_minute"
	KeyLastRunAt           = "last_run_at"
	KeyLastKeyword         = "last_keyword"
	KeyLastError           = "last_error"
	KeySiteBaseURL         = "site_base_url"
)

// ProviderConfigKey returns the settings key a provider's config is stored
// under, e.g. "provider_sendgrid_config".
func ProviderConfigKey(provider string) string {
	return "provider_" + provider + "_config"
}

// Canonicalize folds any legacy key spelling into lowercase snake_case:
// "activeProvider" and "ACTIVE_PROVIDER" both become "active_provider".
// Spaces and hyphens are treated as word separators.
func Canonicalize(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(key) + 4)

	prevLower := false
	for _, r := range key {
		switch {
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			prevLower = false
		case unicode.IsUpper(r):
			// camelCase boundary: previous rune was lowercase
			if prevLower && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}

	return strings.Trim(b.String(), "_")
}

// IsSecretKey reports whether a setting holds sensitive material that must
// never be returned verbatim by the admin API.
func IsSecretKey(key string) bool {
	key = Canonicalize(key)
	return strings.HasPrefix(key, "provider_") && strings.HasSuffix(key, "_config") ||
		strings.HasSuffix(key, "_api_key") ||
		strings.HasSuffix(key, "_secret")
}
