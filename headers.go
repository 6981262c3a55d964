package web2pdf

import "strings"

// Default request headers applied to every conversion. User-supplied
// headers with the same name (case-insensitive) take precedence; the
// defaults only fill in missing keys.
const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en"
)

// ParseHeader parses a "Name: Value" header entry.
func ParseHeader(entry string) (name, value string, err error) {
	name, value, ok := strings.Cut(entry, ":")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" {
		return "", "", &MalformedHeaderError{Entry: entry}
	}
	return name, value, nil
}

// mergeDefaultHeaders returns extra merged with the default User-Agent
// and Accept-Language pair. Extra headers win on case-insensitive name
// collisions.
func mergeDefaultHeaders(extra map[string]string) map[string]string {
	merged := map[string]string{
		"User-Agent":      DefaultUserAgent,
		"Accept-Language": DefaultAcceptLanguage,
	}
	for name, value := range extra {
		for existing := range merged {
			if strings.EqualFold(existing, name) {
				delete(merged, existing)
				break
			}
		}
		merged[name] = value
	}
	return merged
}

// splitAgentHeaders separates the User-Agent and Accept-Language values,
// which the converter applies through user-agent emulation, from the
// headers it injects into requests directly.
func splitAgentHeaders(headers map[string]string) (userAgent, acceptLanguage string, rest map[string]string) {
	rest = make(map[string]string)
	for name, value := range headers {
		switch {
		case strings.EqualFold(name, "User-Agent"):
			userAgent = value
		case strings.EqualFold(name, "Accept-Language"):
			acceptLanguage = value
		default:
			rest[name] = value
		}
	}
	return userAgent, acceptLanguage, rest
}
