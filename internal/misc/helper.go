package misc

import (
	"net/url"
)

// SetQuery sets (replacing) query parameters on a URL.
// An unparsable URL is replaced by fallback.
func SetQuery(rawURL string, fallback string, params map[string]string) string {
	target, err := url.Parse(rawURL)
	if err != nil || rawURL == "" {
		target, _ = url.Parse(fallback)
	}
	query := target.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	target.RawQuery = query.Encode()
	return target.String()
}
