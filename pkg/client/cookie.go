package client

import (
	"net/http"
	"strings"
)

// cookieSeparator delimits both cookie attributes and replayed cookies.
const cookieSeparator = "; "

// SessionCookie derives the Cookie header value to replay from the Set-Cookie
// entries of a response. Header name matching is case-insensitive.
func SessionCookie(h http.Header) string {
	return JoinCookies(h.Values("Set-Cookie"))
}

// JoinCookies keeps the leading name=value pair of each Set-Cookie value,
// dropping Path, Expires and flag attributes, and joins the pairs with "; "
// in their original order.
func JoinCookies(values []string) string {
	pairs := make([]string, 0, len(values))
	for _, v := range values {
		pair, _, _ := strings.Cut(v, cookieSeparator)
		pair = strings.TrimSpace(strings.TrimSuffix(pair, ";"))
		if pair == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return strings.Join(pairs, cookieSeparator)
}
