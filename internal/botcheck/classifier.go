// Package botcheck classifies inbound requests as automated or human driven.
//
// Classification is a layered defense alongside the rate limiter and the
// client's human-interaction attestation; none of the three is a security
// guarantee on its own. The classifier itself is pure: the audit trail is
// published by the caller, fire-and-forget, and never influences the result.
package botcheck

import "strings"

// Reason labels for a classification. Empty means no bot signal matched.
const (
	ReasonKnownCrawler     = "known_crawler"
	ReasonAutomationClient = "automation_client"
	ReasonHeadlessBrowser  = "headless_browser"
	ReasonMissingUserAgent = "missing_user_agent"
)

// Signal carries the request attributes the classifier looks at.
type Signal struct {
	UserAgent string
	Path      string
}

// Detection is the outcome of classifying one request. UserAgent is captured
// verbatim for the audit trail.
type Detection struct {
	ShouldBlock bool
	Reason      string
	UserAgent   string
}

// Search and social crawlers that identify themselves honestly.
var crawlerMarkers = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
	"yandexbot", "facebookexternalhit", "twitterbot", "linkedinbot",
	"whatsapp", "telegrambot", "discordbot", "slackbot", "pinterestbot",
	"applebot", "semrushbot", "ahrefsbot", "petalbot", "mj12bot",
	"bot/", "bot;", "crawler", "spider", "scrape",
}

// Non-browser HTTP client libraries.
var clientMarkers = []string{
	"curl/", "wget/", "python-requests", "python-urllib", "go-http-client",
	"okhttp", "axios/", "node-fetch", "libwww", "httpclient", "scrapy",
	"aiohttp", "guzzlehttp", "java/", "httpie",
}

var headlessMarkers = []string{
	"headlesschrome", "phantomjs", "puppeteer", "playwright", "selenium",
}

// API-only route prefixes. Classification is strictly more aggressive here
// than on page routes: a false positive on a page route breaks a real fan,
// a false positive on an API route only costs a blocked automation request.
var apiRoutePrefixes = []string{"/link/", "/api/"}

// Classify evaluates a request's signals and decides whether to block it.
// It never fails: ambiguous signals default to allow, and only clear,
// high-confidence signals on API-only routes block.
func Classify(sig Signal) Detection {
	detection := Detection{UserAgent: sig.UserAgent}

	ua := strings.ToLower(sig.UserAgent)
	onAPIRoute := isAPIRoute(sig.Path)

	switch {
	case matchesAny(ua, crawlerMarkers):
		detection.Reason = ReasonKnownCrawler
	case matchesAny(ua, headlessMarkers):
		detection.Reason = ReasonHeadlessBrowser
	case matchesAny(ua, clientMarkers):
		detection.Reason = ReasonAutomationClient
	case ua == "" && onAPIRoute:
		// Every real browser sends a user agent; an API call without one
		// is automation. On page routes an empty UA stays ambiguous.
		detection.Reason = ReasonMissingUserAgent
	}

	detection.ShouldBlock = onAPIRoute && detection.Reason != ""

	return detection
}

func isAPIRoute(path string) bool {
	for _, prefix := range apiRoutePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

func matchesAny(ua string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(ua, marker) {
			return true
		}
	}

	return false
}
