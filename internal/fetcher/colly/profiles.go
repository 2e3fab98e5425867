package collyfetcher

import (
	"math/rand/v2"
	"net/http"
	"net/url"
)

// HeaderProfile is a simulated browser identity.
type HeaderProfile struct {
	Name      string
	UserAgent string
	// SecCHUA, Platform and Mobile are only sent by Chromium-based browsers.
	SecCHUA        string
	Platform       string
	Mobile         bool
	AcceptLanguage string
}

// DefaultSearchReferrer is used as the referrer on retry attempts.
const DefaultSearchReferrer = "https://www.google.com/"

const navigationAccept = "text/html,application/xhtml+xml,application/xml;q=0.9," +
	"image/avif,image/webp,image/apng,*/*;q=0.8"

// defaultProfiles is read-only after init.
var defaultProfiles = []HeaderProfile{
	{
		Name: "chrome-windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		SecCHUA:        `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		Platform:       `"Windows"`,
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		Name: "chrome-macos",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		SecCHUA:        `"Chromium";v="130", "Google Chrome";v="130", "Not?A_Brand";v="99"`,
		Platform:       `"macOS"`,
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		Name: "edge-windows",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
		SecCHUA:        `"Microsoft Edge";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		Platform:       `"Windows"`,
		AcceptLanguage: "en-US,en;q=0.9,ru;q=0.8",
	},
	{
		Name:           "firefox-linux",
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
		AcceptLanguage: "en-US,en;q=0.5",
	},
	{
		Name:           "firefox-windows",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
		AcceptLanguage: "en-GB,en;q=0.7,en-US;q=0.3",
	},
	{
		Name: "safari-macos",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 " +
			"(KHTML, like Gecko) Version/18.1 Safari/605.1.15",
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		Name: "chrome-android",
		UserAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36",
		SecCHUA:        `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		Platform:       `"Android"`,
		Mobile:         true,
		AcceptLanguage: "en-US,en;q=0.9",
	},
}

// Profiles returns a copy of the built-in profile pool.
func Profiles() []HeaderProfile {
	out := make([]HeaderProfile, len(defaultProfiles))
	copy(out, defaultProfiles)
	return out
}

// PickProfile draws a profile from pool using rng.
func PickProfile(rng *rand.Rand, pool []HeaderProfile) HeaderProfile {
	if len(pool) == 0 {
		pool = defaultProfiles
	}
	return pool[rng.IntN(len(pool))]
}

// Headers builds the navigation header set for one attempt. The first attempt
// looks like direct navigation to target; later attempts arrive from a search
// engine as a cross-site navigation.
func Headers(profile HeaderProfile, attempt int, target *url.URL, searchReferrer string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", profile.UserAgent)
	h.Set("Accept", navigationAccept)
	lang := profile.AcceptLanguage
	if lang == "" {
		lang = "en-US,en;q=0.9"
	}
	h.Set("Accept-Language", lang)
	// colly only decodes gzip bodies.
	h.Set("Accept-Encoding", "gzip")
	h.Set("DNT", "1")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Cache-Control", "max-age=0")
	if profile.SecCHUA != "" {
		h.Set("Sec-CH-UA", profile.SecCHUA)
		h.Set("Sec-CH-UA-Platform", profile.Platform)
		if profile.Mobile {
			h.Set("Sec-CH-UA-Mobile", "?1")
		} else {
			h.Set("Sec-CH-UA-Mobile", "?0")
		}
	}

	if attempt == 0 {
		origin := originOf(target)
		h.Set("Sec-Fetch-Site", "none")
		h.Set("Referer", origin)
		h.Set("Origin", origin)
		return h
	}
	if searchReferrer == "" {
		searchReferrer = DefaultSearchReferrer
	}
	h.Set("Sec-Fetch-Site", "cross-site")
	h.Set("Referer", searchReferrer)
	if ref, err := url.Parse(searchReferrer); err == nil {
		h.Set("Origin", originOf(ref))
	}
	return h
}

func originOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}
