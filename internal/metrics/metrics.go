// Package metrics exposes Prometheus collectors for the article service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchTotal                 *prometheus.CounterVec
	fetchAttemptsTotal         *prometheus.CounterVec
	fetchAttemptsPerRequest    prometheus.Histogram
	fetchBytesTotal            *prometheus.CounterVec
	fetchBackoffSeconds        prometheus.Histogram
	extractRuleHitsTotal       *prometheus.CounterVec
	translateRequestsTotal     *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once

	sitesMu      sync.RWMutex
	trackedSites map[string]struct{}
)

// OtherSite labels fetches of hosts that are not tracked.
const OtherSite = "other"

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times. Observers are no-ops until
// Init has run.
func Init() {
	once.Do(func() {
		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referent_fetch_total",
				Help: "Total number of fetches, labeled by tracked site (or \"other\") and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referent_fetch_attempts_total",
				Help: "Total number of individual fetch attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchAttemptsPerRequest = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "referent_fetch_attempts_per_request",
				Help:    "Histogram of attempts spent per fetch.",
				Buckets: []float64{1, 2, 3, 4, 6, 8},
			},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referent_fetch_bytes_total",
				Help: "Total number of HTML bytes fetched, labeled by tracked site (or \"other\").",
			},
			[]string{"site"},
		)

		fetchBackoffSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "referent_fetch_backoff_seconds",
				Help:    "Histogram of backoff delays between fetch attempts.",
				Buckets: []float64{0.5, 1, 2, 4, 8, 16},
			},
		)

		extractRuleHitsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referent_extract_rule_hits_total",
				Help: "Total number of extractions resolved by each rule, labeled by field and rule.",
			},
			[]string{"field", "rule"},
		)

		translateRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referent_translate_requests_total",
				Help: "Total number of translation calls, labeled by status.",
			},
			[]string{"status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// SetTrackedSites replaces the hostnames that keep their own site label.
// Fetches of any other host are recorded under OtherSite, so label
// cardinality stays bounded by configuration rather than by callers.
func SetTrackedSites(sites []string) {
	tracked := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		if host := SanitizeSite(strings.TrimSpace(s)); host != "unknown" {
			tracked[host] = struct{}{}
		}
	}
	sitesMu.Lock()
	trackedSites = tracked
	sitesMu.Unlock()
}

// SiteLabel maps a URL to its site label: the sanitized hostname when it is
// tracked, OtherSite otherwise.
func SiteLabel(rawURL string) string {
	host := SanitizeSite(rawURL)
	sitesMu.RLock()
	_, ok := trackedSites[host]
	sitesMu.RUnlock()
	if !ok {
		return OtherSite
	}
	return host
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records the terminal outcome of one fetch.
func ObserveFetch(site string, outcome string, attempts int, bytesFetched int) {
	if fetchTotal == nil {
		return
	}
	label := SiteLabel(site)
	fetchTotal.WithLabelValues(label, outcome).Inc()
	fetchAttemptsPerRequest.Observe(float64(attempts))
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(label).Add(float64(bytesFetched))
	}
}

// ObserveFetchAttempt counts a single network attempt.
func ObserveFetchAttempt(outcome string) {
	if fetchAttemptsTotal == nil {
		return
	}
	fetchAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveBackoff records a delay inserted between attempts.
func ObserveBackoff(delay time.Duration) {
	if fetchBackoffSeconds == nil {
		return
	}
	fetchBackoffSeconds.Observe(delay.Seconds())
}

// ObserveRuleHit records which rule resolved a field ("none" when every rule missed).
func ObserveRuleHit(field, rule string) {
	if extractRuleHitsTotal == nil {
		return
	}
	extractRuleHitsTotal.WithLabelValues(field, rule).Inc()
}

// ObserveTranslate counts a translation call by status.
func ObserveTranslate(status string) {
	if translateRequestsTotal == nil {
		return
	}
	translateRequestsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
