package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/article"
	"github.com/JakeFAU/referent/internal/extractor"
	"github.com/JakeFAU/referent/internal/pipeline"
	"github.com/JakeFAU/referent/internal/translate"
)

const maxBodyBytes = 1 << 20

type parseRequest struct {
	URL string `json:"url"`
}

// ArticleResponse is the JSON body of a successful parse.
type ArticleResponse struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	Content      string `json:"content"`
	PublishedISO string `json:"published_iso,omitempty"`
	URL          string `json:"url"`
	FinalURL     string `json:"final_url,omitempty"`
	Attempts     int    `json:"attempts"`
}

// NewArticleResponse renders a pipeline result, adding the normalized
// publication date when the raw date string can be parsed.
func NewArticleResponse(res pipeline.Result) ArticleResponse {
	out := ArticleResponse{
		Title:    res.Article.Title,
		Date:     res.Article.PublishedAt,
		Content:  res.Article.Body,
		URL:      res.URL,
		FinalURL: res.FinalURL,
		Attempts: res.Attempts,
	}
	if ts, ok := extractor.ParsePublished(res.Article.PublishedAt); ok {
		out.PublishedISO = ts.Format(time.RFC3339)
	}
	return out
}

type errorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Attempts   int    `json:"attempts,omitempty"`
}

type translateRequest struct {
	Content string `json:"content"`
}

type translateResponse struct {
	Translation string `json:"translation"`
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, "URL is required")
		return
	}
	target, err := article.NewRequest(req.URL)
	if err != nil {
		if errors.Is(err, article.ErrUnsupportedScheme) {
			s.writeError(w, http.StatusBadRequest, "Only HTTP and HTTPS URLs are supported")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid URL format")
		return
	}

	res, err := s.retriever.Retrieve(r.Context(), target)
	if err != nil {
		status, body := fetchErrorResponse(err)
		s.logger.Warn("parse failed",
			zap.String("url", target.String()),
			zap.String("kind", body.Kind),
			zap.Int("status", status),
			zap.String("request_id", RequestID(r.Context())),
		)
		s.writeJSON(w, status, body)
		return
	}
	s.writeJSON(w, http.StatusOK, NewArticleResponse(res))
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	if s.translator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "translation is not configured")
		return
	}
	var req translateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	out, err := s.translator.Translate(r.Context(), req.Content)
	switch {
	case errors.Is(err, translate.ErrEmptyContent):
		s.writeError(w, http.StatusBadRequest, "Content is required")
	case err != nil:
		s.logger.Warn("translate failed",
			zap.Error(err),
			zap.String("request_id", RequestID(r.Context())),
		)
		s.writeError(w, http.StatusBadGateway, "translation failed")
	default:
		s.writeJSON(w, http.StatusOK, translateResponse{Translation: out})
	}
}

// fetchErrorResponse maps a retrieval failure to an HTTP status and body.
func fetchErrorResponse(err error) (int, errorResponse) {
	var fe *article.FetchError
	if !errors.As(err, &fe) {
		return http.StatusInternalServerError, errorResponse{Error: "failed to retrieve article"}
	}
	body := errorResponse{
		Kind:       string(fe.Kind),
		StatusCode: fe.StatusCode,
		Attempts:   fe.Attempts,
	}
	var status int
	switch fe.Kind {
	case article.KindForbidden:
		status = http.StatusForbidden
		body.Error = "Access denied (403). The site may be blocking automated requests."
	case article.KindNotFound:
		status = http.StatusNotFound
		body.Error = "Page not found (404)"
	case article.KindRateLimited:
		status = http.StatusTooManyRequests
		body.Error = "Rate limited by the site (429)"
	case article.KindHTTPError:
		status = http.StatusBadGateway
		body.Error = fmt.Sprintf("Upstream responded with status %d", fe.StatusCode)
	case article.KindTimeout:
		status = http.StatusGatewayTimeout
		body.Error = "Timed out waiting for the site to respond"
	case article.KindUnreachable:
		status = http.StatusServiceUnavailable
		body.Error = "Could not connect to the site. Check the URL and that the site is reachable."
	case article.KindEmptyBody:
		status = http.StatusBadGateway
		body.Error = "Received an empty page"
	case article.KindCanceled:
		status = http.StatusServiceUnavailable
		body.Error = "Request canceled before the page could be fetched"
	default:
		status = http.StatusInternalServerError
		body.Error = "failed to retrieve article"
	}
	return status, body
}
