package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/locale"
	"github.com/tartampluch/go-timeline/internal/timeline"
)

// failure is the body returned when a conversion is refused.
type failure struct {
	Error    string             `json:"error"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Fallback *timeline.Document `json:"fallback,omitempty"`
}

// handleConvert converts the request body and returns the document JSON.
func (s *TimelineServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	tr := locale.New(s.language(r))

	if s.converter == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	delim, err := config.DelimiterRune(r.URL.Query().Get(config.QueryDelimiter))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxConvertBodySize)
	res, err := s.converter.Convert(r.Context(), r.Body, delim)
	if err != nil {
		status := statusFor(err)
		slog.Warn(config.MsgConvertFailed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, middleware.GetReqID(r.Context()),
			config.LogKeyStatus, status,
			config.LogKeyError, err,
		)

		body := failure{
			Error:   err.Error(),
			Code:    locale.ErrorCode(err),
			Message: tr.ErrorMessage(err),
		}
		if r.URL.Query().Get(config.QueryFallback) == config.FallbackExample {
			body.Fallback = timeline.ExampleDocument()
		}
		writeJSON(w, status, body)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNoStore)
	if _, err := w.Write(res.JSON); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleExample serves the fixed demo document.
func (s *TimelineServer) handleExample(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, timeline.ExampleDocument())
}

// language picks the message language from the query, then Accept-Language.
func (s *TimelineServer) language(r *http.Request) string {
	if lang := r.URL.Query().Get(config.QueryLang); lang != "" {
		return locale.Match(lang)
	}
	if accept := r.Header.Get(config.HeaderAcceptLanguage); accept != "" {
		return locale.Match(accept)
	}
	return s.DefaultLanguage
}

// statusFor maps a conversion failure to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch locale.ErrorCode(err) {
	case config.ErrCodeNoData, config.ErrCodeNoValidEvents,
		config.ErrCodeNoCandidateRows, config.ErrCodeNoSurvivingEvents:
		return http.StatusUnprocessableEntity
	case config.ErrCodeSource:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrJSONEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
