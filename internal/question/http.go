package question

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	httperrors "github.com/Yo1k/qaws/pkg/http/errors"
)

const defaultFetchTimeout = 10 * time.Second

// fetchRequest is the inbound payload. QuestionsNum is a pointer so an
// absent field is distinguishable from an explicit zero.
type fetchRequest struct {
	QuestionsNum *int `json:"questions_num"`
}

type questionPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HTTPHandler exposes the question fetch endpoint.
type HTTPHandler struct {
	service *Service
	timeout time.Duration
	logger  zerolog.Logger
}

func NewHTTPHandler(service *Service, timeout time.Duration, logger zerolog.Logger) *HTTPHandler {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPHandler{
		service: service,
		timeout: timeout,
		logger:  logger.With().Str("component", "question_http").Logger(),
	}
}

// HandleFetch handles POST /v1/questions. The response is an ordered array
// of {question, answer} objects, except that zero accumulated questions
// serialize as an empty object, not an empty array; clients depend on that
// distinction.
func (h *HTTPHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuestionsNum == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "questions_num is required", "questions_num")
		return
	}
	if *req.QuestionsNum < 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "questions_num must be a non-negative integer", "questions_num")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	questions, err := h.service.FetchDistinct(ctx, *req.QuestionsNum)
	if err != nil {
		h.logger.Error().Err(err).Int("questions_num", *req.QuestionsNum).Msg("question fetch failed")
		switch {
		case errors.Is(err, ErrStoreUnavailable):
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeStoreUnavailable, "Question storage is unavailable")
		case errors.Is(err, ErrFetchFailed):
			httperrors.RespondBadGateway(w, httperrors.ErrCodeFetchFailed, "Question source did not yield any questions")
		default:
			httperrors.RespondInternalError(w, "Could not fetch questions")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if len(questions) == 0 {
		w.Write([]byte("{}\n"))
		return
	}

	payload := make([]questionPayload, len(questions))
	for i, q := range questions {
		payload[i] = questionPayload{Question: q.Text, Answer: q.Answer}
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("response encode failed")
	}
}
