package qa

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/redmonkez12/vision-api/internal/detection"
	"github.com/redmonkez12/vision-api/internal/httputil"
	"github.com/redmonkez12/vision-api/internal/logging"
)

// Handler serves the question answering endpoint
type Handler struct {
	answerer Answerer
}

func NewHandler(answerer Answerer) *Handler {
	return &Handler{answerer: answerer}
}

// AskRequest is a question about previously returned detections.
// Detections must be present but may be an empty list.
type AskRequest struct {
	Question   string                 `json:"question" example:"How many people are in the picture?"`
	Detections *[]detection.Detection `json:"detections"`
}

// AskResponse carries the answer text
type AskResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
}

// Ask answers a question about detected objects
// @Summary      Ask about detections
// @Description  Answer a natural-language question using the detections from a previous /detect call as context
// @Tags         qa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AskRequest true "Question and detections"
// @Success      200 {object} AskResponse
// @Failure      400 {object} httputil.ErrorResponse "Question and detections required"
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} httputil.ErrorResponse "Failed to process question"
// @Router       /qa [post]
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid qa request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" || req.Detections == nil {
		logger.Warn("qa request missing question or detections")
		httputil.RespondErrorWithCode(w, "Question and detections required", httputil.CodeQuestionRequired, http.StatusBadRequest)
		return
	}
	detections := *req.Detections

	logger = logger.WithFields(map[string]any{"detections": len(detections)})

	answer, err := h.answerer.Answer(r.Context(), question, detections)
	if err != nil {
		logger.Error("failed to answer question", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to process question", httputil.CodeAnswerFailed, http.StatusInternalServerError)
		return
	}

	logger.Debug("question answered", "answer_length", len(answer))

	httputil.RespondJSON(w, AskResponse{Success: true, Answer: answer}, http.StatusOK)
}
