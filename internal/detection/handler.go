package detection

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redmonkez12/vision-api/internal/httputil"
	"github.com/redmonkez12/vision-api/internal/logging"
)

// Handler serves the object detection endpoint
type Handler struct {
	detector Detector
}

func NewHandler(detector Detector) *Handler {
	return &Handler{detector: detector}
}

// DetectRequest carries the uploaded image as a data URL
type DetectRequest struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRg..."`
}

// DetectResponse lists the objects found in the image
type DetectResponse struct {
	Success        bool        `json:"success"`
	Detections     []Detection `json:"detections"`
	AnnotatedImage string      `json:"annotatedImage"`
}

// Detect runs object detection on an uploaded image
// @Summary      Detect objects
// @Description  Upload a base64 image data URL and get labelled bounding boxes back
// @Tags         detection
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DetectRequest true "Image to analyse"
// @Success      200 {object} DetectResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing or invalid image"
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      413 {object} httputil.ErrorResponse "Upload too large"
// @Failure      500 {object} httputil.ErrorResponse "Detection failed"
// @Router       /detect [post]
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("detect request too large", "limit", tooLarge.Limit)
			httputil.RespondErrorWithCode(w, "Image too large", httputil.CodePayloadTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		logger.Warn("invalid detect request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	img, err := ParseDataURL(req.Image)
	if err != nil {
		logger.Warn("detect rejected image", "error", err.Error())
		if errors.Is(err, ErrImageRequired) {
			httputil.RespondErrorWithCode(w, "Image data required", httputil.CodeImageRequired, http.StatusBadRequest)
			return
		}
		httputil.RespondErrorWithCode(w, "Invalid image format", httputil.CodeInvalidImage, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{
		"format": img.Format,
		"width":  img.Width,
		"height": img.Height,
	})

	detections, err := h.detector.Detect(r.Context(), img)
	if err != nil {
		logger.Error("detection failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Detection failed", httputil.CodeDetectionFailed, http.StatusInternalServerError)
		return
	}
	if detections == nil {
		detections = []Detection{}
	}

	logger.Info("detection completed", "count", len(detections))

	httputil.RespondJSON(w, DetectResponse{
		Success:        true,
		Detections:     detections,
		AnnotatedImage: img.DataURL,
	}, http.StatusOK)
}
