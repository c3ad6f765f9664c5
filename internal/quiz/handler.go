package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lernquiz/backend/internal/question"
	httperrors "github.com/lernquiz/backend/pkg/http/errors"
	"github.com/lernquiz/backend/pkg/http/ws"
)

// UploadLimits bounds the upload surface, from config.
type UploadLimits struct {
	MaxFiles     int
	MaxFileBytes int64
	MinChars     int
}

var allowedExtensions = map[string]bool{".txt": true, ".md": true, ".text": true}

// HTTPHandlers provides the REST and websocket endpoints for quiz sessions.
type HTTPHandlers struct {
	service  *Service
	hub      *ws.Hub
	upgrader websocket.Upgrader
	limits   UploadLimits
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for the quiz endpoints.
func NewHTTPHandlers(service *Service, hub *ws.Hub, limits UploadLimits, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		limits: limits,
		logger: logger.With().Str("component", "quiz_http").Logger(),
	}
}

// UploadAndGenerate handles POST /upload-and-generate.
func (h *HTTPHandlers) UploadAndGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseUpload(r)
	if err != nil {
		var verr *uploadError
		if errors.As(err, &verr) {
			httperrors.RespondBadRequest(w, verr.code, verr.message)
			return
		}
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, err.Error())
		return
	}

	sessionID, message, err := h.service.StartSession(r.Context(), *req)
	if err != nil {
		h.logger.Error().Err(err).Msg("session creation failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionCreationFailed, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"message":   message,
	})
}

// GetQuiz handles GET /quiz/{sessionID}. The large summary text is excluded
// from session reads.
func (h *HTTPHandlers) GetQuiz(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	view := *session
	view.SummaryText = ""
	h.respondJSON(w, http.StatusOK, view)
}

// GetStatus handles GET /quiz/{sessionID}/status.
func (h *HTTPHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, status)
}

// SubmitAnswer handles POST /quiz/{sessionID}/answer.
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string   `json:"questionId"`
		Answer     []string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "questionId is required", "questionId")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), r.PathValue("sessionID"), req.QuestionID, req.Answer)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// UpdateProgress handles POST /quiz/{sessionID}/progress.
func (h *HTTPHandlers) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentQuestionIndex *int  `json:"currentQuestionIndex"`
		Completed            *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	err := h.service.UpdateProgress(r.Context(), r.PathValue("sessionID"), ProgressUpdate{
		CurrentQuestionIndex: req.CurrentQuestionIndex,
		Completed:            req.Completed,
	})
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ReviewPoolStats handles GET /review-pool/stats.
func (h *HTTPHandlers) ReviewPoolStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.ReviewPoolStats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("review pool stats failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodePoolStatsFailed, "could not compute review pool stats")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"total": total})
}

// HandleWebSocket handles GET /ws/quiz/{sessionID}: it pushes the current
// status on subscribe and again when the background fill completes.
func (h *HTTPHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	status, err := h.service.Status(r.Context(), sessionID)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Subscribe(sessionID, wsConn)
	go wsConn.WritePump()
	go wsConn.ReadPump(func() {
		h.hub.Unsubscribe(sessionID, wsConn)
	})

	if err := wsConn.Send(ws.Message{Type: ws.TypeSessionStatus, Data: status}); err != nil {
		h.logger.Debug().Err(err).Str("session_id", sessionID).Msg("initial status push failed")
	}
}

type uploadError struct {
	code    string
	message string
}

func (e *uploadError) Error() string { return e.message }

func (h *HTTPHandlers) parseUpload(r *http.Request) (*StartRequest, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, &uploadError{httperrors.ErrCodeInvalidRequest, "invalid multipart form"}
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		return nil, &uploadError{httperrors.ErrCodeNoFiles, "at least one file is required"}
	}
	if len(fileHeaders) > h.limits.MaxFiles {
		return nil, &uploadError{httperrors.ErrCodeTooManyFiles, fmt.Sprintf("at most %d files are allowed", h.limits.MaxFiles)}
	}

	files := make([]UploadedFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := h.readUpload(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	var questionTypes []string
	if err := json.Unmarshal([]byte(r.FormValue("questionTypes")), &questionTypes); err != nil {
		return nil, &uploadError{httperrors.ErrCodeValidationFailed, "questionTypes must be a JSON array"}
	}
	if len(questionTypes) == 0 {
		return nil, &uploadError{httperrors.ErrCodeValidationFailed, "at least one question type is required"}
	}
	for _, t := range questionTypes {
		if !question.IsValidType(t) {
			return nil, &uploadError{httperrors.ErrCodeValidationFailed, fmt.Sprintf("unknown question type %q", t)}
		}
	}

	difficulty := r.FormValue("difficulty")
	switch difficulty {
	case question.DifficultyBasic, question.DifficultyProfi, question.DifficultyRandom:
	default:
		return nil, &uploadError{httperrors.ErrCodeValidationFailed, "difficulty must be basic, profi or random"}
	}

	total, err := strconv.Atoi(r.FormValue("totalQuestions"))
	if err != nil {
		return nil, &uploadError{httperrors.ErrCodeValidationFailed, "totalQuestions must be a number"}
	}
	if !allowedTotals[total] {
		return nil, &uploadError{httperrors.ErrCodeValidationFailed, "totalQuestions must be 25, 50, 75 or 100"}
	}

	return &StartRequest{
		Files:          files,
		QuestionTypes:  questionTypes,
		TotalQuestions: total,
		Difficulty:     difficulty,
	}, nil
}

func (h *HTTPHandlers) readUpload(header *multipart.FileHeader) (UploadedFile, error) {
	if header.Size > h.limits.MaxFileBytes {
		return UploadedFile{}, &uploadError{httperrors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s exceeds the %d byte limit", header.Filename, h.limits.MaxFileBytes)}
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); !allowedExtensions[ext] {
		return UploadedFile{}, &uploadError{httperrors.ErrCodeInvalidFileType,
			fmt.Sprintf("%s is not a text file", header.Filename)}
	}

	file, err := header.Open()
	if err != nil {
		return UploadedFile{}, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.limits.MaxFileBytes+1))
	if err != nil {
		return UploadedFile{}, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	if int64(len(content)) > h.limits.MaxFileBytes {
		return UploadedFile{}, &uploadError{httperrors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s exceeds the %d byte limit", header.Filename, h.limits.MaxFileBytes)}
	}
	if !utf8.Valid(content) {
		return UploadedFile{}, &uploadError{httperrors.ErrCodeInvalidFileType,
			fmt.Sprintf("%s is not valid text", header.Filename)}
	}

	text := strings.TrimSpace(string(content))
	if len(text) < h.limits.MinChars {
		return UploadedFile{}, &uploadError{httperrors.ErrCodeFileTooShort,
			fmt.Sprintf("%s must contain at least %d characters", header.Filename, h.limits.MinChars)}
	}

	return UploadedFile{Filename: header.Filename, Content: text}, nil
}

func (h *HTTPHandlers) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "session not found")
	case errors.Is(err, ErrQuestionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuestionNotFound, "question not found in session")
	default:
		h.logger.Error().Err(err).Msg("session operation failed")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
