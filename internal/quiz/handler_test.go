package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernquiz/backend/internal/question"
	httperrors "github.com/lernquiz/backend/pkg/http/errors"
	"github.com/lernquiz/backend/pkg/http/ws"
)

var testLimits = UploadLimits{MaxFiles: 6, MaxFileBytes: 5 * 1024 * 1024, MinChars: 100}

func newHandlerFixture(bank *stubBank, gen *stubGenerator) (*HTTPHandlers, *memSessionStore) {
	svc, sessions := newTestService(bank, gen)
	handlers := NewHTTPHandlers(svc, ws.NewHub(zerolog.New(io.Discard)), testLimits, zerolog.New(io.Discard))
	return handlers, sessions
}

type uploadForm struct {
	files          map[string]string
	questionTypes  string
	difficulty     string
	totalQuestions string
}

func validUploadForm() uploadForm {
	return uploadForm{
		files:          map[string]string{"skript.txt": strings.Repeat("Besitz und Eigentum sind verschiedene Dinge. ", 5)},
		questionTypes:  `["definition","open"]`,
		difficulty:     "basic",
		totalQuestions: "25",
	}
}

func (f uploadForm) request(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range f.files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("questionTypes", f.questionTypes))
	require.NoError(t, writer.WriteField("difficulty", f.difficulty))
	require.NoError(t, writer.WriteField("totalQuestions", f.totalQuestions))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-and-generate", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUploadAndGenerateSuccess(t *testing.T) {
	handlers, sessions := newHandlerFixture(&stubBank{review: reviewSnapshots(2)}, &stubGenerator{drafts: generatedDrafts(25)})

	rec := httptest.NewRecorder()
	handlers.UploadAndGenerate(rec, validUploadForm().request(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	sessionID, _ := body["sessionId"].(string)
	require.NotEmpty(t, sessionID)
	assert.Contains(t, body["message"], "review questions")

	_, err := sessions.Get(context.Background(), sessionID)
	assert.NoError(t, err)
}

func TestUploadAndGenerateValidation(t *testing.T) {
	handlers, _ := newHandlerFixture(&stubBank{}, &stubGenerator{})

	longEnough := strings.Repeat("x", 120)
	cases := []struct {
		name     string
		mutate   func(*uploadForm)
		wantCode string
	}{
		{"no files", func(f *uploadForm) { f.files = map[string]string{} }, httperrors.ErrCodeNoFiles},
		{"too many files", func(f *uploadForm) {
			f.files = map[string]string{}
			for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
				f.files[n+".txt"] = longEnough
			}
		}, httperrors.ErrCodeTooManyFiles},
		{"wrong extension", func(f *uploadForm) {
			f.files = map[string]string{"skript.pdf": longEnough}
		}, httperrors.ErrCodeInvalidFileType},
		{"file too short", func(f *uploadForm) {
			f.files = map[string]string{"kurz.txt": "zu wenig"}
		}, httperrors.ErrCodeFileTooShort},
		{"types not JSON", func(f *uploadForm) { f.questionTypes = "definition" }, httperrors.ErrCodeValidationFailed},
		{"types empty", func(f *uploadForm) { f.questionTypes = "[]" }, httperrors.ErrCodeValidationFailed},
		{"unknown type", func(f *uploadForm) { f.questionTypes = `["riddle"]` }, httperrors.ErrCodeValidationFailed},
		{"unknown difficulty", func(f *uploadForm) { f.difficulty = "expert" }, httperrors.ErrCodeValidationFailed},
		{"total not a number", func(f *uploadForm) { f.totalQuestions = "many" }, httperrors.ErrCodeValidationFailed},
		{"unsupported total", func(f *uploadForm) { f.totalQuestions = "30" }, httperrors.ErrCodeValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validUploadForm()
			tc.mutate(&form)

			rec := httptest.NewRecorder()
			handlers.UploadAndGenerate(rec, form.request(t))

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tc.wantCode, decodeBody(t, rec)["error"])
		})
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	handlers, _ := newHandlerFixture(&stubBank{}, &stubGenerator{})
	handlers.limits.MaxFileBytes = 64

	form := validUploadForm()
	form.files = map[string]string{"big.txt": strings.Repeat("x", 200)}

	rec := httptest.NewRecorder()
	handlers.UploadAndGenerate(rec, form.request(t))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httperrors.ErrCodeFileTooLarge, decodeBody(t, rec)["error"])
}

func sessionRequest(method, path, sessionID string, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.SetPathValue("sessionID", sessionID)
	return req
}

func startedSession(t *testing.T, handlers *HTTPHandlers, sessions *memSessionStore) *Session {
	t.Helper()
	rec := httptest.NewRecorder()
	handlers.UploadAndGenerate(rec, validUploadForm().request(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sessionID := decodeBody(t, rec)["sessionId"].(string)

	require.Eventually(t, func() bool {
		session, err := sessions.Get(context.Background(), sessionID)
		return err == nil && session.Status == StatusReady
	}, 2*time.Second, 10*time.Millisecond)

	session, err := sessions.Get(context.Background(), sessionID)
	require.NoError(t, err)
	return session
}

func TestGetQuizHidesSummaryText(t *testing.T) {
	handlers, sessions := newHandlerFixture(&stubBank{review: reviewSnapshots(2)}, &stubGenerator{drafts: generatedDrafts(25)})
	session := startedSession(t, handlers, sessions)
	require.NotEmpty(t, session.SummaryText)

	rec := httptest.NewRecorder()
	handlers.GetQuiz(rec, sessionRequest(http.MethodGet, "/quiz/"+session.ID, session.ID, ""))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Empty(t, body["summaryText"])
	assert.Equal(t, StatusReady, body["status"])
	assert.Len(t, body["questions"], 25)
}

func TestGetQuizUnknownSession(t *testing.T) {
	handlers, _ := newHandlerFixture(&stubBank{}, &stubGenerator{})

	rec := httptest.NewRecorder()
	handlers.GetQuiz(rec, sessionRequest(http.MethodGet, "/quiz/nope", "nope", ""))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httperrors.ErrCodeSessionNotFound, decodeBody(t, rec)["error"])
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	handlers, sessions := newHandlerFixture(&stubBank{review: reviewSnapshots(2)}, &stubGenerator{drafts: generatedDrafts(25)})
	session := startedSession(t, handlers, sessions)

	var target *question.Snapshot
	for i := range session.Questions {
		if session.Questions[i].IsReviewQuestion {
			target = &session.Questions[i]
			break
		}
	}
	require.NotNil(t, target)

	rec := httptest.NewRecorder()
	payload := `{"questionId":"` + target.ID + `","answer":["a"]}`
	handlers.SubmitAnswer(rec, sessionRequest(http.MethodPost, "/quiz/"+session.ID+"/answer", session.ID, payload))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["correct"])
}

func TestSubmitAnswerEndpointValidation(t *testing.T) {
	handlers, sessions := newHandlerFixture(&stubBank{review: reviewSnapshots(1)}, &stubGenerator{drafts: generatedDrafts(25)})
	session := startedSession(t, handlers, sessions)

	t.Run("missing questionId", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handlers.SubmitAnswer(rec, sessionRequest(http.MethodPost, "/quiz/x/answer", session.ID, `{"answer":["a"]}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, httperrors.ErrCodeMissingField, body["error"])
		assert.Equal(t, "questionId", body["field"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handlers.SubmitAnswer(rec, sessionRequest(http.MethodPost, "/quiz/x/answer", session.ID, `{`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown question", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handlers.SubmitAnswer(rec, sessionRequest(http.MethodPost, "/quiz/x/answer", session.ID, `{"questionId":"ghost","answer":["a"]}`))
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, httperrors.ErrCodeQuestionNotFound, decodeBody(t, rec)["error"])
	})
}

func TestUpdateProgressEndpoint(t *testing.T) {
	handlers, sessions := newHandlerFixture(&stubBank{review: reviewSnapshots(1)}, &stubGenerator{drafts: generatedDrafts(25)})
	session := startedSession(t, handlers, sessions)

	rec := httptest.NewRecorder()
	handlers.UpdateProgress(rec, sessionRequest(http.MethodPost, "/quiz/x/progress", session.ID, `{"currentQuestionIndex":4,"completed":true}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	updated, err := sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.CurrentQuestionIndex)
	assert.True(t, updated.Completed)
}

func TestReviewPoolStatsEndpoint(t *testing.T) {
	handlers, _ := newHandlerFixture(&stubBank{poolSize: 17}, &stubGenerator{})

	rec := httptest.NewRecorder()
	handlers.ReviewPoolStats(rec, httptest.NewRequest(http.MethodGet, "/review-pool/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(17), decodeBody(t, rec)["total"])
}

func TestGetStatusEndpoint(t *testing.T) {
	gate := make(chan struct{})
	handlers, _ := newHandlerFixture(&stubBank{review: reviewSnapshots(2)}, &stubGenerator{gate: gate, drafts: generatedDrafts(25)})
	defer close(gate)

	rec := httptest.NewRecorder()
	handlers.UploadAndGenerate(rec, validUploadForm().request(t))
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := decodeBody(t, rec)["sessionId"].(string)

	rec = httptest.NewRecorder()
	handlers.GetStatus(rec, sessionRequest(http.MethodGet, "/quiz/x/status", sessionID, ""))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["isLoading"])
	assert.Equal(t, float64(2), body["reviewQuestions"])
}
