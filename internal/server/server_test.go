package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santerag/internal/domain"
	"santerag/internal/service"
)

// stubQA implements QAPort with canned data.
type stubQA struct {
	answer domain.Answer
	err    error
	docs   []domain.Document
	ready  bool
}

func (s *stubQA) Ask(question string) (domain.Answer, error) {
	if s.err != nil {
		return domain.Answer{}, s.err
	}
	answer := s.answer
	answer.Question = question
	return answer, nil
}

func (s *stubQA) Documents() []domain.Document { return s.docs }

func (s *stubQA) Ready() bool { return s.ready }

func newTestServer(t *testing.T, qa QAPort) *Server {
	t.Helper()
	srv, err := New(Config{Addr: ":0"}, qa)
	require.NoError(t, err)
	return srv
}

func TestNewRequiresAddr(t *testing.T) {
	_, err := New(Config{}, &stubQA{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubQA{ready: true})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["index_ready"])
}

func TestAskReturnsSectionsInOrder(t *testing.T) {
	qa := &stubQA{
		ready: true,
		answer: domain.Answer{
			Sections: map[domain.SectionLabel]string{
				domain.SectionWhenToConsult: "Consultez votre médecin traitant.",
				domain.SectionDefinition:    "Le diabète est une maladie chronique.",
				domain.SectionSymptoms:      "Les symptômes comprennent une soif intense.",
			},
			Sources: []domain.SourceRef{
				{Filename: "diabete.pdf", Score: 0.82, ChunkIndex: 0, Snippet: "Le diabète..."},
			},
		},
	}
	srv := newTestServer(t, qa)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question": "Quels sont les symptômes du diabète ?"}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Quels sont les symptômes du diabète ?", resp.Question)
	require.Len(t, resp.Sections, 3)
	assert.Equal(t, "definition", resp.Sections[0].Label)
	assert.Equal(t, "symptoms", resp.Sections[1].Label)
	assert.Equal(t, "when_to_consult", resp.Sections[2].Label)
	assert.False(t, resp.NoInformation)
	assert.Empty(t, resp.Message)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "diabete.pdf", resp.Sources[0].Filename)
}

func TestAskNoInformationCarriesMessage(t *testing.T) {
	qa := &stubQA{ready: true, answer: domain.Answer{NoInformation: true}}
	srv := newTestServer(t, qa)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question": "mystère"}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NoInformation)
	assert.Equal(t, noInformationMessage, resp.Message)
	assert.Empty(t, resp.Sections)
}

func TestAskRejectsInvalidBody(t *testing.T) {
	srv := newTestServer(t, &stubQA{ready: true})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question": "  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskIndexNotReady(t *testing.T) {
	srv := newTestServer(t, &stubQA{err: service.ErrIndexNotReady})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question": "diabète"}`))
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocuments(t *testing.T) {
	qa := &stubQA{ready: true, docs: []domain.Document{
		{ID: "1", Title: "diabete.pdf"},
		{ID: "2", Title: "grippe.pdf"},
	}}
	srv := newTestServer(t, qa)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []documentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "diabete.pdf", resp[0].Filename)
	assert.Equal(t, "grippe.pdf", resp[1].Filename)
}

func TestPageRendersBrochures(t *testing.T) {
	qa := &stubQA{ready: true, docs: []domain.Document{{ID: "1", Title: "diabete.pdf"}}}
	srv := newTestServer(t, qa)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "diabete.pdf")
	assert.Contains(t, body, "Chatbot")
}
