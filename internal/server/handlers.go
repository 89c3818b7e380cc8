package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"santerag/internal/domain"
	"santerag/internal/service"
)

// noInformationMessage mirrors the tone of the brochures: general
// information only, in French.
const noInformationMessage = "Je n'ai trouvé aucune information pertinente sur ce sujet " +
	"dans les brochures chargées. Vérifiez que les documents couvrent bien cette question."

type askRequest struct {
	Question string `json:"question"`
}

type sectionResponse struct {
	Label string `json:"label"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type askResponse struct {
	Question      string             `json:"question"`
	Sections      []sectionResponse  `json:"sections"`
	Sources       []domain.SourceRef `json:"sources"`
	NoInformation bool               `json:"no_information"`
	Message       string             `json:"message,omitempty"`
}

type documentResponse struct {
	Filename string `json:"filename"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "index_ready": s.svc.Ready()})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.svc.Ask(question)
	if err != nil {
		if errors.Is(err, service.ErrIndexNotReady) {
			writeError(w, http.StatusServiceUnavailable, "index is not ready")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := askResponse{
		Question:      answer.Question,
		Sections:      make([]sectionResponse, 0, len(answer.Sections)),
		Sources:       answer.Sources,
		NoInformation: answer.NoInformation,
	}
	for _, label := range domain.SectionOrder {
		text, ok := answer.Sections[label]
		if !ok {
			continue
		}
		resp.Sections = append(resp.Sections, sectionResponse{
			Label: string(label),
			Title: domain.SectionTitle(label),
			Text:  text,
		})
	}
	if answer.NoInformation {
		resp.Message = noInformationMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocuments(w http.ResponseWriter, _ *http.Request) {
	docs := s.svc.Documents()
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse{Filename: d.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
