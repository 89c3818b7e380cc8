package server

import (
	_ "embed"
	"html/template"
	"net/http"

	"santerag/internal/logger"
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Brochures  []string
	IndexReady bool
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	data := pageData{IndexReady: s.svc.Ready()}
	for _, d := range s.svc.Documents() {
		data.Brochures = append(data.Brochures, d.Title)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Warn("rendering page: %v", err)
	}
}
