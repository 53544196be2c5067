package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/sdko-org/devops-status/internal/models"
	"github.com/sirupsen/logrus"
)

//go:embed templates/status.html
var templateFS embed.FS

var statusTemplate = template.Must(template.ParseFS(templateFS, "templates/status.html"))

type statusPage struct {
	StudentName  string
	DeployTime   string
	AppID        string
	VisitCount   int64
	DatabaseHost string
	ListenPort   int
	Students     []models.Student
}

func writeStatusPage(w http.ResponseWriter, log *logrus.Entry, page statusPage) {
	var buf bytes.Buffer
	if err := statusTemplate.Execute(&buf, page); err != nil {
		log.WithError(err).Error("Failed to render status page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
