package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sdko-org/devops-status/internal/config"
	"github.com/sdko-org/devops-status/internal/database"
	"github.com/sdko-org/devops-status/internal/models"
	"github.com/sirupsen/logrus"
)

const deployTimeLayout = "2006-01-02 15:04:05"

// VisitStore is the persistence the status page needs. *database.Store
// satisfies it, including a nil *database.Store in degraded mode.
type VisitStore interface {
	RecordVisit(ctx context.Context, visit *models.Visit) error
	CountVisits(ctx context.Context) (int64, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
}

type StatusHandler struct {
	cfg   *config.Config
	store VisitStore
	log   *logrus.Entry
	now   func() time.Time
}

func NewStatusHandler(logger *logrus.Logger, cfg *config.Config, store VisitStore) *StatusHandler {
	return &StatusHandler{
		cfg:   cfg,
		store: store,
		log:   logger.WithField("component", "status_handler"),
		now:   time.Now,
	}
}

// ServeHTTP records the visit, then reads the totals, so the count includes
// this request. Persistence failures fall back to zero values.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	visit := &models.Visit{
		ClientIP:  peerIP(r),
		UserAgent: userAgent(r),
		Path:      r.URL.RequestURI(),
	}
	if err := h.store.RecordVisit(ctx, visit); err != nil {
		h.logFailure(err, "Error logging visit")
	}

	visitCount, err := h.store.CountVisits(ctx)
	if err != nil {
		h.logFailure(err, "Error getting visit count")
		visitCount = 0
	}

	students, err := h.store.ListStudents(ctx)
	if err != nil {
		h.logFailure(err, "Error getting students")
		students = nil
	}

	writeStatusPage(w, h.log, statusPage{
		StudentName:  h.cfg.StudentName,
		DeployTime:   h.deployTime(),
		AppID:        h.cfg.AppID,
		VisitCount:   visitCount,
		DatabaseHost: h.cfg.DatabaseHost,
		ListenPort:   config.ListenPort,
		Students:     students,
	})
}

func (h *StatusHandler) deployTime() string {
	if h.cfg.DeployTime != "" {
		return h.cfg.DeployTime
	}
	return h.now().Format(deployTimeLayout)
}

func (h *StatusHandler) logFailure(err error, msg string) {
	if errors.Is(err, database.ErrUnavailable) {
		h.log.WithError(err).Debug(msg)
		return
	}
	h.log.WithError(err).Error(msg)
}

// peerIP is the socket peer of the request. Forwarding headers are client
// controlled and are not stored.
func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "Unknown"
}
