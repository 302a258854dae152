// Package devapi is a local stand-in for the hospital's dashboard API,
// serving stats, alerts, dismissals and exports from SQLite.
package devapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mr1hm/surgery-dashboard/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Repository interface {
	repository.AssessmentRepository
	repository.DismissalRepository
}

type Handler struct {
	repo repository.AssessmentRepository
	dism repository.DismissalRepository
	now  func() time.Time
}

func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo: repo,
		dism: repo,
		now:  time.Now,
	}
}

// NewRouter builds the gin engine with recovery, CORS and per-client rate
// limiting in front of the handler's routes.
func NewRouter(h *Handler, rps int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8000", "http://127.0.0.1:8000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", csrfHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	router.Use(RateLimitMiddleware(rps))

	h.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(dashboardPage)

	r.GET("/health", h.health)
	r.GET("/dashboard/", h.dashboard)

	api := r.Group("/api/dashboard")
	api.GET("/stats/", h.getStats)
	api.GET("/alerts/", h.getAlerts)
	api.GET("/export/", h.export)
	api.POST("/alerts/dismiss/:id/", CSRFMiddleware(), h.dismissAlert)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard", gin.H{"Token": csrfToken(c)})
}

func (h *Handler) getStats(c *gin.Context) {
	days := 30
	if d := c.Query("date_range"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_range"})
			return
		}
		days = n
	}

	ctx := c.Request.Context()
	since := h.now().AddDate(0, 0, -days)

	all, err := h.repo.ListAssessments(ctx, repository.Filter{})
	if err != nil {
		slog.Error("error listing assessments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	window, err := h.repo.ListAssessments(ctx, repository.Filter{Since: &since})
	if err != nil {
		slog.Error("error listing assessments", "since", since, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, BuildStats(all, window, since))
}

func (h *Handler) getAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	all, err := h.repo.ListAssessments(ctx, repository.Filter{})
	if err != nil {
		slog.Error("error listing assessments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	dismissed, err := h.dism.DismissedAlerts(ctx)
	if err != nil {
		slog.Error("error listing dismissed alerts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, BuildAlerts(all, dismissed, h.now()))
}

func (h *Handler) dismissAlert(c *gin.Context) {
	id := c.Param("id")
	if err := h.dism.DismissAlert(c.Request.Context(), id); err != nil {
		slog.Error("error dismissing alert", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dismiss alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Alert dismissed"})
}

func (h *Handler) export(c *gin.Context) {
	all, err := h.repo.ListAssessments(c.Request.Context(), repository.Filter{})
	if err != nil {
		slog.Error("error listing assessments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, all, now); err != nil {
		slog.Error("error building export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFilename(now)+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
