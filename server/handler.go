package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/transcriptflow/logger"
	"github.com/skillsenselab/transcriptflow/orchestrator"
)

// Handler exposes pipeline operations over HTTP.
type Handler struct {
	runner   *orchestrator.Runner
	registry *orchestrator.Registry
	log      *logger.Logger
}

// NewHandler creates the pipeline HTTP handler.
func NewHandler(runner *orchestrator.Runner, registry *orchestrator.Registry, log *logger.Logger) *Handler {
	return &Handler{runner: runner, registry: registry, log: log.WithComponent("server.handler")}
}

func (h *Handler) register(engine *gin.Engine) {
	engine.GET("/healthz", h.health)
	v1 := engine.Group("/v1")
	v1.POST("/pipelines", h.startPipeline)
	v1.GET("/executions", h.listExecutions)
	v1.GET("/executions/*file", h.getExecution)
}

type startRequest struct {
	Bucket   string            `json:"bucket" binding:"required"`
	Key      string            `json:"key" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

// startPipeline begins a run for the source file and returns the fresh
// execution snapshot. A file with a live execution is a conflict.
func (h *Handler) startPipeline(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	exec, err := h.runner.Start(c.Request.Context(), orchestrator.RunRequest{
		Bucket:   req.Bucket,
		Key:      req.Key,
		Metadata: req.Metadata,
	})
	if err != nil {
		if errors.Is(err, orchestrator.ErrExecutionRunning) {
			respondError(c, http.StatusConflict, "EXECUTION_RUNNING", err.Error())
			return
		}
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, exec)
}

// listExecutions returns all known execution snapshots, newest first.
func (h *Handler) listExecutions(c *gin.Context) {
	execs := h.registry.List()
	sort.Slice(execs, func(i, j int) bool {
		return execs[i].StartedAt.After(execs[j].StartedAt)
	})
	c.JSON(http.StatusOK, gin.H{"executions": execs})
}

// getExecution returns the snapshot for one source file. The wildcard
// keeps slash-bearing object keys addressable.
func (h *Handler) getExecution(c *gin.Context) {
	file := strings.TrimPrefix(c.Param("file"), "/")
	exec, ok := h.registry.Get(file)
	if !ok {
		respondError(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "no execution for "+file)
		return
	}
	c.JSON(http.StatusOK, exec)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
