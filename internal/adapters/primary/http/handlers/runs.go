package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"rijks-verifier/internal/adapters/primary/http/dto"
	"rijks-verifier/internal/core/domain"
	ports "rijks-verifier/internal/core/ports/output"
)

// ============================================================================
// Verification Runs
// ============================================================================

// StartRun executes the requested checks synchronously. The response is 200
// even when checks fail; the verdict is in the body.
func (h *Handler) StartRun(c *gin.Context) {
	var req dto.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.verificationSvc.Run(c.Request.Context(), req.Checks)
	if err != nil && report == nil {
		mapDomainError(c, err)
		return
	}
	if err != nil {
		// The run completed but could not be stored.
		log.WithError(err).WithField("run_id", report.ID.String()).Warn("verification run not persisted")
		c.Header("X-Run-Persisted", "false")
	}

	c.JSON(http.StatusOK, dto.ToRunResponse(report))
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reports, total, err := h.verificationSvc.ListRuns(c.Request.Context(), ports.RunListFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrHistoryDisabled) {
			log.WithError(err).Error("list verification runs failed")
		}
		mapDomainError(c, err)
		return
	}

	items := make([]dto.RunResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, dto.ToRunResponse(r))
	}

	c.JSON(http.StatusOK, dto.ListRunsResponse{
		Items: items,
		Total: total,
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	report, err := h.verificationSvc.GetRun(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRunResponse(report))
}
