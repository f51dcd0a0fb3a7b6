package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rijks-verifier/internal/adapters/primary/http/dto"
)

func (h *Handler) ListChecks(c *gin.Context) {
	catalogue := h.verificationSvc.Catalogue()

	items := make([]dto.CheckInfoResponse, 0, len(catalogue))
	for _, info := range catalogue {
		items = append(items, dto.ToCheckInfoResponse(info))
	}

	c.JSON(http.StatusOK, dto.ListChecksResponse{
		Items:          items,
		Total:          len(items),
		APIKeyPresent:  h.verificationSvc.HasAPIKey(),
		HistoryEnabled: h.verificationSvc.HistoryEnabled(),
	})
}
