package handlers

import (
	"rijks-verifier/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	verificationSvc *services.VerificationService
}

func New(verificationSvc *services.VerificationService) *Handler {
	return &Handler{
		verificationSvc: verificationSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Check catalogue
	r.GET("/checks", h.ListChecks)

	// Verification runs
	r.POST("/runs", h.StartRun)
	r.GET("/runs", h.ListRuns)
	r.GET("/runs/:id", h.GetRun)
}
