package handler

import (
	"net/http"
	"strconv"

	"minimarket/internal/apierror"
	"minimarket/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Diario — ?fecha=YYYY-MM-DD, hoy por defecto.
func (h *ReportesHandler) Diario(c *gin.Context) {
	resp, err := h.svc.ReporteDiario(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProductos — ?desde=YYYY-MM-DD&hasta=YYYY-MM-DD&limit=N, últimos 30 días
// por defecto.
func (h *ReportesHandler) TopProductos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.svc.TopProductos(c.Request.Context(), c.Query("desde"), c.Query("hasta"), limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
