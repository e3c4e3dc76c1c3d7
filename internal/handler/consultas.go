package handler

import (
	"net/http"
	"regexp"

	"minimarket/internal/apierror"
	"minimarket/internal/infra"

	"github.com/gin-gonic/gin"
)

var (
	dniRe = regexp.MustCompile(`^\d{8}$`)
	rucRe = regexp.MustCompile(`^\d{11}$`)
)

type ConsultasHandler struct{ client *infra.ConsultasClient }

func NewConsultasHandler(client *infra.ConsultasClient) *ConsultasHandler {
	return &ConsultasHandler{client: client}
}

func (h *ConsultasHandler) DNI(c *gin.Context) {
	numero := c.Param("numero")
	if !dniRe.MatchString(numero) {
		c.JSON(http.StatusBadRequest, apierror.New("DNI debe tener 8 dígitos"))
		return
	}
	resp, err := h.client.ConsultarDNI(c.Request.Context(), numero)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo consultar el DNI"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConsultasHandler) RUC(c *gin.Context) {
	numero := c.Param("numero")
	if !rucRe.MatchString(numero) {
		c.JSON(http.StatusBadRequest, apierror.New("RUC debe tener 11 dígitos"))
		return
	}
	resp, err := h.client.ConsultarRUC(c.Request.Context(), numero)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo consultar el RUC"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
