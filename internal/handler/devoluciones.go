package handler

import (
	"errors"
	"net/http"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/middleware"
	"minimarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DevolucionesHandler struct{ svc service.DevolucionService }

func NewDevolucionesHandler(svc service.DevolucionService) *DevolucionesHandler {
	return &DevolucionesHandler{svc: svc}
}

func (h *DevolucionesHandler) Procesar(c *gin.Context) {
	var req dto.CrearDevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return
	}

	resp, err := h.svc.ProcesarDevolucion(c.Request.Context(), usuarioID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVentaNoEncontrada):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, service.ErrDevolucionExcedida):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DevolucionesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Devolución no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DevolucionesHandler) ListarPorVenta(c *gin.Context) {
	resp, err := h.svc.ListByVenta(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		if errors.Is(err, service.ErrVentaNoEncontrada) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar devoluciones"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
