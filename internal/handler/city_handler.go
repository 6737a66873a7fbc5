package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wheelio/car-rental-api/internal/application"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
	"github.com/wheelio/car-rental-api/internal/pkg/middleware"
	"github.com/wheelio/car-rental-api/internal/pkg/response"
)

// CityHandler handles HTTP requests for serviceable cities.
type CityHandler struct {
	service *application.CityService
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(service *application.CityService) *CityHandler {
	return &CityHandler{service: service}
}

// RegisterRoutes registers all city routes on the given router group.
func (h *CityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminMW := middleware.RequireRole(auth.RoleAdmin)

	cities := r.Group("/api/v1/cities")
	{
		cities.GET("", h.ListActiveCities)
		cities.GET("/all", authMW, adminMW, h.ListAllCities)
		cities.POST("", authMW, adminMW, h.CreateCity)
		cities.PUT("/:id", authMW, adminMW, h.UpdateCity)
	}
}

// ListActiveCities handles GET /api/v1/cities.
func (h *CityHandler) ListActiveCities(c *gin.Context) {
	result, err := h.service.ListActiveCities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAllCities handles GET /api/v1/cities/all (admin).
func (h *CityHandler) ListAllCities(c *gin.Context) {
	result, err := h.service.ListAllCities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCity handles POST /api/v1/cities (admin).
func (h *CityHandler) CreateCity(c *gin.Context) {
	var req application.CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCity(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateCity handles PUT /api/v1/cities/:id (admin). Deactivation removes
// the city from the public list without deleting it.
func (h *CityHandler) UpdateCity(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid city ID")
		return
	}

	var req application.UpdateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateCity(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
