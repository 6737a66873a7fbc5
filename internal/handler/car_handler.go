package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wheelio/car-rental-api/internal/application"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
	"github.com/wheelio/car-rental-api/internal/pkg/middleware"
	"github.com/wheelio/car-rental-api/internal/pkg/response"
)

// CarHandler handles HTTP requests for the car catalog.
type CarHandler struct {
	cars    *application.CarService
	reviews *application.ReviewService
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(cars *application.CarService, reviews *application.ReviewService) *CarHandler {
	return &CarHandler{cars: cars, reviews: reviews}
}

// RegisterRoutes registers all car routes on the given router group.
func (h *CarHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminMW := middleware.RequireRole(auth.RoleAdmin)

	cars := r.Group("/api/v1/cars")
	{
		cars.GET("", h.ListCars)
		cars.GET("/:id", h.GetCar)
		cars.GET("/:id/reviews", h.ListCarReviews)
		cars.POST("", authMW, adminMW, h.CreateCar)
		cars.PUT("/:id", authMW, adminMW, h.UpdateCar)
		cars.DELETE("/:id", authMW, adminMW, h.DeleteCar)
	}
}

// ListCars handles GET /api/v1/cars with optional filters and a date window.
func (h *CarHandler) ListCars(c *gin.Context) {
	page, limit := parsePagination(c)
	query := application.ListCarsQuery{
		City:         c.Query("city"),
		CarType:      c.Query("car_type"),
		FuelType:     c.Query("fuel_type"),
		Transmission: c.Query("transmission"),
		Sort:         c.Query("sort"),
		Page:         page,
		Limit:        limit,
	}

	if v := c.Query("min_seats"); v != "" {
		seats, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, "invalid min_seats")
			return
		}
		query.MinSeats = seats
	}
	if v := c.Query("min_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid min_price")
			return
		}
		query.MinPricePerDay = price
	}
	if v := c.Query("max_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid max_price")
			return
		}
		query.MaxPricePerDay = price
	}
	if v := c.Query("pickup_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid pickup_at, expected RFC3339")
			return
		}
		query.PickupAt = t
	}
	if v := c.Query("drop_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid drop_at, expected RFC3339")
			return
		}
		query.DropAt = t
	}

	result, err := h.cars.ListCars(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetCar handles GET /api/v1/cars/:id.
func (h *CarHandler) GetCar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid car ID")
		return
	}

	result, err := h.cars.GetCar(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCarReviews handles GET /api/v1/cars/:id/reviews.
func (h *CarHandler) ListCarReviews(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid car ID")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.reviews.ListCarReviews(c.Request.Context(), id, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// CreateCar handles POST /api/v1/cars (admin).
func (h *CarHandler) CreateCar(c *gin.Context) {
	var req application.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.cars.CreateCar(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateCar handles PUT /api/v1/cars/:id (admin).
func (h *CarHandler) UpdateCar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid car ID")
		return
	}

	var req application.UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.cars.UpdateCar(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCar handles DELETE /api/v1/cars/:id (admin).
func (h *CarHandler) DeleteCar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid car ID")
		return
	}

	if err := h.cars.DeleteCar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "car deleted"})
}
