package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/application"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
	"github.com/wheelio/car-rental-api/internal/pkg/middleware"
	"github.com/wheelio/car-rental-api/internal/pkg/response"
)

// AdminHandler handles HTTP requests for administration: booking oversight
// and admin account management.
type AdminHandler struct {
	bookings *application.BookingService
	accounts *application.AuthService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, accounts *application.AuthService) *AdminHandler {
	return &AdminHandler{bookings: bookings, accounts: accounts}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminMW := middleware.RequireRole(auth.RoleAdmin)
	superMW := middleware.RequireRole(auth.RoleSuperAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW)
	{
		admin.GET("/bookings", adminMW, h.ListBookings)
		admin.PATCH("/bookings/:id/status", adminMW, h.UpdateBookingStatus)
		admin.GET("/bookings/stats", adminMW, h.BookingStats)

		admin.GET("/admins", superMW, h.ListAdmins)
		admin.POST("/admins", superMW, h.CreateAdmin)
		admin.DELETE("/admins/:id", superMW, h.DeleteAdmin)
	}
}

// ListBookings handles GET /api/v1/admin/bookings with optional filters.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	filter := bookingDomain.ListFilter{}
	if v := c.Query("status"); v != "" {
		status, err := bookingDomain.ParseBookingStatus(v)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.Status = status
	}
	if v := c.Query("car_id"); v != "" {
		carID, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "invalid car_id")
			return
		}
		filter.CarID = carID
	}
	if v := c.Query("user_id"); v != "" {
		userID, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "invalid user_id")
			return
		}
		filter.UserID = userID
	}

	result, err := h.bookings.ListAllBookings(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// UpdateBookingStatus handles PATCH /api/v1/admin/bookings/:id/status.
func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.UpdateBookingStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	result, err := h.bookings.BookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAdmins handles GET /api/v1/admin/admins (super admin).
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	result, err := h.accounts.ListAdmins(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateAdmin handles POST /api/v1/admin/admins (super admin).
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req application.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.accounts.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// DeleteAdmin handles DELETE /api/v1/admin/admins/:id (super admin).
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid admin ID")
		return
	}

	if err := h.accounts.DeleteAdmin(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "admin deleted"})
}
