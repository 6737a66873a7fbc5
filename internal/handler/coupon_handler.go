package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wheelio/car-rental-api/internal/application"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
	"github.com/wheelio/car-rental-api/internal/pkg/middleware"
	"github.com/wheelio/car-rental-api/internal/pkg/response"
)

// CouponHandler handles HTTP requests for coupons.
type CouponHandler struct {
	service *application.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service *application.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes registers all coupon routes on the given router group.
func (h *CouponHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminMW := middleware.RequireRole(auth.RoleAdmin)

	coupons := r.Group("/api/v1/coupons")
	{
		coupons.GET("/active", h.ListActiveCoupons)
		coupons.POST("/validate", authMW, h.ValidateCoupon)
		coupons.GET("", authMW, adminMW, h.ListCoupons)
		coupons.POST("", authMW, adminMW, h.CreateCoupon)
		coupons.PUT("/:id", authMW, adminMW, h.UpdateCoupon)
		coupons.DELETE("/:id", authMW, adminMW, h.DeleteCoupon)
	}
}

// ListActiveCoupons handles GET /api/v1/coupons/active.
func (h *CouponHandler) ListActiveCoupons(c *gin.Context) {
	result, err := h.service.ListActiveCoupons(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ValidateCoupon handles POST /api/v1/coupons/validate. Evaluation does not
// consume the coupon's usage budget.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req application.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ValidateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCoupons handles GET /api/v1/coupons (admin).
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.service.ListCoupons(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// CreateCoupon handles POST /api/v1/coupons (admin).
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req application.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateCoupon handles PUT /api/v1/coupons/:id (admin).
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid coupon ID")
		return
	}

	var req application.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateCoupon(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCoupon handles DELETE /api/v1/coupons/:id (admin).
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid coupon ID")
		return
	}

	if err := h.service.DeleteCoupon(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "coupon deleted"})
}
