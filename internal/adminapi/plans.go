package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/common"
)

type planPayload struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	CameraCount int      `json:"cameraCount" validate:"required,min=1"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Discount    float64  `json:"discount" validate:"omitempty,gte=0"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular"`
	Enabled     *bool    `json:"enabled"`
}

func registerPlansRoutes() {
	webserver.ApiGET("/plans", listPlans)
	webserver.ApiGET("/plans/:id", getPlan)
	webserver.ApiPOST("/plans", createPlan)
	webserver.ApiPUT("/plans/:id", updatePlan)
	webserver.ApiDELETE("/plans/:id", deletePlan)
}

func listPlans(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.PricingPlan{})
	db = searchLike(db, strings.TrimSpace(c.QueryParam("q")), "name")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plans", err.Error())
	}

	var plans []domain.PricingPlan
	if err := db.Order("price ASC").Offset((page-1)*pageSize).Limit(pageSize).Find(&plans).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plans", err.Error())
	}
	return paged(c, plans, total, page, pageSize)
}

func getPlan(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid plan ID", nil)
	}
	var p domain.PricingPlan
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plan", err.Error())
	}
	return ok(c, p)
}

func createPlan(c echo.Context) error {
	var payload planPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse plan parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Discount > payload.Price {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", "Discount cannot exceed the price", nil)
	}

	name := strings.TrimSpace(payload.Name)
	var exists int64
	GetDB(c).Model(&domain.PricingPlan{}).Where("name = ?", name).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusConflict, "DUPLICATE_PLAN", "A plan with this name already exists", nil)
	}

	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}
	p := domain.PricingPlan{
		ID:          common.UUIDint64(),
		Name:        name,
		CameraCount: payload.CameraCount,
		Price:       payload.Price,
		Discount:    payload.Discount,
		Features:    payload.Features,
		Popular:     payload.Popular,
		Enabled:     enabled,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create plan", err.Error())
	}
	oprLog(c, "plan:create", p.Name)
	return ok(c, p)
}

func updatePlan(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid plan ID", nil)
	}
	var payload planPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse plan parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Discount > payload.Price {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", "Discount cannot exceed the price", nil)
	}

	var p domain.PricingPlan
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query plan", err.Error())
	}

	p.Name = strings.TrimSpace(payload.Name)
	p.CameraCount = payload.CameraCount
	p.Price = payload.Price
	p.Discount = payload.Discount
	if payload.Features != nil {
		p.Features = payload.Features
	}
	p.Popular = payload.Popular
	if payload.Enabled != nil {
		p.Enabled = *payload.Enabled
	}
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update plan", err.Error())
	}
	oprLog(c, "plan:update", p.Name)
	return ok(c, p)
}

func deletePlan(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid plan ID", nil)
	}
	res := GetDB(c).Where("id = ?", id).Delete(&domain.PricingPlan{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete plan", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found", nil)
	}
	oprLog(c, "plan:delete", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
