package adminapi

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/common"
	"github.com/viewguard/viewguard/pkg/statusflow"
)

type testimonialPayload struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Profession  string  `json:"profession" validate:"omitempty,max=200"`
	Rating      float64 `json:"rating" validate:"required,gte=0.5,lte=5"`
	Testimonial string  `json:"testimonial" validate:"required,min=1,max=5000"`
	Image       string  `json:"image" validate:"omitempty,url,max=1024"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// halfStar reports whether r sits on the half-star grid.
func halfStar(r float64) bool {
	return math.Mod(r*2, 1) == 0
}

func registerTestimonialsRoutes() {
	webserver.ApiGET("/testimonials", listTestimonials)
	webserver.ApiGET("/testimonials/:id", getTestimonial)
	webserver.ApiPOST("/testimonials", createTestimonial)
	webserver.ApiPUT("/testimonials/:id", updateTestimonial)
	webserver.ApiDELETE("/testimonials/:id", deleteTestimonial)
}

func listTestimonials(c echo.Context) error {
	page, pageSize := parsePagination(c)

	// sorting is whitelisted to avoid SQL injection through the sort param
	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"rating":     "rating",
		"created_at": "created_at",
	}
	sortCol, okCol := allowed[sortField]
	if !okCol {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Testimonial{})
	db = searchLike(db, strings.TrimSpace(c.QueryParam("q")), "name", "email", "profession")
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	db = applyDateRange(c, db)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonials", err.Error())
	}

	var rows []domain.Testimonial
	if err := db.Order(sortCol + " " + order).Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonials", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getTestimonial(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid testimonial ID", nil)
	}
	var tm domain.Testimonial
	if err := GetDB(c).Where("id = ?", id).First(&tm).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "TESTIMONIAL_NOT_FOUND", "Testimonial not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonial", err.Error())
	}
	return ok(c, tm)
}

func createTestimonial(c echo.Context) error {
	var payload testimonialPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse testimonial parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if !halfStar(payload.Rating) {
		return fail(c, http.StatusBadRequest, "INVALID_RATING", "Rating must use half-star steps", nil)
	}

	tm := domain.Testimonial{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Email:       strings.TrimSpace(payload.Email),
		Profession:  payload.Profession,
		Rating:      payload.Rating,
		Testimonial: payload.Testimonial,
		Image:       payload.Image,
		Status:      common.IfEmptyStr(payload.Status, statusflow.TestimonialFlow.Initial),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := GetDB(c).Create(&tm).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create testimonial", err.Error())
	}
	oprLog(c, "testimonial:create", tm.Email)
	return ok(c, tm)
}

func updateTestimonial(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid testimonial ID", nil)
	}
	var payload testimonialPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse testimonial parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if !halfStar(payload.Rating) {
		return fail(c, http.StatusBadRequest, "INVALID_RATING", "Rating must use half-star steps", nil)
	}

	var tm domain.Testimonial
	if err := GetDB(c).Where("id = ?", id).First(&tm).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "TESTIMONIAL_NOT_FOUND", "Testimonial not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonial", err.Error())
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(payload.Name),
		"profession":  payload.Profession,
		"rating":      payload.Rating,
		"testimonial": payload.Testimonial,
		"image":       payload.Image,
		"updated_at":  time.Now(),
	}
	if payload.Status != "" {
		if !statusflow.TestimonialFlow.Valid(payload.Status) {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown testimonial status", nil)
		}
		updates["status"] = payload.Status
	}
	if err := GetDB(c).Model(&tm).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update testimonial", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&tm)
	oprLog(c, "testimonial:update", tm.Email)
	return ok(c, tm)
}

func deleteTestimonial(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid testimonial ID", nil)
	}
	res := GetDB(c).Where("id = ?", id).Delete(&domain.Testimonial{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete testimonial", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "TESTIMONIAL_NOT_FOUND", "Testimonial not found", nil)
	}
	oprLog(c, "testimonial:delete", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
