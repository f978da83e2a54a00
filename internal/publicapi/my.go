package publicapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
)

// registerMyRoutes adds the user-scoped dashboard views: the same resources
// the admin screens manage, filtered to the caller's own email. Any
// authenticated role may use these.
func registerMyRoutes() {
	webserver.MyApiGET("/orders", listMyOrders)
	webserver.MyApiGET("/contacts", listMyContacts)
	webserver.MyApiGET("/testimonials", listMyTestimonials)
	webserver.MyApiGET("/profile", getMyProfile)
}

func callerEmail(c echo.Context) (string, bool) {
	claims := webserver.Claims(c)
	if claims == nil || claims.Email == "" {
		return "", false
	}
	return claims.Email, true
}

func myPagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("limit")); err == nil && ps > 0 && ps <= 100 {
		pageSize = ps
	}
	return page, pageSize
}

func pagedResult(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	return ok(c, map[string]interface{}{
		"items":       items,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

func listMyOrders(c echo.Context) error {
	email, okc := callerEmail(c)
	if !okc {
		return fail(c, http.StatusUnauthorized, "NO_TOKEN", "Authentication required")
	}
	page, pageSize := myPagination(c)

	db := getDB(c).Model(&domain.Order{}).Where("customer_email = ?", email)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders")
	}
	var orders []domain.Order
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders")
	}
	return pagedResult(c, orders, total, page, pageSize)
}

func listMyContacts(c echo.Context) error {
	email, okc := callerEmail(c)
	if !okc {
		return fail(c, http.StatusUnauthorized, "NO_TOKEN", "Authentication required")
	}
	page, pageSize := myPagination(c)

	db := getDB(c).Model(&domain.Contact{}).Where("email = ?", email)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contacts")
	}
	var contacts []domain.Contact
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&contacts).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contacts")
	}
	return pagedResult(c, contacts, total, page, pageSize)
}

func listMyTestimonials(c echo.Context) error {
	email, okc := callerEmail(c)
	if !okc {
		return fail(c, http.StatusUnauthorized, "NO_TOKEN", "Authentication required")
	}
	page, pageSize := myPagination(c)

	db := getDB(c).Model(&domain.Testimonial{}).Where("email = ?", email)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonials")
	}
	var rows []domain.Testimonial
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonials")
	}
	return pagedResult(c, rows, total, page, pageSize)
}

func getMyProfile(c echo.Context) error {
	email, okc := callerEmail(c)
	if !okc {
		return fail(c, http.StatusUnauthorized, "NO_TOKEN", "Authentication required")
	}
	var u domain.User
	if err := getDB(c).Where("email = ?", email).First(&u).Error; err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "Account not found")
	}
	return ok(c, u)
}
