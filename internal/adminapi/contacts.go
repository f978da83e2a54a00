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
	"github.com/viewguard/viewguard/pkg/statusflow"
)

type contactPayload struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,min=1,max=300"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
	Status  string `json:"status" validate:"omitempty,oneof=pending processed rejected"`
}

func registerContactsRoutes() {
	webserver.ApiGET("/contacts", listContacts)
	webserver.ApiGET("/contacts/:id", getContact)
	webserver.ApiPOST("/contacts", createContact)
	webserver.ApiPUT("/contacts/:id", updateContact)
	webserver.ApiDELETE("/contacts/:id", deleteContact)
}

func listContacts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Contact{})
	db = searchLike(db, strings.TrimSpace(c.QueryParam("q")), "name", "email", "subject")
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	db = applyDateRange(c, db)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contacts", err.Error())
	}

	var contacts []domain.Contact
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&contacts).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contacts", err.Error())
	}
	return paged(c, contacts, total, page, pageSize)
}

func getContact(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID", nil)
	}
	var ct domain.Contact
	if err := GetDB(c).Where("id = ?", id).First(&ct).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contact", err.Error())
	}
	return ok(c, ct)
}

func createContact(c echo.Context) error {
	var payload contactPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse contact parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	ct := domain.Contact{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Subject:   payload.Subject,
		Message:   payload.Message,
		Status:    common.IfEmptyStr(payload.Status, statusflow.ContactFlow.Initial),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&ct).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create contact", err.Error())
	}
	oprLog(c, "contact:create", ct.Email)
	return ok(c, ct)
}

func updateContact(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID", nil)
	}
	var payload contactPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse contact parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var ct domain.Contact
	if err := GetDB(c).Where("id = ?", id).First(&ct).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contact", err.Error())
	}

	updates := map[string]interface{}{
		"name":       strings.TrimSpace(payload.Name),
		"subject":    payload.Subject,
		"message":    payload.Message,
		"updated_at": time.Now(),
	}
	// email is the lookup key, locked once the record exists
	if payload.Status != "" {
		if !statusflow.ContactFlow.Valid(payload.Status) {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown contact status", nil)
		}
		updates["status"] = payload.Status
	}
	if err := GetDB(c).Model(&ct).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update contact", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&ct)
	oprLog(c, "contact:update", ct.Email)
	return ok(c, ct)
}

func deleteContact(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid contact ID", nil)
	}
	res := GetDB(c).Where("id = ?", id).Delete(&domain.Contact{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete contact", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found", nil)
	}
	oprLog(c, "contact:delete", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
