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

type messagePayload struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Service string `json:"service" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
	Status  string `json:"status" validate:"omitempty,oneof=new in_progress resolved archived"`
}

func registerMessagesRoutes() {
	webserver.ApiGET("/messages", listMessages)
	webserver.ApiGET("/messages/:id", getMessage)
	webserver.ApiPOST("/messages", createMessage)
	webserver.ApiPUT("/messages/:id", updateMessage)
	webserver.ApiDELETE("/messages/:id", deleteMessage)
}

func listMessages(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Message{})
	db = searchLike(db, strings.TrimSpace(c.QueryParam("q")), "name", "email", "service")
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	db = applyDateRange(c, db)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query messages", err.Error())
	}

	var msgs []domain.Message
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&msgs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query messages", err.Error())
	}
	return paged(c, msgs, total, page, pageSize)
}

func getMessage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid message ID", nil)
	}
	var m domain.Message
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "MESSAGE_NOT_FOUND", "Message not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query message", err.Error())
	}
	return ok(c, m)
}

func createMessage(c echo.Context) error {
	var payload messagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	m := domain.Message{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Phone:     payload.Phone,
		Service:   payload.Service,
		Message:   payload.Message,
		Status:    common.IfEmptyStr(payload.Status, statusflow.MessageFlow.Initial),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&m).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create message", err.Error())
	}
	oprLog(c, "message:create", m.Email)
	return ok(c, m)
}

func updateMessage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid message ID", nil)
	}
	var payload messagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var m domain.Message
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "MESSAGE_NOT_FOUND", "Message not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query message", err.Error())
	}

	updates := map[string]interface{}{
		"name":       strings.TrimSpace(payload.Name),
		"phone":      payload.Phone,
		"service":    payload.Service,
		"message":    payload.Message,
		"updated_at": time.Now(),
	}
	if payload.Status != "" {
		if !statusflow.MessageFlow.Valid(payload.Status) {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown message status", nil)
		}
		updates["status"] = payload.Status
	}
	if err := GetDB(c).Model(&m).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update message", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&m)
	oprLog(c, "message:update", m.Email)
	return ok(c, m)
}

func deleteMessage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid message ID", nil)
	}
	res := GetDB(c).Where("id = ?", id).Delete(&domain.Message{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete message", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "MESSAGE_NOT_FOUND", "Message not found", nil)
	}
	oprLog(c, "message:delete", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
