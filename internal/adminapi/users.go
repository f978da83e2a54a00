package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/common"
	"github.com/viewguard/viewguard/pkg/statusflow"
)

type userPayload struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Password  string `json:"password" validate:"omitempty,min=6,max=128"`
	// Status carries the role, matching the dashboard's field naming.
	Status string `json:"status" validate:"omitempty,oneof=user admin"`
}

func registerUsersRoutes() {
	webserver.ApiGET("/users", listUsers)
	webserver.ApiGET("/users/:id", getUser)
	webserver.ApiPOST("/users", createUser)
	webserver.ApiPUT("/users/:id", updateUser)
	webserver.ApiDELETE("/users/:id", deleteUser)
}

func listUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.User{})
	db = searchLike(db, strings.TrimSpace(c.QueryParam("q")), "first_name", "last_name", "email")
	if role := strings.TrimSpace(c.QueryParam("status")); role != "" {
		db = db.Where("role = ?", role)
	}
	db = applyDateRange(c, db)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	var users []domain.User
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}
	return paged(c, users, total, page, pageSize)
}

func getUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var u domain.User
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}
	return ok(c, u)
}

func createUser(c echo.Context) error {
	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	var dup domain.User
	if err := GetDB(c).Where("email = ?", email).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "A user with this email already exists", nil)
	}

	password := common.IfEmptyStr(payload.Password, common.UUID())
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
	}

	u := domain.User{
		ID:        common.UUIDint64(),
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Email:     email,
		Phone:     payload.Phone,
		Password:  string(hashed),
		Role:      common.IfEmptyStr(payload.Status, statusflow.UserRoleFlow.Initial),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&u).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", err.Error())
	}
	oprLog(c, "user:create", u.Email)
	return ok(c, u)
}

func updateUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var u domain.User
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}

	// email is immutable after creation
	if payload.Email != "" && !strings.EqualFold(strings.TrimSpace(payload.Email), u.Email) {
		return fail(c, http.StatusBadRequest, "EMAIL_IMMUTABLE", "Email cannot be changed once set", nil)
	}

	updates := map[string]interface{}{
		"first_name": strings.TrimSpace(payload.FirstName),
		"last_name":  strings.TrimSpace(payload.LastName),
		"phone":      payload.Phone,
		"updated_at": time.Now(),
	}
	if payload.Status != "" {
		if !statusflow.UserRoleFlow.Valid(payload.Status) {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown user role", nil)
		}
		updates["role"] = payload.Status
	}
	if payload.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
		}
		updates["password"] = string(hashed)
	}
	if err := GetDB(c).Model(&u).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&u)
	oprLog(c, "user:update", u.Email)
	return ok(c, u)
}

func deleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	if claims := webserver.Claims(c); claims != nil && claims.UserID == c.Param("id") {
		return fail(c, http.StatusBadRequest, "SELF_DELETE", "An admin cannot delete their own account", nil)
	}
	res := GetDB(c).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete user", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	}
	oprLog(c, "user:delete", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
