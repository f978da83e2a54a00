package publicapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/common"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type registerPayload struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/auth/login", login)
	webserver.PubPOST("/auth/register", register)
}

// issueToken signs an HS256 bearer token with the same claims type
// webserver.JwtMiddleware parses back.
func issueToken(u domain.User, secret string, expire time.Duration) (string, error) {
	claims := &webserver.PortalClaims{
		UserID: strconv.FormatInt(u.ID, 10),
		Name:   u.FirstName + " " + u.LastName,
		Email:  u.Email,
		Level:  u.Role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(expire)),
			IssuedAt:  jwtv5.NewNumericDate(time.Now()),
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// login verifies credentials and issues the HS256 bearer token read back by
// webserver.JwtMiddleware.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	var u domain.User
	err := getDB(c).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid email or password")
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query account")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid email or password")
	}

	expire := time.Duration(appConfig.Web.JwtExpire) * time.Hour
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	signed, err := issueToken(u, appConfig.Web.Secret, expire)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token")
	}

	getDB(c).Model(&domain.User{}).Where("id = ?", u.ID).
		Update("last_login", time.Now())

	return ok(c, map[string]interface{}{
		"token": signed,
		"user":  u,
	})
}

func register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration")
	}
	if err := c.Validate(&payload); err != nil {
		return validationFail(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	var dup domain.User
	if err := getDB(c).Where("email = ?", email).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password")
	}
	u := domain.User{
		ID:        common.UUIDint64(),
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Email:     email,
		Phone:     payload.Phone,
		Password:  string(hashed),
		Role:      "user",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := getDB(c).Create(&u).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account")
	}
	return ok(c, u)
}
