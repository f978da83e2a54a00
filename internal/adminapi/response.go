package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/common"
)

type webResult struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, webResult{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, webResult{Code: code, Message: message, Detail: detail})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	return c.JSON(http.StatusOK, webResult{Code: "OK", Data: map[string]interface{}{
		"items":       items,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	}})
}

// parsePagination reads page/limit query params, 1-indexed, limit capped at 500.
func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("limit")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
}

// GetDB returns the request-scoped gorm handle injected by the webserver.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get("db").(*gorm.DB)
}

func handleValidationError(c echo.Context, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Field '"+strings.ToLower(first.Field())+"' failed on '"+first.Tag()+"'", nil)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
}

// applyDateRange narrows a query on created_at using the flexible
// created_from / created_to params (any common date format accepted).
func applyDateRange(c echo.Context, db *gorm.DB) *gorm.DB {
	if from := strings.TrimSpace(c.QueryParam("created_from")); from != "" {
		if t, err := dateparse.ParseAny(from); err == nil {
			db = db.Where("created_at >= ?", t)
		}
	}
	if to := strings.TrimSpace(c.QueryParam("created_to")); to != "" {
		if t, err := dateparse.ParseAny(to); err == nil {
			db = db.Where("created_at <= ?", t)
		}
	}
	return db
}

// searchLike applies a case-insensitive LIKE over the given columns.
func searchLike(db *gorm.DB, q string, columns ...string) *gorm.DB {
	if q == "" {
		return db
	}
	var conds []string
	var args []interface{}
	pg := strings.EqualFold(db.Name(), "postgres")
	for _, col := range columns {
		if pg {
			conds = append(conds, col+" ILIKE ?")
			args = append(args, "%"+q+"%")
		} else {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(q)+"%")
		}
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

// oprLog records an admin mutation in the audit trail.
func oprLog(c echo.Context, action, desc string) {
	name := "unknown"
	if claims := webserver.Claims(c); claims != nil {
		name = claims.Email
	}
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}

// Init registers every admin route group. Call after webserver.Init.
func Init() {
	registerContactsRoutes()
	registerMessagesRoutes()
	registerUsersRoutes()
	registerOrdersRoutes()
	registerTestimonialsRoutes()
	registerPlansRoutes()
	registerStatusRoutes()
	registerExportRoutes()
	registerDashboardRoutes()
}
