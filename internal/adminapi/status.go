package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/statusflow"
)

type statusPayload struct {
	Status string `json:"status" validate:"required,min=1,max=50"`
}

// statusTarget maps a URL resource segment to its flow, model and the column
// holding the status value.
type statusTarget struct {
	flow   *statusflow.Flow
	model  interface{}
	column string
}

var statusTargets = map[string]statusTarget{
	"contacts":     {statusflow.ContactFlow, &domain.Contact{}, "status"},
	"messages":     {statusflow.MessageFlow, &domain.Message{}, "status"},
	"users":        {statusflow.UserRoleFlow, &domain.User{}, "role"},
	"orders":       {statusflow.PaymentFlow, &domain.Order{}, "payment_status"},
	"testimonials": {statusflow.TestimonialFlow, &domain.Testimonial{}, "status"},
}

func registerStatusRoutes() {
	webserver.ApiPATCH("/:resource/:id/status", patchStatus)
	webserver.ApiGET("/statusflows", listStatusFlows)
}

// patchStatus is the single-field status write used by the dashboard's
// advance-status action. It resends only the status, never the whole record.
func patchStatus(c echo.Context) error {
	resource := strings.TrimSpace(c.Param("resource"))
	target, okRes := statusTargets[resource]
	if !okRes {
		return fail(c, http.StatusNotFound, "UNKNOWN_RESOURCE", "No status flow for resource '"+resource+"'", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid record ID", nil)
	}

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if !target.flow.Valid(payload.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS",
			"Status '"+payload.Status+"' is not part of the "+resource+" flow", nil)
	}

	db := GetDB(c)
	res := db.Model(target.model).Where("id = ?", id).Updates(map[string]interface{}{
		target.column: payload.Status,
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update status", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "RECORD_NOT_FOUND", "Record not found", nil)
	}

	oprLog(c, resource+":status", c.Param("id")+" -> "+payload.Status)
	return fetchCurrent(c, target, id)
}

// fetchCurrent re-reads the mutated row so the caller gets server truth back.
func fetchCurrent(c echo.Context, target statusTarget, id int64) error {
	db := GetDB(c)
	var (
		row interface{}
		err error
	)
	switch target.model.(type) {
	case *domain.Contact:
		v := domain.Contact{}
		err = db.Where("id = ?", id).First(&v).Error
		row = v
	case *domain.Message:
		v := domain.Message{}
		err = db.Where("id = ?", id).First(&v).Error
		row = v
	case *domain.User:
		v := domain.User{}
		err = db.Where("id = ?", id).First(&v).Error
		row = v
	case *domain.Order:
		v := domain.Order{}
		err = db.Where("id = ?", id).First(&v).Error
		row = v
	case *domain.Testimonial:
		v := domain.Testimonial{}
		err = db.Where("id = ?", id).First(&v).Error
		row = v
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load record", err.Error())
	}
	return ok(c, row)
}

// listStatusFlows exposes the declarative flow tables so clients render
// badges and next-status actions from server truth instead of local copies.
func listStatusFlows(c echo.Context) error {
	flows := map[string]*statusflow.Flow{}
	for resource, target := range statusTargets {
		flows[resource] = target.flow
	}
	return ok(c, flows)
}
