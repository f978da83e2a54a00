package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	jsoniter "github.com/json-iterator/go"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/common"
	"github.com/viewguard/viewguard/pkg/dotpath"
	"github.com/viewguard/viewguard/pkg/statusflow"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type orderCustomerPayload struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

type orderDetailsPayload struct {
	PlanID         int64    `json:"planId,string" validate:"omitempty"`
	PlanName       string   `json:"planName" validate:"required,min=1,max=200"`
	CameraCount    int      `json:"cameraCount" validate:"required,min=1"`
	OriginalPrice  float64  `json:"originalPrice" validate:"required,gt=0"`
	DiscountAmount float64  `json:"discountAmount" validate:"omitempty,gte=0"`
	Features       []string `json:"features"`
}

type orderPayload struct {
	Customer orderCustomerPayload `json:"customer" validate:"required"`
	Details  orderDetailsPayload  `json:"orderDetails" validate:"required"`
	Payment  struct {
		Status   string  `json:"status" validate:"omitempty,oneof=pending completed refunded failed"`
		Currency string  `json:"currency" validate:"omitempty,len=3"`
		Amount   float64 `json:"amount" validate:"omitempty,gte=0"`
	} `json:"payment"`
}

func registerOrdersRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiPUT("/orders/:id", updateOrder)
	webserver.ApiPATCH("/orders/:id/fields", patchOrderFields)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Order{})
	db = searchLike(db, strings.TrimSpace(c.QueryParam("q")), "customer_name", "customer_email", "detail_plan_name")
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("payment_status = ?", status)
	}
	db = applyDateRange(c, db)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var orders []domain.Order
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var o domain.Order
	if err := GetDB(c).Where("id = ?", id).First(&o).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}
	return ok(c, o)
}

func createOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Details.DiscountAmount > payload.Details.OriginalPrice {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", "Discount cannot exceed the original price", nil)
	}

	final := payload.Details.OriginalPrice - payload.Details.DiscountAmount
	o := domain.Order{
		ID: common.UUIDint64(),
		Customer: domain.OrderCustomer{
			Name:    strings.TrimSpace(payload.Customer.Name),
			Email:   strings.TrimSpace(payload.Customer.Email),
			Phone:   payload.Customer.Phone,
			Address: payload.Customer.Address,
		},
		Details: domain.OrderDetails{
			PlanID:         payload.Details.PlanID,
			PlanName:       payload.Details.PlanName,
			CameraCount:    payload.Details.CameraCount,
			OriginalPrice:  payload.Details.OriginalPrice,
			DiscountAmount: payload.Details.DiscountAmount,
			FinalPrice:     final,
			Features:       payload.Details.Features,
		},
		Payment: domain.OrderPayment{
			Status:   common.IfEmptyStr(payload.Payment.Status, statusflow.PaymentFlow.Initial),
			Amount:   final,
			Currency: common.IfEmptyStr(payload.Payment.Currency, "USD"),
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&o).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create order", err.Error())
	}
	oprLog(c, "order:create", o.Customer.Email)
	return ok(c, o)
}

func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var o domain.Order
	if err := GetDB(c).Where("id = ?", id).First(&o).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}

	if payload.Payment.Status != "" && !statusflow.PaymentFlow.Valid(payload.Payment.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown payment status", nil)
	}
	if payload.Details.DiscountAmount > payload.Details.OriginalPrice {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", "Discount cannot exceed the original price", nil)
	}

	o.Customer.Name = strings.TrimSpace(payload.Customer.Name)
	o.Customer.Phone = payload.Customer.Phone
	o.Customer.Address = payload.Customer.Address
	o.Details.PlanName = payload.Details.PlanName
	o.Details.CameraCount = payload.Details.CameraCount
	o.Details.OriginalPrice = payload.Details.OriginalPrice
	o.Details.DiscountAmount = payload.Details.DiscountAmount
	o.Details.FinalPrice = payload.Details.OriginalPrice - payload.Details.DiscountAmount
	if payload.Details.Features != nil {
		o.Details.Features = payload.Details.Features
	}
	if payload.Payment.Status != "" {
		o.Payment.Status = payload.Payment.Status
	}
	if payload.Payment.Currency != "" {
		o.Payment.Currency = payload.Payment.Currency
	}
	o.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&o).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", err.Error())
	}
	oprLog(c, "order:update", o.Customer.Email)
	return ok(c, o)
}

// decodeOrderTree maps a JSON-shaped order tree back onto the struct. The
// time hook is required: createdAt/updatedAt arrive as RFC3339 strings.
func decodeOrderTree(tree map[string]interface{}) (domain.Order, error) {
	var merged domain.Order
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &merged,
	})
	if err != nil {
		return merged, err
	}
	return merged, decoder.Decode(tree)
}

// patchOrderFields merges dotted-path updates ("customer.name",
// "orderDetails.cameraCount") into the order's nested blocks.
func patchOrderFields(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse field updates", nil)
	}
	if len(fields) == 0 {
		return fail(c, http.StatusBadRequest, "EMPTY_PATCH", "No field updates supplied", nil)
	}

	var o domain.Order
	if err := GetDB(c).Where("id = ?", id).First(&o).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}

	// struct -> map -> dotted merges -> struct keeps the merge logic generic
	raw, err := json.Marshal(o)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to encode order", nil)
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return fail(c, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to decode order", nil)
	}

	for path, value := range fields {
		if path == "customer.email" || path == "id" {
			return fail(c, http.StatusBadRequest, "FIELD_IMMUTABLE", "Field '"+path+"' cannot be changed", nil)
		}
		if path == "payment.status" {
			s, _ := value.(string)
			if !statusflow.PaymentFlow.Valid(s) {
				return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown payment status", nil)
			}
		}
		if err := dotpath.Set(tree, path, value); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_FIELD", err.Error(), nil)
		}
	}

	merged, err := decodeOrderTree(tree)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FIELD", "Field updates do not fit the order schema", err.Error())
	}

	merged.ID = o.ID
	merged.Customer.Email = o.Customer.Email
	merged.CreatedAt = o.CreatedAt
	merged.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&merged).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", err.Error())
	}
	oprLog(c, "order:patch_fields", c.Param("id"))
	return ok(c, merged)
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	res := GetDB(c).Where("id = ?", id).Delete(&domain.Order{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete order", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	}
	oprLog(c, "order:delete", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
