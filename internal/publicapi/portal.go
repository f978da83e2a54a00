package publicapi

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/events"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/common"
	"github.com/viewguard/viewguard/pkg/statusflow"
)

type contactFormPayload struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,min=1,max=300"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

type messageFormPayload struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Service string `json:"service" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

type testimonialFormPayload struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Profession  string  `json:"profession" validate:"omitempty,max=200"`
	Rating      float64 `json:"rating" validate:"required,gte=0.5,lte=5"`
	Testimonial string  `json:"testimonial" validate:"required,min=1,max=5000"`
	Image       string  `json:"image" validate:"omitempty,url,max=1024"`
}

type checkoutPayload struct {
	PlanID   int64  `json:"planId,string" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Address  string `json:"address" validate:"required,min=1,max=500"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

func registerPortalRoutes() {
	webserver.PubPOST("/contacts", submitContact)
	webserver.PubPOST("/messages", submitMessage)
	webserver.PubPOST("/testimonials", submitTestimonial)
	webserver.PubGET("/testimonials", listApprovedTestimonials)
	webserver.PubGET("/plans", listEnabledPlans)
	webserver.PubPOST("/orders", checkout)
	webserver.PubGET("/promo", markPromoViewed)
}

func submitContact(c echo.Context) error {
	if !allowForm(c) {
		return fail(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many submissions, try again later")
	}
	var payload contactFormPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse contact form")
	}
	if err := c.Validate(&payload); err != nil {
		return validationFail(c, err)
	}

	ct := domain.Contact{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Subject:   payload.Subject,
		Message:   payload.Message,
		Status:    statusflow.ContactFlow.Initial,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := getDB(c).Create(&ct).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to submit contact form")
	}
	events.Publish(events.TopicContactCreated, ct)
	return ok(c, ct)
}

func submitMessage(c echo.Context) error {
	if !allowForm(c) {
		return fail(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many submissions, try again later")
	}
	var payload messageFormPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse inquiry form")
	}
	if err := c.Validate(&payload); err != nil {
		return validationFail(c, err)
	}

	m := domain.Message{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Phone:     payload.Phone,
		Service:   payload.Service,
		Message:   payload.Message,
		Status:    statusflow.MessageFlow.Initial,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := getDB(c).Create(&m).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to submit inquiry")
	}
	events.Publish(events.TopicMessageCreated, m)
	return ok(c, m)
}

func submitTestimonial(c echo.Context) error {
	if !allowForm(c) {
		return fail(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many submissions, try again later")
	}
	var payload testimonialFormPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse testimonial form")
	}
	if err := c.Validate(&payload); err != nil {
		return validationFail(c, err)
	}
	if math.Mod(payload.Rating*2, 1) != 0 {
		return fail(c, http.StatusBadRequest, "INVALID_RATING", "Rating must use half-star steps")
	}

	tm := domain.Testimonial{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Email:       strings.TrimSpace(payload.Email),
		Profession:  payload.Profession,
		Rating:      payload.Rating,
		Testimonial: payload.Testimonial,
		Image:       payload.Image,
		Status:      statusflow.TestimonialFlow.Initial,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := getDB(c).Create(&tm).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to submit testimonial")
	}
	events.Publish(events.TopicTestimonialCreated, tm)
	return ok(c, tm)
}

// listApprovedTestimonials backs the marketing page carousel; only approved
// entries are ever shown.
func listApprovedTestimonials(c echo.Context) error {
	var rows []domain.Testimonial
	if err := getDB(c).Where("status = ?", "approved").
		Order("rating DESC, id DESC").Limit(50).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load testimonials")
	}
	return ok(c, rows)
}

func listEnabledPlans(c echo.Context) error {
	var plans []domain.PricingPlan
	if err := getDB(c).Where("enabled = ?", true).
		Order("price ASC").Find(&plans).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load plans")
	}
	return ok(c, plans)
}

// checkout creates an order from a plan. The server owns the price math:
// finalPrice is plan.Price - plan.Discount, never taken from the client.
func checkout(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order")
	}
	if err := c.Validate(&payload); err != nil {
		return validationFail(c, err)
	}

	var plan domain.PricingPlan
	err := getDB(c).Where("id = ? AND enabled = ?", payload.PlanID, true).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Selected plan is not available")
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load plan")
	}

	o := domain.Order{
		ID: common.UUIDint64(),
		Customer: domain.OrderCustomer{
			Name:    strings.TrimSpace(payload.Name),
			Email:   strings.ToLower(strings.TrimSpace(payload.Email)),
			Phone:   payload.Phone,
			Address: payload.Address,
		},
		Details: domain.OrderDetails{
			PlanID:         plan.ID,
			PlanName:       plan.Name,
			CameraCount:    plan.CameraCount,
			OriginalPrice:  plan.Price,
			DiscountAmount: plan.Discount,
			FinalPrice:     plan.Price - plan.Discount,
			Features:       plan.Features,
		},
		Payment: domain.OrderPayment{
			Status:   statusflow.PaymentFlow.Initial,
			Amount:   plan.Price - plan.Discount,
			Currency: common.IfEmptyStr(payload.Currency, "USD"),
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := getDB(c).Create(&o).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create order")
	}
	events.Publish(events.TopicOrderCreated, o)
	return ok(c, o)
}

// markPromoViewed sets the session flag the marketing page uses to skip the
// intro promo on repeat visits.
func markPromoViewed(c echo.Context) error {
	sess, err := session.Get("viewguard", c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to open session")
	}
	viewed := sess.Values["promo_viewed"] == true
	sess.Values["promo_viewed"] = true
	sess.Options.MaxAge = 365 * 24 * 3600
	sess.Options.HttpOnly = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to save session")
	}
	return ok(c, map[string]interface{}{"already_viewed": viewed})
}
