package adminapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/pkg/common"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

// openTestDB connects to the database named by VIEWGUARD_TEST_DSN and skips
// otherwise, so the suite stays green without a running Postgres.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	dsn := os.Getenv("VIEWGUARD_TEST_DSN")
	if dsn == "" {
		t.Skip("VIEWGUARD_TEST_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	if err := db.Migrator().AutoMigrate(&domain.Order{}, &domain.SysOprLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestContext(t *testing.T, db *gorm.DB, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("db", db)
	return c, rec
}

func TestCreateOrderComputesFinalPrice(t *testing.T) {
	db := openTestDB(t)

	body := `{
		"customer": {"name": "Bo", "email": "bo@example.com"},
		"orderDetails": {"planName": "Home Basic", "cameraCount": 2,
			"originalPrice": 100, "discountAmount": 50},
		"payment": {}
	}`
	c, rec := newTestContext(t, db, http.MethodPost, "/api/orders", body)
	if err := createOrder(c); err != nil {
		t.Fatalf("createOrder: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Code string       `json:"code"`
		Data domain.Order `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	t.Cleanup(func() {
		db.Where("id = ?", resp.Data.ID).Delete(&domain.Order{})
	})

	if resp.Data.Details.FinalPrice != 50 {
		t.Fatalf("finalPrice = %v, want 50", resp.Data.Details.FinalPrice)
	}
	if resp.Data.Payment.Amount != 50 {
		t.Fatalf("payment amount = %v, want 50", resp.Data.Payment.Amount)
	}
	if resp.Data.Payment.Status != "pending" {
		t.Fatalf("payment status = %q, want pending", resp.Data.Payment.Status)
	}
}

func TestPatchOrderFields(t *testing.T) {
	db := openTestDB(t)

	seed := domain.Order{
		ID: common.UUIDint64(),
		Customer: domain.OrderCustomer{
			Name:  "Bo",
			Email: "bo@example.com",
			Phone: "555-0100",
		},
		Details: domain.OrderDetails{
			PlanName:       "Home Basic",
			CameraCount:    2,
			OriginalPrice:  100,
			DiscountAmount: 50,
			FinalPrice:     50,
		},
		Payment: domain.OrderPayment{
			Status:   "pending",
			Amount:   50,
			Currency: "USD",
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	t.Cleanup(func() {
		db.Where("id = ?", seed.ID).Delete(&domain.Order{})
	})
	id := strconv.FormatInt(seed.ID, 10)

	patch := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()
		c, rec := newTestContext(t, db, http.MethodPatch, "/api/orders/"+id+"/fields", body)
		c.SetParamNames("id")
		c.SetParamValues(id)
		if err := patchOrderFields(c); err != nil {
			t.Fatalf("patchOrderFields: %v", err)
		}
		return rec
	}

	t.Run("merges nested fields", func(t *testing.T) {
		rec := patch(t, `{"customer.name": "Bo Chen", "orderDetails.cameraCount": 4}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var got domain.Order
		if err := db.Where("id = ?", seed.ID).First(&got).Error; err != nil {
			t.Fatalf("reload: %v", err)
		}
		if got.Customer.Name != "Bo Chen" {
			t.Errorf("customer.name = %q, want Bo Chen", got.Customer.Name)
		}
		if got.Details.CameraCount != 4 {
			t.Errorf("cameraCount = %d, want 4", got.Details.CameraCount)
		}
		if got.Customer.Email != "bo@example.com" {
			t.Errorf("email changed to %q", got.Customer.Email)
		}
		if got.Details.FinalPrice != 50 {
			t.Errorf("finalPrice = %v, want 50", got.Details.FinalPrice)
		}
	})

	t.Run("rejects immutable fields", func(t *testing.T) {
		for _, body := range []string{
			`{"customer.email": "x@example.com"}`,
			`{"id": "1"}`,
		} {
			rec := patch(t, body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("patch %s: status = %d, want 400", body, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "FIELD_IMMUTABLE") {
				t.Errorf("patch %s: body = %s, want FIELD_IMMUTABLE", body, rec.Body.String())
			}
		}
	})

	t.Run("validates payment status", func(t *testing.T) {
		rec := patch(t, `{"payment.status": "bogus"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "INVALID_STATUS") {
			t.Fatalf("body = %s, want INVALID_STATUS", rec.Body.String())
		}

		rec = patch(t, `{"payment.status": "completed"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var got domain.Order
		if err := db.Where("id = ?", seed.ID).First(&got).Error; err != nil {
			t.Fatalf("reload: %v", err)
		}
		if got.Payment.Status != "completed" {
			t.Fatalf("payment.status = %q, want completed", got.Payment.Status)
		}
	})
}

func TestCreateOrderRejectsExcessDiscount(t *testing.T) {
	db := openTestDB(t)

	body := `{
		"customer": {"name": "Bo", "email": "bo@example.com"},
		"orderDetails": {"planName": "Home Basic", "cameraCount": 2,
			"originalPrice": 100, "discountAmount": 150},
		"payment": {}
	}`
	c, rec := newTestContext(t, db, http.MethodPost, "/api/orders", body)
	if err := createOrder(c); err != nil {
		t.Fatalf("createOrder: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "INVALID_DISCOUNT") {
		t.Fatalf("body = %s, want INVALID_DISCOUNT", rec.Body.String())
	}
}
