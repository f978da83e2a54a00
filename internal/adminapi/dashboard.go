package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
	"github.com/viewguard/viewguard/pkg/metrics"
	"github.com/viewguard/viewguard/pkg/statusflow"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard", getDashboard)
}

// getDashboard aggregates the numbers the admin landing page shows: row
// counts per resource, order revenue stats, testimonial rating stats and the
// latest system gauges. Counts come from independent queries; the dashboard
// is eventually consistent with the list views by design.
func getDashboard(c echo.Context) error {
	db := GetDB(c)

	counts := map[string]int64{}
	countTargets := map[string]interface{}{
		"contacts":     &domain.Contact{},
		"messages":     &domain.Message{},
		"users":        &domain.User{},
		"orders":       &domain.Order{},
		"testimonials": &domain.Testimonial{},
		"plans":        &domain.PricingPlan{},
	}
	for name, model := range countTargets {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count "+name, err.Error())
		}
		counts[name] = n
	}

	var pendingContacts, newMessages, pendingTestimonials, pendingOrders int64
	db.Model(&domain.Contact{}).Where("status = ?", statusflow.ContactFlow.Initial).Count(&pendingContacts)
	db.Model(&domain.Message{}).Where("status = ?", statusflow.MessageFlow.Initial).Count(&newMessages)
	db.Model(&domain.Testimonial{}).Where("status = ?", statusflow.TestimonialFlow.Initial).Count(&pendingTestimonials)
	db.Model(&domain.Order{}).Where("payment_status = ?", statusflow.PaymentFlow.Initial).Count(&pendingOrders)
	pendingByResource := map[string]int64{
		"contacts":     pendingContacts,
		"messages":     newMessages,
		"testimonials": pendingTestimonials,
		"orders":       pendingOrders,
	}

	var finals []float64
	db.Model(&domain.Order{}).Where("payment_status = ?", "completed").Pluck("detail_final_price", &finals)
	revenue := map[string]float64{}
	if len(finals) > 0 {
		revenue["total"], _ = stats.Sum(finals)
		revenue["mean"], _ = stats.Mean(finals)
		revenue["median"], _ = stats.Median(finals)
		revenue["p90"], _ = stats.Percentile(finals, 90)
	}

	var ratings []float64
	db.Model(&domain.Testimonial{}).Where("status = ?", "approved").Pluck("rating", &ratings)
	rating := map[string]float64{}
	if len(ratings) > 0 {
		rating["mean"], _ = stats.Mean(ratings)
		rating["min"], _ = stats.Min(ratings)
		rating["max"], _ = stats.Max(ratings)
	}

	return ok(c, map[string]interface{}{
		"counts":  counts,
		"pending": pendingByResource,
		"revenue": revenue,
		"rating":  rating,
		"system": map[string]int64{
			"cpu_use": metrics.Gauge("system_cpuuse"),
			"mem_use": metrics.Gauge("system_memuse"),
		},
		"generated_at": time.Now(),
	})
}
