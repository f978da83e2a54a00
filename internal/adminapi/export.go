package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/internal/webserver"
)

func registerExportRoutes() {
	webserver.ApiGET("/contacts/export", exportContactsCSV)
	webserver.ApiGET("/messages/export", exportMessagesCSV)
	webserver.ApiGET("/orders/export", exportOrdersXLSX)
}

type contactCSVRow struct {
	ID        int64  `csv:"id"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	Subject   string `csv:"subject"`
	Message   string `csv:"message"`
	Status    string `csv:"status"`
	CreatedAt string `csv:"created_at"`
}

func exportContactsCSV(c echo.Context) error {
	var contacts []domain.Contact
	if err := GetDB(c).Order("id DESC").Find(&contacts).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query contacts", err.Error())
	}

	rows := make([]contactCSVRow, 0, len(contacts))
	for _, ct := range contacts {
		rows = append(rows, contactCSVRow{
			ID:        ct.ID,
			Name:      ct.Name,
			Email:     ct.Email,
			Subject:   ct.Subject,
			Message:   ct.Message,
			Status:    ct.Status,
			CreatedAt: ct.CreatedAt.Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="contacts.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := gocsv.Marshal(&rows, c.Response()); err != nil {
		return err
	}
	oprLog(c, "contact:export", fmt.Sprintf("%d rows", len(rows)))
	return nil
}

type messageCSVRow struct {
	ID        int64  `csv:"id"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	Phone     string `csv:"phone"`
	Service   string `csv:"service"`
	Message   string `csv:"message"`
	Status    string `csv:"status"`
	CreatedAt string `csv:"created_at"`
}

func exportMessagesCSV(c echo.Context) error {
	var msgs []domain.Message
	if err := GetDB(c).Order("id DESC").Find(&msgs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query messages", err.Error())
	}

	rows := make([]messageCSVRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, messageCSVRow{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Phone:     m.Phone,
			Service:   m.Service,
			Message:   m.Message,
			Status:    m.Status,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="messages.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := gocsv.Marshal(&rows, c.Response()); err != nil {
		return err
	}
	oprLog(c, "message:export", fmt.Sprintf("%d rows", len(rows)))
	return nil
}

func exportOrdersXLSX(c echo.Context) error {
	var orders []domain.Order
	if err := GetDB(c).Order("id DESC").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	printer := message.NewPrinter(language.English)
	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"ID", "Customer", "Email", "Phone", "Plan", "Cameras",
		"Original", "Discount", "Final", "Payment", "Currency", "Created"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		xlsx.SetCellValue(sheet, cell, h)
	}
	for i, o := range orders {
		row := i + 2
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%d", o.ID))
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), o.Customer.Name)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), o.Customer.Email)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), o.Customer.Phone)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), o.Details.PlanName)
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), o.Details.CameraCount)
		xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), printer.Sprintf("%.2f", o.Details.OriginalPrice))
		xlsx.SetCellValue(sheet, fmt.Sprintf("H%d", row), printer.Sprintf("%.2f", o.Details.DiscountAmount))
		xlsx.SetCellValue(sheet, fmt.Sprintf("I%d", row), printer.Sprintf("%.2f", o.Details.FinalPrice))
		xlsx.SetCellValue(sheet, fmt.Sprintf("J%d", row), o.Payment.Status)
		xlsx.SetCellValue(sheet, fmt.Sprintf("K%d", row), o.Payment.Currency)
		xlsx.SetCellValue(sheet, fmt.Sprintf("L%d", row), o.CreatedAt.Format(time.RFC3339))
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := xlsx.Write(c.Response()); err != nil {
		return err
	}
	oprLog(c, "order:export", fmt.Sprintf("%d rows", len(orders)))
	return nil
}
