package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/report"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// ReportHandler serves the admin reporting surface: JSON stats and
// an XLSX export of the reservation ledger.
type ReportHandler struct {
	Repo *repository.ReservationRepo
}

func NewReportHandler(repo *repository.ReservationRepo) *ReportHandler {
	return &ReportHandler{Repo: repo}
}

// Stats handles GET /v1/reports/stats: reservation counts per
// status and revenue per venue over confirmed and completed
// bookings.
func (h *ReportHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	counts, err := h.Repo.StatusCounts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	revenue, err := h.Repo.RevenueByVenue(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	var totalCents int64
	for _, v := range revenue {
		totalCents += v.RevenueCents
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status_counts":       counts,
		"revenue_by_venue":    revenue,
		"total_revenue_cents": totalCents,
	})
}

// Export handles GET /v1/reports/reservations.xlsx. Streams a
// workbook with a reservations sheet and a revenue summary sheet.
// Accepts the same status/from/to filters as the listing endpoint.
func (h *ReportHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()
	q := repository.ListQuery{
		Page:            1,
		PageSize:        10000,
		Status:          c.QueryParam("status"),
		DateFrom:        c.QueryParam("from"),
		DateTo:          c.QueryParam("to"),
		IncludeInactive: true,
		SortBy:          "date",
	}
	if q.Status != "" && !booking.ValidStatus(q.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	views, _, err := h.Repo.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	revenue, err := h.Repo.RevenueByVenue(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load revenue"})
	}

	wb := report.NewWorkbook()
	defer wb.Close()

	if err := wb.AddSheet("Reservations"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build export"})
	}
	header := []string{"ID", "Date", "Slot", "Venue", "Customer", "Email", "Status", "Active", "Services", "Venue Price", "Total"}
	if err := wb.WriteHeader(header); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build export"})
	}
	for _, v := range views {
		names := make([]string, 0, len(v.Services))
		for _, s := range v.Services {
			names = append(names, s.Description)
		}
		active := "yes"
		if !v.IsActive {
			active = "no"
		}
		row := []any{
			v.ID,
			v.Date,
			v.SlotStart + "-" + v.SlotEnd,
			v.VenueTitle,
			v.CustomerName,
			v.CustomerEmail,
			v.Status,
			active,
			strings.Join(names, ", "),
			centsToUnits(v.VenuePriceCents),
			centsToUnits(v.TotalPriceCents),
		}
		if err := wb.WriteRow(row); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build export"})
		}
	}

	if err := wb.AddSheet("Revenue"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build export"})
	}
	if err := wb.WriteHeader([]string{"Venue", "Reservations", "Revenue"}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build export"})
	}
	for _, v := range revenue {
		if err := wb.WriteRow([]any{v.VenueTitle, v.Reservations, centsToUnits(v.RevenueCents)}); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build export"})
		}
	}

	filename := fmt.Sprintf("reservations-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return wb.Save(c.Response())
}

// centsToUnits renders an integer cent amount as a decimal string
// without going through floating point.
func centsToUnits(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
