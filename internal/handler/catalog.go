package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/frostair/ac-booking/internal/model"
	"github.com/frostair/ac-booking/internal/schedule"
)

// GetServices returns the static service catalog: offered service types
// and maintenance plan tiers. The response never changes at runtime, so
// the route sits behind the response cache.
func GetServices(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"service_types": []echo.Map{
			{"id": model.ServiceInstallation, "name": "AC Installation"},
			{"id": model.ServiceRepair, "name": "AC Repair"},
			{"id": model.ServiceMaintenance, "name": "AC Maintenance"},
			{"id": model.ServiceMaintenancePlan, "name": "Maintenance Plan"},
			{"id": model.ServiceInspection, "name": "AC Inspection"},
			{"id": model.ServiceConsultation, "name": "Consultation"},
		},
		"maintenance_plans": []echo.Map{
			{"id": "basic", "name": "Basic Plan"},
			{"id": "premium", "name": "Premium Plan"},
		},
	})
}

// GetTimeSlots returns the fixed catalog of bookable time slots.
func GetTimeSlots(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"time_slots": schedule.TimeSlots()})
}
