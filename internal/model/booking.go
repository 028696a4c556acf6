package model

import "time"

// Booking statuses.  A booking starts out PENDING and is moved through
// the workflow by staff.  COMPLETED and CANCELLED are terminal.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// AllStatuses lists every recognised booking status.
var AllStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ValidStatus reports whether s is one of the recognised statuses.
func ValidStatus(s string) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ReleasesCapacity reports whether a booking in the given status has
// released its technician's slot.  It is the single source of truth
// shared between availability computation and status updates: only
// cancelled bookings free capacity, and adding a new capacity-releasing
// status here is enough for both sides to agree.
func ReleasesCapacity(status string) bool {
	return status == StatusCancelled
}

// CanTransition reports whether a status change from 'from' to 'to' is
// allowed.  The workflow moves forward one step at a time
// (pending -> confirmed -> in-progress -> completed) and any
// non-terminal booking may be cancelled.
func CanTransition(from, to string) bool {
	if from == StatusCompleted || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusConfirmed
	case StatusConfirmed:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted
	}
	return false
}

// Service types offered by the company.
const (
	ServiceInstallation    = "installation"
	ServiceRepair          = "repair"
	ServiceMaintenance     = "maintenance"
	ServiceMaintenancePlan = "maintenance-plan"
	ServiceInspection      = "inspection"
	ServiceConsultation    = "consultation"
)

// ValidServiceType reports whether s is a known service type.
func ValidServiceType(s string) bool {
	switch s {
	case ServiceInstallation, ServiceRepair, ServiceMaintenance,
		ServiceMaintenancePlan, ServiceInspection, ServiceConsultation:
		return true
	}
	return false
}

// ValidMaintenancePlan reports whether p is a known maintenance plan.
// The empty string means no plan was chosen.
func ValidMaintenancePlan(p string) bool {
	return p == "" || p == "basic" || p == "premium"
}

// Booking represents one scheduled appointment as stored in the
// `bookings` table.  The date carries no relevant time-of-day
// component; all slot logic treats it as a whole-day bucket in UTC.
//
// Fields:
//  ID                    – primary key identifier.
//  ReferenceNumber       – unique human-readable identifier, assigned at
//                          creation and never reused or changed.
//  ServiceType           – requested service (see Service* constants).
//  MaintenancePlan       – optional plan name for maintenance-plan bookings.
//  Date                  – day of the appointment, normalized to UTC midnight.
//  TimeSlot              – one of the slot catalog labels.
//  CustomerName          – contact name supplied at submission.
//  CustomerEmail         – contact email.
//  CustomerPhone         – contact phone number.
//  CustomerAddress       – service address.
//  Description           – free-form problem description.
//  PreferredTechnicianID – technician the customer asked for, if any.
//                          Input only; never re-validated after creation.
//  AssignedTechnicianID  – technician holding the slot, nil when unassigned.
//  Status                – current workflow status.
//  Notes                 – staff notes.
//  CreatedAt             – creation timestamp.
//  UpdatedAt             – last update timestamp.
type Booking struct {
	ID                    uint64    // bookings.id
	ReferenceNumber       string    // bookings.reference_number
	ServiceType           string    // bookings.service_type
	MaintenancePlan       string    // bookings.maintenance_plan
	Date                  time.Time // bookings.date
	TimeSlot              string    // bookings.time_slot
	CustomerName          string    // bookings.customer_name
	CustomerEmail         string    // bookings.customer_email
	CustomerPhone         string    // bookings.customer_phone
	CustomerAddress       string    // bookings.customer_address
	Description           string    // bookings.description
	PreferredTechnicianID *uint64   // bookings.preferred_technician_id (nullable)
	AssignedTechnicianID  *uint64   // bookings.assigned_technician_id (nullable)
	Status                string    // bookings.status
	Notes                 string    // bookings.notes
	CreatedAt             time.Time // bookings.created_at
	UpdatedAt             time.Time // bookings.updated_at
}
