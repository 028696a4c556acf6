// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when an appointment is successfully
// booked. It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type BookingCreatedEvent struct {
	ReferenceNumber string `json:"reference_number"`
	ServiceType     string `json:"service_type"`
	Date            string `json:"date"`
	TimeSlot        string `json:"time_slot"`
	TechnicianID    uint64 `json:"technician_id"`
	CustomerName    string `json:"customer_name"`
	CreatedAt       string `json:"created_at"`
}
