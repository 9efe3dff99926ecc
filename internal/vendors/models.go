package vendors

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrVendorNotFound is returned when a vendor does not exist.
var ErrVendorNotFound = errors.New("vendor not found")

// VendorStatus is the vendor lifecycle state. New vendors start Inactive
// until approved.
type VendorStatus string

const (
	VendorActive   VendorStatus = "Active"
	VendorInactive VendorStatus = "Inactive"
)

// Vendor is a row in the vendors table.
type Vendor struct {
	ID                 uuid.UUID    `db:"id" json:"id"`
	Company            string       `db:"company" json:"company"`
	ContactPerson      *string      `db:"contact_person" json:"contact_person"`
	Email              *string      `db:"email" json:"email"`
	Phone              *string      `db:"phone" json:"phone"`
	Address            *string      `db:"address" json:"address"`
	City               *string      `db:"city" json:"city"`
	Country            *string      `db:"country" json:"country"`
	RegistrationNumber *string      `db:"registration_number" json:"registration_number"`
	TaxID              *string      `db:"tax_id" json:"tax_id"`
	Status             VendorStatus `db:"status" json:"status"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}

// VendorListItem is a vendor row with its vehicle count, as returned by the
// list endpoint.
type VendorListItem struct {
	Vendor
	TotalVehicles int `db:"total_vehicles" json:"total_vehicles"`
}

// Vehicle is a row in the vehicles table.
type Vehicle struct {
	ID              uuid.UUID `db:"id" json:"id"`
	VendorID        uuid.UUID `db:"vendor_id" json:"vendor_id"`
	VehicleClass    *string   `db:"vehicle_class" json:"vehicle_class"`
	Brand           *string   `db:"brand" json:"brand"`
	Model           *string   `db:"model" json:"model"`
	Year            *int      `db:"year" json:"year"`
	LicensePlate    *string   `db:"license_plate" json:"license_plate"`
	SeatingCapacity *int      `db:"seating_capacity" json:"seating_capacity"`
	Status          string    `db:"status" json:"status"`
}

// VendorDetail is a vendor with its vehicles, as returned by the get endpoint.
type VendorDetail struct {
	Vendor
	Vehicles []Vehicle `json:"vehicles"`
}
