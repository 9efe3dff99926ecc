package vendors

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const vendorColumns = `id, company, contact_person, email, phone, address, city, country,
	registration_number, tax_id, status, created_at, updated_at`

// Service provides vendor operations.
type Service struct {
	pool *pgxpool.Pool
}

// NewService creates a new vendor service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// VehicleParams describes a vehicle supplied at vendor creation.
type VehicleParams struct {
	VehicleClass    *string `json:"vehicle_class"`
	Brand           *string `json:"brand"`
	Model           *string `json:"model"`
	Year            *int    `json:"year"`
	LicensePlate    *string `json:"license_plate"`
	SeatingCapacity *int    `json:"seating_capacity"`
}

// CreateParams are the inputs for vendor creation.
type CreateParams struct {
	Company            string
	ContactPerson      *string
	Email              *string
	Phone              *string
	Address            *string
	City               *string
	Country            *string
	RegistrationNumber *string
	TaxID              *string
	Vehicles           []VehicleParams
}

// Create inserts a vendor and its vehicles in one transaction. Any failure
// rolls the whole creation back; partial vendors without their vehicles are
// never visible.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Vendor, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	vendor := &Vendor{
		ID:                 uuid.New(),
		Company:            p.Company,
		ContactPerson:      p.ContactPerson,
		Email:              p.Email,
		Phone:              p.Phone,
		Address:            p.Address,
		City:               p.City,
		Country:            p.Country,
		RegistrationNumber: p.RegistrationNumber,
		TaxID:              p.TaxID,
		Status:             VendorInactive,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO vendors (id, company, contact_person, email, phone, address, city, country, registration_number, tax_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, vendor.ID, p.Company, p.ContactPerson, p.Email, p.Phone, p.Address, p.City, p.Country,
		p.RegistrationNumber, p.TaxID,
	).Scan(&vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vendor: %w", err)
	}

	for _, v := range p.Vehicles {
		_, err = tx.Exec(ctx, `
			INSERT INTO vehicles (id, vendor_id, vehicle_class, brand, model, year, license_plate, seating_capacity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New(), vendor.ID, v.VehicleClass, v.Brand, v.Model, v.Year, v.LicensePlate, v.SeatingCapacity)
		if err != nil {
			return nil, fmt.Errorf("failed to insert vehicle: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return vendor, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// List returns a page of vendors with their vehicle counts plus the total
// match count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]VendorListItem, int, error) {
	where := ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND company ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vendors`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vendors: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := `
		SELECT ` + vendorColumns + `,
		  (SELECT COUNT(*) FROM vehicles WHERE vendor_id = vendors.id) AS total_vehicles
		FROM vendors` + where + `
		ORDER BY created_at DESC
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var items []VendorListItem
	for rows.Next() {
		var item VendorListItem
		if err := scanVendor(rows, &item.Vendor, &item.TotalVehicles); err != nil {
			return nil, 0, fmt.Errorf("failed to scan vendor: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating vendors: %w", err)
	}

	return items, total, nil
}

// GetByID retrieves a vendor with its vehicles.
func (s *Service) GetByID(ctx context.Context, vendorID uuid.UUID) (*VendorDetail, error) {
	var detail VendorDetail
	row := s.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, vendorID)
	if err := scanVendor(row, &detail.Vendor, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, vendor_id, vehicle_class, brand, model, year, license_plate, seating_capacity, status
		FROM vehicles
		WHERE vendor_id = $1
	`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Vehicle
		err := rows.Scan(&v.ID, &v.VendorID, &v.VehicleClass, &v.Brand, &v.Model, &v.Year, &v.LicensePlate, &v.SeatingCapacity, &v.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		detail.Vehicles = append(detail.Vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicles: %w", err)
	}

	return &detail, nil
}

// UpdateParams are the mutable vendor contact fields.
type UpdateParams struct {
	ContactPerson *string
	Email         *string
	Phone         *string
}

// Update modifies a vendor's contact fields.
func (s *Service) Update(ctx context.Context, vendorID uuid.UUID, p UpdateParams) (*Vendor, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE vendors
		SET contact_person = $1, email = $2, phone = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+vendorColumns+`
	`, p.ContactPerson, p.Email, p.Phone, vendorID)

	var vendor Vendor
	if err := scanVendor(row, &vendor, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to update vendor: %w", err)
	}

	return &vendor, nil
}

// UpdateStatus changes a vendor's status.
func (s *Service) UpdateStatus(ctx context.Context, vendorID uuid.UUID, status VendorStatus) (*Vendor, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE vendors
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+vendorColumns+`
	`, status, vendorID)

	var vendor Vendor
	if err := scanVendor(row, &vendor, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to update vendor status: %w", err)
	}

	return &vendor, nil
}

// Delete removes a vendor; its vehicles cascade.
func (s *Service) Delete(ctx context.Context, vendorID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, vendorID)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendorNotFound
	}
	return nil
}

func scanVendor(row pgx.Row, vendor *Vendor, totalVehicles *int) error {
	dest := []any{
		&vendor.ID,
		&vendor.Company,
		&vendor.ContactPerson,
		&vendor.Email,
		&vendor.Phone,
		&vendor.Address,
		&vendor.City,
		&vendor.Country,
		&vendor.RegistrationNumber,
		&vendor.TaxID,
		&vendor.Status,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	}
	if totalVehicles != nil {
		dest = append(dest, totalVehicles)
	}
	return row.Scan(dest...)
}
