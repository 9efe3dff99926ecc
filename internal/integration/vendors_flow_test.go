package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/triptech/fleetd/internal/auth"
	"github.com/triptech/fleetd/internal/vendors"
)

func createVendor(t *testing.T, serverURL, token, company string, vehicles []map[string]any) vendors.Vendor {
	t.Helper()

	status, env := doJSON(t, http.MethodPost, serverURL+"/api/vendors/", token, map[string]any{
		"company":        company,
		"contact_person": "Pat Contact",
		"email":          company + "@fleet.example",
		"vehicles":       vehicles,
	})
	require.Equal(t, http.StatusCreated, status, "create vendor failed: %s", env.Error)
	require.Equal(t, "Vendor created successfully", env.Message)

	var created vendors.Vendor
	decodeData(t, env, &created)
	return created
}

func TestVendorCreateAndDetail(t *testing.T) {
	srv, _ := newTestServer(t)

	admin := registerAndLogin(t, srv.URL, "admin@fleet.example", "Ada Admin", "Fleet Co", auth.RoleAdmin)

	created := createVendor(t, srv.URL, admin.Token, "Roadstar Transit", []map[string]any{
		{"vehicle_class": "bus", "brand": "Volvo", "model": "9700", "year": 2021, "seating_capacity": 54},
		{"vehicle_class": "van", "brand": "Ford", "model": "Transit", "year": 2023, "seating_capacity": 12},
	})
	require.Equal(t, "Roadstar Transit", created.Company)
	require.Equal(t, vendors.VendorInactive, created.Status)

	// Detail includes the vehicles inserted in the same transaction.
	status, env := doJSON(t, http.MethodGet, srv.URL+"/api/vendors/"+created.ID.String(), admin.Token, nil)
	require.Equal(t, http.StatusOK, status)

	var detail vendors.VendorDetail
	decodeData(t, env, &detail)
	require.Equal(t, created.ID, detail.ID)
	require.Len(t, detail.Vehicles, 2)
	for _, v := range detail.Vehicles {
		require.Equal(t, created.ID, v.VendorID)
	}

	// Company is required.
	status, env = doJSON(t, http.MethodPost, srv.URL+"/api/vendors/", admin.Token, map[string]any{
		"contact_person": "No Company",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Company name is required", env.Error)
}

func TestVendorListFiltersAndPagination(t *testing.T) {
	srv, _ := newTestServer(t)

	admin := registerAndLogin(t, srv.URL, "admin@fleet.example", "Ada Admin", "Fleet Co", auth.RoleAdmin)

	roadstar := createVendor(t, srv.URL, admin.Token, "Roadstar Transit", []map[string]any{
		{"vehicle_class": "bus"},
	})
	createVendor(t, srv.URL, admin.Token, "Harbor Freight Lines", nil)

	status, env := doJSON(t, http.MethodPut, srv.URL+"/api/vendors/"+roadstar.ID.String()+"/status", admin.Token, map[string]any{
		"status": "Active",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Vendor status updated successfully", env.Message)

	var listed []vendors.VendorListItem

	status, env = doJSON(t, http.MethodGet, srv.URL+"/api/vendors/?status=Active", admin.Token, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, "Roadstar Transit", listed[0].Company)
	require.Equal(t, 1, listed[0].TotalVehicles)

	status, env = doJSON(t, http.MethodGet, srv.URL+"/api/vendors/?search=harbor", admin.Token, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, "Harbor Freight Lines", listed[0].Company)

	// Page past the data: empty slice but the count still covers everything.
	status, env = doJSON(t, http.MethodGet, srv.URL+"/api/vendors/?page=2&limit=10", admin.Token, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &listed)
	require.Empty(t, listed)
	require.NotNil(t, env.Pagination)
	require.Equal(t, 2, env.Pagination.Total)
	require.Equal(t, 2, env.Pagination.Page)
}

func TestVendorUpdateAndDelete(t *testing.T) {
	srv, pool := newTestServer(t)

	admin := registerAndLogin(t, srv.URL, "admin@fleet.example", "Ada Admin", "Fleet Co", auth.RoleAdmin)

	created := createVendor(t, srv.URL, admin.Token, "Roadstar Transit", nil)

	status, env := doJSON(t, http.MethodPut, srv.URL+"/api/vendors/"+created.ID.String(), admin.Token, map[string]any{
		"contact_person": "New Contact",
		"phone":          "+1-555-0100",
	})
	require.Equal(t, http.StatusOK, status)

	var updated vendors.Vendor
	decodeData(t, env, &updated)
	require.NotNil(t, updated.ContactPerson)
	require.Equal(t, "New Contact", *updated.ContactPerson)
	require.NotNil(t, updated.Phone)
	require.Equal(t, "+1-555-0100", *updated.Phone)

	status, env = doJSON(t, http.MethodDelete, srv.URL+"/api/vendors/"+created.ID.String(), admin.Token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Vendor deleted successfully", env.Message)

	status, env = doJSON(t, http.MethodGet, srv.URL+"/api/vendors/"+created.ID.String(), admin.Token, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Vendor not found", env.Error)

	// Vehicles cascade with their vendor.
	var count int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM vehicles WHERE vendor_id = $1`, created.ID).Scan(&count))
	require.Zero(t, count)

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/vendors/"+created.ID.String(), admin.Token, nil)
	require.Equal(t, http.StatusNotFound, status)
}
