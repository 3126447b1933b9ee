package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

func TestGroupByBloodType(t *testing.T) {
	rows := []models.InventoryRow{
		{ID: 1, HospitalID: 1, BloodTypeID: 7, BloodTypeName: "O+", AvailableUnits: 4},
		{ID: 2, HospitalID: 2, BloodTypeID: 7, AvailableUnits: 6},
		{ID: 3, HospitalID: 1, BloodTypeID: 2, AvailableUnits: 1},
		{ID: 4, HospitalID: 1, BloodTypeID: 9, AvailableUnits: 3},
	}
	bloodTypes := []models.BloodType{{ID: 2, Name: "A-"}}

	groups := GroupByBloodType(rows, bloodTypes)

	assert.Equal(t, []BloodTypeGroup{
		{BloodTypeID: 2, Label: "A-", TotalUnits: 1},
		{BloodTypeID: 7, Label: "O+", TotalUnits: 10},
		{BloodTypeID: 9, Label: "Type #9", TotalUnits: 3},
	}, groups)
}

func TestGroupByBloodType_Empty(t *testing.T) {
	assert.Empty(t, GroupByBloodType(nil, nil))
}

func TestLabels(t *testing.T) {
	rows := []models.InventoryRow{{BloodTypeID: 3, BloodTypeName: "B+", HospitalID: 5}}
	bloodTypes := []models.BloodType{{ID: 1, Name: "AB+"}}
	hospitals := []models.Hospital{{ID: 5, Name: "St. Mary"}}

	assert.Equal(t, "AB+", BloodTypeLabel(1, bloodTypes, rows))
	assert.Equal(t, "B+", BloodTypeLabel(3, bloodTypes, rows))
	assert.Equal(t, "Type #4", BloodTypeLabel(4, bloodTypes, rows))

	assert.Equal(t, "St. Mary", HospitalLabel(rows[0], hospitals))
	assert.Equal(t, "Hospital #6", HospitalLabel(models.InventoryRow{HospitalID: 6}, hospitals))
	assert.Equal(t, "Central", HospitalLabel(models.InventoryRow{HospitalID: 5, HospitalName: "Central"}, hospitals))
}

func TestAvailability_DefaultsToAllGroups(t *testing.T) {
	rows := Availability(nil, "")

	require.Len(t, rows, 8)
	assert.Equal(t, "A+", rows[0].BloodGroup)
	assert.Equal(t, "O-", rows[7].BloodGroup)
	for _, r := range rows {
		assert.Zero(t, r.Units)
	}
}

func TestAvailability_SumsAndFilters(t *testing.T) {
	inventory := []models.InventoryRow{
		{BloodTypeName: "O+", AvailableUnits: 2},
		{BloodTypeName: "A+", AvailableUnits: 5},
		{BloodTypeName: "O+", AvailableUnits: 3},
	}

	assert.Equal(t, []AvailabilityRow{
		{BloodGroup: "A+", Units: 5},
		{BloodGroup: "O+", Units: 5},
	}, Availability(inventory, ""))

	assert.Equal(t, []AvailabilityRow{{BloodGroup: "O+", Units: 5}}, Availability(inventory, "O+"))
	assert.Empty(t, Availability(inventory, "AB-"))
	assert.Equal(t, []string{"A+", "O+"}, BloodOptions(inventory))
}

func TestAppointmentsFor(t *testing.T) {
	appointments := []models.Appointment{
		{ID: 1, UserID: 10},
		{ID: 2, UserID: 11},
		{ID: 3, UserID: 10},
	}

	mine := AppointmentsFor(appointments, 10)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(3), mine[1].ID)

	assert.Empty(t, AppointmentsFor(appointments, 99))

	found, ok := FindAppointment(appointments, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(11), found.UserID)
	_, ok = FindAppointment(appointments, 42)
	assert.False(t, ok)
}

func TestCountAndRowsForBloodType(t *testing.T) {
	rows := []models.InventoryRow{{ID: 1, BloodTypeID: 1}, {ID: 2, BloodTypeID: 2}, {ID: 3, BloodTypeID: 1}}

	counts := Count(rows, []models.User{{ID: 1}}, nil, []models.Hospital{{ID: 1}, {ID: 2}})
	assert.Equal(t, Counts{Inventory: 3, Users: 1, Appointments: 0, Hospitals: 2}, counts)

	assert.Len(t, RowsForBloodType(rows, 1), 2)
	assert.Empty(t, RowsForBloodType(rows, 5))
}
