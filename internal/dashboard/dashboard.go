// Package dashboard shapes backend lists for display: inventory totals per
// blood type, receive-page availability, and per-user appointment lists.
package dashboard

import (
	"fmt"
	"sort"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

// BloodTypeGroup is the total stock of one blood type across hospitals
type BloodTypeGroup struct {
	BloodTypeID int64
	Label       string
	TotalUnits  int
}

// GroupByBloodType sums available units per blood type id, sorted by label.
// A group takes its label from the first row seen for that id.
func GroupByBloodType(rows []models.InventoryRow, bloodTypes []models.BloodType) []BloodTypeGroup {
	index := make(map[int64]int)
	var groups []BloodTypeGroup

	for _, row := range rows {
		i, ok := index[row.BloodTypeID]
		if !ok {
			i = len(groups)
			index[row.BloodTypeID] = i
			groups = append(groups, BloodTypeGroup{
				BloodTypeID: row.BloodTypeID,
				Label:       RowBloodTypeLabel(row, bloodTypes),
			})
		}
		groups[i].TotalUnits += row.AvailableUnits
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Label < groups[b].Label
	})
	return groups
}

// RowBloodTypeLabel names the blood type of an inventory row: the row's own
// name, then the backend's blood type list, then a placeholder.
func RowBloodTypeLabel(row models.InventoryRow, bloodTypes []models.BloodType) string {
	if row.BloodTypeName != "" {
		return row.BloodTypeName
	}
	for _, bt := range bloodTypes {
		if bt.ID == row.BloodTypeID && bt.Name != "" {
			return bt.Name
		}
	}
	return fmt.Sprintf("Type #%d", row.BloodTypeID)
}

// BloodTypeLabel names a blood type id, preferring the backend's blood type
// list over names carried on inventory rows.
func BloodTypeLabel(id int64, bloodTypes []models.BloodType, rows []models.InventoryRow) string {
	for _, bt := range bloodTypes {
		if bt.ID == id && bt.Name != "" {
			return bt.Name
		}
	}
	for _, row := range rows {
		if row.BloodTypeID == id && row.BloodTypeName != "" {
			return row.BloodTypeName
		}
	}
	return fmt.Sprintf("Type #%d", id)
}

// HospitalLabel names the hospital of an inventory row
func HospitalLabel(row models.InventoryRow, hospitals []models.Hospital) string {
	if row.HospitalName != "" {
		return row.HospitalName
	}
	for _, h := range hospitals {
		if h.ID == row.HospitalID && h.Name != "" {
			return h.Name
		}
	}
	return fmt.Sprintf("Hospital #%d", row.HospitalID)
}

// RowsForBloodType returns the inventory rows of one blood type
func RowsForBloodType(rows []models.InventoryRow, bloodTypeID int64) []models.InventoryRow {
	out := []models.InventoryRow{}
	for _, row := range rows {
		if row.BloodTypeID == bloodTypeID {
			out = append(out, row)
		}
	}
	return out
}

// AvailabilityRow is one line of the receive page's availability table
type AvailabilityRow struct {
	BloodGroup string
	Units      int
}

// BloodOptions returns the distinct blood type names present in the
// inventory, sorted.
func BloodOptions(rows []models.InventoryRow) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		if !seen[row.BloodTypeName] {
			seen[row.BloodTypeName] = true
			names = append(names, row.BloodTypeName)
		}
	}
	sort.Strings(names)
	return names
}

// Availability lists units per blood group. Groups come from the inventory,
// or are the eight ABO/Rh groups when the inventory is empty. A non-empty
// selected keeps only that group.
func Availability(rows []models.InventoryRow, selected string) []AvailabilityRow {
	groups := BloodOptions(rows)
	if len(groups) == 0 {
		groups = models.BloodGroups
	}

	out := []AvailabilityRow{}
	for _, group := range groups {
		if selected != "" && group != selected {
			continue
		}
		units := 0
		for _, row := range rows {
			if row.BloodTypeName == group {
				units += row.AvailableUnits
			}
		}
		out = append(out, AvailabilityRow{BloodGroup: group, Units: units})
	}
	return out
}

// Counts are the admin dashboard's headline totals
type Counts struct {
	Inventory    int
	Users        int
	Appointments int
	Hospitals    int
}

// Count builds the headline totals
func Count(rows []models.InventoryRow, users []models.User, appointments []models.Appointment, hospitals []models.Hospital) Counts {
	return Counts{
		Inventory:    len(rows),
		Users:        len(users),
		Appointments: len(appointments),
		Hospitals:    len(hospitals),
	}
}

// AppointmentsFor returns the appointments made by one user
func AppointmentsFor(appointments []models.Appointment, userID int64) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// FindAppointment returns the appointment with the given id
func FindAppointment(appointments []models.Appointment, id int64) (models.Appointment, bool) {
	for _, a := range appointments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}
