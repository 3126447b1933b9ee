package models

// Credentials is the authenticate request body
type Credentials struct {
	UserName string `json:"userName" form:"userName" validate:"required,notblank"`
	Password string `json:"password" form:"password" validate:"required,notblank"`
}

// Registration is the sign-up request body
type Registration struct {
	FirstName        string `json:"firstName" form:"firstName" validate:"required"`
	LastName         string `json:"lastName" form:"lastName" validate:"required"`
	Email            string `json:"email" form:"email" validate:"required,email"`
	PhoneNumber      string `json:"phoneNumber" form:"phoneNumber" validate:"required"`
	Address          string `json:"address" form:"address"`
	DateOfBirth      string `json:"dateOfBirth" form:"dateOfBirth" validate:"required"`
	Gender           string `json:"gender" form:"gender" validate:"required"`
	UserType         string `json:"userType" form:"userType" validate:"omitempty,oneof=Donor Recipient"`
	BloodType        string `json:"bloodType" form:"bloodType" validate:"omitempty,bloodtype"`
	CreateDate       string `json:"createDate"`
	UpdateDate       string `json:"updateDate"`
	LastDonationDate string `json:"lastDonationDate"`
	UserName         string `json:"userName" form:"userName" validate:"required"`
	Password         string `json:"password" form:"password" validate:"required"`
}

// Hospital is a donation site
type Hospital struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// BloodType is an ABO/Rh group known to the backend
type BloodType struct {
	ID   int64  `json:"id"`
	Name string `json:"bloodTypeName"`
}

// InventoryRow is the stock of one blood type at one hospital.
// The name fields are optional in backend responses.
type InventoryRow struct {
	ID             int64  `json:"id"`
	HospitalID     int64  `json:"hospitalId"`
	HospitalName   string `json:"hospitalName,omitempty"`
	BloodTypeID    int64  `json:"bloodTypeId"`
	BloodTypeName  string `json:"bloodTypeName,omitempty"`
	AvailableUnits int    `json:"availableUnits"`
}

// InventoryUpdate moves an inventory row to another hospital or blood type
type InventoryUpdate struct {
	BloodTypeID int64 `json:"bloodTypeId" form:"bloodTypeId" validate:"required,gt=0"`
	HospitalID  int64 `json:"hospitalId" form:"hospitalId" validate:"required,gt=0"`
}

// UnitsChange is the body of the addunits/removeunits endpoints
type UnitsChange struct {
	Units int `json:"units" form:"units" validate:"required,gt=0"`
}

// AppointmentStatus values used by the dashboard
const (
	AppointmentPending   = "Pending"
	AppointmentApproved  = "Approved"
	AppointmentCancelled = "Cancelled"
)

// AppointmentTypeDonation is the type the donation page schedules
const AppointmentTypeDonation = "Blood Donation"

// Appointment is a scheduled visit. The maker and hospital detail fields
// are only filled on list responses.
type Appointment struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"userId"`
	HospitalID      int64  `json:"hospitalId"`
	AppointmentType string `json:"appointmentType"`
	Status          string `json:"status"`
	Date            string `json:"date"`
	Info            string `json:"info"`

	HospitalName    string `json:"hospitalName,omitempty"`
	HospitalAddress string `json:"hospitalAddress,omitempty"`
	HospitalPhone   string `json:"hospitalPhone,omitempty"`
	HospitalEmail   string `json:"hospitalEmail,omitempty"`

	MadeBy         string `json:"appointmentMadeBy,omitempty"`
	MakerEmail     string `json:"appointmentMakerEmail,omitempty"`
	MakerPhone     string `json:"appointmentMakerPhone,omitempty"`
	MakerBloodType string `json:"appointmentMakerBloodType,omitempty"`
	IsCancelled    bool   `json:"isCancelled,omitempty"`
}

// AppointmentForm is the body for creating or editing an appointment
type AppointmentForm struct {
	UserID          int64  `json:"userId"`
	HospitalID      int64  `json:"hospitalId" form:"hospitalId" validate:"required,gt=0"`
	AppointmentType string `json:"appointmentType"`
	Status          string `json:"status"`
	Date            string `json:"date" form:"date" validate:"required"`
	Info            string `json:"info" form:"info"`
}

// BloodRequest is an emergency request for blood submitted by a recipient
type BloodRequest struct {
	RequestName  string `json:"requestName" form:"requestName" validate:"required"`
	BloodType    string `json:"bloodType" form:"bloodType" validate:"required,bloodtype"`
	HospitalName string `json:"hospitalName" form:"hospitalName" validate:"required"`
	RequestNote  string `json:"requestNote" form:"requestNote"`
	RequestState string `json:"requestState"`
}

// ProfileUpdate is the editable subset of a user's profile
type ProfileUpdate struct {
	FirstName   string `json:"firstName" form:"firstName" validate:"required"`
	LastName    string `json:"lastName" form:"lastName" validate:"required"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Address     string `json:"address" form:"address"`
	BloodType   string `json:"bloodType" form:"bloodType" validate:"omitempty,bloodtype"`
}

// BloodGroups lists the ABO/Rh groups in display order
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// IsBloodGroup reports whether s is one of BloodGroups
func IsBloodGroup(s string) bool {
	for _, g := range BloodGroups {
		if g == s {
			return true
		}
	}
	return false
}

// Apply copies the edited profile fields onto u
func (p ProfileUpdate) Apply(u *User) {
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Email = p.Email
	u.PhoneNumber = p.PhoneNumber
	u.Address = p.Address
	if p.BloodType != "" {
		u.BloodType = p.BloodType
	}
}
