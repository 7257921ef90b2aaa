package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/utils"
)

// Role determines which profile fields a user must carry.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// VendorProfile holds the fields required of vendor accounts.
type VendorProfile struct {
	BusinessType       string `bson:"businessType" json:"businessType"`
	RegistrationNumber string `bson:"registrationNumber" json:"registrationNumber"`
	EstablishedYear    string `bson:"establishedYear" json:"establishedYear"`
	OpeningHours       string `bson:"openingHours" json:"openingHours"`
	IsConnected        bool   `bson:"isConnected" json:"isConnected"`
}

// DriverProfile holds the fields required of driver accounts.
type DriverProfile struct {
	LicenseNumber        string `bson:"licenseNumber" json:"licenseNumber"`
	VehicleLicenseNumber string `bson:"vehicleLicenseNumber" json:"vehicleLicenseNumber"`
	NICNumber            string `bson:"nicNumber" json:"nicNumber"`
	VehicleType          string `bson:"vehicleType" json:"vehicleType"`
}

// User represents an account of any role. The role-specific profile is only
// present for the matching role, so the role invariants hold by construction.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      Role               `bson:"role" json:"role"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"`
	Address   string             `bson:"address" json:"address"`
	City      string             `bson:"city" json:"city"`
	Vendor    *VendorProfile     `bson:"vendor,omitempty" json:"vendor,omitempty"`
	Driver    *DriverProfile     `bson:"driver,omitempty" json:"driver,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// RegisterRequest is the flat registration payload; role-specific fields are
// only consulted for the matching role.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`

	BusinessType       string `json:"businessType"`
	RegistrationNumber string `json:"registrationNumber"`
	EstablishedYear    string `json:"establishedYear"`
	OpeningHours       string `json:"openingHours"`

	LicenseNumber        string `json:"licenseNumber"`
	VehicleLicenseNumber string `json:"vehicleLicenseNumber"`
	NICNumber            string `json:"nicNumber"`
	VehicleType          string `json:"vehicleType"`
}

// NewUser validates the registration payload and builds a User. The password
// is stored as given; hashing is the caller's responsibility.
func NewUser(req RegisterRequest) (*User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, utils.Validationf("a valid email is required")
	}
	if req.Password == "" {
		return nil, utils.Validationf("password is required")
	}
	if !ValidRole(req.Role) {
		return nil, utils.Validationf("invalid role: %s", req.Role)
	}
	if req.Name == "" || req.Phone == "" || req.Address == "" || req.City == "" {
		return nil, utils.Validationf("name, phone, address and city are required")
	}

	user := &User{
		Email:   req.Email,
		Role:    req.Role,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
	}

	switch req.Role {
	case RoleVendor:
		if req.BusinessType == "" || req.RegistrationNumber == "" ||
			req.EstablishedYear == "" || req.OpeningHours == "" {
			return nil, utils.Validationf("vendor accounts require businessType, registrationNumber, establishedYear and openingHours")
		}
		user.Vendor = &VendorProfile{
			BusinessType:       req.BusinessType,
			RegistrationNumber: req.RegistrationNumber,
			EstablishedYear:    req.EstablishedYear,
			OpeningHours:       req.OpeningHours,
			IsConnected:        true,
		}
	case RoleDriver:
		if req.LicenseNumber == "" || req.VehicleLicenseNumber == "" ||
			req.NICNumber == "" || req.VehicleType == "" {
			return nil, utils.Validationf("driver accounts require licenseNumber, vehicleLicenseNumber, nicNumber and vehicleType")
		}
		user.Driver = &DriverProfile{
			LicenseNumber:        req.LicenseNumber,
			VehicleLicenseNumber: req.VehicleLicenseNumber,
			NICNumber:            req.NICNumber,
			VehicleType:          req.VehicleType,
		}
	}

	return user, nil
}

// ProfilePatch carries the mutable profile fields; nil means leave unchanged.
type ProfilePatch struct {
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`

	BusinessType *string `json:"businessType,omitempty"`
	OpeningHours *string `json:"openingHours,omitempty"`
	IsConnected  *bool   `json:"isConnected,omitempty"`

	VehicleType *string `json:"vehicleType,omitempty"`
}

// Apply merges the patch into the user. The password field is left for the
// caller, which must hash it before persisting.
func (u *User) Apply(patch ProfilePatch) {
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	if patch.City != nil {
		u.City = *patch.City
	}
	if u.Vendor != nil {
		if patch.BusinessType != nil {
			u.Vendor.BusinessType = *patch.BusinessType
		}
		if patch.OpeningHours != nil {
			u.Vendor.OpeningHours = *patch.OpeningHours
		}
		if patch.IsConnected != nil {
			u.Vendor.IsConnected = *patch.IsConnected
		}
	}
	if u.Driver != nil && patch.VehicleType != nil {
		u.Driver.VehicleType = *patch.VehicleType
	}
}
