package domain

import "time"

type AccountType string

const (
	AccountTypeAdmin    AccountType = "Admin"
	AccountTypeCustomer AccountType = "Customer"
	AccountTypeCarrier  AccountType = "Carrier"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAdmin, AccountTypeCustomer, AccountTypeCarrier:
		return true
	}
	return false
}

type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Type         AccountType
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Account) CanSignIn() bool {
	return a.IsActive
}

type Admin struct {
	ID        int64
	AccountID int64
	Username  string
	FullName  string
	Email     string
	Phone     string
	IsActive  bool
}

type Customer struct {
	ID        int64
	AccountID int64
	Username  string
	FullName  string
	Email     string
	Phone     string
	Address   string
	IsActive  bool
	CreatedAt time.Time
}

type Carrier struct {
	ID            int64
	AccountID     int64
	Username      string
	FullName      string
	Phone         string
	VehicleNumber string
	IsAvailable   bool
	AccountActive bool
}

// Carrier rejection reasons for order assignment.
const (
	CarrierUnavailable = "CARRIER_UNAVAILABLE"
	CarrierInactive    = "CARRIER_INACTIVE"
)

// AssignmentBlocker returns the reason the carrier cannot take orders, or
// an empty string when it can.
func (c Carrier) AssignmentBlocker() string {
	if !c.AccountActive {
		return CarrierInactive
	}
	if !c.IsAvailable {
		return CarrierUnavailable
	}
	return ""
}
