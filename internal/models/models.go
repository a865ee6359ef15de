package models

import "time"

// TimeLayout is the timestamp format persisted in the locations table.
// Second precision, lexicographic order matches chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// StatusActive is the status a device record carries unless set otherwise.
const StatusActive = "Active"

// Database Models

// Location is one position/status sample for a device. Records are
// append-only; only the status of the most recent row per device may be
// rewritten in place.
type Location struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	DeviceID  int     `gorm:"column:device_id;index:idx_device_time,priority:1;not null" json:"device_id"`
	Time      string  `gorm:"column:time;index:idx_device_time,priority:2;not null" json:"time"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	District  *string `json:"district"`
	State     *string `json:"state"`
	Status    string  `gorm:"default:Active" json:"status"`
}

func (Location) TableName() string {
	return "locations"
}

// Timestamp parses the persisted time string.
func (l *Location) Timestamp() (time.Time, error) {
	return time.Parse(TimeLayout, l.Time)
}

// User is an account for the HTTP layer. Passwords are bcrypt hashes.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Reference Models (read-only states database)

type State struct {
	ID        uint   `gorm:"column:id;primaryKey" json:"id"`
	StateName string `gorm:"column:state_name" json:"state_name"`
}

func (State) TableName() string {
	return "states"
}

type District struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	StateID      uint   `gorm:"column:state_id" json:"state_id"`
	DistrictName string `gorm:"column:district_name" json:"district_name"`
}

func (District) TableName() string {
	return "districts"
}
