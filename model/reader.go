package model

import "time"

// Reader is a physical NFC reader box and the Roku it drives. Readers identify
// themselves by the deviceId query parameter on play requests.
type Reader struct {
	DeviceID  string    `json:"deviceId" gorm:"primaryKey;column:device_id;size:64"`
	Name      string    `json:"name" gorm:"size:100"`
	RokuAddr  string    `json:"rokuAddr" gorm:"column:roku_addr;size:64"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (Reader) TableName() string { return "readers" }
