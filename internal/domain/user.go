package domain

import "time"

type User struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex;size:255"`
	FullName  string    `json:"fullName" gorm:"size:255"`
	Phone     string    `json:"phone" gorm:"size:20"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

type Address struct {
	ID            uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint64    `json:"userId" gorm:"not null;index"`
	RecipientName string    `json:"recipientName" gorm:"not null;size:255"`
	Phone         string    `json:"phone" gorm:"not null;size:20"`
	Line          string    `json:"line" gorm:"not null;size:500"`
	Ward          string    `json:"ward" gorm:"size:100"`
	District      string    `json:"district" gorm:"size:100"`
	Province      string    `json:"province" gorm:"size:100"`
	IsDefault     bool      `json:"isDefault" gorm:"default:false"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
