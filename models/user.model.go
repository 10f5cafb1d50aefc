package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage    string    `gorm:"default:''"`
	Name            string    `gorm:"default:''"`
	Email           string    `gorm:"unique;not null"`
	Mobile          string    `gorm:"default:''"`
	Role            string    `gorm:"default:'USER'"` // USER, INSTRUCTOR, ADMIN
	Password        string    `gorm:"not null"`
	IsEmailVerified bool      `gorm:"default:false"`
	LastLogin       time.Time `gorm:"default:NULL"`
	FcmToken        string    `gorm:"default:''"` // last push token reported by the host bridge
	IsDeleted       bool      `gorm:"default:false"`
}
