package models

import "time"

type User struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role      string    `gorm:"column:role;size:32;default:user" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }
