package models

import "time"

type Favorite struct {
	ID             uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID         uint      `gorm:"column:user_id;not null;uniqueIndex:idx_favorite_route" json:"-"`
	Origin         string    `gorm:"column:origin;size:500;not null;uniqueIndex:idx_favorite_route" json:"origin"`
	Destination    string    `gorm:"column:destination;size:500;not null;uniqueIndex:idx_favorite_route" json:"destination"`
	OriginLat      float64   `gorm:"column:origin_lat" json:"origin_lat"`
	OriginLon      float64   `gorm:"column:origin_lon" json:"origin_lon"`
	DestinationLat float64   `gorm:"column:destination_lat" json:"destination_lat"`
	DestinationLon float64   `gorm:"column:destination_lon" json:"destination_lon"`
	Name           *string   `gorm:"column:name;size:255" json:"name"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Favorite) TableName() string { return "favorites" }
