package models

import "time"

// SearchHistory is one prediction a user chose to keep.
type SearchHistory struct {
	ID               uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID           uint      `gorm:"column:user_id;index;not null" json:"-"`
	Origin           string    `gorm:"column:origin;size:500;not null" json:"origin"`
	Destination      string    `gorm:"column:destination;size:500;not null" json:"destination"`
	OriginLat        float64   `gorm:"column:origin_lat" json:"origin_lat"`
	OriginLon        float64   `gorm:"column:origin_lon" json:"origin_lon"`
	DestinationLat   float64   `gorm:"column:destination_lat" json:"destination_lat"`
	DestinationLon   float64   `gorm:"column:destination_lon" json:"destination_lon"`
	DateTime         time.Time `gorm:"column:datetime" json:"datetime"`
	TrafficLevel     int       `gorm:"column:traffic_level" json:"traffic_level"`
	TrafficLabel     string    `gorm:"column:traffic_label;size:16" json:"traffic_label"`
	SpeedKMH         float64   `gorm:"column:speed_kmh" json:"speed_kmh"`
	EstimatedMinutes float64   `gorm:"column:estimated_minutes" json:"estimated_minutes"`
	DistanceKM       float64   `gorm:"column:distance_km" json:"distance_km"`
	CreatedAt        time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (SearchHistory) TableName() string { return "search_history" }
