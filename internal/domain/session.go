package domain

import "time"

// Session es la fila persistida de un visitante cuando las sesiones van a postgres.
type Session struct {
	ID        string    `gorm:"size:36;primaryKey"`
	State     NavState  `gorm:"type:jsonb;serializer:json"`
	UpdatedAt time.Time `gorm:"index"`
}

func (Session) TableName() string { return "visitor_sessions" }
