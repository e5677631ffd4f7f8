package models

import (
	"time"
)

type Service interface {
	Start()
	Health() ServiceHealth
	Stop()
}

type ServiceHealth struct {
	Name         string    `bson:"name" json:"name"`
	LastSyncTime time.Time `bson:"last_sync_time" json:"last_sync_time"`
	NextSyncTime time.Time `bson:"next_sync_time" json:"next_sync_time"`
	Healthy      bool      `bson:"healthy" json:"healthy"`
}
