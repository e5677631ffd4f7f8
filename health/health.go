// Package health periodically reports liveness of this instance to the
// shared store, one document per hostname.
package health

import (
	"os"
	"sync"
	"time"

	"github.com/artledger/certmint/app"
	"github.com/artledger/certmint/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type Reporter struct {
	db            app.Database
	hostname      string
	minterAddress string
	chainId       string
	interval      time.Duration

	services []models.Service

	mu       sync.Mutex
	lastSync time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewReporter(db app.Database, minterAddress string, chainId string, interval time.Duration, services []models.Service) *Reporter {
	hostname, err := os.Hostname()
	if err != nil {
		log.Error("[HEALTH] Could not get hostname: ", err)
		hostname = "unknown"
	}
	return &Reporter{
		db:            db,
		hostname:      hostname,
		minterAddress: minterAddress,
		chainId:       chainId,
		interval:      interval,
		services:      services,
		stop:          make(chan struct{}),
	}
}

func (r *Reporter) Start() {
	log.Info("[HEALTH] Reporter started for host ", r.hostname)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.PostHealth()
		for {
			select {
			case <-r.stop:
				log.Info("[HEALTH] Reporter stopped")
				return
			case <-ticker.C:
				r.PostHealth()
			}
		}
	}()
}

func (r *Reporter) Stop() {
	close(r.stop)
	r.wg.Wait()
}

// PostHealth upserts this instance's health document, keyed by hostname.
func (r *Reporter) PostHealth() bool {
	serviceHealths := []models.ServiceHealth{}
	healthy := true
	for _, service := range r.services {
		serviceHealth := service.Health()
		if !serviceHealth.Healthy {
			healthy = false
		}
		serviceHealths = append(serviceHealths, serviceHealth)
	}

	now := time.Now()
	filter := bson.M{"hostname": r.hostname}
	update := bson.M{
		"$set": bson.M{
			"hostname":        r.hostname,
			"minter_address":  r.minterAddress,
			"chain_id":        r.chainId,
			"healthy":         healthy,
			"service_healths": serviceHealths,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	if err := r.db.UpsertOne(models.CollectionHealthChecks, filter, update); err != nil {
		log.Error("[HEALTH] Error posting health: ", err)
		return false
	}

	r.mu.Lock()
	r.lastSync = now
	r.mu.Unlock()

	log.Debug("[HEALTH] Posted health for host ", r.hostname)
	return true
}

// Snapshot returns the current liveness view served by the health endpoint.
func (r *Reporter) Snapshot() models.Health {
	r.mu.Lock()
	lastSync := r.lastSync
	r.mu.Unlock()

	serviceHealths := []models.ServiceHealth{}
	healthy := true
	for _, service := range r.services {
		serviceHealth := service.Health()
		if !serviceHealth.Healthy {
			healthy = false
		}
		serviceHealths = append(serviceHealths, serviceHealth)
	}

	return models.Health{
		Hostname:       r.hostname,
		MinterAddress:  r.minterAddress,
		ChainId:        r.chainId,
		Healthy:        healthy,
		ServiceHealths: serviceHealths,
		UpdatedAt:      lastSync,
	}
}
