package di

import (
	"math/rand"

	"audiolytics/application/ports"
	"audiolytics/application/services"
	"audiolytics/application/simulation"
	"audiolytics/infrastructure/config"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	Random            *rand.Rand
	Generator         *simulation.EventGenerator
	Publisher         ports.EventPublisher
	EventRepo         ports.EventRepository
	Archive           ports.ArchiveStore
	Metrics           ports.MetricsPublisher
	IngestService     *services.IngestService
	SimulationService *services.SimulationService
}
