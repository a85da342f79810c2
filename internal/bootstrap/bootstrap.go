package bootstrap

import (
	"github.com/quantick/barpipe/internal/domain/market"
	"github.com/quantick/barpipe/pkg/config"
	"github.com/quantick/barpipe/pkg/logger"
	"github.com/quantick/barpipe/pkg/questdb"
	"github.com/quantick/barpipe/pkg/redis"
)

// Bootstrap wires the pipeline together: repositories over the storage
// clients, usecases over the repositories, and the streaming pipeline on top.
type Bootstrap struct {
	Repository Repository
	Usecase    Usecase
	Pipeline   Pipeline

	Config  *config.Config
	Logger  logger.Interface
	QuestDB questdb.QuestDBClient
	Redis   redis.Client

	// Publisher is nil when bar publishing is disabled.
	Publisher market.BarPublisher
}

// BootstrapConfig carries the externally constructed clients.
type BootstrapConfig struct {
	Config    *config.Config
	Logger    logger.Interface
	QuestDB   questdb.QuestDBClient
	Redis     redis.Client
	Publisher market.BarPublisher
}

// Init initializes the bootstrap.
func (b *Bootstrap) Init(config BootstrapConfig) Bootstrap {
	b.Config = config.Config
	b.Logger = config.Logger
	b.QuestDB = config.QuestDB
	b.Redis = config.Redis
	b.Publisher = config.Publisher

	b.registerRepository()
	b.registerUsecase()
	b.registerPipeline()

	return *b
}
