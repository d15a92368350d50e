package appmanager

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"GtnPortal/api/gateway"
	"GtnPortal/internal/access"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/jobs"
	"GtnPortal/internal/logger"
	"GtnPortal/internal/masterdata"
	"GtnPortal/internal/serviceiface"
)

var (
	authDB       *sql.DB
	pgxPool      *pgxpool.Pool
	repo         masterdata.Repository
	ingestSvc    *ingest.Service
	sessionStore *access.SessionStore
)

// SetDB sets the identity database used for session and subscription lookups.
func SetDB(database *sql.DB) {
	authDB = database
}

func SetPgxPool(pool *pgxpool.Pool) {
	pgxPool = pool
}

// SetRepository overrides the master data backend.
func SetRepository(r masterdata.Repository) {
	repo = r
}

func SetIngestService(s *ingest.Service) {
	ingestSvc = s
}

// GetPgxPool returns the pgx pool connection
func GetPgxPool() *pgxpool.Pool {
	return pgxPool
}

// repository returns the configured backend: an explicit override, Postgres
// when a pool is set, otherwise an in-process store.
func repository() masterdata.Repository {
	if repo == nil {
		if pgxPool != nil {
			repo = masterdata.NewPostgresRepository(pgxPool)
		} else {
			repo = masterdata.NewMemoryRepository()
		}
	}
	return repo
}

func accessProvider() access.Provider {
	if authDB != nil {
		return access.NewSQLProvider(authDB)
	}
	if sessionStore == nil {
		sessionStore = access.NewSessionStore(nil)
	}
	return sessionStore
}

var serviceConstructors = map[string]func(map[string]interface{}) serviceiface.Service{
	"logger": func(cfg map[string]interface{}) serviceiface.Service {
		return logger.NewLoggerService(cfg)
	},
	"access": func(cfg map[string]interface{}) serviceiface.Service {
		sessionStore = access.NewSessionStore(cfg)
		if user, ok := cfg["dev_user"].(string); ok && user != "" && authDB == nil {
			s := sessionStore.CreateSession(access.Identity{UserID: user, Email: user, SubscriptionActive: true}, 24*time.Hour)
			logger.L().Info("development session issued", zap.String("user_id", user), zap.String("token", s.Token))
		}
		return sessionStore
	},
	"cron": func(cfg map[string]interface{}) serviceiface.Service {
		return jobs.NewCronService(cfg, repository())
	},
	"gateway": func(cfg map[string]interface{}) serviceiface.Service {
		svc := ingestSvc
		if svc == nil {
			svc = ingest.NewService(nil, nil)
		}
		return gateway.NewGatewayService(cfg, gateway.Deps{
			Ingest: svc,
			Repo:   repository(),
			Access: accessProvider(),
		})
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	mu       sync.Mutex
}

func NewAppManager() *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

// StartAll starts services in registration order and stops at the first
// failure.
func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	for _, service := range am.services {
		logger.L().Info("starting service", zap.String("service", service.Name()))
		if err := service.Start(); err != nil {
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}
	return nil
}

// StopAll stops services in reverse order. Every service is stopped; the
// first error is returned.
func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	var first error
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil && first == nil {
			first = fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	return first
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	am.mu.Lock()
	defer am.mu.Unlock()
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, err
	}

	// sort by start_order
	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})

	return seq.Services, nil
}

// AutoRegisterServices constructs every known service in order. The logger is
// installed globally as soon as it is built so later constructors log through
// it. Unknown names are reported and skipped.
func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			logger.L().Warn("unknown service in sequence", zap.String("service", svc.Name))
			continue
		}
		cfg := svc.Config
		if cfg == nil {
			cfg = map[string]interface{}{}
		}
		service := constructor(cfg)
		am.RegisterService(service)
		if l, ok := service.(*logger.LoggerService); ok {
			logger.SetGlobalLogger(l)
		}
	}
}
