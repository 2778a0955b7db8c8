package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/config"
	"github.com/oksasatya/go-contacts-api/internal/application"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
	"github.com/oksasatya/go-contacts-api/pkg/ratelimit"
)

// app-level container to share constructed components across packages
// Router wires modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	rateGate   *ratelimit.Gate

	users        repo.UserRepository
	contacts     repo.ContactStore
	contactIndex repo.ContactIndex
	mailer       application.Mailer
	avatars      application.AvatarStorage
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }
func SetJWT(m *helpers.JWTManager)  { jwtManager = m }
func GetJWT() *helpers.JWTManager   { return jwtManager }

// GetRateGate builds the gate lazily on top of the shared Redis client.
func GetRateGate() *ratelimit.Gate {
	if rateGate == nil && redisClient != nil {
		rateGate = ratelimit.NewGate(redisClient)
	}
	return rateGate
}

func SetRateGate(g *ratelimit.Gate) { rateGate = g }

func SetUserRepo(r repo.UserRepository)   { users = r }
func GetUserRepo() repo.UserRepository    { return users }
func SetContactStore(s repo.ContactStore) { contacts = s }
func GetContactStore() repo.ContactStore  { return contacts }

// SetContactIndex stores the full-text index. Callers must not pass a typed
// nil; leave it unset when search is disabled.
func SetContactIndex(i repo.ContactIndex) { contactIndex = i }
func GetContactIndex() repo.ContactIndex  { return contactIndex }

func SetMailer(m application.Mailer)               { mailer = m }
func GetMailer() application.Mailer                { return mailer }
func SetAvatarStorage(a application.AvatarStorage) { avatars = a }
func GetAvatarStorage() application.AvatarStorage  { return avatars }

// Reset clears every singleton. Tests use it between wiring runs.
func Reset() {
	cfg, logger, pgPool, redisClient, esClient = nil, nil, nil, nil, nil
	jwtManager, rateGate = nil, nil
	users, contacts, contactIndex, mailer, avatars = nil, nil, nil, nil, nil
}
