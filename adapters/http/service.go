package authhttp

import (
	"net/http"
	"strings"

	core "github.com/KenTanaka/smskit/core"
	memorylimiter "github.com/KenTanaka/smskit/ratelimit/memory"
	memorystore "github.com/KenTanaka/smskit/storage/memory"
	pgstore "github.com/KenTanaka/smskit/storage/postgres"
	redisstore "github.com/KenTanaka/smskit/storage/redis"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Service wraps core.Service with net/http mounting helpers.
type Service struct {
	svc      *core.Service
	rl       RateLimiter
	clientIP ClientIPFunc
}

// NewService constructs a core.Service and wraps it for net/http mounting.
// Defaults to in-memory stores for dev/single-instance use.
func NewService(cfg core.Config) (*Service, error) {
	coreSvc, err := core.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	coreSvc = coreSvc.
		WithEphemeralStore(memorystore.NewKV(), core.EphemeralMemory).
		WithAccountStore(memorystore.NewAccounts())
	return &Service{
		svc:      coreSvc,
		rl:       memorylimiter.New(ToMemoryLimits(DefaultRateLimits())),
		clientIP: DefaultClientIP(),
	}, nil
}

func (s *Service) WithAccountStore(store core.AccountStore) *Service {
	s.svc = s.svc.WithAccountStore(store)
	return s
}

// WithPostgres switches the account store to the pgx-backed implementation.
func (s *Service) WithPostgres(pg *pgxpool.Pool) *Service {
	s.svc = s.svc.WithAccountStore(pgstore.New(pg))
	return s
}

// WithRedis switches the ephemeral attempt state to Redis.
func (s *Service) WithRedis(rd *redis.Client) *Service {
	if rd != nil {
		s.svc = s.svc.WithEphemeralStore(redisstore.NewKV(rd), core.EphemeralRedis)
	}
	return s
}

func (s *Service) WithSMSSender(sender core.SMSSender) *Service {
	s.svc = s.svc.WithSMSSender(sender)
	return s
}

func (s *Service) WithEphemeralStore(store core.EphemeralStore, mode core.EphemeralMode) *Service {
	s.svc = s.svc.WithEphemeralStore(store, mode)
	return s
}

func (s *Service) WithRateLimiter(rl RateLimiter) *Service { s.rl = rl; return s }
func (s *Service) DisableRateLimiter() *Service            { s.rl = nil; return s }

func (s *Service) WithClientIPFunc(fn ClientIPFunc) *Service {
	if fn == nil {
		s.clientIP = DefaultClientIP()
		return s
	}
	s.clientIP = fn
	return s
}

func (s *Service) Core() *core.Service { return s.svc }

func (s *Service) allow(r *http.Request, bucket string) bool {
	if s == nil || s.rl == nil {
		return true
	}
	ipFn := s.clientIP
	if ipFn == nil {
		ipFn = DefaultClientIP()
	}
	ip := ipFn(r)
	if strings.TrimSpace(ip) == "" {
		return true
	}
	key := "tfa:" + bucket + ":ip:" + ip
	ok, err := s.rl.AllowNamed(bucket, key)
	if err != nil {
		return true
	}
	return ok
}
