package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/shandysiswandi/yogapass/internal/auth/outbound/db"
	"github.com/shandysiswandi/yogapass/internal/auth/outbound/store"
	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/config"
	"github.com/shandysiswandi/yogapass/internal/pkg/goroutine"
	"github.com/shandysiswandi/yogapass/internal/pkg/hash"
	"github.com/shandysiswandi/yogapass/internal/pkg/idempotency"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
	"github.com/shandysiswandi/yogapass/internal/pkg/jwt"
	"github.com/shandysiswandi/yogapass/internal/pkg/messaging"
	"github.com/shandysiswandi/yogapass/internal/pkg/migrate"
	"github.com/shandysiswandi/yogapass/internal/pkg/otp"
	"github.com/shandysiswandi/yogapass/internal/pkg/router"
	"github.com/shandysiswandi/yogapass/internal/pkg/sms"
	"github.com/shandysiswandi/yogapass/internal/pkg/uid"
	"github.com/shandysiswandi/yogapass/internal/pkg/validator"
)

// fatalIf logs msg and exits the process when err is non-nil.
func fatalIf(err error, msg string, args ...any) {
	if err == nil {
		return
	}
	slog.Error(msg, append(args, "error", err)...)
	os.Exit(1)
}

// requiredKeys must be set before anything else is wired.
var requiredKeys = []string{
	"sms.ncp.service_id",
	"sms.ncp.access_key",
	"sms.ncp.secret_key",
	"sms.ncp.sender",
	"database.url",
	"hash.hmac.secret",
	"jwt.secret",
}

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	fatalIf(err, "failed to init config")

	fatalIf(config.Require(cfg, requiredKeys...), "failed to validate config")

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	fatalIf(err, "failed to init instrumentation")
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.token = uid.NewToken()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))

	v, err := validator.NewV10Validator()
	fatalIf(err, "failed to init validator")
	a.validator = v

	snow, err := uid.NewSnowflakeNode(a.config.GetInt64("app.snowflake_node"))
	fatalIf(err, "failed to init uid number snowflake")
	a.uid = snow

	code, err := otp.NewHOTP(libOTP.DigitsSix)
	fatalIf(err, "failed to init otp code generator")
	a.code = code
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	fatalIf(err, "failed to init jwt token")
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	dsn := a.config.GetString("database.url")

	if a.config.GetBool("database.migrate") {
		fatalIf(migrate.Up(dsn, db.Migrations, db.MigrationsDir), "failed to apply DB migrations")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	fatalIf(err, "failed to parse DB connection string")

	poolCfg.MaxConns = a.config.GetInt32("database.pool.max_conns")
	poolCfg.MinConns = a.config.GetInt32("database.pool.min_conns")
	poolCfg.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	poolCfg.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	poolCfg.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, poolCfg)
	fatalIf(err, "failed to create DB connection pool")

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	fatalIf(pool.Ping(pingCtx), "failed to ping DB")

	a.dbConn = pool
}

// initCache connects redis when a url is configured. The memory store
// driver runs without it, in which case Idempotency-Key is ignored.
func (a *App) initCache() {
	redisURL := strings.TrimSpace(a.config.GetString("redis.url"))
	if redisURL == "" {
		if strings.TrimSpace(a.config.GetString("auth.store.driver")) == store.DriverRedis {
			slog.Error("failed to init redis, auth.store.driver redis needs redis.url")
			os.Exit(1)
		}
		slog.Warn("redis is not configured, idempotency keys are disabled")
		return
	}

	opt, err := redis.ParseURL(redisURL)
	fatalIf(err, "failed to parse redis url")

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	fatalIf(rdb.Ping(pingCtx).Err(), "failed to init redis")

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: func() *nsq.Config {
				cfg := nsq.NewConfig()
				cfg.MaxInFlight = a.config.GetInt("messaging.nsq.producer_config.max_in_flight")
				cfg.DialTimeout = a.config.GetSecond("messaging.nsq.producer_config.dial_timeout_seconds")
				cfg.ReadTimeout = a.config.GetSecond("messaging.nsq.producer_config.read_timeout_seconds")
				cfg.WriteTimeout = a.config.GetSecond("messaging.nsq.producer_config.write_timeout_seconds")
				return cfg
			}(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			WriteTimeout: a.config.GetSecond("messaging.kafka.write_timeout_seconds"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:       a.config.GetString("messaging.pubsub.project_id"),
			CredentialsJSON: a.config.GetBinary("messaging.pubsub.credentials_json"),
			Endpoint:        a.config.GetString("messaging.pubsub.endpoint"),
			WithoutAuth:     a.config.GetBool("messaging.pubsub.without_auth"),
		},
	})
	fatalIf(err, "failed to init messaging", "driver", driver)

	a.messaging = client
}

func (a *App) initSMS() {
	sender, err := sms.NewNCP(sms.NCPConfig{
		BaseURL:    a.config.GetString("sms.ncp.base_url"),
		ServiceID:  a.config.GetString("sms.ncp.service_id"),
		AccessKey:  a.config.GetString("sms.ncp.access_key"),
		SecretKey:  a.config.GetString("sms.ncp.secret_key"),
		Sender:     a.config.GetString("sms.ncp.sender"),
		Timeout:    a.config.GetSecond("sms.ncp.timeout_seconds"),
		Clock:      a.clock,
		Instrument: a.ins,
	})
	fatalIf(err, "failed to init sms gateway")

	a.sms = sender
}

func (a *App) initScheduler() {
	a.scheduler = cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Correlation-ID"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []closer{
		{
			name: "Scheduler",
			fn: func(ctx context.Context) error {
				select {
				case <-a.scheduler.Stop().Done():
				case <-ctx.Done():
				}
				return nil
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
