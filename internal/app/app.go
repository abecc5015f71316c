package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/config"
	"github.com/shandysiswandi/yogapass/internal/pkg/goroutine"
	"github.com/shandysiswandi/yogapass/internal/pkg/hash"
	"github.com/shandysiswandi/yogapass/internal/pkg/idempotency"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
	"github.com/shandysiswandi/yogapass/internal/pkg/jwt"
	"github.com/shandysiswandi/yogapass/internal/pkg/messaging"
	"github.com/shandysiswandi/yogapass/internal/pkg/otp"
	"github.com/shandysiswandi/yogapass/internal/pkg/router"
	"github.com/shandysiswandi/yogapass/internal/pkg/sms"
	"github.com/shandysiswandi/yogapass/internal/pkg/uid"
	"github.com/shandysiswandi/yogapass/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	token     uid.StringID
	code      otp.Generator
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	messaging messaging.Publisher
	sms       sms.Sender
	scheduler *cron.Cron

	// server
	router     *router.Router
	httpServer *http.Server

	closers []closer
}

// closer releases one resource during Stop, in declaration order.
type closer struct {
	name string
	fn   func(context.Context) error
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initSMS()
	app.initScheduler()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
