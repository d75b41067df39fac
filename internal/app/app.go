package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/clock"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/config"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goroutine"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/hash"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/idempotency"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/instrument"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/messaging"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/mfa"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/otp"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/router"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/uid"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	hmac         hash.Hash
	bcrypt       hash.Hash
	uid          uid.NumberID
	uuid         uid.StringID
	totp         otp.OTP
	tokens       *jwt.Tokens
	mfaEncryptor mfa.Encryptor
	backupCodes  mfa.BackupCodeGenerator

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
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
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
