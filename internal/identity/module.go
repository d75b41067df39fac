package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/inbound"
	"github.com/ItsCrotix/NOR-Backend/internal/identity/outbound/db"
	"github.com/ItsCrotix/NOR-Backend/internal/identity/outbound/mq"
	"github.com/ItsCrotix/NOR-Backend/internal/identity/usecase"
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

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	Goroutine    *goroutine.Manager         `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Idempotency  idempotency.Idempotency    `validate:"required"`
	Messaging    messaging.Publisher        `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	UUID         uid.StringID               `validate:"required"`
	HMAC         hash.Hash                  `validate:"required"`
	Bcrypt       hash.Hash                  `validate:"required"`
	MFAEncryptor mfa.Encryptor              `validate:"required"`
	BackupCodes  mfa.BackupCodeGenerator    `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Totp         otp.OTP                    `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
	Tokens       *jwt.Tokens                `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		MFAEncryptor:  dep.MFAEncryptor,
		BackupCodes:   dep.BackupCodes,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Totp:          dep.Totp,
		Clock:         dep.Clock,
		Tokens:        dep.Tokens,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.CookieConfig{
		Secure: dep.Config.GetBool("modules.identity.cookie.secure"),
		Domain: dep.Config.GetString("modules.identity.cookie.domain"),
	})

	return nil
}
