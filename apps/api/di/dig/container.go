package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/koinonia/apps/api/echo"
	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/auth"
	"github.com/trezcool/koinonia/core/dashboard"
	"github.com/trezcool/koinonia/core/group"
	"github.com/trezcool/koinonia/core/member"
	"github.com/trezcool/koinonia/core/school"
	"github.com/trezcool/koinonia/core/user"
	logsvc "github.com/trezcool/koinonia/services/logger"
	"github.com/trezcool/koinonia/storage/database"
	sqlxrepos "github.com/trezcool/koinonia/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	Signer       *auth.Signer
	UserSvc      *user.Service
	MemberSvc    *member.Service
	GroupSvc     *group.Service
	SchoolSvc    *school.Service
	DashboardSvc *dashboard.Service
	Validate     *validator.Validate
	Translator   ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(ctx, db); err != nil {
			return nil, err
		}
		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	return validate
}

func newTokenSigner(signer *auth.Signer) user.TokenSigner {
	return signer
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Signer:       p.Signer,
		UserSvc:      p.UserSvc,
		MemberSvc:    p.MemberSvc,
		GroupSvc:     p.GroupSvc,
		SchoolSvc:    p.SchoolSvc,
		DashboardSvc: p.DashboardSvc,
		Validate:     p.Validate,
		Translator:   p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New(opts ...dig.Option) *dig.Container {
	c := dig.New(opts...)

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(auth.NewSigner))
	must(c.Provide(newTokenSigner))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(
		sqlxrepos.NewMemberRepository,
		dig.As(new(member.Repository), new(group.MemberFinder), new(school.MemberFinder)),
	))
	must(c.Provide(sqlxrepos.NewGroupRepository, dig.As(new(group.Repository))))
	must(c.Provide(sqlxrepos.NewSchoolRepository, dig.As(new(school.Repository))))
	must(c.Provide(sqlxrepos.NewDashboardRepository, dig.As(new(dashboard.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(member.NewService))
	must(c.Provide(group.NewService))
	must(c.Provide(school.NewService))
	must(c.Provide(dashboard.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
