package logsvc

import (
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/auth"
)

// RollbarLogger reports every entry to Rollbar and mirrors it on std, one "[LEVEL] msg" line
// followed by one line per argument.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{std: std}
	l.Enable(!(conf.Debug || conf.TestMode) && conf.RollbarToken != "")
	return l
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// splitClaims separates the caller's auth.Claims from the other args.
// Only the first authenticated caller is kept.
func splitClaims(args []interface{}) (auth.Claims, []interface{}) {
	var caller auth.Claims
	rest := make([]interface{}, 0, len(args))
	for _, arg := range args {
		claims, ok := arg.(auth.Claims)
		switch {
		case !ok:
			rest = append(rest, arg)
		case caller.Subject == "":
			caller = claims
		}
	}
	return caller, rest
}

func (l RollbarLogger) report(level, msg string, args []interface{}) {
	caller, rest := splitClaims(args)
	if caller.Subject != "" {
		rollbar.SetPerson(caller.Subject, caller.Email, caller.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, append([]interface{}{msg}, rest...)...)

	l.std.Printf("[%s] %s", strings.ToUpper(level), msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.report(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.report(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.report(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.report(rollbar.ERR, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	l.std.Fatal(msg)
}
