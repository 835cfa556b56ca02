package dig_container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/koinonia/apps/api/echo"
	"github.com/trezcool/koinonia/core"
)

func TestNew_resolvesServer(t *testing.T) {
	// dry run: the graph is checked without calling any constructor
	c := New(dig.DryRun(true))

	err := c.Invoke(func(conf *core.Config, server *echoapi.Server, loggerParam DBLoggerParam) {})
	assert.NoError(t, err)
}
