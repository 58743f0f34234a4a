package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/pickup-notify-api/logging"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", "local", ""} {
		t.Run(env, func(t *testing.T) {
			log := logging.New(env)
			assert.NotNil(t, log)
			assert.NotPanics(t, func() { log.Infow("hello", "env", env) })
		})
	}
}
