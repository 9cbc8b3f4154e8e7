package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandMetadata(t *testing.T) {
	assert.Equal(t, "serve", Cmd.Use)
	flag := Cmd.Flags().Lookup("port")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "p", flag.Shorthand)
		assert.Equal(t, "0", flag.DefValue)
	}
	assert.Contains(t, Cmd.Long, "/api/extract")
}
