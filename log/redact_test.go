package log_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/spotfolio/log"
)

func TestRedactString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", log.RedactString(""))
	assert.Equal(t, "********", log.RedactString("12345678"))
	assert.Equal(t, "BQDa*****x9Zk", log.RedactString("BQDa12345x9Zk"))
}
