package logger

import (
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, hlog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, hlog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, hlog.LevelError, ParseLevel("error"))
	assert.Equal(t, hlog.LevelInfo, ParseLevel(""))
	assert.Equal(t, hlog.LevelInfo, ParseLevel("verbose"))
}
