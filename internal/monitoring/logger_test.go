package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tests swap the package-level logger, so none of them run in parallel.

func TestSetLogger_InstallsCustomLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Logf("decoded %d points", 42)
	assert.Equal(t, "decoded 42 points", got)
}

func TestSetLogger_NilInstallsNoop(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	SetLogger(nil)

	// The no-op must neither panic nor reach the previous logger.
	Logf("dropped")
	assert.False(t, called)
}

func TestLogf_Default(t *testing.T) {
	require.NotNil(t, Logf)
}
