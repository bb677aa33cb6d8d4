// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := &log.Logger{Handler: &CustomHandler{Writer: &buf}, Level: log.DebugLevel}

	logger.WithFields(log.Fields{"rows": 3, "action": "fetched"}).Info("master ready")
	logger.WithError(errors.New("boom")).Warn("download failed")

	out := buf.String()
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} I master ready action=fetched rows=3\n`, out)
	assert.Contains(t, out, " W download failed error=boom\n")
}

func TestInitLogger(t *testing.T) {
	t.Setenv("BFOMASTER_LOG", "debug")
	InitLogger()
	l, ok := log.Log.(*log.Logger)
	if assert.True(t, ok) {
		assert.Equal(t, log.DebugLevel, l.Level)
	}

	t.Setenv("BFOMASTER_LOG", "bogus")
	InitLogger()
	l, _ = log.Log.(*log.Logger)
	assert.Equal(t, log.ErrorLevel, l.Level)

	t.Setenv("BFOMASTER_LOG", "")
	InitLogger()
	l, _ = log.Log.(*log.Logger)
	assert.Equal(t, log.ErrorLevel, l.Level)
}
