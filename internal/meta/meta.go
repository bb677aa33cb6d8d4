// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/staranto/bfomaster/internal/config"
	"github.com/staranto/bfomaster/internal/master"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context

	// Stdout receives command results. Nil means os.Stdout.
	Stdout io.Writer
	// Fetcher replaces the download built from the --url flag.
	Fetcher master.Fetcher
	// Clock replaces time.Now for the master store.
	Clock func() time.Time
}

// Out returns the writer command results go to.
func (m Meta) Out() io.Writer {
	if m.Stdout == nil {
		return os.Stdout
	}
	return m.Stdout
}
