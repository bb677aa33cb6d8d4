// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package output provides sorting and emission utilities used by commands to
// present master rows as text tables, JSON or YAML.
package output
