// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/query"
	"github.com/staranto/bfomaster/internal/symbol"
)

// GlobalFlagsValidator checks flag combinations no single validator can see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.IsSet("tsym") && c.Args().Len() > 0 {
		return errors.New("give either SYMBOL or --tsym, not both")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "yaml"}
	for _, v := range validOutputFlagValues {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("must be one of %v", validOutputFlagValues)
}

func ExpiryTypeValidator(value any) error {
	_, err := query.ParseExpiryKind(value.(string))
	return err
}

func ExpiryValidator(value any) error {
	if _, err := symbol.ParseExpiry(value.(string)); err != nil {
		return fmt.Errorf("must look like 25-JAN-2024: %w", err)
	}
	return nil
}

func StrikeValidator(value any) error {
	if _, err := decimal.NewFromString(strings.TrimSpace(value.(string))); err != nil {
		return fmt.Errorf("must be a number: %w", err)
	}
	return nil
}

func URLValidator(value any) error {
	u, err := url.Parse(value.(string))
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "s3", "file":
		return nil
	}
	return fmt.Errorf("unsupported scheme %q", u.Scheme)
}
