// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
)

// ActionRunner[T] encapsulates the common action pattern for row-producing
// subcommands: short-circuit checks, attribute building, schema dumping, data
// fetching via FetchFn, and output emission.
type ActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) ([]T, error)
}

// Run executes the action with the provided context and command.
func (ar *ActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, ar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, ar.SchemaType) {
		return nil
	}

	attrs := BuildAttrs(cmd, ar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	results, err := ar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	return EmitRows(results, attrs, cmd, nil)
}

// NewActionRunner creates an ActionRunner with the provided configuration.
func NewActionRunner[T any](
	commandName string,
	schemaType reflect.Type,
	defaultAttrs []string,
	fetchFn func(context.Context, *cli.Command) ([]T, error),
) *ActionRunner[T] {
	return &ActionRunner[T]{
		CommandName:  commandName,
		SchemaType:   schemaType,
		DefaultAttrs: defaultAttrs,
		FetchFn:      fetchFn,
	}
}
