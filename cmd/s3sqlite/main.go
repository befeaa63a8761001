// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/michalc/sqlite-s3-query-go/internal/s3sqlite"
)

type cli struct {
	URL    string   `arg:"" help:"HTTPS URL of the SQLite database object, e.g. https://bucket.s3.region.amazonaws.com/path/to.db"`
	SQL    string   `arg:"" help:"SQL statement to run"`
	Param  []string `short:"p" help:"Positional parameter, repeatable, applied in order"`
	Region string   `short:"r" help:"AWS region, used only when AWS_REGION/AWS_DEFAULT_REGION are unset"`
}

func main() {
	var params cli
	kong.Parse(&params)
	if err := run(&params); err != nil {
		fmt.Fprintf(os.Stderr, "s3sqlite: %+v\n", err)
		os.Exit(1)
	}
}

func run(params *cli) error {
	ctx := context.Background()

	opts := s3sqlite.Options{Region: params.Region}
	sess, err := s3sqlite.Open(ctx, params.URL, opts)
	if err != nil {
		return errors.Wrap(err, "open session")
	}
	defer sess.Close()

	args := make([]s3sqlite.Param, len(params.Param))
	for i, p := range params.Param {
		args[i] = s3sqlite.Param{Value: p}
	}

	cols, rows, err := sess.Query(params.SQL, args...)
	if err != nil {
		return errors.Wrap(err, "run query")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))

	for row, err := range rows {
		if err != nil {
			w.Flush()
			return errors.Wrap(err, "iterate rows")
		}
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(w, strings.Join(vals, "\t"))
	}

	return w.Flush()
}
