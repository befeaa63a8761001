// Copyright (C) 2025 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package s3sqlite

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go/aws/credentials"
)

// NewDefaultCredentialsProvider builds the CredentialsProvider used when
// Options.Credentials is left nil: env vars, then the shared config/
// credentials file. Unlike a session constructed once up front, this is
// resolved fresh on every call, so a rotated credential or an edited
// credentials file is picked up without reopening the session.
func NewDefaultCredentialsProvider() CredentialsProvider {
	chain := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvProvider{},
		&credentials.SharedCredentialsProvider{},
	})

	return func(ctx context.Context) (Credentials, error) {
		chain.Expire()
		val, err := chain.Get()
		if err != nil {
			return Credentials{}, wrap(err, "resolve default credentials")
		}
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = os.Getenv("AWS_DEFAULT_REGION")
		}
		return Credentials{
			Region:          region,
			AccessKeyID:     val.AccessKeyID,
			SecretAccessKey: val.SecretAccessKey,
			SessionToken:    val.SessionToken,
		}, nil
	}
}
