// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	f.bucket = *in.Bucket
	f.key = *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "bucket and key", raw: "s3://masters/bfo/BFO_symbols.txt.zip", wantBucket: "masters", wantKey: "bfo/BFO_symbols.txt.zip"},
		{name: "wrong scheme", raw: "https://masters/BFO_symbols.txt.zip", wantErr: true},
		{name: "missing key", raw: "s3://masters/", wantErr: true},
		{name: "missing bucket", raw: "s3:///key.zip", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseS3URL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestReadObject(t *testing.T) {
	g := &fakeGetter{body: "zipbytes"}
	b, err := ReadObject(context.Background(), g, "masters", "bfo.zip")
	require.NoError(t, err)
	assert.Equal(t, "zipbytes", string(b))
	assert.Equal(t, "masters", g.bucket)
	assert.Equal(t, "bfo.zip", g.key)
}

func TestReadObject_Error(t *testing.T) {
	g := &fakeGetter{err: errors.New("access denied")}
	_, err := ReadObject(context.Background(), g, "masters", "bfo.zip")
	assert.ErrorContains(t, err, "access denied")
}
