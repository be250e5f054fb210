// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVersion(t *testing.T) {
	module := func(v string) *debug.BuildInfo {
		return &debug.BuildInfo{Main: debug.Module{Path: "github.com/pdiddy/bibcite", Version: v}}
	}
	tests := []struct {
		name    string
		stamped string
		info    *debug.BuildInfo
		want    string
	}{
		{"ldflags stamp wins", "v1.2.0", module("v1.1.0"), "v1.2.0"},
		{"go install version", "dev", module("v1.1.0"), "v1.1.0"},
		{"local build", "dev", module("(devel)"), "dev"},
		{"no build info", "dev", nil, "dev"},
		{"empty stamp", "", module(""), "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveVersion(tt.stamped, tt.info))
		})
	}
}

func TestWriteVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, "v1.2.0", true))
	assert.Equal(t, "v1.2.0\n", buf.String())

	buf.Reset()
	require.NoError(t, writeVersion(&buf, "v1.2.0", false))
	assert.Equal(t, "bibcite v1.2.0 ("+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+")\n", buf.String())
}
