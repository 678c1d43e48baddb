// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package execx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOS_RunPiped(t *testing.T) {
	if _, err := Default.LookPath("cat"); err != nil {
		t.Skip("cat not on PATH")
	}

	var out bytes.Buffer
	err := Default.RunPiped(context.Background(), "cat", nil, strings.NewReader("1001\n1002\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "1001\n1002\n", out.String())
}

func TestOS_RunPipedMissingBinary(t *testing.T) {
	var out bytes.Buffer
	err := Default.RunPiped(context.Background(), "paper-miner-no-such-binary", nil, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running paper-miner-no-such-binary")
}

func TestOS_RunPipedIncludesStderr(t *testing.T) {
	if _, err := Default.LookPath("sh"); err != nil {
		t.Skip("sh not on PATH")
	}

	var out bytes.Buffer
	err := Default.RunPiped(context.Background(), "sh", []string{"-c", "echo broken pdf >&2; exit 3"}, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pdf")
}
