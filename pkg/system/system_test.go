package system

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectReportsHost(t *testing.T) {
	info := Detect()
	require.Equal(t, runtime.GOOS, info.OS)
	require.Equal(t, runtime.GOARCH, info.Arch)
	require.Greater(t, info.Cores, 0)
	require.NotEmpty(t, info.Recommended)
}

func TestRecommendationsFollowCores(t *testing.T) {
	info := Detect()
	if info.Cores >= 4 {
		require.Contains(t, info.Recommended, "pocket-tts")
	}
	if info.Cores >= 8 {
		require.Equal(t, "qwen3-tts", info.Recommended[0])
	}
}
