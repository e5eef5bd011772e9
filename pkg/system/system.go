// Package system reports host facts used to pick a synthesis backend.
package system

import (
	"os"
	"os/exec"
	"runtime"
)

type Info struct {
	OS             string   `json:"os"`
	Arch           string   `json:"arch"`
	Cores          int      `json:"cores"`
	HasAfplay      bool     `json:"has_afplay"`
	HasSay         bool     `json:"has_say"`
	HasDeepgramKey bool     `json:"has_deepgram_key"`
	Recommended    []string `json:"recommended_backends"`
}

// Detect inspects the host. Recommendations are ordered best-first:
// local neural backends when the machine can feed them, say as the
// Darwin last resort, deepgram whenever a key is present.
func Detect() Info {
	info := Info{
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		Cores:          runtime.NumCPU(),
		HasAfplay:      hasBinary("afplay"),
		HasSay:         hasBinary("say"),
		HasDeepgramKey: os.Getenv("DEEPGRAM_API_KEY") != "",
	}

	if info.Cores >= 8 {
		info.Recommended = append(info.Recommended, "qwen3-tts")
	}
	if info.Cores >= 4 {
		info.Recommended = append(info.Recommended, "pocket-tts")
	}
	if info.HasDeepgramKey {
		info.Recommended = append(info.Recommended, "deepgram")
	}
	if info.HasSay {
		info.Recommended = append(info.Recommended, "say")
	}
	if len(info.Recommended) == 0 {
		info.Recommended = []string{"pocket-tts"}
	}
	return info
}

func hasBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
