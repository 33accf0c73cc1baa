package speech

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

var _ Engine = (*EspeakEngine)(nil)

// espeak-ng speaks 175 words per minute by default and accepts 80..450.
const (
	espeakBaseWPM = 175
	espeakMinWPM  = 80
	espeakMaxWPM  = 450
)

// EspeakEngine renders speech with the espeak-ng command line synthesizer
// and plays the resulting WAV through the shared player.
type EspeakEngine struct {
	binary string
	voice  string
	player *Player
	log    *logger.Logger
}

// NewEspeakEngine locates binary on PATH. An empty binary means espeak-ng.
func NewEspeakEngine(binary, voice string, player *Player, log *logger.Logger) (*EspeakEngine, error) {
	if binary == "" {
		binary = DefaultEspeakBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("espeak: %w: %v", domain.ErrEngineUnavailable, err)
	}
	log.Debug("espeak: using %s", path)
	return &EspeakEngine{binary: path, voice: voice, player: player, log: log}, nil
}

func (e *EspeakEngine) Name() string { return string(EngineEspeak) }

// Submit synthesizes req to a WAV buffer and plays it.
func (e *EspeakEngine) Submit(ctx context.Context, req Request) error {
	cmd := exec.CommandContext(ctx, e.binary, espeakArgs(e.voice, req.Rate)...)
	cmd.Stdin = strings.NewReader(req.Text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("espeak: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return e.player.Play(ctx, stdout.Bytes(), float64(req.Volume)/MaxEngineVolume)
}

func (e *EspeakEngine) Close() error {
	e.player.Stop()
	return nil
}

func espeakArgs(voice string, rate int) []string {
	args := []string{"--stdout", "--stdin", "-s", strconv.Itoa(wordsPerMinute(rate))}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return args
}

// wordsPerMinute converts an engine rate into espeak's -s value.
func wordsPerMinute(rate int) int {
	wpm := int(math.Round(espeakBaseWPM * rateFactor(rate)))
	return clamp(wpm, espeakMinWPM, espeakMaxWPM)
}
