package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/narrator/internal/logger"
)

// Player handles audio playback of WAV/PCM data via oto. The output format
// is fixed when the player is created; WAV data in any other format is
// rejected.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer creates an audio player. Initializes the system audio context.
// Returns an error if the audio device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play plays WAV audio data at the given volume (0..1). Blocks until
// playback finishes, Stop is called, or ctx is cancelled.
func (p *Player) Play(ctx context.Context, wavData []byte, volume float64) error {
	clip, err := parseWAV(wavData)
	if err != nil {
		return err
	}
	if clip.sampleRate != SampleRate || clip.channels != ChannelCount || clip.bitDepth != BitDepth {
		return fmt.Errorf("unsupported wav format %dHz/%dch/%dbit, want %dHz/%dch/%dbit",
			clip.sampleRate, clip.channels, clip.bitDepth, SampleRate, ChannelCount, BitDepth)
	}

	player := p.ctx.NewPlayer(bytes.NewReader(clip.pcm))
	player.SetVolume(volume)

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM at volume %.2f", len(clip.pcm), volume)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
		case <-ticker.C:
		}
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

type wavClip struct {
	sampleRate int
	channels   int
	bitDepth   int
	pcm        []byte
}

// parseWAV walks the RIFF chunks, reading the format from "fmt " and the
// samples from "data".
func parseWAV(wav []byte) (wavClip, error) {
	var clip wavClip
	if len(wav) < 44 {
		return clip, errors.New("wav data too short")
	}

	// Verify RIFF header.
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return clip, errors.New("not a valid WAV file")
	}

	sawFormat := false
	pos := 12
	for pos <= len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		start := pos + 8

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 || start+16 > len(wav) {
				return clip, errors.New("truncated fmt chunk")
			}
			clip.channels = int(binary.LittleEndian.Uint16(wav[start+2:]))
			clip.sampleRate = int(binary.LittleEndian.Uint32(wav[start+4:]))
			clip.bitDepth = int(binary.LittleEndian.Uint16(wav[start+14:]))
			sawFormat = true
		case "data":
			if !sawFormat {
				return clip, errors.New("data chunk before fmt chunk")
			}
			end := start + chunkSize
			// Streaming writers (espeak-ng --stdout) leave the size unset.
			if end > len(wav) || end < start {
				end = len(wav)
			}
			clip.pcm = wav[start:end]
			return clip, nil
		}

		pos = start + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
		if pos < start {
			break
		}
	}

	return clip, errors.New("data chunk not found in WAV")
}
