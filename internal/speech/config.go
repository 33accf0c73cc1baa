package speech

import "time"

// Default Azure voice. Full list:
// https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-AvaNeural"

// Audio format requested from Azure and produced by espeak-ng. Both match
// the player's fixed output format.
const DefaultAudioFormat = "riff-22050hz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 22050
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// DefaultEspeakBinary is looked up on PATH for the espeak engine.
const DefaultEspeakBinary = "espeak-ng"

// Request is a queued utterance with the engine parameters captured from
// the settings at the moment it was submitted.
type Request struct {
	Text     string
	Rate     int // -10..10
	Volume   int // 0..100
	Priority Priority
	QueuedAt time.Time
}
