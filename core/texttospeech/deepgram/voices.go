package deepgram

import "fmt"

type deepgramVoice string

const (
	VoiceAsteria deepgramVoice = "aura-asteria-en"
	VoiceLuna    deepgramVoice = "aura-luna-en"
	VoiceStella  deepgramVoice = "aura-stella-en"
	VoiceAthena  deepgramVoice = "aura-athena-en"
	VoiceOrion   deepgramVoice = "aura-orion-en"
	VoiceArcas   deepgramVoice = "aura-arcas-en"
)

const defaultVoice = VoiceAsteria

// ParseVoice resolves a configured voice name. An empty name selects the
// default voice.
func ParseVoice(name string) (deepgramVoice, error) {
	if name == "" {
		return defaultVoice, nil
	}
	for _, voice := range GetAvailableVoices() {
		if string(voice) == name {
			return voice, nil
		}
	}
	return defaultVoice, fmt.Errorf("unknown voice %q", name)
}

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{
		VoiceAsteria,
		VoiceLuna,
		VoiceStella,
		VoiceAthena,
		VoiceOrion,
		VoiceArcas,
	}
}
