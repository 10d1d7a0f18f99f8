package media

// DefaultContainer is what a recording falls back to when no preferred
// container is available. The public contract only requires a playable
// container, not a specific codec.
const DefaultContainer = "audio/wav"

// PreferredContainers are tried in order when a client reports what it can
// encode. Opus-in-WebM first for size, then plain WAV.
var PreferredContainers = []string{
	"audio/webm;codecs=opus",
	"audio/webm",
	"audio/wav",
}

// NegotiateContainer picks the recording container for a session: the
// first preferred container the client supports, else the client's first
// offer, else the default. An empty offer list means the client left the
// choice to us.
func NegotiateContainer(supported []string) string {
	if len(supported) == 0 {
		return DefaultContainer
	}
	offered := make(map[string]bool, len(supported))
	for _, c := range supported {
		offered[c] = true
	}
	for _, c := range PreferredContainers {
		if offered[c] {
			return c
		}
	}
	return supported[0]
}
