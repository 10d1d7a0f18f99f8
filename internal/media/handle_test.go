package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleMintAndGet(t *testing.T) {
	reg := NewHandleRegistry()
	handle := reg.Mint([]byte{1, 2, 3}, "audio/webm")

	require.NotEmpty(t, handle.ID)
	require.Equal(t, "audio/webm", handle.ContentType)

	blob, contentType, ok := reg.Get(handle.ID)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, blob)
	require.Equal(t, "audio/webm", contentType)
	require.Equal(t, 1, reg.Len())
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	reg := NewHandleRegistry()
	first := reg.Mint([]byte("one"), "audio/wav")
	second := reg.Mint([]byte("two"), "audio/wav")

	first.Release()
	first.Release()
	first.Release()

	_, _, ok := reg.Get(first.ID)
	require.False(t, ok)

	// unrelated handles are untouched by repeated releases
	blob, _, ok := reg.Get(second.ID)
	require.True(t, ok)
	require.Equal(t, []byte("two"), blob)
	require.Equal(t, 1, reg.Len())
}

func TestHandleNilReleaseIsSafe(t *testing.T) {
	var handle *Handle
	handle.Release()
}

func TestNegotiateContainerPrefersOpusWebM(t *testing.T) {
	require.Equal(t, "audio/webm;codecs=opus",
		NegotiateContainer([]string{"audio/wav", "audio/webm;codecs=opus"}))
	require.Equal(t, "audio/webm",
		NegotiateContainer([]string{"audio/ogg", "audio/webm"}))
	// nothing preferred on offer: take the client's first choice
	require.Equal(t, "audio/ogg", NegotiateContainer([]string{"audio/ogg"}))
	// no offer at all: the default stands
	require.Equal(t, DefaultContainer, NegotiateContainer(nil))
}
