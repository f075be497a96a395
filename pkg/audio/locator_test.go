package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/engine"
)

func validPCM() PCMFormat {
	return PCMFormat{Channels: 2, SampleRate: 44100, BitDepth: 16}
}

func TestCheckSourceBufferQueue(t *testing.T) {
	src := DataSource{
		Locator: BufferQueueLocator{NumBuffers: 4},
		Format:  validPCM(),
	}
	require.NoError(t, CheckSource(src))

	src.Locator = BufferQueueLocator{NumBuffers: 0}
	assert.ErrorIs(t, CheckSource(src), api.ErrInvalidParameter)

	src.Locator = BufferQueueLocator{NumBuffers: 4}
	src.Format = MIMEFormat{MIMEType: "audio/ogg"}
	assert.ErrorIs(t, CheckSource(src), api.ErrInvalidParameter)

	src.Format = nil
	assert.ErrorIs(t, CheckSource(src), api.ErrInvalidParameter)
}

func TestCheckSourcePCMSanity(t *testing.T) {
	cases := []struct {
		name string
		pcm  PCMFormat
	}{
		{"zero channels", PCMFormat{Channels: 0, SampleRate: 44100, BitDepth: 16}},
		{"too many channels", PCMFormat{Channels: 3, SampleRate: 44100, BitDepth: 16}},
		{"zero rate", PCMFormat{Channels: 2, SampleRate: 0, BitDepth: 16}},
		{"odd depth", PCMFormat{Channels: 2, SampleRate: 44100, BitDepth: 12}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := DataSource{Locator: BufferQueueLocator{NumBuffers: 2}, Format: tc.pcm}
			assert.ErrorIs(t, CheckSource(src), api.ErrInvalidParameter)
		})
	}
}

func TestCheckSourceURI(t *testing.T) {
	require.NoError(t, CheckSource(DataSource{
		Locator: URILocator{URI: "file:///tmp/a.wav"},
		Format:  MIMEFormat{MIMEType: "audio/wav"},
	}))
	// Format is optional for URI sources.
	require.NoError(t, CheckSource(DataSource{Locator: URILocator{URI: "file:///tmp/a.wav"}}))

	assert.ErrorIs(t, CheckSource(DataSource{Locator: URILocator{}}), api.ErrInvalidParameter)
	assert.ErrorIs(t, CheckSource(DataSource{
		Locator: URILocator{URI: "file:///tmp/a.wav"},
		Format:  MIMEFormat{},
	}), api.ErrInvalidParameter)
	assert.ErrorIs(t, CheckSource(DataSource{
		Locator: URILocator{URI: "file:///tmp/a.wav"},
		Format:  validPCM(),
	}), api.ErrInvalidParameter)
}

func TestCheckSourceRejectsMissingOrSinkOnly(t *testing.T) {
	assert.ErrorIs(t, CheckSource(DataSource{}), api.ErrInvalidParameter)
	assert.ErrorIs(t, CheckSource(DataSource{Locator: OutputMixLocator{}}), api.ErrInvalidParameter)
}

func TestCheckSinkOutputMix(t *testing.T) {
	e, err := engine.New(nil)
	require.NoError(t, err)
	defer e.Shutdown()

	mix, err := CreateOutputMix(e, nil, nil)
	require.NoError(t, err)
	defer mix.Header().Destroy()

	require.NoError(t, CheckSink(DataSink{Locator: OutputMixLocator{Mix: mix.Header()}}))

	assert.ErrorIs(t, CheckSink(DataSink{Locator: OutputMixLocator{}}), api.ErrInvalidParameter)
	assert.ErrorIs(t, CheckSink(DataSink{
		Locator: OutputMixLocator{Mix: mix.Header()},
		Format:  validPCM(),
	}), api.ErrInvalidParameter)

	// A sink must point at an OutputMix object, not any object.
	listener, err := CreateListener(e)
	require.NoError(t, err)
	defer listener.Header().Destroy()
	assert.ErrorIs(t, CheckSink(DataSink{
		Locator: OutputMixLocator{Mix: listener.Header()},
	}), api.ErrInvalidParameter)
}

func TestCheckSinkSourceOnlyLocator(t *testing.T) {
	assert.ErrorIs(t, CheckSink(DataSink{Locator: URILocator{URI: "x"}}), api.ErrInvalidParameter)
	assert.ErrorIs(t, CheckSink(DataSink{}), api.ErrInvalidParameter)
}

func TestPCMBufferFormatBridge(t *testing.T) {
	f := validPCM().BufferFormat()
	require.NotNil(t, f)
	assert.Equal(t, 2, f.NumChannels)
	assert.Equal(t, 44100, f.SampleRate)
}
