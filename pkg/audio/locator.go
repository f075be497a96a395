package audio

import (
	"fmt"

	gaudio "github.com/go-audio/audio"

	"github.com/gosles/slcore/api"
	"github.com/gosles/slcore/pkg/object"
)

// Locator names where a data source or sink gets its bytes. The C union of
// locator structs becomes a tagged variant: exactly one concrete type per
// kind, decoded and validated once at creation time.
type Locator interface {
	locatorKind() string
}

// AddressLocator points at an in-memory block of encoded or raw audio.
type AddressLocator struct {
	Data []byte
}

// BufferQueueLocator feeds or drains data through the object's BufferQueue
// interface.
type BufferQueueLocator struct {
	NumBuffers int
}

// IODeviceLocator names a platform audio device by id.
type IODeviceLocator struct {
	DeviceID uint32
}

// OutputMixLocator routes a sink into an OutputMix object.
type OutputMixLocator struct {
	Mix *object.Header
}

// URILocator names content by URI; the format, if any, must be MIME.
type URILocator struct {
	URI string
}

func (AddressLocator) locatorKind() string     { return "address" }
func (BufferQueueLocator) locatorKind() string { return "buffer-queue" }
func (IODeviceLocator) locatorKind() string    { return "io-device" }
func (OutputMixLocator) locatorKind() string   { return "output-mix" }
func (URILocator) locatorKind() string         { return "uri" }

// Format describes the data at a locator. Tagged variant over the distinct
// format kinds.
type Format interface {
	formatKind() string
}

// PCMFormat describes raw interleaved PCM.
type PCMFormat struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// MIMEFormat describes contained or encoded data by MIME type.
type MIMEFormat struct {
	MIMEType string
}

func (PCMFormat) formatKind() string  { return "pcm" }
func (MIMEFormat) formatKind() string { return "mime" }

// BufferFormat bridges a validated PCM format to the go-audio buffer
// format hook bodies consume.
func (f PCMFormat) BufferFormat() *gaudio.Format {
	return &gaudio.Format{
		NumChannels: f.Channels,
		SampleRate:  f.SampleRate,
	}
}

func (f PCMFormat) validate() error {
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("pcm channels %d: %w", f.Channels, api.ErrInvalidParameter)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("pcm sample rate %d: %w", f.SampleRate, api.ErrInvalidParameter)
	}
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("pcm bit depth %d: %w", f.BitDepth, api.ErrInvalidParameter)
	}
	return nil
}

// DataSource pairs a locator with the format of the data it produces.
type DataSource struct {
	Locator Locator
	Format  Format
}

// DataSink pairs a locator with the format it accepts.
type DataSink struct {
	Locator Locator
	Format  Format
}

// CheckSource validates a data source at creation time. Validation errors
// are always synchronous; hooks can rely on a checked source being
// well-formed.
func CheckSource(src DataSource) error {
	switch loc := src.Locator.(type) {
	case nil:
		return fmt.Errorf("source without locator: %w", api.ErrInvalidParameter)
	case AddressLocator:
		if loc.Data == nil {
			return fmt.Errorf("address source without data: %w", api.ErrInvalidParameter)
		}
		return checkFormat(src.Format, "pcm")
	case BufferQueueLocator:
		if loc.NumBuffers < 1 {
			return fmt.Errorf("buffer-queue source with %d buffers: %w", loc.NumBuffers, api.ErrInvalidParameter)
		}
		return checkFormat(src.Format, "pcm")
	case IODeviceLocator:
		if src.Format != nil {
			return fmt.Errorf("io-device source carries a format: %w", api.ErrInvalidParameter)
		}
		return nil
	case URILocator:
		if loc.URI == "" {
			return fmt.Errorf("uri source without uri: %w", api.ErrInvalidParameter)
		}
		if src.Format == nil {
			return nil
		}
		return checkFormat(src.Format, "mime")
	case OutputMixLocator:
		return fmt.Errorf("output-mix locator is sink-only: %w", api.ErrInvalidParameter)
	default:
		return fmt.Errorf("unknown locator kind %q: %w", loc.locatorKind(), api.ErrInvalidParameter)
	}
}

// CheckSink validates a data sink at creation time.
func CheckSink(snk DataSink) error {
	switch loc := snk.Locator.(type) {
	case nil:
		return fmt.Errorf("sink without locator: %w", api.ErrInvalidParameter)
	case OutputMixLocator:
		if loc.Mix == nil {
			return fmt.Errorf("output-mix sink without mix: %w", api.ErrInvalidParameter)
		}
		if loc.Mix.Class().ObjectID != ObjectIDOutputMix {
			return fmt.Errorf("output-mix sink names a %s object: %w", loc.Mix.Class().Name, api.ErrInvalidParameter)
		}
		if snk.Format != nil {
			return fmt.Errorf("output-mix sink carries a format: %w", api.ErrInvalidParameter)
		}
		return nil
	case BufferQueueLocator:
		if loc.NumBuffers < 1 {
			return fmt.Errorf("buffer-queue sink with %d buffers: %w", loc.NumBuffers, api.ErrInvalidParameter)
		}
		return checkFormat(snk.Format, "pcm")
	case AddressLocator:
		if loc.Data == nil {
			return fmt.Errorf("address sink without storage: %w", api.ErrInvalidParameter)
		}
		return checkFormat(snk.Format, "pcm")
	case IODeviceLocator:
		if snk.Format != nil {
			return fmt.Errorf("io-device sink carries a format: %w", api.ErrInvalidParameter)
		}
		return nil
	case URILocator:
		return fmt.Errorf("uri locator is source-only: %w", api.ErrInvalidParameter)
	default:
		return fmt.Errorf("unknown locator kind %q: %w", loc.locatorKind(), api.ErrInvalidParameter)
	}
}

func checkFormat(f Format, want string) error {
	if f == nil {
		return fmt.Errorf("locator requires a %s format: %w", want, api.ErrInvalidParameter)
	}
	if f.formatKind() != want {
		return fmt.Errorf("locator requires a %s format, got %s: %w", want, f.formatKind(), api.ErrInvalidParameter)
	}
	if pcm, ok := f.(PCMFormat); ok {
		return pcm.validate()
	}
	if mime, ok := f.(MIMEFormat); ok && mime.MIMEType == "" {
		return fmt.Errorf("empty mime type: %w", api.ErrInvalidParameter)
	}
	return nil
}
