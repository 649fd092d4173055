package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	errNotWAV         = errors.New("not a RIFF/WAVE file")
	errUnsupportedWAV = errors.New("only 16-bit PCM WAV is supported")
	errMissingData    = errors.New("WAV file has no fmt or data chunk")
)

const (
	wavFormatPCM  = 1
	wavBitDepth16 = 16
)

// Format describes interleaved signed 16-bit little-endian PCM.
type Format struct {
	// SampleRate in Hz.
	SampleRate int
	// Channels is 1 for mono, 2 for stereo.
	Channels int
}

// bytesPerFrame is the size of one sample across all channels.
func (f Format) bytesPerFrame() int {
	return f.Channels * 2
}

// parseWAV returns the format and the raw PCM payload of a 16-bit PCM WAV file.
func parseWAV(data []byte) (Format, []byte, error) {
	reader := bytes.NewReader(data)

	var header struct {
		RIFF [4]byte
		Size uint32
		WAVE [4]byte
	}

	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return Format{}, nil, fmt.Errorf("read header: %w", err)
	}

	if string(header.RIFF[:]) != "RIFF" || string(header.WAVE[:]) != "WAVE" {
		return Format{}, nil, errNotWAV
	}

	var (
		format  Format
		pcm     []byte
		seenFmt bool
	)

	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}

		if err := binary.Read(reader, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return Format{}, nil, fmt.Errorf("read chunk: %w", err)
		}

		body := make([]byte, chunk.Size)
		if _, err := io.ReadFull(reader, body); err != nil {
			return Format{}, nil, fmt.Errorf("read %q chunk: %w", chunk.ID[:], err)
		}

		// Chunks are word aligned.
		if chunk.Size%2 == 1 {
			_, _ = reader.ReadByte()
		}

		switch string(chunk.ID[:]) {
		case "fmt ":
			if len(body) < 16 {
				return Format{}, nil, errUnsupportedWAV
			}

			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			bitDepth := binary.LittleEndian.Uint16(body[14:16])

			if audioFormat != wavFormatPCM || bitDepth != wavBitDepth16 {
				return Format{}, nil, fmt.Errorf("format %d, %d bits: %w", audioFormat, bitDepth, errUnsupportedWAV)
			}

			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			seenFmt = true
		case "data":
			pcm = body
		}
	}

	if !seenFmt || pcm == nil {
		return Format{}, nil, errMissingData
	}

	return format, pcm, nil
}

// loopReader replays data forever.
type loopReader struct {
	data []byte
	pos  int
}

func newLoopReader(data []byte) *loopReader {
	return &loopReader{data: data}
}

// Read fills p from data, wrapping around at the end.
func (l *loopReader) Read(p []byte) (int, error) {
	if len(l.data) == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		copied := copy(p[n:], l.data[l.pos:])
		n += copied
		l.pos = (l.pos + copied) % len(l.data)
	}

	return n, nil
}
