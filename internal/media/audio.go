package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Audio is synthesized speech as returned by a provider.
type Audio struct {
	Data        []byte
	ContentType string
}

// PCMFormat describes raw little-endian PCM samples.
type PCMFormat struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultPCM is the format speech providers use for raw L16 output.
var DefaultPCM = PCMFormat{SampleRate: 24000, Channels: 1, BitsPerSample: 16}

// ParsePCMFormat reads the rate from an "audio/L16;codec=pcm;rate=24000"
// content type, falling back to DefaultPCM.
func ParsePCMFormat(contentType string) PCMFormat {
	f := DefaultPCM
	for _, part := range strings.Split(contentType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "rate":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				f.SampleRate = n
			}
		case "channels":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				f.Channels = n
			}
		}
	}
	return f
}

// IsRawPCM reports whether contentType denotes headerless PCM.
func IsRawPCM(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "audio/l16") || strings.Contains(ct, "codec=pcm") || ct == "audio/pcm"
}

// WAV wraps PCM samples in a RIFF/WAVE container.
func WAV(pcm []byte, f PCMFormat) []byte {
	blockAlign := f.Channels * f.BitsPerSample / 8
	byteRate := f.SampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(f.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(f.BitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// WriteAudio stores speech at path, wrapping raw PCM in WAV first.
func WriteAudio(path string, a Audio) error {
	data := a.Data
	if IsRawPCM(a.ContentType) {
		data = WAV(a.Data, ParsePCMFormat(a.ContentType))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}
