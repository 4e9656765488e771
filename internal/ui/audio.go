package ui

import (
	"encoding/binary"
	"time"

	"github.com/jterrac/gbcore/internal/emu"
)

// applyPlayerBufferSize sets the audio player's internal buffer: ~20ms in
// low-latency mode (or during fast-forward), ~40ms otherwise.
func (a *App) applyPlayerBufferSize() {
	if a.audioPlayer == nil {
		return
	}
	bufMs := 40
	if a.cfg.AudioLowLatency || a.fast {
		bufMs = 20
	}
	a.audioPlayer.SetBufferSize(time.Duration(bufMs) * time.Millisecond)
}

// apuStream implements io.Reader for ebiten's audio player by pulling PCM
// frames from the emulator APU and encoding them as 16-bit little-endian
// stereo.
type apuStream struct {
	m          *emu.Machine
	mono       bool
	muted      *bool
	lowLatency bool
	// stats for the debug overlay
	underruns  int
	lastWant   int
	lastPulled int
}

// writeSilence fills p with up to frames stereo frames of zeros and
// records the read as an underrun.
func (s *apuStream) writeSilence(p []byte, frames int) int {
	n := 0
	for i := 0; i < frames*4 && i+3 < len(p); i += 4 {
		binary.LittleEndian.PutUint16(p[i:], 0)
		binary.LittleEndian.PutUint16(p[i+2:], 0)
		n++
	}
	s.underruns++
	s.lastWant = n
	s.lastPulled = n
	return n * 4
}

func (s *apuStream) Read(p []byte) (int, error) {
	if len(p) == 0 || s == nil || s.m == nil {
		return 0, nil
	}
	// A full stereo frame is 4 bytes; for smaller buffers just hand back
	// silence rather than returning 0 bytes and stalling the player.
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	if s.muted != nil && *s.muted {
		for i := range p {
			p[i] = 0
		}
		time.Sleep(5 * time.Millisecond)
		return len(p), nil
	}
	// Cap per-read size so the player can't run far ahead of the emulator.
	maxReq := len(p) / 4
	capFrames := 2048 // ~42.7ms at 48kHz
	if s.lowLatency {
		capFrames = 1024 // ~21.3ms
	}
	if maxReq > capFrames {
		maxReq = capFrames
	}

	// Prefer to read only what's currently buffered to avoid padding; wait
	// briefly for data when the buffer is empty.
	waitDur := 15 * time.Millisecond
	if s.lowLatency {
		waitDur = 8 * time.Millisecond
	}
	deadline := time.Now().Add(waitDur)
	want := maxReq
	if buf := s.m.APUBufferedStereo(); buf > 0 {
		if buf < want {
			want = buf
		}
	} else {
		for time.Now().Before(deadline) {
			if b := s.m.APUBufferedStereo(); b > 0 {
				want = b
				if want > maxReq {
					want = maxReq
				}
				break
			}
			time.Sleep(1 * time.Millisecond)
		}
	}
	if want <= 0 {
		// Still nothing: emit a minimal silence chunk.
		frames := 256
		if frames > maxReq {
			frames = maxReq
		}
		return s.writeSilence(p, frames), nil
	}

	// Pull and encode exactly 'want' frames; never pad beyond what the APU
	// actually produced.
	pulled := 0
	i := 0
	for pulled < want {
		frames := s.m.APUPullStereo(want - pulled)
		if len(frames) == 0 {
			break
		}
		for j := 0; j+1 < len(frames) && i+3 < len(p); j += 2 {
			l, r := frames[j], frames[j+1]
			if s.mono {
				m := int16((int32(l) + int32(r)) / 2)
				l, r = m, m
			}
			binary.LittleEndian.PutUint16(p[i:], uint16(l))
			binary.LittleEndian.PutUint16(p[i+2:], uint16(r))
			i += 4
			pulled++
		}
	}
	if pulled == 0 {
		frames := 128
		if frames > maxReq {
			frames = maxReq
		}
		return s.writeSilence(p, frames), nil
	}
	s.lastWant = pulled
	s.lastPulled = pulled
	return pulled * 4, nil
}
