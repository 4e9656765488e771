package serial

import "testing"

type captureWriter struct{ got []byte }

func (c *captureWriter) Write(p []byte) (int, error) {
	c.got = append(c.got, p...)
	return len(p), nil
}

func TestSerial_StartBitEmitsToSink(t *testing.T) {
	s := New()
	sink := &captureWriter{}
	s.Sink = sink
	s.Write(SB, 0x41)
	s.Write(SC, 0x81)
	if len(sink.got) != 1 || sink.got[0] != 0x41 {
		t.Fatalf("sink got %v want [0x41]", sink.got)
	}
}

func TestSerial_NoSinkDoesNotPanic(t *testing.T) {
	s := New()
	s.Write(SB, 0x01)
	s.Write(SC, 0x81)
}

func TestSerial_ReadFixedBitsOnSC(t *testing.T) {
	s := New()
	s.Write(SC, 0x01)
	if got := s.Read(SC); got&0x7E != 0x7E {
		t.Fatalf("SC got %02X, fixed bits not set", got)
	}
}
