package apu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAPU_MasterDisableSilencesOutput covers spec APU invariant 15: with
// master enable 0, channel outputs read 0 and no samples are produced.
func TestAPU_MasterDisableSilencesOutput(t *testing.T) {
	a := New(44100)
	// Power off via NR52 bit7=0.
	a.CPUWrite(0xFF26, 0x00)
	require.False(t, a.enabled)

	a.Tick(10_000)
	require.Equal(t, 0, a.StereoAvailable(), "powered-off APU must not advance or emit samples")

	pw := a.CPURead(0xFF26)
	require.Equal(t, byte(0), pw&0x80, "power bit must read back as off")
	require.Equal(t, byte(0), pw&0x0F, "all channel-enabled flags must read 0 while powered off")
}

// TestAPU_DACDisabledChannelStaysOffOnTrigger covers spec APU invariant 16:
// a channel whose envelope bits are all zero (DAC disabled) does not become
// enabled on the next trigger write.
func TestAPU_DACDisabledChannelStaysOffOnTrigger(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF26, 0x80) // power on
	a.CPUWrite(0xFF12, 0x00) // NR12: initial vol 0, dir 0 (decrease), period 0 -> DAC off
	a.CPUWrite(0xFF14, 0x80) // NR14 trigger
	require.False(t, a.ch1.enabled, "channel 1 must stay disabled when its DAC is off")
}

// TestAPU_DACEnabledChannelTriggersOn is the positive counterpart: nonzero
// envelope bits enable the DAC and the channel turns on when triggered.
func TestAPU_DACEnabledChannelTriggersOn(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF12, 0xF0) // initial volume 15, direction decrease
	a.CPUWrite(0xFF14, 0x80) // trigger
	require.True(t, a.ch1.enabled)
	require.Equal(t, byte(15), a.ch1.curVol)
}

// TestAPU_LengthCounterDisablesChannel exercises the length-counter
// invariant: when enabled and it reaches 0, the channel disables itself.
func TestAPU_LengthCounterDisablesChannel(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF12, 0xF0)       // DAC on
	a.CPUWrite(0xFF11, 0x3F)       // length = 64-63 = 1
	a.CPUWrite(0xFF14, 0x80|0x40) // trigger + length-enable
	require.True(t, a.ch1.enabled)

	a.clockLength()
	require.False(t, a.ch1.enabled, "length counter reaching 0 must disable the channel")
}

// TestAPU_TriggerReloadsFullLengthWhenZero matches the channel-trigger
// contract: a zero length counter is reloaded to the channel's full scale
// on trigger (64 for square/noise, 256 for wave).
func TestAPU_TriggerReloadsFullLengthWhenZero(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF1A, 0x80) // CH3 DAC on
	a.CPUWrite(0xFF1B, 0x00) // length = 256-0 = 256
	a.ch3.length = 0
	a.CPUWrite(0xFF1E, 0x80) // trigger CH3
	require.Equal(t, 256, a.ch3.length)
}

// TestAPU_NoiseTimerPeriod checks the divisor<<shift reload: divisor code
// 1 (16) shifted by 2 gives 64 master clocks per LFSR step.
func TestAPU_NoiseTimerPeriod(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF21, 0xF0) // CH4 DAC on
	a.CPUWrite(0xFF22, 0x21) // shift=2, 15-bit width, divisor code 1
	a.CPUWrite(0xFF23, 0x80) // trigger
	require.Equal(t, 64, a.ch4.timer)
	require.Equal(t, uint16(0x7FFF), a.ch4.lfsr, "trigger must seed the LFSR")

	a.Tick(64)
	require.NotEqual(t, uint16(0x7FFF), a.ch4.lfsr, "LFSR must step after one period")
}

// TestAPU_NoiseInertAboveShift13: shift clocks 14 and 15 freeze the LFSR.
func TestAPU_NoiseInertAboveShift13(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF21, 0xF0)
	a.CPUWrite(0xFF22, 0xE0) // shift=14
	a.CPUWrite(0xFF23, 0x80)
	a.Tick(noiseDivisors[0] << 14)
	require.Equal(t, uint16(0x7FFF), a.ch4.lfsr)
}

// TestAPU_SweepOverflowDisablesChannel: a sweep result above 2047
// silences CH1 on the tick that produced it.
func TestAPU_SweepOverflowDisablesChannel(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF12, 0xF0) // DAC on
	a.CPUWrite(0xFF10, 0x11) // period 1, add mode, shift 1
	a.CPUWrite(0xFF13, 0xFF) // freq low
	a.CPUWrite(0xFF14, 0x87) // trigger with freq high bits 0b111 -> freq 2047
	// 2047 + (2047>>1) overflows immediately on the trigger's pre-check.
	require.False(t, a.ch1.enabled)
}
