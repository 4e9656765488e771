package apu

import (
	"bytes"
	"encoding/gob"
)

// apuState is the gob-serializable snapshot used by machine save states.
type apuState struct {
	Enabled          bool
	NR50, NR51, NR52 byte
	FSctr            int
	FSstep           int
	Ch1              ch1State
	Ch2              ch2State
	Ch3              ch3State
	Ch4              ch4State
	CycAccum         float64
}

type ch1State struct {
	Enabled     bool
	Duty        byte
	Length      int
	LenEn       bool
	Vol         byte
	EnvDir      int8
	EnvPer      byte
	CurVol      byte
	EnvTmr      byte
	Freq        uint16
	Timer       int
	Phase       int
	SweepPer    byte
	SweepNeg    bool
	SweepShift  byte
	SweepTmr    byte
	SweepEn     bool
	SweepShadow uint16
}

type ch2State struct {
	Enabled bool
	Duty    byte
	Length  int
	LenEn   bool
	Vol     byte
	EnvDir  int8
	EnvPer  byte
	CurVol  byte
	EnvTmr  byte
	Freq    uint16
	Timer   int
	Phase   int
}

type ch3State struct {
	Enabled bool
	DAC     bool
	Length  int
	LenEn   bool
	VolCode byte
	Freq    uint16
	Timer   int
	Pos     int
	RAM     [16]byte
}

type ch4State struct {
	Enabled bool
	Length  int
	LenEn   bool
	Vol     byte
	EnvDir  int8
	EnvPer  byte
	CurVol  byte
	EnvTmr  byte
	Shift   byte
	Width7  bool
	DivSel  byte
	Timer   int
	LFSR    uint16
}

func squareState(ch *chSquare) ch1State {
	return ch1State{
		Enabled: ch.enabled, Duty: ch.duty, Length: ch.length,
		LenEn: ch.lenEn, Vol: ch.vol, EnvDir: ch.envDir, EnvPer: ch.envPer,
		CurVol: ch.curVol, EnvTmr: ch.envTmr,
		Freq: ch.freq, Timer: ch.timer, Phase: ch.phase,
		SweepPer: ch.sweepPer, SweepNeg: ch.sweepNeg, SweepShift: ch.sweepShift,
		SweepTmr: ch.sweepTmr, SweepEn: ch.sweepEn, SweepShadow: ch.sweepShadow,
	}
}

func restoreSquare(ch *chSquare, s ch1State) {
	ch.enabled, ch.duty, ch.length = s.Enabled, s.Duty, s.Length
	ch.lenEn, ch.vol, ch.envDir, ch.envPer = s.LenEn, s.Vol, s.EnvDir, s.EnvPer
	ch.curVol, ch.envTmr = s.CurVol, s.EnvTmr
	ch.freq, ch.timer, ch.phase = s.Freq, s.Timer, s.Phase
	ch.sweepPer, ch.sweepNeg, ch.sweepShift = s.SweepPer, s.SweepNeg, s.SweepShift
	ch.sweepTmr, ch.sweepEn, ch.sweepShadow = s.SweepTmr, s.SweepEn, s.SweepShadow
}

// SaveState serializes the APU for a machine save state.
func (a *APU) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	c1 := squareState(&a.ch1)
	c2full := squareState(&a.ch2)
	s := apuState{
		Enabled: a.enabled,
		NR50:    a.nr50, NR51: a.nr51, NR52: a.nr52,
		FSctr: a.fsCounter, FSstep: a.fsStep,
		Ch1: c1,
		Ch2: ch2State{
			Enabled: c2full.Enabled, Duty: c2full.Duty, Length: c2full.Length,
			LenEn: c2full.LenEn, Vol: c2full.Vol, EnvDir: c2full.EnvDir, EnvPer: c2full.EnvPer,
			CurVol: c2full.CurVol, EnvTmr: c2full.EnvTmr,
			Freq: c2full.Freq, Timer: c2full.Timer, Phase: c2full.Phase,
		},
		Ch3: ch3State{
			Enabled: a.ch3.enabled, DAC: a.ch3.dacEn, Length: a.ch3.length, LenEn: a.ch3.lenEn,
			VolCode: a.ch3.volCode, Freq: a.ch3.freq, Timer: a.ch3.timer, Pos: a.ch3.pos,
			RAM: a.ch3.ram,
		},
		Ch4: ch4State{
			Enabled: a.ch4.enabled, Length: a.ch4.length, LenEn: a.ch4.lenEn,
			Vol: a.ch4.vol, EnvDir: a.ch4.envDir, EnvPer: a.ch4.envPer,
			CurVol: a.ch4.curVol, EnvTmr: a.ch4.envTmr,
			Shift: a.ch4.shift, Width7: a.ch4.width7, DivSel: a.ch4.divSel,
			Timer: a.ch4.timer, LFSR: a.ch4.lfsr,
		},
		CycAccum: a.cycAccum,
	}
	_ = enc.Encode(s)
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState; malformed data is
// ignored, leaving the APU unchanged.
func (a *APU) LoadState(data []byte) {
	var s apuState
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return
	}
	a.enabled = s.Enabled
	a.nr50, a.nr51, a.nr52 = s.NR50, s.NR51, s.NR52
	a.fsCounter, a.fsStep = s.FSctr, s.FSstep
	restoreSquare(&a.ch1, s.Ch1)
	restoreSquare(&a.ch2, ch1State{
		Enabled: s.Ch2.Enabled, Duty: s.Ch2.Duty, Length: s.Ch2.Length,
		LenEn: s.Ch2.LenEn, Vol: s.Ch2.Vol, EnvDir: s.Ch2.EnvDir, EnvPer: s.Ch2.EnvPer,
		CurVol: s.Ch2.CurVol, EnvTmr: s.Ch2.EnvTmr,
		Freq: s.Ch2.Freq, Timer: s.Ch2.Timer, Phase: s.Ch2.Phase,
	})
	a.ch3.enabled = s.Ch3.Enabled
	a.ch3.dacEn = s.Ch3.DAC
	a.ch3.length = s.Ch3.Length
	a.ch3.lenEn = s.Ch3.LenEn
	a.ch3.volCode = s.Ch3.VolCode
	a.ch3.freq = s.Ch3.Freq
	a.ch3.timer = s.Ch3.Timer
	a.ch3.pos = s.Ch3.Pos
	a.ch3.ram = s.Ch3.RAM
	a.ch4.enabled = s.Ch4.Enabled
	a.ch4.length = s.Ch4.Length
	a.ch4.lenEn = s.Ch4.LenEn
	a.ch4.vol = s.Ch4.Vol
	a.ch4.envDir = s.Ch4.EnvDir
	a.ch4.envPer = s.Ch4.EnvPer
	a.ch4.curVol = s.Ch4.CurVol
	a.ch4.envTmr = s.Ch4.EnvTmr
	a.ch4.shift = s.Ch4.Shift
	a.ch4.width7 = s.Ch4.Width7
	a.ch4.divSel = s.Ch4.DivSel
	a.ch4.timer = s.Ch4.Timer
	a.ch4.lfsr = s.Ch4.LFSR
	a.cycAccum = s.CycAccum
}
