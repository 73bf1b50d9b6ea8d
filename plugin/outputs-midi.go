//go:build !nomidi

package plugin

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	Rt "github.com/maroda/respira/types"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type MIDIOutput struct {
	Port    drivers.Out
	Send    func(msg midi.Message) error
	Channel uint8
	Root    uint8
	Speed   float64 // playback speed, 4 plays a minute of intervals in 15s
	WG      sync.WaitGroup
}

func NewMIDIOutput(port int, root uint8, speed float64) (*MIDIOutput, error) {
	out, err := midi.OutPort(port)
	if err != nil {
		slog.Error("Error opening MIDI port", slog.Int("port", port))
		return nil, fmt.Errorf("error opening MIDI port: %w", err)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		slog.Error("Error sending to MIDI port", slog.Int("port", port))
		return nil, fmt.Errorf("error sending to MIDI port: %w", err)
	}

	if speed <= 0 {
		speed = 1
	}

	return &MIDIOutput{
		Port:  out,
		Send:  send,
		Root:  root,
		Speed: speed,
		WG:    sync.WaitGroup{},
	}, nil
}

func (mo *MIDIOutput) SendNoteOnMIDI(midic, midin, midiv uint8) error {
	return mo.Send(midi.NoteOn(midic, midin, midiv))
}

func (mo *MIDIOutput) SendNoteOffMIDI(midic, midin uint8) error {
	return mo.Send(midi.NoteOff(midic, midin))
}

// WriteAnalysis plays the RR intervals of the analysis in the background,
// each note held for its own interval scaled by Speed
func (mo *MIDIOutput) WriteAnalysis(a *Rt.Analysis) error {
	notes := IntervalNotes(mo.Root, a)
	if len(notes) == 0 {
		return nil
	}

	mo.WG.Add(1)
	go func() {
		defer mo.WG.Done()
		for i, note := range notes {
			if err := mo.SendNoteOnMIDI(mo.Channel, note, 100); err != nil {
				slog.Error("NoteOn event failed", slog.Any("error", err))
			}
			hold := time.Duration(a.Intervals[i].Duration / mo.Speed * float64(time.Second))
			time.Sleep(hold)
			if err := mo.SendNoteOffMIDI(mo.Channel, note); err != nil {
				slog.Error("NoteOff event failed, attempting Flush")
				mo.Flush()
			}
		}
	}()

	return nil
}

func (mo *MIDIOutput) WriteBatch(as []*Rt.Analysis) error {
	for _, a := range as {
		if err := mo.WriteAnalysis(a); err != nil {
			return err
		}
	}
	return nil
}

func (mo *MIDIOutput) QueryRecord(record string) ([]*Rt.Analysis, error) {
	return nil, ErrNoQuery
}

func (mo *MIDIOutput) Flush() error {
	return mo.Send(midi.ControlChange(mo.Channel, midi.AllNotesOff, midi.Off))
}

func (mo *MIDIOutput) Close() error {
	mo.WG.Wait()

	if mo.Port != nil {
		mo.Port.Close()
		midi.CloseDriver()
	}
	return nil
}

func (mo *MIDIOutput) Type() string { return "MIDI" }
