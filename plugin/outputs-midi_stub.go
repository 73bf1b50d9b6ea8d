//go:build nomidi

package plugin

import (
	"fmt"

	Rt "github.com/maroda/respira/types"
)

type MIDIOutput struct{}

func NewMIDIOutput(port int, root uint8, speed float64) (*MIDIOutput, error) {
	return nil, fmt.Errorf("MIDI support not compiled in this build")
}

func (m *MIDIOutput) WriteAnalysis(a *Rt.Analysis) error {
	return fmt.Errorf("MIDI support not compiled in this build")
}

func (m *MIDIOutput) WriteBatch(as []*Rt.Analysis) error {
	return fmt.Errorf("MIDI support not compiled in this build")
}

func (m *MIDIOutput) QueryRecord(record string) ([]*Rt.Analysis, error) {
	return nil, ErrNoQuery
}

func (m *MIDIOutput) Flush() error { return nil }
func (m *MIDIOutput) Close() error { return nil }
func (m *MIDIOutput) Type() string { return "midi-disabled" }
