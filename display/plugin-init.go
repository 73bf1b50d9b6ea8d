package respira

import (
	"fmt"
	"log/slog"

	Rp "github.com/maroda/respira/plugin"
	Rs "github.com/maroda/respira/server"
)

// InitOutput builds the output adapter named by kind,
// configured from RESPIRA_* environment variables.
// An empty kind means no output and returns nil, nil.
func InitOutput(kind string) (Rp.OutputAdapter, error) {
	switch kind {
	case "", "none", "ENOENT":
		return nil, nil
	case "badger":
		return InitBadgerOutput()
	case "nats":
		return InitNATSOutput()
	case "midi":
		return InitMIDIOutput()
	}
	return nil, fmt.Errorf("unknown output: %s", kind)
}

func InitBadgerOutput() (Rp.OutputAdapter, error) {
	path := Rs.EnvOr("RESPIRA_BADGER_PATH", "./respira_db")
	batch := Rs.FillEnvVarInt("RESPIRA_BADGER_BATCH", 10)

	output, err := Rp.NewBadgerOutput(path, batch)
	if err != nil {
		slog.Error("Failed to create adapter", slog.String("output", "badger"), slog.Any("error", err))
		return nil, err
	}
	slog.Info("Badger Adapter Enabled", slog.String("path", path))
	return output, nil
}

func InitNATSOutput() (Rp.OutputAdapter, error) {
	url := Rs.EnvOr("RESPIRA_NATS_URL", "nats://127.0.0.1:4222")
	subject := Rs.EnvOr("RESPIRA_NATS_SUBJECT", "ecg.breath")

	output, err := Rp.NewNATSOutput(url, subject)
	if err != nil {
		slog.Error("Failed to create adapter", slog.String("output", "nats"), slog.Any("error", err))
		return nil, err
	}
	slog.Info("NATS Adapter Enabled", slog.String("url", url), slog.String("subject", subject))
	return output, nil
}

func InitMIDIOutput() (Rp.OutputAdapter, error) {
	midiPort := Rs.FillEnvVarInt("RESPIRA_PLUGIN_MIDI_PORT", 0)
	midiRoot := uint8(Rs.FillEnvVarInt("RESPIRA_PLUGIN_MIDI_ROOT", 60))
	midiSpeed := Rs.FillEnvVarInt("RESPIRA_PLUGIN_MIDI_SPEED", 4)

	slog.Info("Configuration found:",
		slog.Int("Port", midiPort),
		slog.Any("Root", midiRoot),
		slog.Int("Speed", midiSpeed),
	)

	output, err := Rp.NewMIDIOutput(midiPort, midiRoot, float64(midiSpeed))
	if err != nil {
		slog.Error("Failed to create adapter", slog.String("output", "midi"), slog.Any("error", err))
		return nil, err
	}
	slog.Info("MIDI Adapter Enabled", slog.Int("port", midiPort))
	return output, nil
}
