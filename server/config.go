package respira

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	Rt "github.com/maroda/respira/types"
)

// ConfigFile is one stanza of the JSON config:
// where samples come from and which segments to analyse
type ConfigFile struct {
	ID       string       `json:"id"`
	Source   string       `json:"source"`  // directory, http(s) base URL or "sim:..."
	Counter  string       `json:"counter"` // peak counter, "" for find_peaks
	Sweep    bool         `json:"sweep"`   // walk the record window by window
	Segments []Rt.Segment `json:"segments"`
}

// LoadConfigFileName pulls a given filename config off local disk
// Validation is performed on the file before opening
func LoadConfigFileName(filename string) ([]ConfigFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// validation
	err = validateLoad(file)
	if err != nil {
		slog.Error("Validation failed", slog.Any("Error", err))
		return nil, err
	}

	return LoadConfig(file)
}

func validateLoad(file *os.File) error {
	// validate file
	info, err := file.Stat()
	if err != nil {
		slog.Error("could not stat file")
		return err
	}

	// validate size
	if info.Size() == 0 {
		slog.Error("file is empty")
		return errors.New("file is empty")
	}

	return nil
}

func LoadConfig(file *os.File) ([]ConfigFile, error) {
	// decode json
	var config []ConfigFile
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		slog.Error("could not decode file")
		return nil, err
	}

	// every segment has to be servable before anything runs
	for _, c := range config {
		for _, seg := range c.Segments {
			if err := ValidateSegment(seg); err != nil {
				slog.Error("invalid segment in config",
					slog.String("id", c.ID),
					slog.Any("Error", err))
				return nil, err
			}
		}
	}

	return config, nil
}

// Job is a configured segment and the analyzer that serves it.
// A sweeping job moves Segment forward by its own length on every pass
// and returns to Start when it runs off the record.
type Job struct {
	ID       string
	Sweep    bool
	Start    int
	Segment  Rt.Segment
	Analyzer Respira
}

// NewJobsFromConfig builds one Analyzer per stanza
// and one Job per configured segment
func NewJobsFromConfig(cf []ConfigFile) ([]*Job, error) {
	var jobs []*Job

	for _, c := range cf {
		provider, err := NewProvider(c.Source)
		if err != nil {
			slog.Error("Could not build sample provider",
				slog.String("id", c.ID),
				slog.String("source", c.Source),
				slog.Any("Error", err))
			return nil, err
		}

		an, err := NewAnalyzer(provider, c.Counter)
		if err != nil {
			return nil, err
		}

		for _, seg := range c.Segments {
			jobs = append(jobs, &Job{
				ID:       c.ID,
				Sweep:    c.Sweep,
				Start:    seg.Offset,
				Segment:  seg,
				Analyzer: an,
			})
		}
	}

	return jobs, nil
}

// Advance moves a sweeping job to its next window.
// err is the result of the window just analysed: running off the
// end of the record sends the job back to where it started,
// any other failure keeps the job on the same window for the next pass.
func (j *Job) Advance(err error) {
	if !j.Sweep {
		return
	}
	if errors.Is(err, ErrInvalidSegment) {
		slog.Info("Sweep reached the end of the record, restarting",
			slog.String("id", j.ID),
			slog.String("record", j.Segment.Record),
			slog.Int("start", j.Start))
		j.Segment.Offset = j.Start
		return
	}
	if err != nil {
		slog.Warn("Sweep window failed, retrying on the next pass",
			slog.String("id", j.ID),
			slog.String("record", j.Segment.Record),
			slog.Int("offset", j.Segment.Offset),
			slog.Any("Error", err))
		return
	}
	j.Segment.Offset += j.Segment.Seconds
}
