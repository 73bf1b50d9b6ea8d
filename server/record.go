package respira

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	Rt "github.com/maroda/respira/types"
)

// ErrInvalidSegment is the one failure that aborts an analysis:
// the request itself cannot be served.
var ErrInvalidSegment = errors.New("invalid segment request")

// Record storage is 16 bit little endian two's complement,
// 200 A/D units per mV, at Rt.SampleRate
const (
	sampleBytes = 2
	adPerMV     = 200
)

// SampleProvider hands out one segment of a record as millivolts
type SampleProvider interface {
	Samples(record string, offset, seconds int) ([]float64, error)
	Type() string
}

// ValidateSegment rejects requests no provider could serve
func ValidateSegment(seg Rt.Segment) error {
	switch {
	case strings.TrimSpace(seg.Record) == "":
		return fmt.Errorf("%w: empty record name", ErrInvalidSegment)
	case seg.Seconds <= 0:
		return fmt.Errorf("%w: duration %ds is not positive", ErrInvalidSegment, seg.Seconds)
	case seg.Offset < 0:
		return fmt.Errorf("%w: offset %ds is negative", ErrInvalidSegment, seg.Offset)
	}
	return nil
}

// DecodeSamples converts raw record bytes into millivolts.
// A trailing odd byte is ignored.
func DecodeSamples(b []byte) []float64 {
	samples := make([]float64, len(b)/sampleBytes)
	for i := range samples {
		raw := int16(binary.LittleEndian.Uint16(b[i*sampleBytes:]))
		samples[i] = float64(raw) / adPerMV
	}
	return samples
}

// segmentBytes is the byte range [start, end) of a segment inside a record of size bytes.
// The end is clipped to the record, the start must fall inside it.
func segmentBytes(size int64, record string, offset, seconds int) (int64, int64, error) {
	start := int64(offset) * Rt.SampleRate * sampleBytes
	end := start + int64(seconds)*Rt.SampleRate*sampleBytes
	if start >= size {
		return 0, 0, fmt.Errorf("%w: offset %ds is beyond the end of %s", ErrInvalidSegment, offset, record)
	}
	if end > size {
		// truncated, not zero padded: a short tail adds no samples
		slog.Warn("Segment runs past the end of the record, truncating",
			slog.String("record", record),
			slog.Int("offset", offset),
			slog.Int("seconds", seconds))
		end = size
	}
	return start, end, nil
}

// FileProvider reads <Dir>/<record>.dat from local disk
type FileProvider struct {
	Dir string
}

func (fp *FileProvider) Samples(record string, offset, seconds int) ([]float64, error) {
	if err := ValidateSegment(Rt.Segment{Record: record, Offset: offset, Seconds: seconds}); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(fp.Dir, record+".dat"))
	if err != nil {
		slog.Error("Could not open record", slog.String("record", record), slog.Any("Error", err))
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		slog.Error("could not stat record", slog.String("record", record))
		return nil, err
	}

	start, end, err := segmentBytes(info.Size(), record, offset, seconds)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, end-start)
	if _, err := file.ReadAt(buf, start); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Could not read record", slog.String("record", record), slog.Any("Error", err))
		return nil, fmt.Errorf("reading %s: %w", record, err)
	}

	return DecodeSamples(buf), nil
}

func (fp *FileProvider) Type() string { return "file" }

// WebProvider downloads <BaseURL>/<record>.dat, e.g. from PhysioNet,
// and keeps each record in memory once fetched
type WebProvider struct {
	BaseURL string
	Client  HTTPClient

	mu    sync.Mutex
	cache map[string][]byte
}

func NewWebProvider(baseURL string) *WebProvider {
	return &WebProvider{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  sharedHTTPClient,
		cache:   make(map[string][]byte),
	}
}

func (wp *WebProvider) record(record string) ([]byte, error) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if raw, ok := wp.cache[record]; ok {
		return raw, nil
	}

	client := wp.Client
	if client == nil {
		client = sharedHTTPClient
	}

	status, body, err := SingleFetchWithClient(urlCat(wp.BaseURL, "/", record, ".dat"), client)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		slog.Error("Record fetch failed", slog.String("record", record), slog.Int("status", status))
		return nil, fmt.Errorf("fetching %s: status %d", record, status)
	}

	if wp.cache == nil {
		wp.cache = make(map[string][]byte)
	}
	wp.cache[record] = body
	return body, nil
}

func (wp *WebProvider) Samples(record string, offset, seconds int) ([]float64, error) {
	if err := ValidateSegment(Rt.Segment{Record: record, Offset: offset, Seconds: seconds}); err != nil {
		return nil, err
	}

	raw, err := wp.record(record)
	if err != nil {
		return nil, err
	}

	start, end, err := segmentBytes(int64(len(raw)), record, offset, seconds)
	if err != nil {
		return nil, err
	}
	return DecodeSamples(raw[start:end]), nil
}

func (wp *WebProvider) Type() string { return "web" }

// NewProvider picks a provider from a source string:
// "sim:" for the simulator, an http(s) URL, or a local directory
func NewProvider(source string) (SampleProvider, error) {
	switch {
	case strings.HasPrefix(source, "sim:"):
		return ParseSimProvider(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return NewWebProvider(source), nil
	case source == "" || source == "ENOENT":
		return nil, errors.New("no sample source configured")
	}

	info, err := os.Stat(source)
	if err != nil {
		slog.Error("Could not stat sample source", slog.String("source", source), slog.Any("Error", err))
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sample source %s is not a directory", source)
	}
	return &FileProvider{Dir: source}, nil
}
