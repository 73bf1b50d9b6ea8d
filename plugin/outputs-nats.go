package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	Rt "github.com/maroda/respira/types"
	"github.com/nats-io/nats.go"
)

// ErrNoQuery is returned by outputs that only publish
var ErrNoQuery = errors.New("output does not support queries")

// Publisher is the part of *nats.Conn the output needs
type Publisher interface {
	Publish(subj string, data []byte) error
	Flush() error
	Drain() error
}

// NATSOutput publishes each analysis as JSON on one subject
type NATSOutput struct {
	Conn    Publisher
	Subject string
}

// NATSConnect dials with reconnects that never give up
func NATSConnect(url string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("respira"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

func NewNATSOutput(url, subject string) (*NATSOutput, error) {
	nc, err := NATSConnect(url)
	if err != nil {
		slog.Error("NATSOutput failed to connect", slog.String("url", url), slog.Any("error", err))
		return nil, fmt.Errorf("nats connect error: %w", err)
	}

	slog.Info("NATSOutput connected",
		slog.String("url", url),
		slog.String("subject", subject))

	return &NATSOutput{
		Conn:    nc,
		Subject: subject,
	}, nil
}

// AnalysisMessage is the wire form of an analysis
type AnalysisMessage struct {
	Subject  string       `json:"subject"`
	Ts       int64        `json:"ts"`
	Analysis *Rt.Analysis `json:"analysis"`
}

// EncodeAnalysisMessage stamps the message with ts (Unix ms)
func EncodeAnalysisMessage(subject string, ts int64, a *Rt.Analysis) ([]byte, error) {
	return json.Marshal(AnalysisMessage{
		Subject:  subject,
		Ts:       ts,
		Analysis: a,
	})
}

func (no *NATSOutput) WriteAnalysis(a *Rt.Analysis) error {
	b, err := EncodeAnalysisMessage(no.Subject, time.Now().UnixMilli(), a)
	if err != nil {
		slog.Error("NATSOutput failed to encode analysis", slog.Any("error", err))
		return fmt.Errorf("encode error: %w", err)
	}

	if err := no.Conn.Publish(no.Subject, b); err != nil {
		slog.Error("NATSOutput failed to publish",
			slog.String("subject", no.Subject),
			slog.Any("error", err))
		return fmt.Errorf("publish error: %w", err)
	}
	return nil
}

func (no *NATSOutput) WriteBatch(as []*Rt.Analysis) error {
	for _, a := range as {
		if err := no.WriteAnalysis(a); err != nil {
			return err
		}
	}
	return no.Flush()
}

func (no *NATSOutput) QueryRecord(record string) ([]*Rt.Analysis, error) {
	return nil, ErrNoQuery
}

func (no *NATSOutput) Flush() error { return no.Conn.Flush() }

func (no *NATSOutput) Close() error {
	slog.Info("NATSOutput draining", slog.String("subject", no.Subject))
	return no.Conn.Drain()
}

func (no *NATSOutput) Type() string { return "NATS" }
