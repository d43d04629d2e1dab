package recorder

import "Investaur/internal/model"

// NoopRecorder is a no-op implementation used when the journal is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(_ string, _ model.TradeRecord) error      { return nil }
func (n *NoopRecorder) RecordValuation(_ ValuationEvent) error               { return nil }
func (n *NoopRecorder) RecordSignal(_ SignalEvent) error                     { return nil }
func (n *NoopRecorder) Valuations(_ string, _ int) ([]ValuationEvent, error) { return nil, nil }
func (n *NoopRecorder) Trades(_ string, _ int) ([]model.TradeRecord, error)  { return nil, nil }
func (n *NoopRecorder) Close() error                                         { return nil }
