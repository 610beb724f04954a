package recorder

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTransfer(_ *TransferEvent) error   { return nil }
func (n *NoopRecorder) RecordPolicyChange(_ *PolicyEvent) error { return nil }
func (n *NoopRecorder) RecordSwapBack(_ *SwapBackEvent) error   { return nil }
func (n *NoopRecorder) Close() error                            { return nil }

var _ Recorder = (*NoopRecorder)(nil)
