package xmetrics

import "errors"

// NewOTelObserver 返回的错误。
var (
	ErrCreateCounter   = errors.New("xmetrics: create counter failed")
	ErrCreateHistogram = errors.New("xmetrics: create histogram failed")
)

// NewOTLPProviders 返回的错误。
var (
	ErrNoEndpoint         = errors.New("xmetrics: otlp endpoint is empty")
	ErrInvalidSampleRatio = errors.New("xmetrics: sample ratio must be within [0, 1]")
	ErrCreateExporter     = errors.New("xmetrics: create otlp exporter failed")
)
