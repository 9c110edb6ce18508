package xmetrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// =============================================================================
// OTLP 导出
// =============================================================================

// DefaultMetricInterval 指标周期导出间隔。
const DefaultMetricInterval = time.Minute

// ExportConfig OTLP/gRPC 导出配置。
type ExportConfig struct {
	// Endpoint collector 地址（host:port），必填。
	Endpoint string
	// Insecure 为 true 时使用明文连接。
	Insecure bool
	// ServiceName 资源属性 service.name。
	ServiceName string
	// ServiceVersion 资源属性 service.version，空值不设置。
	ServiceVersion string
	// SampleRatio 根跨度采样比例，取值 [0, 1]。
	SampleRatio float64
	// MetricInterval 指标导出间隔，<= 0 时使用 DefaultMetricInterval。
	MetricInterval time.Duration
}

// Validate 检查导出配置。
func (c ExportConfig) Validate() error {
	if c.Endpoint == "" {
		return ErrNoEndpoint
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSampleRatio, c.SampleRatio)
	}
	return nil
}

// Providers 持有 SDK provider，供 NewOTelObserver 使用。
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewOTLPProviders 创建经 OTLP/gRPC 导出的 TracerProvider 与 MeterProvider。
//
// gRPC 连接惰性建立，collector 不可达不会导致创建失败，导出错误由 SDK 内部处理。
// 调用方负责在退出时调用 Shutdown 刷新缓冲数据。
func NewOTLPProviders(ctx context.Context, cfg ExportConfig) (*Providers, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	spanExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: trace: %w", ErrCreateExporter, err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("%w: metric: %w", ErrCreateExporter, err),
			spanExporter.Shutdown(ctx),
		)
	}

	interval := cfg.MetricInterval
	if interval <= 0 {
		interval = DefaultMetricInterval
	}
	reader := sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))

	return NewProviders(cfg, sdktrace.WithBatcher(spanExporter), reader), nil
}

// NewProviders 以给定的跨度处理器与指标 reader 组装 provider。
// 资源属性与采样比例取自 cfg，Endpoint 不参与。
func NewProviders(cfg ExportConfig, spans sdktrace.TracerProviderOption, reader sdkmetric.Reader) *Providers {
	res := newResource(cfg)
	return &Providers{
		Tracer: sdktrace.NewTracerProvider(
			spans,
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		),
		Meter: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		),
	}
}

func newResource(cfg ExportConfig) *resource.Resource {
	attrs := make([]attribute.KeyValue, 0, 2)
	if cfg.ServiceName != "" {
		attrs = append(attrs, attribute.String("service.name", cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	return resource.NewSchemaless(attrs...)
}

// Options 返回把 provider 传给 NewOTelObserver 的选项。
func (p *Providers) Options() []Option {
	if p == nil {
		return nil
	}
	return []Option{WithTracerProvider(p.Tracer), WithMeterProvider(p.Meter)}
}

// Shutdown 刷新并关闭两个 provider。重复调用返回首次的结果。
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.shutdownOnce.Do(func() {
		p.shutdownErr = errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx))
	})
	return p.shutdownErr
}
