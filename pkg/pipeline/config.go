package pipeline

import (
	"github.com/rhuss/respipe/pkg/config"
	"github.com/rhuss/respipe/pkg/transport"
)

// FromConfig assembles the enabled transformers in their standard order:
// SuppressNegotiation, Chunked, Buffer, Gzip.
func FromConfig(cfg config.PipelineConfig) transport.Middleware {
	var mws []transport.Middleware
	if cfg.SuppressNegotiation {
		mws = append(mws, SuppressNegotiation())
	}
	if cfg.Chunked {
		mws = append(mws, Chunked())
	}
	if cfg.Buffer {
		mws = append(mws, Buffer())
	}
	if cfg.Gzip.Enabled {
		mws = append(mws, Gzip(WithGzipLevel(cfg.Gzip.Level)))
	}
	return transport.Chain(mws...)
}
