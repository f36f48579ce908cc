package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mdchunk/mdchunk/internal/converter"
	"github.com/mdchunk/mdchunk/internal/document"
	"github.com/mdchunk/mdchunk/internal/outline"
	"github.com/mdchunk/mdchunk/internal/pipeline"
	"github.com/mdchunk/mdchunk/internal/segment"
)

// convertRequest is the JSON body for POST /api/convert. Markdown is
// required; the outline and metadata are optional, as are per-request
// pipeline overrides.
type convertRequest struct {
	Markdown string             `json:"markdown"`
	Outline  []outline.Entry    `json:"outline,omitempty"`
	Metadata *document.Metadata `json:"metadata,omitempty"`

	Options *convertOptions `json:"options,omitempty"`
}

type convertOptions struct {
	TargetChunkSize *int  `json:"target_chunk_size,omitempty"`
	MaxChunkSize    *int  `json:"max_chunk_size,omitempty"`
	MinChunkSize    *int  `json:"min_chunk_size,omitempty"`
	StrictHeadings  *bool `json:"strict_headings,omitempty"`
	MergeTables     *bool `json:"merge_tables,omitempty"`
	SegmentContent  *bool `json:"segment_content,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Markdown == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	cfg := s.pipelineConfig(req.Options)
	p, err := pipeline.New(cfg, s.log)
	if err != nil {
		jsonError(w, "invalid options: "+err.Error(), http.StatusBadRequest)
		return
	}

	in := &converter.Result{
		Markdown: req.Markdown,
		Outline:  req.Outline,
	}
	if req.Metadata != nil {
		in.Metadata = *req.Metadata
	}

	res, err := p.Run(in)
	if err != nil {
		s.log.Error("conversion failed", "error", err)
		jsonError(w, fmt.Sprintf("conversion failed: %s", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

// pipelineConfig starts from server defaults and applies the request's
// overrides.
func (s *Server) pipelineConfig(opts *convertOptions) pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.OutputFormat = pipeline.FormatJSON
	cfg.Segment = segment.Config{
		TargetChunkSize:    s.cfg.TargetChunkSize,
		MaxChunkSize:       s.cfg.MaxChunkSize,
		MinChunkSize:       s.cfg.MinChunkSize,
		PreserveTables:     true,
		PreserveCodeBlocks: true,
	}
	if opts == nil {
		return cfg
	}
	if opts.TargetChunkSize != nil {
		cfg.Segment.TargetChunkSize = *opts.TargetChunkSize
	}
	if opts.MaxChunkSize != nil {
		cfg.Segment.MaxChunkSize = *opts.MaxChunkSize
	}
	if opts.MinChunkSize != nil {
		cfg.Segment.MinChunkSize = *opts.MinChunkSize
	}
	if opts.StrictHeadings != nil {
		cfg.Headings.Strict = *opts.StrictHeadings
	}
	if opts.MergeTables != nil {
		cfg.MergeTables = *opts.MergeTables
	}
	if opts.SegmentContent != nil {
		cfg.SegmentContent = *opts.SegmentContent
	}
	return cfg
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
