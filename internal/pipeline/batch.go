package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mdchunk/mdchunk/internal/converter"
)

// FileResult records the outcome of one file in a batch run.
type FileResult struct {
	Input  string
	Output string
	Chunks int
	Err    error
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Processed int
	Failed    int
	Results   []FileResult
}

// RunBatch processes every supported file in inputDir with a bounded
// worker pool, writing one output file per input into outputDir.
// Individual file failures are recorded, not fatal.
func (p *Pipeline) RunBatch(ctx context.Context, inputDir, outputDir string, workers int) (*BatchSummary, error) {
	if workers <= 0 {
		workers = 1
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !converter.IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(inputDir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported files in %s", inputDir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	queue := make(chan int)
	results := make([]FileResult, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = p.processFile(paths[i], outputDir)
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case <-ctx.Done():
			break feed
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &BatchSummary{Results: results}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			p.log.Error("batch file failed", "input", r.Input, "error", r.Err)
		} else {
			summary.Processed++
			p.log.Info("batch file processed", "input", r.Input, "output", r.Output, "chunks", r.Chunks)
		}
	}
	return summary, nil
}

func (p *Pipeline) processFile(path, outputDir string) FileResult {
	res := FileResult{Input: path}

	conv, err := converter.ForFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	in, err := conv.Convert(path)
	if err != nil {
		res.Err = fmt.Errorf("convert: %w", err)
		return res
	}
	out, err := p.Run(in)
	if err != nil {
		res.Err = fmt.Errorf("process: %w", err)
		return res
	}
	rendered, err := p.Render(out)
	if err != nil {
		res.Err = fmt.Errorf("render: %w", err)
		return res
	}

	res.Output = filepath.Join(outputDir, outputName(path, p.cfg.OutputFormat))
	res.Chunks = len(out.Chunks)
	if err := os.WriteFile(res.Output, []byte(rendered), 0o644); err != nil {
		res.Err = fmt.Errorf("write output: %w", err)
	}
	return res
}

func outputName(inputPath string, format OutputFormat) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if format == FormatJSON {
		return stem + ".json"
	}
	return stem + ".md"
}
