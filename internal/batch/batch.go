// Package batch generates many passwords concurrently from one generator.
package batch

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lth/passgen/password"
)

// Request holds the parameters passed to every Generate call of a batch.
type Request struct {
	Length      int
	Digits      int
	Symbols     int
	NoUpper     bool
	AllowRepeat bool
}

type Progress struct {
	Generated   uint64
	Total       uint64
	Rate        float64
	ElapsedTime time.Duration
}

type Runner struct {
	gen        password.PasswordGenerator
	workers    int
	generated  uint64
	startTime  time.Time
	progressCb func(Progress)
	logger     *zap.Logger
}

func New(gen password.PasswordGenerator, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		gen:     gen,
		workers: workers,
		logger:  zap.NewNop(),
	}
}

// SetLogger replaces the no-op logger. Passwords are never logged.
func (r *Runner) SetLogger(l *zap.Logger) {
	if l != nil {
		r.logger = l
	}
}

// SetProgressCallback registers cb to be called after every generated
// password. cb may be called from several goroutines at once.
func (r *Runner) SetProgressCallback(cb func(Progress)) {
	r.progressCb = cb
}

func (r *Runner) Workers() int {
	return r.workers
}

func (r *Runner) Generated() uint64 {
	return atomic.LoadUint64(&r.generated)
}

func (r *Runner) reportProgress(total uint64) {
	if r.progressCb == nil {
		return
	}

	generated := atomic.LoadUint64(&r.generated)
	elapsed := time.Since(r.startTime)
	rate := float64(generated) / elapsed.Seconds()

	r.progressCb(Progress{
		Generated:   generated,
		Total:       total,
		Rate:        rate,
		ElapsedTime: elapsed,
	})
}

func (r *Runner) generate(req Request) (string, error) {
	pw, err := r.gen.Generate(req.Length, req.Digits, req.Symbols, req.NoUpper, req.AllowRepeat)
	if err != nil {
		return "", err
	}
	atomic.AddUint64(&r.generated, 1)
	return pw, nil
}

// Run generates count passwords and returns them in a stable order. The first
// generator error stops all workers and is returned.
func (r *Runner) Run(ctx context.Context, req Request, count int) ([]string, error) {
	r.startTime = time.Now()
	atomic.StoreUint64(&r.generated, 0)

	if count <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workers := r.workers
	if workers > count {
		workers = count
	}

	r.logger.Debug("starting batch",
		zap.Int("count", count),
		zap.Int("workers", workers),
		zap.Int("length", req.Length))

	results := make([]string, count)
	jobs := make(chan int)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < count; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- i:
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				pw, err := r.generate(req)
				if err != nil {
					return err
				}
				results[i] = pw
				r.reportProgress(uint64(count))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Debug("batch stopped",
			zap.Uint64("generated", r.Generated()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Debug("batch finished",
		zap.Uint64("generated", r.Generated()),
		zap.Duration("elapsed", time.Since(r.startTime)))

	return results, nil
}

// Stream generates passwords until ctx is done or the generator fails. The
// error channel receives at most one value and is closed together with the
// password channel.
func (r *Runner) Stream(ctx context.Context, req Request) (<-chan string, <-chan error) {
	r.startTime = time.Now()
	atomic.StoreUint64(&r.generated, 0)

	ch := make(chan string, 1000)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(ch)

		g, ctx := errgroup.WithContext(ctx)
		for w := 0; w < r.workers; w++ {
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					default:
					}

					pw, err := r.generate(req)
					if err != nil {
						return err
					}

					select {
					case <-ctx.Done():
						return nil
					case ch <- pw:
					}

					if atomic.LoadUint64(&r.generated)%1000 == 0 {
						r.reportProgress(0)
					}
				}
			})
		}

		if err := g.Wait(); err != nil {
			errc <- err
		}
	}()

	return ch, errc
}
