package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/core/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the target shard has no room left.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options tunes the dispatcher. Zero values select the defaults noted below.
type Options struct {
	QueueSize    int           // total across shards, default 256
	Workers      int           // shards and goroutines, default 4
	MaxRetries   int           // extra attempts after the first one
	RetryBackoff time.Duration // linear step between attempts, default 2s
	MaxDuration  time.Duration // budget for one job including retries, default 12s
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
// Jobs of one chat always land on the same worker, so a chat sees its
// replies in enqueue order.
type Dispatcher struct {
	opts   Options
	shards []chan job
	next   atomic.Uint64
	wg     sync.WaitGroup
	errs   atomic.Uint64

	// mu keeps Enqueue from sending on a shard Close has closed.
	mu     sync.RWMutex
	closed bool
}

func (o Options) withDefaults() Options {
	orDefault := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	orDefault(&o.QueueSize, 256)
	orDefault(&o.Workers, 4)
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

// NewDispatcher starts opts.Workers goroutines, one per shard.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()

	d := &Dispatcher{
		opts:   opts,
		shards: make([]chan job, opts.Workers),
	}

	perShard := (opts.QueueSize + opts.Workers - 1) / opts.Workers
	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan job, perShard)
		go d.worker(d.shards[i])
	}

	return d
}

// Enqueue hands run to the worker owning the chat in ctx without blocking.
// run may be called again on retryable errors.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.shard(ctx) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// shard picks the queue for the chat (or user) found in ctx. Jobs without
// either are spread round-robin.
func (d *Dispatcher) shard(ctx context.Context) chan job {
	var key uint64
	switch {
	case ctx != nil && logger.ChatIDFrom(ctx) != 0:
		key = uint64(logger.ChatIDFrom(ctx))
	case ctx != nil && logger.UserIDFrom(ctx) != 0:
		key = uint64(logger.UserIDFrom(ctx))
	default:
		key = d.next.Add(1)
	}
	return d.shards[key%uint64(len(d.shards))]
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close rejects new jobs, lets workers drain what is queued and waits for them.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.shards {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		d.handleJob(j)
	}
}

// handleJob runs j until it succeeds, fails permanently, exhausts its
// attempts or runs past MaxDuration.
func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	bounded, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	logger.Debug(ctx, "tg.sender", "send.start", j.attrs()...)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = j.run(); err == nil {
			j.logDone(ctx, attempt, time.Since(start))
			return
		}
		if !retryable(err) || attempt == attempts {
			break
		}
		delay := d.retryDelay(err, attempt)
		if werr := wait(bounded, delay); werr != nil {
			err = werr
			break
		}
		logger.Debug(ctx, "tg.sender", "send.retry",
			append(j.attrs(), slog.Int("attempt", attempt), slog.Duration("backoff", delay))...)
	}
	d.errs.Add(1)
	j.logFail(ctx, err, attempts, time.Since(start))
}

// wait sleeps for delay unless ctx ends first.
func wait(ctx context.Context, delay time.Duration) error {
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryable reports whether a failed send is worth another attempt: transient
// network errors, Telegram flood control and 5xx answers.
func retryable(err error) bool {
	if netutil.ShouldRetry(err) {
		return true
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return true
	}
	return httpStatusFromError(err) >= 500
}

// retryDelay honours the flood-control hint when present, capped by MaxDuration.
func (d *Dispatcher) retryDelay(err error, attempt int) time.Duration {
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) && floodErr.RetryAfter > 0 {
		delay := time.Duration(floodErr.RetryAfter) * time.Second
		if delay > d.opts.MaxDuration {
			delay = d.opts.MaxDuration
		}
		return delay
	}
	return d.opts.RetryBackoff * time.Duration(attempt)
}

// Pending returns the number of queued jobs not yet picked up by a worker.
func (d *Dispatcher) Pending() int {
	n := 0
	for _, ch := range d.shards {
		n += len(ch)
	}
	return n
}

func (j job) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

func (j job) logDone(ctx context.Context, attempt int, took time.Duration) {
	attrs := append(j.attrs(), slog.String("status", "ok"), slog.Duration("took", took))
	if attempt > 1 {
		attrs = append(attrs, slog.Int("attempts", attempt))
		logger.Info(ctx, "tg.sender", "send.done", attrs...)
		return
	}
	logger.Debug(ctx, "tg.sender", "send.done", attrs...)
}

func (j job) logFail(ctx context.Context, err error, attempts int, took time.Duration) {
	logger.Error(ctx, "tg.sender", "send.fail", append(j.attrs(),
		slog.String("status", "fail"),
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_code", errorKind(err)),
		slog.Int("attempts", attempts),
		slog.Duration("took", took),
	)...)
}

// errorKind buckets a send error for dashboards: timeout, dns, dial, tls,
// http_4xx, http_5xx or unknown.
func errorKind(err error) string {
	var (
		dnsErr   *net.DNSError
		opErr    *net.OpError
		netErr   net.Error
		alertErr tls.AlertError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &dnsErr):
		return "dns"
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return "dial"
	case errors.As(err, &alertErr):
		return "tls"
	}
	switch code := httpStatusFromError(err); {
	case code >= 500:
		return "http_5xx"
	case code >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// sanitizeErrorMessage masks bot tokens that telebot embeds in request URLs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

// httpStatusFromError maps telebot errors to an HTTP status. Plain errors
// carrying a trailing "(NNN)" are parsed as a last resort.
func httpStatusFromError(err error) int {
	var (
		apiErr   *tele.Error
		floodErr tele.FloodError
		groupErr tele.GroupError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.As(err, &floodErr):
		return http.StatusTooManyRequests
	case errors.As(err, &groupErr):
		return http.StatusBadRequest
	}
	msg := strings.TrimSpace(err.Error())
	if !strings.HasSuffix(msg, ")") {
		return 0
	}
	open := strings.LastIndexByte(msg, '(')
	if open < 0 {
		return 0
	}
	code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : len(msg)-1]))
	if convErr != nil {
		return 0
	}
	return code
}
