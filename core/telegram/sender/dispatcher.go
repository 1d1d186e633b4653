package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
	"github.com/m3rciful/insurancebot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the per-worker queue capacity.
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
// Jobs are sharded by the chat id carried in their context, so every chat is
// served by a single worker and its messages leave in enqueue order.
type Dispatcher struct {
	opts   Options
	shards []chan job
	stop   chan struct{}
	mu     sync.RWMutex
	once   sync.Once
	wg     sync.WaitGroup
	errs   atomic.Uint64
	next   atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{
		opts:   opts,
		shards: make([]chan job, opts.Workers),
		stop:   make(chan struct{}),
	}
	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan job, opts.QueueSize)
		go d.worker(d.shards[i])
	}
	return d
}

// Enqueue schedules the provided function for asynchronous execution.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}

	j := job{ctx: ctx, action: action, endpoint: endpoint, run: run}
	select {
	case d.shardFor(logger.ChatIDFrom(ctx)) <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shardFor(chatID int64) chan job {
	n := uint64(len(d.shards))
	if chatID == 0 {
		return d.shards[d.next.Add(1)%n]
	}
	key := uint64(chatID)
	if chatID < 0 {
		key = uint64(-chatID)
	}
	return d.shards[key%n]
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for workers to drain their queues.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		close(d.stop)
		for _, shard := range d.shards {
			close(shard)
		}
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		d.handleJob(j)
	}
}

func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	deadlineCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = j.run()
		if lastErr == nil {
			logSendSuccess(ctx, j, attempt, time.Since(start))
			return
		}
		if !netutil.ShouldRetry(lastErr) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		logger.Debug(ctx, "tg.sender", "send.retry",
			append(sendLogAttrs(j),
				slog.Int("attempts", attempt),
				slog.Duration("delay", delay),
			)...,
		)
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			lastErr = fmt.Errorf("%w: %w", deadlineCtx.Err(), lastErr)
			attempts = attempt
		case <-timer.C:
		}
		if deadlineCtx.Err() != nil {
			break
		}
	}

	d.errs.Add(1)
	logSendFailure(ctx, j, lastErr, attempts, time.Since(start))
}

func sendLogAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

func logSendSuccess(ctx context.Context, j job, attempt int, elapsed time.Duration) {
	attrs := sendLogAttrs(j)
	if attempt > 1 {
		attrs = append(attrs, slog.Int("attempt", attempt))
	}
	attrs = append(attrs, slog.Duration("duration", elapsed))
	logger.Debug(ctx, "tg.sender", "send.success", attrs...)
}

func logSendFailure(ctx context.Context, j job, err error, attempts int, elapsed time.Duration) {
	attrs := sendLogAttrs(j)
	attrs = append(attrs,
		slog.String("status", "fail"),
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_code", classifyError(err)),
		slog.Int("attempts", attempts),
		slog.Duration("duration", elapsed),
	)
	logger.Error(ctx, "tg.sender", "send.fail", attrs...)
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		if opErr.Op == "dial" {
			return "dial"
		}
		if opErr.Op == "read" || opErr.Op == "write" {
			if kind := classifyError(opErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			if kind := classifyError(urlErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}

	status := httpStatusFromError(err)
	switch {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}

	return "unknown"
}

// sanitizeErrorMessage prevents accidental leakage of Telegram bot tokens in logs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if msg == "" {
		return ""
	}
	return tokenRe.ReplaceAllString(msg, "bot<redacted>")
}

func httpStatusFromError(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}

	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}

	msg := err.Error()
	if msg == "" {
		return 0
	}

	lastOpen := strings.LastIndex(msg, "(")
	lastClose := strings.LastIndex(msg, ")")
	if lastOpen >= 0 && lastClose > lastOpen+1 {
		codeStr := strings.TrimSpace(msg[lastOpen+1 : lastClose])
		if code, convErr := strconv.Atoi(codeStr); convErr == nil {
			return code
		}
	}

	return 0
}
