package client

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonwraymond/postsearch/logging"
	"github.com/jonwraymond/postsearch/post"
)

// Debounce defaults.
const (
	DefaultShortDelay = 150 * time.Millisecond
	DefaultLongDelay  = 250 * time.Millisecond
)

// DebounceDelay returns the default wait before querying the server for
// query: short while at most one rune has been typed, long afterwards.
func DebounceDelay(query string) time.Duration {
	return debounce(query, DefaultShortDelay, DefaultLongDelay)
}

func debounce(query string, short, long time.Duration) time.Duration {
	if utf8.RuneCountInString(strings.TrimSpace(query)) <= 1 {
		return short
	}
	return long
}

// Fetcher loads ranked results for a query from the server.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (post.Results, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, query string) (post.Results, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, query string) (post.Results, error) {
	return f(ctx, query)
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	ShortDelay time.Duration
	LongDelay  time.Duration
	Index      IndexOptions
	Logger     *slog.Logger
	// OnChange, if set, receives new views one at a time in Version order.
	// Views overtaken by a newer one before delivery are dropped. It is
	// called without the session lock held and must not call back into the
	// session.
	OnChange func(View)
}

// View is what a search box renders.
type View struct {
	Query   string
	Posts   post.Results
	Loading bool
	// Error is FailureMessage after a failed fetch, else empty.
	Error string
	// Seq is the sequence number of the latest request.
	Seq uint64
	// Version increases on every state change.
	Version uint64
}

// Session is the state machine behind a search box: local fuzzy filtering
// on every keystroke, debounced server queries, and latest-wins responses.
type Session struct {
	fetcher Fetcher
	opts    SessionOptions
	logger  *slog.Logger

	mu      sync.Mutex
	query   string
	index   *Index
	shown   post.Results
	loading bool
	errMsg  string
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	version uint64
	wg      sync.WaitGroup

	notifyMu  sync.Mutex
	delivered uint64
}

// NewSession creates an idle session with an empty result set.
func NewSession(f Fetcher, opts SessionOptions) (*Session, error) {
	if f == nil {
		return nil, ErrNilFetcher
	}
	if opts.ShortDelay <= 0 {
		opts.ShortDelay = DefaultShortDelay
	}
	if opts.LongDelay <= 0 {
		opts.LongDelay = DefaultLongDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		fetcher: f,
		opts:    opts,
		logger:  logger,
		index:   NewIndex(nil, opts.Index),
		shown:   post.Results{},
	}, nil
}

// Type records a keystroke. The local snapshot is filtered at once, the
// in-flight request is aborted, and a server query is scheduled after the
// debounce delay. A blank query reloads the unfiltered list immediately.
func (s *Session) Type(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = query
	s.stopLocked()
	s.shown = s.index.Filter(query)

	if strings.TrimSpace(query) == "" {
		s.startLocked(query)
	} else {
		seq := s.seq
		s.timer = time.AfterFunc(debounce(query, s.opts.ShortDelay, s.opts.LongDelay), func() {
			s.mu.Lock()
			if s.closed || seq != s.seq {
				s.mu.Unlock()
				return
			}
			s.startLocked(query)
			v := s.changedLocked()
			s.mu.Unlock()
			s.notify(v)
		})
	}
	v := s.changedLocked()
	s.mu.Unlock()
	s.notify(v)
}

// Submit queries the server for query right away.
func (s *Session) Submit(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = query
	s.stopLocked()
	s.startLocked(query)
	v := s.changedLocked()
	s.mu.Unlock()
	s.notify(v)
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Close cancels pending work and waits for in-flight fetches to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

// stopLocked stops the debounce timer, aborts the in-flight request, and
// invalidates any response still on its way.
func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.loading = false
}

func (s *Session) startLocked(query string) {
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loading = true

	s.wg.Add(1)
	go s.fetch(ctx, seq, query)
}

func (s *Session) fetch(ctx context.Context, seq uint64, query string) {
	defer s.wg.Done()
	results, err := s.fetcher.Fetch(ctx, strings.TrimSpace(query))

	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.loading = false
	s.cancel = nil
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			s.version++
			s.mu.Unlock()
			return
		}
		s.logger.Warn("fetch failed", "query", query, "seq", seq, "error", err)
		s.errMsg = FailureMessage
	} else {
		if results == nil {
			results = post.Results{}
		}
		s.errMsg = ""
		s.index = NewIndex(results, s.opts.Index)
		s.shown = results
	}
	v := s.changedLocked()
	s.mu.Unlock()
	s.notify(v)
}

// changedLocked records a state change and returns the new view.
func (s *Session) changedLocked() View {
	s.version++
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{
		Query:   s.query,
		Posts:   s.shown,
		Loading: s.loading,
		Error:   s.errMsg,
		Seq:     s.seq,
		Version: s.version,
	}
}

// notify delivers v unless a newer view already went out.
func (s *Session) notify(v View) {
	if s.opts.OnChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if v.Version <= s.delivered {
		return
	}
	s.delivered = v.Version
	s.opts.OnChange(v)
}
