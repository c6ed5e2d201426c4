// Package cli handles cmd line input for debugging place lookups by hand.
//
// Plain lines are searched as typed. Commands start with a colon:
//
//	:3                        select suggestion 3 and print its address
//	:opts region=ca types=address
//	:refresh                  start a new session
//	:help
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/placeserve/internal/utils"
	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/session"
	"github.com/bastiangx/placeserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultWait bounds how long a command waits for the pipeline to answer.
const DefaultWait = 15 * time.Second

var errTimeout = errors.New("no answer from places service")

// Options configures an InputHandler.
type Options struct {
	ShowHTML bool
	Request  places.RequestOptions
	Wait     time.Duration
}

// InputHandler reads lines, drives a suggester and prints what comes back.
// The suggester must dispatch every input (no debounce) and load details on
// selection, otherwise commands wait until Options.Wait expires.
type InputHandler struct {
	suggester suggest.ISuggester
	tokens    *session.Manager
	in        io.Reader
	term      *terminal
	wait      time.Duration

	lists   chan []suggest.Suggestion
	details chan *suggest.PlaceDetails
	errs    chan error

	current  []suggest.Suggestion
	options  places.RequestOptions
	hasInput bool
}

// NewInputHandler reads from stdin and prints to stdout.
func NewInputHandler(s suggest.ISuggester, tokens *session.Manager, opts Options) *InputHandler {
	return NewInputHandlerWithIO(s, tokens, os.Stdin, os.Stdout, opts)
}

// NewInputHandlerWithIO reads from in and prints to out.
func NewInputHandlerWithIO(s suggest.ISuggester, tokens *session.Manager, in io.Reader, out io.Writer, opts Options) *InputHandler {
	if opts.Wait <= 0 {
		opts.Wait = DefaultWait
	}
	h := &InputHandler{
		suggester: s,
		tokens:    tokens,
		in:        in,
		term:      newTerminal(out, opts.ShowHTML),
		wait:      opts.Wait,
		lists:     make(chan []suggest.Suggestion, 16),
		details:   make(chan *suggest.PlaceDetails, 16),
		errs:      make(chan error, 16),
		options:   opts.Request,
	}
	s.OnOptionsUpdated(func(l []suggest.Suggestion) { offer(h.lists, l) })
	s.OnPlaceDetailsUpdated(func(d *suggest.PlaceDetails) { offer(h.details, d) })
	s.OnError(func(err error) { offer(h.errs, err) })
	return h
}

// offer never blocks the pipeline goroutine.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
		log.Warn("CLI is behind, dropping an update")
	}
}

// Start runs the suggester and the input loop until stdin closes or ctx is done.
func (h *InputHandler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.suggester.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return h.readLoop(ctx)
	})
	return g.Wait()
}

func (h *InputHandler) readLoop(ctx context.Context) error {
	h.term.banner()
	scanner := bufio.NewScanner(h.in)
	for {
		h.term.prompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.handleLine(ctx, line)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (h *InputHandler) handleLine(ctx context.Context, line string) {
	h.drain()
	if !strings.HasPrefix(line, ":") {
		h.handleInput(ctx, line)
		return
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		h.term.usage()
		return
	}
	switch fields[0] {
	case "help":
		h.term.usage()
	case "refresh":
		h.term.session(h.tokens.Refresh())
	case "opts":
		h.handleOptions(ctx, fields[1:])
	default:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			h.term.failure(fmt.Errorf("unknown command: %s", line))
			return
		}
		h.handleSelect(ctx, n)
	}
}

func (h *InputHandler) handleInput(ctx context.Context, input string) {
	h.hasInput = true
	start := time.Now()
	h.suggester.Input(input)

	list, err := h.awaitList(ctx)
	if err != nil {
		h.term.failure(err)
		return
	}
	h.current = list
	h.term.suggestions(input, list, time.Since(start))
}

func (h *InputHandler) handleSelect(ctx context.Context, n int) {
	if n < 1 || n > len(h.current) {
		h.term.failure(fmt.Errorf("no suggestion %d, pick 1 to %d", n, len(h.current)))
		return
	}
	picked := h.current[n-1]
	h.suggester.Select(&picked)

	select {
	case d := <-h.details:
		h.term.details(suggest.DisplayFn(&picked), d)
	case err := <-h.errs:
		h.term.failure(err)
	case <-ctx.Done():
	case <-time.After(h.wait):
		h.term.failure(errTimeout)
	}
}

func (h *InputHandler) handleOptions(ctx context.Context, fields []string) {
	opts, err := applyOptions(h.options, utils.ParseKV(fields))
	if err != nil {
		h.term.failure(err)
		return
	}
	h.options = opts
	h.suggester.SetRequestOptions(opts)
	h.term.options(opts)

	if !h.hasInput {
		return
	}
	list, err := h.awaitList(ctx)
	if err != nil {
		h.term.failure(err)
		return
	}
	h.current = list
	h.term.suggestions("", list, 0)
}

// drain discards answers that arrived after their command gave up waiting.
func (h *InputHandler) drain() {
	for {
		select {
		case <-h.lists:
		case <-h.details:
		case <-h.errs:
		default:
			return
		}
	}
}

func (h *InputHandler) awaitList(ctx context.Context) ([]suggest.Suggestion, error) {
	select {
	case list := <-h.lists:
		return list, nil
	case err := <-h.errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(h.wait):
		return nil, errTimeout
	}
}

// applyOptions returns base with kv applied. An empty value clears the key.
func applyOptions(base places.RequestOptions, kv map[string]string) (places.RequestOptions, error) {
	opts := base
	for k, v := range kv {
		switch k {
		case "region":
			opts.RegionCode = v
		case "lang":
			opts.LanguageCode = v
		case "types":
			opts.IncludedPrimaryTypes = utils.SplitCSV(v)
		case "regions":
			opts.IncludedRegionCodes = utils.SplitCSV(v)
		case "bias":
			if v == "" {
				opts.LocationBias = nil
				continue
			}
			nums, err := parseFloats(v, 3)
			if err != nil {
				return base, fmt.Errorf("bias wants lat,lng,radius: %w", err)
			}
			opts.LocationBias = &places.Circle{
				Center: places.LatLng{Latitude: nums[0], Longitude: nums[1]},
				Radius: nums[2],
			}
		case "origin":
			if v == "" {
				opts.Origin = nil
				continue
			}
			nums, err := parseFloats(v, 2)
			if err != nil {
				return base, fmt.Errorf("origin wants lat,lng: %w", err)
			}
			opts.Origin = &places.LatLng{Latitude: nums[0], Longitude: nums[1]}
		default:
			return base, fmt.Errorf("unknown option %q", k)
		}
	}
	return opts, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := utils.SplitCSV(s)
	if len(parts) != n {
		return nil, fmt.Errorf("got %d values", len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
