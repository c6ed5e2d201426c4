package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bastiangx/placeserve/internal/logger"
	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/session"
	"github.com/bastiangx/placeserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

// Server handles the IPC for place suggestions
type Server struct {
	suggester suggest.ISuggester
	tokens    *session.Manager
	dec       *msgpack.Decoder
	enc       *msgpack.Encoder
	wmu       sync.Mutex
	logger    *log.Logger
	requests  int
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(s suggest.ISuggester, tokens *session.Manager) *Server {
	return NewServerWithIO(s, tokens, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading frames from r and writing to w.
func NewServerWithIO(s suggest.ISuggester, tokens *session.Manager, r io.Reader, w io.Writer) *Server {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)

	srv := &Server{
		suggester: s,
		tokens:    tokens,
		dec:       msgpack.NewDecoder(r),
		enc:       enc,
		logger:    logger.New("ipc"),
	}
	s.OnOptionsUpdated(func(list []suggest.Suggestion) {
		srv.send(OptionsNotification{Event: EventOptions, Suggestions: list})
	})
	s.OnPlaceDetailsUpdated(func(d *suggest.PlaceDetails) {
		srv.send(DetailsNotification{Event: EventDetails, Details: d})
	})
	s.OnError(func(err error) {
		srv.send(ErrorNotification{Event: EventError, Error: err.Error()})
	})
	return srv
}

// Start runs the pipeline and the request loop until the input closes or ctx
// is done. A clean end of input returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting Server.")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.send(Response{Status: "ready"})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.suggester.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.readLoop(ctx)
	})
	return g.Wait()
}

func (s *Server) readLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Debug("Client closed input")
				return nil
			}
			return fmt.Errorf("reading frame: %w", err)
		}
		s.handleFrame(raw)
	}
	return nil
}

func (s *Server) handleFrame(raw msgpack.RawMessage) {
	s.requests++

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Errorf("Decoding request: %v", err)
		s.sendError("", "invalid msgpack request", 400)
		return
	}
	s.logger.Debug("request", "id", req.ID, "action", req.Action, "n", s.requests)

	switch req.Action {
	case ActionInput:
		s.suggester.Input(req.Value)
		s.ok(req.ID)

	case ActionOptions:
		if req.Options == nil {
			s.sendError(req.ID, "missing 'o' parameter", 400)
			return
		}
		s.suggester.SetRequestOptions(*req.Options)
		s.ok(req.ID)

	case ActionRequest:
		input, ok := req.Value.(string)
		if !ok {
			s.sendError(req.ID, "'v' must be a string", 400)
			return
		}
		ar := places.AutocompleteRequest{Input: input}
		if req.Options != nil {
			ar.RequestOptions = *req.Options
		}
		s.suggester.Request(ar)
		s.ok(req.ID)

	case ActionSelect:
		picked, err := s.pick(req.Index)
		if err != nil {
			s.sendError(req.ID, err.Error(), 400)
			return
		}
		s.suggester.Select(picked)
		s.ok(req.ID)

	case ActionDisplay:
		picked, err := s.pick(req.Index)
		if err != nil {
			s.sendError(req.ID, err.Error(), 400)
			return
		}
		s.send(Response{ID: req.ID, Status: "ok", Text: suggest.DisplayFn(picked)})

	case ActionRefresh:
		token := s.tokens.Refresh()
		s.send(Response{ID: req.ID, Status: "ok", Token: string(token)})

	case ActionHealth:
		s.ok(req.ID)

	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// pick copies the suggestion at index i of the current list.
func (s *Server) pick(i *int) (*suggest.Suggestion, error) {
	if i == nil {
		return nil, errors.New("missing 'i' parameter")
	}
	list := s.suggester.Suggestions()
	if *i < 0 || *i >= len(list) {
		return nil, fmt.Errorf("index %d out of range (%d suggestions)", *i, len(list))
	}
	picked := list[*i]
	return &picked, nil
}

func (s *Server) ok(id string) {
	s.send(Response{ID: id, Status: "ok"})
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

// send encodes v as one frame. Responses and notifications come from
// different goroutines, so frames are serialized here.
func (s *Server) send(v any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
	}
}
