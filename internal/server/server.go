// Package server accepts TCP connections and hands them to the application
// layer.
package server

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/fixship/internal/ports"
)

// Handler processes one accepted connection and returns when it is done.
type Handler interface {
	HandleConn(ctx context.Context, conn net.Conn)
}

// Server listens for inbound FIX streams.
type Server struct {
	addr    string
	handler Handler
	logger  ports.Logger
	bound   atomic.Value
}

// New creates a server listening on addr.
func New(addr string, handler Handler, logger ports.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
	}
}

// Run listens and serves until ctx is canceled. Each connection gets its
// own goroutine; all of them are waited for before Run returns.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	s.bound.Store(ln.Addr())
	s.logger.Info("listening", ports.String("addr", ln.Addr().String()))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrap(err, "accept")
			}

			g.Go(func() error {
				defer conn.Close()
				s.handler.HandleConn(ctx, conn)
				return nil
			})
		}
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Addr returns the bound listen address, or nil before Run has opened the
// listener. Useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	addr, _ := s.bound.Load().(net.Addr)
	return addr
}
