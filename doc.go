/*
Package tinyserver provides a minimal, poll-driven HTTP/1.1 server engine for
network-constrained hosts.

Tiny-Server accepts raw byte streams from a socket, parses them into structured
requests, matches them against a registered route table and serializes
structured responses back onto the wire. It is built for environments with no
background threads and strict timeout discipline: the embedding application
drives the engine by calling Poll in its own loop, and exactly one connection
is accepted and fully serviced per tick.

Features

  - Single-threaded, cooperative poll loop: Start / Poll / Stop control plane
  - Route templates with named parameters (<name>) and wildcard segments
  - Ordered, case-insensitive header multimap
  - Request decoding: query strings, cookies, urlencoded/multipart/plain forms
  - Response flavors: plain, file (with sendfile fast path), chunked, JSON,
    redirect, Server-Sent Events
  - WebSocket: RFC 6455 handshake and frame codec (single-fragment messages)
  - Optional TLS wrapping of the listening socket
  - Basic/Token/Bearer authentication helpers

Quick Start

Basic usage example:

package main

import (
    "github.com/tinyserv/tiny-server/app"
    "github.com/tinyserv/tiny-server/config"
    "github.com/tinyserv/tiny-server/core/http"
)

func main() {
    cfg := config.New()
    application := app.New(cfg)

    srv := application.Server()
    srv.GET("/hello", func(req *http.Request) (http.Responder, error) {
        return http.NewResponse("hi"), nil
    })

    application.Run()
}

Modules

The engine is organized into several modules:

  - app: Application lifecycle management
  - config: Configuration loading and management
  - core: Connection/poll loop, listener setup, outcome classification
  - core/http: Request decoding and response encoding
  - core/router: Route template compilation and matching
  - core/websocket: WebSocket handshake and frame codec
  - core/sse: Server-Sent Events framing
  - core/codec: Request/response body codecs (JSON, protobuf)
  - core/auth: Authentication helpers

Concurrency Model

There is no thread pool and no task scheduler. All socket I/O uses deadlines;
a read that would block surfaces as "no request this tick". Long-running
WebSocket and SSE sessions are serviced by retaining the connection handle
across ticks and calling the messaging primitives between Poll calls.
*/
package tinyserver
