// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package videotext

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/textproto"
	"strconv"
)

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// ServeHTTP handles HTTP GET requests and sends a stream of images of
// the rendered panel in response. Clients can request PNG or JPEG
// frames explicitly using the "format" parameter ("?format=png",
// "?format=jpeg").
func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	format := p.defaultFormat
	if value := r.URL.Query().Get("format"); value != "" {
		var err error
		if format, err = ParseFormat(value); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	pw := makePartWriter(w)
	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": pw.boundary,
		}))

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}
	p.mu.Lock()
	p.clients[c] = struct{}{}
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.clients, c)
		p.mu.Unlock()
	}()

	partHeaders := make(textproto.MIMEHeader)
	partHeaders.Set("Content-Type", mime.FormatMediaType(format.mimeType(), nil))
	partHeaders.Set("Content-Transfer-Encoding", "binary")

	for {
		payload, err := p.grabSnapshot(format)
		if err != nil {
			// Encoding failures cannot be reported inside an image
			// stream; terminate the request.
			return
		}
		if err := pw.writeFrame(partHeaders, payload); err != nil {
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// randomBoundary generates a MIME multipart boundary compatible with
// RFC 2046 (section 5.1.1).
func randomBoundary() string {
	var buf [30]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", buf[:])
}

// partWriter sends the parts of a neverending MIME multipart entity,
// flushing each part's closing boundary line immediately. The
// "mime/multipart".Writer cannot do this, it only terminates the
// entity on Close.
type partWriter struct {
	u        io.Writer
	boundary string
	started  bool
}

func makePartWriter(u io.Writer) partWriter {
	return partWriter{
		u:        u,
		boundary: randomBoundary(),
	}
}

// writeFrame sends a single part, ensuring it is fully written by the
// time the function returns. The caller-owned headers are modified to
// set a Content-Length header.
func (w *partWriter) writeFrame(header textproto.MIMEHeader, body []byte) error {
	header.Set("Content-Length", strconv.Itoa(len(body)))

	var buf bytes.Buffer
	if !w.started {
		fmt.Fprintf(&buf, "--%s\r\n", w.boundary)
		w.started = true
	}
	for name := range header {
		for _, value := range header[name] {
			fmt.Fprintf(&buf, "%s: %s\r\n", name, value)
		}
	}
	buf.WriteString("\r\n")

	_, err := buf.WriteTo(w.u)
	if err == nil {
		_, err = w.u.Write(body)
		if err == nil {
			_, err = fmt.Fprintf(w.u, "\r\n--%s\r\n", w.boundary)
		}
	}
	return err
}
