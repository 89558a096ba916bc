package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/isles/internal/adapters/ws"
	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/pkg/logger"
)

// settleWindow is how long the stream must stay quiet before a remote run ends.
const settleWindow = 300 * time.Millisecond

var errRemoteClosed = errors.New("server closed the connection")

// runRemote replays the trace against a running server and tallies the
// commands it streams back.
func runRemote(ctx context.Context, cfg *Config, trace []float64, report *Report) error {
	target, err := sessionURL(cfg.URL)
	if err != nil {
		return err
	}
	cfg.URL = target

	segments, err := fetchSegmentCount(ctx, cfg)
	if err != nil {
		return err
	}
	report.Segments = segments

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = cfg.Timeout
	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	defer func() { _ = conn.Close() }()

	msgs := make(chan ws.ServerMessage, len(trace)*4+16)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(msgs)
		for {
			var m ws.ServerMessage
			if err := conn.ReadJSON(&m); err != nil {
				readErr <- err
				return
			}
			if m.Op == ws.OpSetCameraPose {
				continue
			}
			select {
			case msgs <- m:
			case <-stop:
				return
			}
		}
	}()

	// Step 1: wait for hello
	hello, err := await(ctx, msgs, cfg.Timeout, ws.OpHello)
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "session opened", logger.String("session", hello.Session))

	// Step 2: report every asset loaded and wait for ready
	for _, id := range hello.Assets {
		if err := conn.WriteJSON(ws.ClientMessage{Type: ws.TypeAssetLoaded, ID: id}); err != nil {
			return fmt.Errorf("send asset %s: %w", id, err)
		}
	}
	if _, err := await(ctx, msgs, cfg.Timeout, ws.OpReady); err != nil {
		return err
	}

	// Step 3: stream samples
	tally := NewTally(traceLogger(ctx, cfg))
	for _, off := range trace {
		if err := conn.WriteJSON(ws.ClientMessage{Type: ws.TypeScroll, Offset: off, Extent: cfg.Extent}); err != nil {
			return fmt.Errorf("send sample: %w", err)
		}
	}

	// Step 4: tally until the stream settles
	if err := drain(ctx, msgs, tally, cfg.Timeout); err != nil {
		return err
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))

	tally.Fill(report)
	select {
	case err := <-readErr:
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && cfg.Verbose {
			logger.Get().Debug(ctx, "reader ended", logger.Error(err))
		}
	default:
	}
	return nil
}

// sessionURL defaults an empty path to the server's WebSocket route.
func sessionURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// fetchSegmentCount asks the server behind the WebSocket URL for its timeline.
func fetchSegmentCount(ctx context.Context, cfg *Config) (int, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return 0, fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = "/timeline"
	u.RawQuery = ""

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch timeline: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch timeline: status %d", resp.StatusCode)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode timeline: %w", err)
	}
	return body.Count, nil
}

// await skips messages until one with op arrives.
func await(ctx context.Context, msgs <-chan ws.ServerMessage, timeout time.Duration, op string) (ws.ServerMessage, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case <-ctx.Done():
			return ws.ServerMessage{}, ctx.Err()
		case <-deadline.C:
			return ws.ServerMessage{}, fmt.Errorf("timed out waiting for %s", op)
		case m, ok := <-msgs:
			if !ok {
				return ws.ServerMessage{}, fmt.Errorf("waiting for %s: %w", op, errRemoteClosed)
			}
			if m.Op == op {
				return m, nil
			}
		}
	}
}

// drain feeds theme and cue commands into the tally until nothing arrives
// for settleWindow.
func drain(ctx context.Context, msgs <-chan ws.ServerMessage, tally *Tally, timeout time.Duration) error {
	overall := time.NewTimer(timeout)
	defer overall.Stop()
	quiet := time.NewTimer(settleWindow)
	defer quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-overall.C:
			return errors.New("stream did not settle")
		case <-quiet.C:
			return nil
		case m, ok := <-msgs:
			if !ok {
				return errRemoteClosed
			}
			apply(tally, m)
			if !quiet.Stop() {
				<-quiet.C
			}
			quiet.Reset(settleWindow)
		}
	}
}

func apply(tally *Tally, m ws.ServerMessage) {
	switch m.Op {
	case ws.OpApplyTheme:
		if m.Index == nil {
			return
		}
		if m.Theme == effects.ThemeHappy {
			tally.Reveal(*m.Index)
		} else {
			tally.Darken(*m.Index)
		}
	case ws.OpPlayCue:
		tally.Cue()
	}
}
