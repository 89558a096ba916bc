package ws_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/isles/internal/adapters/ws"
	"github.com/okian/isles/internal/app"
	"github.com/okian/isles/internal/domain/dataset"
	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const threeMonths = `
assets:
  - id: grass
    category: vegetation
years:
  - year: "2020"
    months:
      - month: 1
        magnitude: 100
      - month: 2
        magnitude: 200
      - month: 3
        magnitude: 300
`

func newService() *app.Service {
	d, err := dataset.Decode(strings.NewReader(threeMonths))
	if err != nil {
		panic(err)
	}
	w, err := app.NewWorld(d, 50, nil)
	if err != nil {
		panic(err)
	}
	svc := app.New(app.WithWorld(w), app.WithTickInterval(0))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func readUntil(conn *websocket.Conn, op string) (ws.ServerMessage, []string) {
	var seen []string
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var m ws.ServerMessage
		if err := conn.ReadJSON(&m); err != nil {
			return ws.ServerMessage{}, seen
		}
		seen = append(seen, m.Op)
		if m.Op == op {
			return m, seen
		}
	}
}

func TestDecode(t *testing.T) {
	Convey("Given client frames", t, func() {
		Convey("When decoding a scroll", func() {
			in, err := ws.Decode([]byte(`{"type":"scroll","offset":120.5,"extent":900}`))
			So(err, ShouldBeNil)
			So(in.Kind, ShouldEqual, model.InputScroll)
			So(in.Offset, ShouldEqual, 120.5)
			So(in.Extent, ShouldEqual, 900)
		})

		Convey("When decoding an asset report and a resize", func() {
			in, err := ws.Decode([]byte(`{"type":"assetLoaded","id":"grass"}`))
			So(err, ShouldBeNil)
			So(in.AssetID, ShouldEqual, "grass")
			in, err = ws.Decode([]byte(`{"type":"resize","width":800,"height":600}`))
			So(err, ShouldBeNil)
			So(in.Width, ShouldEqual, 800)
		})

		Convey("When frames are invalid", func() {
			_, err := ws.Decode([]byte(`{"type":`))
			So(errors.Is(err, ws.ErrMalformedMessage), ShouldBeTrue)
			_, err = ws.Decode([]byte(`{"type":"assetLoaded"}`))
			So(errors.Is(err, ws.ErrMalformedMessage), ShouldBeTrue)
			_, err = ws.Decode([]byte(`{"type":"teleport"}`))
			So(errors.Is(err, ws.ErrUnknownMessage), ShouldBeTrue)
		})
	})
}

func TestRemote(t *testing.T) {
	Convey("Given a remote with a tiny buffer", t, func() {
		ctx := context.Background()
		r := ws.NewRemote(2)

		r.ApplyTheme(ctx, model.Segment{Index: 1, Payload: model.Payload{Label: "February"}}, effects.ThemeHappy)
		r.SetActiveMarker(ctx, 0, false, nil)
		r.PlayCue(ctx, "reveal")

		Convey("Then overflow is dropped without blocking", func() {
			So(r.Dropped(), ShouldEqual, 1)
			first := <-r.Out()
			So(first.Op, ShouldEqual, ws.OpApplyTheme)
			So(*first.Index, ShouldEqual, 1)
			So(first.Theme, ShouldEqual, effects.ThemeHappy)
			So(first.Label, ShouldEqual, "February")
			second := <-r.Out()
			So(second.Index, ShouldBeNil)
			So(*second.Active, ShouldBeFalse)
		})

		Convey("Then a closed remote ignores commands", func() {
			r.Close()
			r.Close()
			<-r.Out()
			<-r.Out()
			r.NotifyReady(ctx)
			So(len(r.Out()), ShouldEqual, 0)
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given a websocket server over a started service", t, func() {
		svc := newService()
		defer svc.Stop()
		srv := httptest.NewServer(ws.NewHandler(svc, ws.WithReadLimit(1024)))
		defer srv.Close()

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		So(err, ShouldBeNil)
		defer func() { _ = conn.Close() }()

		hello, _ := readUntil(conn, ws.OpHello)
		So(hello.Session, ShouldNotBeEmpty)
		So(hello.Assets, ShouldResemble, []string{"grass"})

		Convey("When the client loads its assets and scrolls", func() {
			So(conn.WriteJSON(ws.ClientMessage{Type: ws.TypeAssetLoaded, ID: "grass"}), ShouldBeNil)
			_, beforeReady := readUntil(conn, ws.OpReady)
			So(conn.WriteJSON(ws.ClientMessage{Type: ws.TypeScroll, Offset: 500, Extent: 1000}), ShouldBeNil)
			theme, _ := readUntil(conn, ws.OpApplyTheme)
			marker, _ := readUntil(conn, ws.OpSetActiveMarker)

			Convey("Then the middle month is revealed", func() {
				So(beforeReady, ShouldContain, ws.OpApplyEnv)
				So(theme.Theme, ShouldEqual, effects.ThemeHappy)
				So(*theme.Index, ShouldEqual, 1)
				So(*marker.Index, ShouldEqual, 1)
				So(marker.Emphasis, ShouldNotBeEmpty)
				So(svc.Sessions(), ShouldHaveLength, 1)
			})
		})

		Convey("When the client sends garbage then closes", func() {
			So(conn.WriteMessage(websocket.TextMessage, []byte("not json")), ShouldBeNil)
			So(conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")), ShouldBeNil)

			Convey("Then the session is torn down", func() {
				deadline := time.Now().Add(2 * time.Second)
				for len(svc.Sessions()) > 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(svc.Sessions(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a service that is not started", t, func() {
		srv := httptest.NewServer(ws.NewHandler(app.New()))
		defer srv.Close()

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		So(err, ShouldBeNil)
		defer func() { _ = conn.Close() }()

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err = conn.ReadMessage()

		Convey("Then the connection is closed with try-again-later", func() {
			So(websocket.IsCloseError(err, websocket.CloseTryAgainLater), ShouldBeTrue)
		})
	})
}
