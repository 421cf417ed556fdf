package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrklab/basket-counting/internal/adapters/http/api"
	"github.com/jrklab/basket-counting/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDeps struct {
	stats    types.Stats
	shots    []types.Shot
	resetID  string
	failWith error
	resets   int
}

func (f *fakeDeps) SessionStats(_ context.Context) (types.Stats, error) {
	return f.stats, f.failWith
}

func (f *fakeDeps) Shots(_ context.Context) ([]types.Shot, error) {
	return f.shots, f.failWith
}

func (f *fakeDeps) ResetSession(_ context.Context) (string, error) {
	f.resets++
	return f.resetID, f.failWith
}

func newTestServer(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		deps := &fakeDeps{stats: types.Stats{
			Session: "abc", Makes: 7, Misses: 3, Total: 10, Percentage: 70,
		}}
		mux := newTestServer(deps)

		Convey("GET /stats returns session statistics", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got types.Stats
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Session, ShouldEqual, "abc")
			So(got.Makes, ShouldEqual, 7)
			So(got.Percentage, ShouldEqual, 70)
		})

		Convey("POST /stats is rejected", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stats", nil))
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(rec.Body.String(), ShouldContainSubstring, "bad_request")
		})

		Convey("A store failure maps to 500", func() {
			deps.failWith = errors.New("boom")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestShotsEndpoint(t *testing.T) {
	Convey("Given the shots endpoint", t, func() {
		impact := 1.0
		basket := 1.1
		deps := &fakeDeps{
			shots: []types.Shot{{
				ID:             "shot-1",
				ImpactTime:     &impact,
				BasketTime:     &basket,
				Classification: "MAKE",
				BasketType:     "BANK",
				Confidence:     0.95,
			}},
			resetID: "new-session",
		}
		mux := newTestServer(deps)

		Convey("GET /shots lists the session history", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shots", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got []types.Shot
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, "shot-1")
			So(got[0].Classification, ShouldEqual, "MAKE")
			So(got[0].BasketType, ShouldEqual, "BANK")
		})

		Convey("GET /shots with no history returns an empty array", func() {
			deps.shots = nil
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shots", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldStartWith, "[]")
		})

		Convey("DELETE /shots resets the session", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/shots", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.resets, ShouldEqual, 1)
			So(rec.Body.String(), ShouldContainSubstring, "new-session")
		})

		Convey("PUT /shots is rejected", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/shots", nil))
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(rec.Body.String(), ShouldContainSubstring, "bad_request")
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux := newTestServer(&fakeDeps{})

		Convey("GET /healthz serves Prometheus metrics", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "basket_pipeline")
		})
	})
}
