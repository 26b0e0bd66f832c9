package seed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/classmates/internal/adapters/http/client"
	"github.com/okian/classmates/internal/domain/model"
)

// memoryBackend is a minimal roster backend serving create and statistics.
type memoryBackend struct {
	mu     sync.Mutex
	people []model.Person
	frozen bool // statistics keep reporting the initial total
	start  int
}

func (b *memoryBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/classmates":
		var p model.Person
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad json"}`))
			return
		}
		p.ID = int64(len(b.people) + 1)
		b.people = append(b.people, p)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(p)
	case r.Method == http.MethodGet && r.URL.Path == "/api/statistics":
		total := len(b.people)
		if b.frozen {
			total = b.start
		}
		_ = json.NewEncoder(w).Encode(model.Statistics{Total: total})
	default:
		http.NotFound(w, r)
	}
}

// flakyRoster fails every other create.
type flakyRoster struct {
	calls atomic.Int64
	total atomic.Int64
}

func (f *flakyRoster) Create(_ context.Context, p model.Person) (model.Person, error) {
	n := f.calls.Add(1)
	if n%2 == 0 {
		return model.Person{}, errors.New("boom")
	}
	p.ID = f.total.Add(1)
	return p, nil
}

func (f *flakyRoster) Statistics(context.Context) (model.Statistics, error) {
	return model.Statistics{Total: int(f.total.Load())}, nil
}

type downRoster struct{}

func (downRoster) Create(context.Context, model.Person) (model.Person, error) {
	return model.Person{}, errors.New("down")
}

func (downRoster) Statistics(context.Context) (model.Statistics, error) {
	return model.Statistics{}, errors.New("down")
}

func TestGenerate(t *testing.T) {
	Convey("Given a fixed seed", t, func() {
		a := Generate(20, 42)
		b := Generate(20, 42)

		Convey("Then the roster should be reproducible", func() {
			So(a, ShouldResemble, b)
		})

		Convey("And every classmate should be complete and located near a known city", func() {
			for _, p := range a {
				So(p.ID, ShouldEqual, 0)
				So(p.Name, ShouldNotBeBlank)
				So(p.Country, ShouldNotBeBlank)
				So(p.HasLocation(), ShouldBeTrue)

				var c city
				for _, known := range cities {
					if known.name == p.City {
						c = known
					}
				}
				So(c.name, ShouldEqual, p.City)
				So(p.Location.Lat, ShouldAlmostEqual, c.lat, jitter)
				So(p.Location.Lng, ShouldAlmostEqual, c.lng, jitter)
			}
		})
	})

	Convey("Given a non-positive count", t, func() {
		So(Generate(0, 1), ShouldBeNil)
	})
}

func TestRunAgainstBackend(t *testing.T) {
	Convey("Given a backend that already holds two classmates", t, func() {
		backend := &memoryBackend{people: make([]model.Person, 2)}
		srv := httptest.NewServer(backend)
		defer srv.Close()

		c, err := client.New(srv.URL)
		So(err, ShouldBeNil)

		Convey("When seeding 25 classmates with 4 workers", func() {
			stats, err := Run(context.Background(), c, Config{Count: 25, Workers: 4, Seed: 7}, nil)

			Convey("Then all should be created and the total verified", func() {
				So(err, ShouldBeNil)
				So(stats.Requested, ShouldEqual, 25)
				So(stats.Created, ShouldEqual, 25)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.TotalBefore, ShouldEqual, 2)
				So(stats.TotalAfter, ShouldEqual, 27)
				So(stats.Batch, ShouldNotBeBlank)
				So(len(stats.CreatedIDs), ShouldEqual, 25)
				So(stats.CreatedIDs[0], ShouldEqual, 3)
				So(stats.CreatedIDs[24], ShouldEqual, 27)
			})
		})

		Convey("When the backend does not count the new classmates", func() {
			backend.mu.Lock()
			backend.frozen = true
			backend.start = 2
			backend.mu.Unlock()
			stats, err := Run(context.Background(), c, Config{Count: 3, Workers: 2, Seed: 1}, nil)

			Convey("Then verification should fail", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
				So(stats.Created, ShouldEqual, 3)
			})
		})
	})
}

func TestRunFailures(t *testing.T) {
	Convey("Given a roster that rejects every other create", t, func() {
		r := &flakyRoster{}
		stats, err := Run(context.Background(), r, Config{Count: 10, Workers: 3}, nil)

		Convey("Then failures should be counted without failing the run", func() {
			So(err, ShouldBeNil)
			So(stats.Created, ShouldEqual, 5)
			So(stats.Failed, ShouldEqual, 5)
			So(stats.Created+stats.Failed, ShouldEqual, stats.Requested)
		})
	})

	Convey("Given an unreachable roster", t, func() {
		_, err := Run(context.Background(), downRoster{}, Config{Count: 1}, nil)

		Convey("Then the baseline read should fail the run", func() {
			So(errors.Is(err, ErrBaseline), ShouldBeTrue)
		})
	})

	Convey("Given an invalid count", t, func() {
		_, err := Run(context.Background(), &flakyRoster{}, Config{Count: 0}, nil)
		So(errors.Is(err, ErrInvalidCount), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &flakyRoster{}
		stats, _ := Run(ctx, r, Config{Count: 50, Workers: 2}, nil)

		Convey("Then unsent classmates should count as failed", func() {
			So(stats.Created+stats.Failed, ShouldEqual, 50)
		})
	})
}
