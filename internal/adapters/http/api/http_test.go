package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/volmatch/internal/adapters/http/api"
	repository "github.com/okian/volmatch/internal/adapters/repository"
	service "github.com/okian/volmatch/internal/app"
	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/internal/domain/types"
	"github.com/okian/volmatch/pkg/errs"
	"github.com/okian/volmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies records calls and returns canned answers.
type mockDependencies struct {
	volunteers []types.Volunteer
	listErr    error

	saveRes   types.SaveMatchResponse
	saveErr   error
	savedIDs  []string
	savedEvID string

	history    []types.HistoryEntry
	historyErr error
	listedID   string
}

func (m *mockDependencies) ListMatches(_ context.Context, eventID string) ([]types.Volunteer, error) {
	m.listedID = eventID
	return m.volunteers, m.listErr
}

func (m *mockDependencies) CommitMatches(_ context.Context, eventID string, ids []string) (types.SaveMatchResponse, error) {
	m.savedEvID = eventID
	m.savedIDs = ids
	return m.saveRes, m.saveErr
}

func (m *mockDependencies) History(_ context.Context, _ string) ([]types.HistoryEntry, error) {
	return m.history, m.historyErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newRouter(deps api.Dependencies, prefix string) *mux.Router {
	router := mux.NewRouter()
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"store": "memory"}})
	server.Register(context.Background(), router, prefix)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		router := newRouter(deps, api.DefaultPrefix)

		Convey("Then health should serve metrics", func() {
			w := serve(router, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats should serve JSON", func() {
			w := serve(router, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"store":"memory"`)
		})

		Convey("And unknown routes should be 404", func() {
			w := serve(router, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And wrong methods should be rejected", func() {
			w := serve(router, http.MethodGet, api.DefaultPrefix+"/saveMatch", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given an empty prefix", t, func() {
		deps := &mockDependencies{volunteers: []types.Volunteer{}}
		router := newRouter(deps, "/")

		Convey("Then routes should be mounted at the root", func() {
			w := serve(router, http.MethodGet, "/matchByEvent/e1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.listedID, ShouldEqual, "e1")
		})
	})
}

func TestMatchByEvent(t *testing.T) {
	Convey("Given the matchByEvent route", t, func() {
		deps := &mockDependencies{}
		router := newRouter(deps, api.DefaultPrefix)
		path := api.DefaultPrefix + "/matchByEvent/event123"

		Convey("When the service returns volunteers", func() {
			deps.volunteers = []types.Volunteer{{
				ID: "user123", FirstName: "Ada", LastName: "Lovelace",
				Skills: []string{"Teamwork"}, Preferences: map[string]string{"tshirts": "Would love to!"},
			}}
			w := serve(router, http.MethodGet, path, "")

			Convey("Then it should answer 200 with the ordered array", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.listedID, ShouldEqual, "event123")
				var got []map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0]["id"], ShouldEqual, "user123")
				So(got[0]["firstName"], ShouldEqual, "Ada")
				So(got[0]["skills"], ShouldResemble, []any{"Teamwork"})
			})
		})

		Convey("When the event is unknown", func() {
			deps.listErr = errs.New("service.ListMatches", errs.ErrNotFound)
			w := serve(router, http.MethodGet, path, "")

			Convey("Then it should answer 404 with a message", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decodeError(w)
				So(body["code"], ShouldEqual, errs.CodeNotFound)
				So(body["message"], ShouldNotBeEmpty)
			})
		})

		Convey("When the store is down", func() {
			deps.listErr = errs.WrapKind("store", errs.ErrStoreUnavailable, errors.New("dial tcp"))
			w := serve(router, http.MethodGet, path, "")

			Convey("Then it should answer 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the error has no kind", func() {
			deps.listErr = errors.New("boom")
			w := serve(router, http.MethodGet, path, "")

			Convey("Then it should answer 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, errs.CodeInternal)
			})
		})
	})
}

func TestSaveMatch(t *testing.T) {
	Convey("Given the saveMatch route", t, func() {
		deps := &mockDependencies{}
		router := newRouter(deps, api.DefaultPrefix)
		path := api.DefaultPrefix + "/saveMatch"

		Convey("When the commit succeeds", func() {
			deps.saveRes = types.SaveMatchResponse{
				Message: service.SuccessMessage,
				Matches: []types.Match{{VolunteerID: "user123", EventID: "event123"}},
			}
			w := serve(router, http.MethodPost, path, `{"eventId":"event123","volunteerIds":["user123"]}`)

			Convey("Then it should answer 201 with the confirmation", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(deps.savedEvID, ShouldEqual, "event123")
				So(deps.savedIDs, ShouldResemble, []string{"user123"})

				var got map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got["message"], ShouldEqual, "Volunteers matched, prioritized, and saved to the history successfully!")
				So(got["matches"], ShouldResemble, []any{map[string]any{"volunteerId": "user123", "eventId": "event123"}})
				_, hasFailures := got["failures"]
				So(hasFailures, ShouldBeFalse)
			})
		})

		Convey("When the commit is partial", func() {
			deps.saveRes = types.SaveMatchResponse{
				Message:  service.PartialMessage,
				Matches:  []types.Match{{VolunteerID: "a", EventID: "e"}},
				Failures: []types.MatchFailure{{VolunteerID: "ghost", Code: errs.CodeNotFound, Message: "not found"}},
			}
			deps.saveErr = errs.New("recorder.Record", errs.ErrPartialFailure)
			w := serve(router, http.MethodPost, path, `{"eventId":"e","volunteerIds":["ghost","a"]}`)

			Convey("Then it should answer 207 with matches and failures", func() {
				So(w.Code, ShouldEqual, http.StatusMultiStatus)
				So(w.Body.String(), ShouldContainSubstring, `"volunteerId":"ghost"`)
				So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(router, http.MethodPost, path, `{"eventId":`)

			Convey("Then it should answer 400 without calling the service", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, errs.CodeInvalidInput)
				So(deps.savedEvID, ShouldBeEmpty)
			})
		})

		Convey("When the service rejects the input", func() {
			deps.saveErr = errs.New("service.CommitMatches", errs.ErrInvalidInput)
			w := serve(router, http.MethodPost, path, `{"eventId":"e","volunteerIds":[]}`)

			Convey("Then it should answer 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the event is unknown", func() {
			deps.saveErr = errs.New("service.CommitMatches", errs.ErrNotFound)
			w := serve(router, http.MethodPost, path, `{"eventId":"nope","volunteerIds":["a"]}`)

			Convey("Then it should answer 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHistory(t *testing.T) {
	Convey("Given the history route", t, func() {
		deps := &mockDependencies{}
		router := newRouter(deps, api.DefaultPrefix)

		Convey("When history exists", func() {
			deps.history = []types.HistoryEntry{{
				ID: "h1", VolunteerID: "user123", EventID: "event123",
				CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), Priority: 8,
			}}
			w := serve(router, http.MethodGet, api.DefaultPrefix+"/history/event123", "")

			Convey("Then it should list the records", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"createdAt":"2025-05-01T12:00:00Z"`)
				So(w.Body.String(), ShouldContainSubstring, `"priority":8`)
			})
		})

		Convey("When the event is unknown", func() {
			deps.historyErr = errs.New("service.History", errs.ErrNotFound)
			w := serve(router, http.MethodGet, api.DefaultPrefix+"/history/none", "")

			Convey("Then it should answer 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestEndToEnd(t *testing.T) {
	Convey("Given the API over a real service", t, func() {
		store := repository.NewMemoryStore()
		store.PutEvent(model.Event{ID: "event123", RequiredSkills: []string{"Teamwork", "Safety Awareness"}})
		store.PutVolunteer(model.Volunteer{ID: "user123", Skills: []string{"Teamwork"}})

		svc := service.New(service.WithStore(store))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		router := mux.NewRouter()
		api.NewServer(svc, svc).Register(context.Background(), router, api.DefaultPrefix)

		Convey("When listing, committing and reading history", func() {
			list := serve(router, http.MethodGet, api.DefaultPrefix+"/matchByEvent/event123", "")
			save := serve(router, http.MethodPost, api.DefaultPrefix+"/saveMatch",
				`{"eventId":"event123","volunteerIds":["user123"]}`)
			hist := serve(router, http.MethodGet, api.DefaultPrefix+"/history/event123", "")
			missing := serve(router, http.MethodGet, api.DefaultPrefix+"/matchByEvent/unknown-event", "")

			Convey("Then each step should follow the contract", func() {
				So(list.Code, ShouldEqual, http.StatusOK)
				So(list.Body.String(), ShouldContainSubstring, `"id":"user123"`)
				So(save.Code, ShouldEqual, http.StatusCreated)
				So(save.Body.String(), ShouldContainSubstring, service.SuccessMessage)
				So(hist.Code, ShouldEqual, http.StatusOK)
				So(hist.Body.String(), ShouldContainSubstring, `"volunteerId":"user123"`)
				So(missing.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
