package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/cafe-reservations/internal/application/usecases"
	"github.com/example/cafe-reservations/internal/auth"
	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/domain/user"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

// fakeDB backs every repository with maps guarded by one mutex.
type fakeDB struct {
	mu          sync.Mutex
	nextID      int64
	customers   []reservation.Customer
	bookings    []reservation.Reservation
	subscribers []reservation.Subscriber
	admins      []user.User
	err         error
}

func (f *fakeDB) id() int64 { f.nextID++; return f.nextID }

func (f *fakeDB) Ping(context.Context) error { return f.err }

func (f *fakeDB) GetByEmail(_ context.Context, email string) (reservation.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return reservation.Customer{}, internaltypes.ErrNotFound
}

func (f *fakeDB) Create(_ context.Context, c reservation.Customer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id()
	f.customers = append(f.customers, c)
	return c.ID, nil
}

func (f *fakeDB) Update(context.Context, reservation.Customer) error { return nil }

type fakeReservations struct{ *fakeDB }

func (f fakeReservations) ConfirmedTables(_ context.Context, key availability.BookingKey, status string) ([]availability.TableID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []availability.TableID
	for _, r := range f.bookings {
		if r.Date == key.Date && r.TimeSlot == key.Slot && string(r.Status) == status {
			out = append(out, availability.TableID(r.TableNumber))
		}
	}
	return out, nil
}

func (f fakeReservations) Create(_ context.Context, r reservation.Reservation) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.id()
	f.bookings = append(f.bookings, r)
	return r.ID, nil
}

func (f fakeReservations) ListWithCustomers(context.Context) ([]reservation.ReservationWithCustomer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []reservation.ReservationWithCustomer{}
	for _, r := range f.bookings {
		out = append(out, reservation.ReservationWithCustomer{Reservation: r})
	}
	return out, nil
}

func (f fakeReservations) Cancel(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = reservation.StatusCancelled
		}
	}
	return nil
}

type fakeSubscribers struct{ *fakeDB }

func (f fakeSubscribers) GetByEmail(_ context.Context, email string) (reservation.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subscribers {
		if s.Email == email {
			return s, nil
		}
	}
	return reservation.Subscriber{}, internaltypes.ErrNotFound
}

func (f fakeSubscribers) Create(_ context.Context, s reservation.Subscriber) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.id()
	s.IsActive = true
	f.subscribers = append(f.subscribers, s)
	return s.ID, nil
}

func (f fakeSubscribers) ListActive(context.Context) ([]reservation.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reservation.Subscriber{}, f.subscribers...), nil
}

type fakeAdmins struct{ *fakeDB }

func (f fakeAdmins) Create(_ context.Context, u user.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.id()
	f.admins = append(f.admins, u)
	return u.ID, nil
}

func (f fakeAdmins) GetByUsername(_ context.Context, username string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, internaltypes.ErrNotFound
}

type fakeStore struct{ *fakeDB }

func (s fakeStore) Customers() reservation.CustomerRepo       { return s.fakeDB }
func (s fakeStore) Reservations() reservation.ReservationRepo { return fakeReservations{s.fakeDB} }
func (s fakeStore) Subscribers() reservation.SubscriberRepo   { return fakeSubscribers{s.fakeDB} }
func (s fakeStore) Admins() user.Repo                         { return fakeAdmins{s.fakeDB} }
func (s fakeStore) Close()                                    {}

func newTestServer(t *testing.T, tables int) (*Server, *fakeDB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fdb := &fakeDB{}
	st := fakeStore{fdb}
	cfg := availability.DefaultConfig()
	cfg.TotalTables = tables
	eng, err := availability.New(cfg, st.Reservations(), availability.NewSeededRand(1))
	require.NoError(t, err)

	log := zap.NewNop()
	return &Server{
		Engine:          eng,
		Booking:         usecases.Booking{Engine: eng, Store: st, Log: log},
		Newsletter:      usecases.Newsletter{Subscribers: st.Subscribers(), Log: log},
		Auth:            auth.NewStore(st.Admins(), securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32)),
		DB:              fdb,
		Log:             log,
		RateLimitPerMin: 1000,
		RequestTimeout:  time.Second,
		Now:             func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}, fdb
}

func do(h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createBody() map[string]any {
	return map[string]any{
		"name":       "Ada Lovelace",
		"email":      "ada@example.com",
		"date":       "2024-06-01",
		"timeSlot":   "19:00",
		"guestCount": 2,
	}
}

func TestHealth(t *testing.T) {
	s, fdb := newTestServer(t, 30)
	h := s.Routes()

	rec := do(h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"connected","timestamp":"2024-06-01T12:00:00Z"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	fdb.err = errors.New("refused")
	rec = do(h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "error: refused", decode[map[string]string](t, rec)["database"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := newTestServer(t, 30)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCheckAvailability(t *testing.T) {
	s, _ := newTestServer(t, 30)
	h := s.Routes()

	rec := do(h, http.MethodGet, "/api/reservations/check-availability?date=2024-06-01&timeSlot=19:00", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	a := decode[availability.Availability](t, rec)
	assert.True(t, a.Available)
	assert.Equal(t, 30, a.AvailableCount)
	assert.Equal(t, 30, a.TotalTables)
}

func TestCheckAvailabilityValidation(t *testing.T) {
	s, _ := newTestServer(t, 30)
	h := s.Routes()

	rec := do(h, http.MethodGet, "/api/reservations/check-availability?date=06/01/2024&timeSlot=19:00", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Date must be in YYYY-MM-DD format"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/reservations/check-availability?date=2024-06-01&timeSlot=7pm", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Time slot must be in HH:MM format"}`, rec.Body.String())
}

func TestCheckAvailabilityLookupFailure(t *testing.T) {
	s, fdb := newTestServer(t, 30)
	fdb.err = errors.New("refused")

	rec := do(s.Routes(), http.MethodGet, "/api/reservations/check-availability?date=2024-06-01&timeSlot=19:00", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAvailableSlots(t *testing.T) {
	s, _ := newTestServer(t, 2)
	h := s.Routes()

	rec := do(h, http.MethodGet, "/api/reservations/available-slots?date=2024-06-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decode[[]availability.SlotAvailability](t, rec)
	require.Len(t, slots, len(availability.DefaultSlots))
	assert.Equal(t, "17:00", slots[0].Slot)
	assert.Equal(t, 2, slots[0].AvailableCount)

	rec = do(h, http.MethodGet, "/api/reservations/available-slots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUntilFullyBooked(t *testing.T) {
	s, _ := newTestServer(t, 2)
	h := s.Routes()

	for i := 0; i < 2; i++ {
		rec := do(h, http.MethodPost, "/api/reservations/create", createBody())
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[usecases.BookingResult](t, rec)
		require.True(t, res.Success)
		assert.Contains(t, res.Message, "Your table has been reserved!")
	}

	rec := do(h, http.MethodPost, "/api/reservations/create", createBody())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"`+usecases.MsgFullyBooked+`"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/reservations/check-availability?date=2024-06-01&timeSlot=19:00", nil)
	assert.JSONEq(t, `{"available":false,"availableCount":0,"totalTables":2}`, rec.Body.String())
}

func TestCreateValidation(t *testing.T) {
	s, _ := newTestServer(t, 2)
	h := s.Routes()

	body := createBody()
	body["name"] = "A"
	rec := do(h, http.MethodPost, "/api/reservations/create", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Name must be at least 2 characters"}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/api/reservations/create", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Request body is required"}`, rec.Body.String())
}

func TestCreateMistypedGuestCount(t *testing.T) {
	s, _ := newTestServer(t, 2)
	h := s.Routes()

	for _, v := range []any{"4", 4.5, true} {
		body := createBody()
		body["guestCount"] = v
		rec := do(h, http.MethodPost, "/api/reservations/create", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", v)
		assert.JSONEq(t, `{"error":"Guest count must be between 1 and 10"}`, rec.Body.String(), "%v", v)
	}
}

func TestCancel(t *testing.T) {
	s, fdb := newTestServer(t, 2)
	h := s.Routes()

	rec := do(h, http.MethodPost, "/api/reservations/create", createBody())
	res := decode[usecases.BookingResult](t, rec)
	require.True(t, res.Success)

	rec = do(h, http.MethodPost, "/api/reservations/cancel", map[string]any{"id": res.Reservation.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, reservation.StatusCancelled, fdb.bookings[0].Status)

	rec = do(h, http.MethodPost, "/api/reservations/cancel", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Reservation ID is required"}`, rec.Body.String())
}

func TestSubscribe(t *testing.T) {
	s, _ := newTestServer(t, 2)
	h := s.Routes()

	rec := do(h, http.MethodPost, "/api/newsletter/subscribe", map[string]any{"email": "ada@example.com"})
	assert.JSONEq(t, `{"success":true,"message":"`+usecases.MsgSubscribed+`"}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/api/newsletter/subscribe", map[string]any{"email": "ada@example.com"})
	assert.JSONEq(t, `{"success":true,"message":"`+usecases.MsgAlreadySubscribed+`"}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/api/newsletter/subscribe", map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	s, _ := newTestServer(t, 2)
	h := s.Routes()

	for _, path := range []string{"/api/reservations", "/api/newsletter/subscribers"} {
		rec := do(h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	_, err := s.Auth.CreateUser(context.Background(), "host", "correct horse")
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/api/admin/login", map[string]any{"username": "host", "password": "nope nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/api/admin/login", map[string]any{"username": "host", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	do(h, http.MethodPost, "/api/reservations/create", createBody())

	rec = do(h, http.MethodGet, "/api/reservations", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]reservation.ReservationWithCustomer](t, rec), 1)

	rec = do(h, http.MethodGet, "/api/newsletter/subscribers", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, 2)
	s.RateLimitPerMin = 2
	h := s.Routes()

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/api/health", nil).Code)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := newRateLimiter(2, zap.NewNop())
	l.now = func() time.Time { return clock }

	first := l.get("10.0.0.1")
	l.get("10.0.0.2")
	require.Len(t, l.limiters, 2)

	clock = clock.Add(limiterIdleTTL / 2)
	assert.Same(t, first, l.get("10.0.0.1"))

	clock = clock.Add(limiterIdleTTL/2 + time.Second)
	l.get("10.0.0.3")
	assert.Len(t, l.limiters, 2)
	assert.NotContains(t, l.limiters, "10.0.0.2")
	assert.Contains(t, l.limiters, "10.0.0.1")

	clock = clock.Add(limiterIdleTTL + limiterSweep)
	l.get("10.0.0.4")
	assert.Len(t, l.limiters, 1)
	assert.NotSame(t, first, l.get("10.0.0.1"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(recovery(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(corsMiddleware([]string{"https://cafe.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://cafe.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://cafe.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
