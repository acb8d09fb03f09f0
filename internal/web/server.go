package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/cafe-reservations/internal/application/usecases"
	"github.com/example/cafe-reservations/internal/auth"
	"github.com/example/cafe-reservations/internal/availability"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Engine     *availability.Engine
	Booking    usecases.Booking
	Newsletter usecases.Newsletter
	Auth       *auth.Store
	DB         Pinger
	Log        *zap.Logger

	CORSOrigins     []string
	RateLimitPerMin int
	RequestTimeout  time.Duration

	Now func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(recovery(s.Log), requestID(), accessLog(s.Log), corsMiddleware(s.CORSOrigins))

	api := r.Group("/api")
	api.Use(newRateLimiter(s.RateLimitPerMin, s.Log).middleware(), requestTimeout(s.RequestTimeout))

	api.GET("/health", s.handleHealth)

	res := api.Group("/reservations")
	res.GET("/check-availability", s.handleCheckAvailability)
	res.GET("/available-slots", s.handleAvailableSlots)
	res.POST("/create", s.handleCreateReservation)
	res.POST("/cancel", s.handleCancelReservation)
	res.GET("", s.Auth.RequireAdmin(), s.handleListReservations)

	nl := api.Group("/newsletter")
	nl.POST("/subscribe", s.handleSubscribe)
	nl.GET("/subscribers", s.Auth.RequireAdmin(), s.handleListSubscribers)

	admin := api.Group("/admin")
	admin.POST("/login", s.handleLogin)
	admin.POST("/logout", s.handleLogout)

	return r
}

// Start serves h on addr until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()
	log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
