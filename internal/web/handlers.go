package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

const msgBodyRequired = "Request body is required"

// fail writes a 400 for validation errors and a 500 with publicMsg for
// anything else.
func (s *Server) fail(c *gin.Context, err error, publicMsg string) {
	var verr *reservation.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}
	s.Log.Error(publicMsg,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(ctxRequestID)),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": publicMsg})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "connected"
	if err := s.DB.Ping(c.Request.Context()); err != nil {
		status = "error: " + err.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  status,
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleCheckAvailability(c *gin.Context) {
	date := c.Query("date")
	slot := c.Query("timeSlot")
	if err := reservation.ValidateDate(date); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := reservation.ValidateTimeSlot(slot); err != nil {
		s.fail(c, err, "")
		return
	}

	a, err := s.Engine.Check(c.Request.Context(), availability.BookingKey{Date: date, Slot: slot})
	if err != nil {
		s.fail(c, err, "Failed to check availability")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleAvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if err := reservation.ValidateDate(date); err != nil {
		s.fail(c, err, "")
		return
	}

	slots, err := s.Engine.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		s.fail(c, err, "Failed to load available slots")
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (s *Server) handleCreateReservation(c *gin.Context) {
	var req reservation.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var terr *json.UnmarshalTypeError
		if errors.As(err, &terr) && terr.Field == "guestCount" {
			s.fail(c, reservation.ValidateGuestCount(0), "")
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBodyRequired})
		return
	}

	res, err := s.Booking.Create(c.Request.Context(), req)
	if err != nil {
		var verr *reservation.ValidationError
		if errors.As(err, &verr) {
			s.fail(c, err, "")
			return
		}
		s.Log.Error("create reservation", zap.Error(err), zap.String("request_id", c.GetString(ctxRequestID)))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create reservation"})
		return
	}
	c.JSON(http.StatusOK, res)
}

type cancelRequest struct {
	ID int64 `json:"id"`
}

func (s *Server) handleCancelReservation(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation ID is required"})
		return
	}
	if err := s.Booking.Cancel(c.Request.Context(), req.ID); err != nil {
		s.fail(c, err, "Failed to cancel reservation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleListReservations(c *gin.Context) {
	list, err := s.Booking.List(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to load reservations")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleSubscribe(c *gin.Context) {
	var req reservation.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBodyRequired})
		return
	}
	res, err := s.Newsletter.Subscribe(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err, "Failed to subscribe")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleListSubscribers(c *gin.Context) {
	subs, err := s.Newsletter.ListActive(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to load subscribers")
		return
	}
	c.JSON(http.StatusOK, subs)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBodyRequired})
		return
	}
	id, err := s.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, internaltypes.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		s.fail(c, err, "Failed to log in")
		return
	}
	if err := s.Auth.SetSession(c.Writer, c.Request, id); err != nil {
		s.fail(c, err, "Failed to log in")
		return
	}
	s.Log.Info("admin login", zap.Int64("admin_id", id))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.Auth.ClearSession(c.Writer)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
