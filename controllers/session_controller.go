package controllers

import (
	"net/http"

	"dailydiet/middlewares"
	"dailydiet/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SessionController struct {
	Sessions *services.SessionService
	Cookie   CookieSettings
	Log      logrus.FieldLogger
}

func NewSessionController(sessions *services.SessionService, cookie CookieSettings, log logrus.FieldLogger) *SessionController {
	return &SessionController{Sessions: sessions, Cookie: cookie, Log: log}
}

// CreateSession enrolls the caller explicitly. Meal creation does the same
// implicitly, so clients never need to call this first.
func (h *SessionController) CreateSession(c *gin.Context) {
	presented, _ := middlewares.SessionID(c)

	session, issued, err := h.Sessions.Enroll(c.Request.Context(), presented)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	if issued {
		h.Cookie.set(c, session.ID)
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// ListSessions is operator-only.
func (h *SessionController) ListSessions(c *gin.Context) {
	sessions, err := h.Sessions.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
