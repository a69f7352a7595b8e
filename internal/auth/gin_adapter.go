package auth

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// sessionWriter delays header emission so the session cookie can be committed
// first. scs expects to wrap the whole handler; gin hands out its own writer,
// so the commit has to be spliced in here.
type sessionWriter struct {
	gin.ResponseWriter
	sm        *SessionManager
	request   *http.Request
	committed bool
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// commit writes the session cookie once, before the first header or body
// byte goes out. Unmodified sessions produce no cookie at all.
func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	ctx := w.request.Context()
	switch w.sm.Status(ctx) {
	case 1: // modified
		token, expiry, err := w.sm.Commit(ctx)
		if err != nil {
			return
		}
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case 2: // destroyed
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

// SessionLoadSave adapts the session manager's load/commit cycle to gin.
// It must run before any middleware or handler that touches the session.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		sw := &sessionWriter{
			ResponseWriter: c.Writer,
			sm:             sm,
			request:        c.Request,
		}
		c.Writer = sw

		c.Next()

		// A handler that wrote nothing still needs its cookie flushed.
		sw.commit()
	}
}
