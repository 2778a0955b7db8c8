package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const HeaderProcessTime = "Process-Time"

// ProcessTime reports handler latency in seconds. The header is set right
// before the response is written.
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: start}
		c.Next()
	}
}

type timingWriter struct {
	gin.ResponseWriter
	start time.Time
	done  bool
}

func (w *timingWriter) stamp() {
	if w.done {
		return
	}
	w.done = true
	w.Header().Set(HeaderProcessTime, strconv.FormatFloat(time.Since(w.start).Seconds(), 'f', 6, 64))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

var _ http.ResponseWriter = (*timingWriter)(nil)
