package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"chantierplus/internal/apperr"
	"chantierplus/internal/logs"
	"chantierplus/internal/models"
)

// Recoverer превращает панику обработчика в 500 problem+json; стек уходит в лог.
// Если ответ уже начат, только логирует.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			reqid := GetRequestID(r)
			logs.Logger.WithFields(logrus.Fields{
				"reqid":  reqid,
				"method": r.Method,
				"uri":    r.RequestURI,
			}).Errorf("panic: %v\n%s", rec, debug.Stack())

			if sw.status != 0 {
				return
			}
			models.WriteProblem(sw, http.StatusInternalServerError, "Internal Server Error",
				"unexpected server error (see logs by reqid)", map[string]any{
					"reqid": reqid,
					"kind":  apperr.KindInternal.String(),
				})
		}()
		next.ServeHTTP(sw, r)
	})
}
