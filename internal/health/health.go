package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"chantierplus/internal/logs"
	"chantierplus/internal/models"
)

// Check — одна проверка готовности.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// RegisterRoutes — /healthz (liveness) и /readyz (все checks).
func RegisterRoutes(r *mux.Router, checks ...Check) {
	r.HandleFunc("/healthz", liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
		defer cancel()
		failed := map[string]string{}
		for _, c := range checks {
			if err := c.Run(ctx); err != nil {
				logs.Logger.Warnf("readyz check=%s: %v", c.Name, err)
				failed[c.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			models.WriteProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "not ready", failed)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
}

func DB(db *gorm.DB) Check {
	return Check{Name: "db", Run: func(ctx context.Context) error {
		if db == nil {
			return errors.New("db not configured")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// WritableDir пробует создать и удалить временный файл в каталоге артефактов.
func WritableDir(fs afero.Fs, dir string) Check {
	return Check{Name: "storage", Run: func(context.Context) error {
		f, err := afero.TempFile(fs, dir, ".readyz-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		return fs.Remove(name)
	}}
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
