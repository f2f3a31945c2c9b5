package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/fiffu/vitalwatch/config"
	"github.com/fiffu/vitalwatch/lib"
	"github.com/fiffu/vitalwatch/lib/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	minBPM = 1
	maxBPM = 220
)

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{8}$`)

func NewAPI(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, svc *lib.Service) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, svc)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Sugar().Errorw("HTTP server stopped", "err", err)
				}
			}()
			log.Sugar().Infow("HTTP server listening", "addr", addr)
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, svc *lib.Service) http.Handler {
	ctrl := &controller{log, svc}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(ctrl.authenticate(cfg.SecretAccessToken))

		r.Route("/users", func(r chi.Router) {
			r.With(ctrl.requireRole(models.RoleElder)).Patch("/bpm", ctrl.updateBPM)

			r.With(ctrl.requireRole(models.RoleElder)).Patch("/device", ctrl.registerDevice)
			r.With(ctrl.requireRole(models.RoleElder, models.RoleCaregiver)).Get("/device", ctrl.viewDevice)
			r.With(ctrl.requireRole(models.RoleElder)).Delete("/device", ctrl.removeDevice)

			r.With(ctrl.requireRole(models.RoleCaregiver)).Patch("/link", ctrl.link)
			r.With(ctrl.requireRole(models.RoleCaregiver)).Delete("/unlink", ctrl.unlink)

			r.With(ctrl.requireRole(models.RoleCaregiver)).Get("/elder", ctrl.viewElder)
			r.With(ctrl.requireRole(models.RoleElder)).Get("/caregiver", ctrl.viewCaregiver)
		})

		r.Post("/push-notification", ctrl.registerEndpoint)
		r.Delete("/push-notification", ctrl.removeEndpoint)
	})

	return r
}

type controller struct {
	log *zap.Logger
	svc *lib.Service
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), status)
	} else {
		w.WriteHeader(status)
	}
}

// fail maps a core error onto its status. Internal failures are logged, not echoed.
func (ctrl *controller) fail(w http.ResponseWriter, r *http.Request, err error) {
	var delivery *lib.DeliveryError
	switch {
	case errors.Is(err, lib.ErrNotFound):
		ctrl.reject(w, http.StatusNotFound, err)
	case errors.Is(err, lib.ErrConflict):
		ctrl.reject(w, http.StatusConflict, err)
	case errors.As(err, &delivery):
		ctrl.reject(w, http.StatusBadGateway, errors.New("alert delivery failed"))
	default:
		ctrl.log.Sugar().Errorw("Request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		ctrl.reject(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, body any) {
	if body == nil {
		w.WriteHeader(status)
		return
	}
	if b, err := json.Marshal(body); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		ctrl.log.Sugar().Errorw("Request failed", "err", err)
		return
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(b)
	}
}

func (ctrl *controller) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ctrl.reject(w, http.StatusBadRequest, errors.New("malformed JSON body"))
		return false
	}
	return true
}

func (ctrl *controller) updateBPM(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	var req struct {
		BPM *int `json:"bpm"`
	}
	if !ctrl.decode(w, r, &req) {
		return
	}
	if req.BPM == nil || *req.BPM < minBPM || *req.BPM > maxBPM {
		ctrl.reject(w, http.StatusBadRequest, fmt.Errorf("bpm must be an integer between %d and %d", minBPM, maxBPM))
		return
	}

	reading, err := ctrl.svc.Ingest(ctx, id.AccountID, *req.BPM)
	if err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, ReadingView{}.From(reading))
}

func (ctrl *controller) registerDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	deviceID, ok := ctrl.decodeDeviceID(w, r)
	if !ok {
		return
	}

	deviceID, err := ctrl.svc.RegisterDevice(ctx, id.AccountID, deviceID)
	if err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, DeviceView{deviceID})
}

func (ctrl *controller) viewDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	var (
		deviceID string
		err      error
	)
	if id.Role == models.RoleElder {
		deviceID, err = ctrl.svc.ResolveDeviceForElder(ctx, id.AccountID)
	} else {
		deviceID, err = ctrl.svc.ResolveDeviceForCaregiver(ctx, id.AccountID)
	}
	if err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, DeviceView{deviceID})
}

func (ctrl *controller) removeDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	if err := ctrl.svc.RemoveDevice(ctx, id.AccountID); err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusNoContent, nil)
}

func (ctrl *controller) link(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	deviceID, ok := ctrl.decodeDeviceID(w, r)
	if !ok {
		return
	}

	deviceID, err := ctrl.svc.Pair(ctx, deviceID, id.AccountID)
	if err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, DeviceView{deviceID})
}

func (ctrl *controller) unlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	if err := ctrl.svc.Unpair(ctx, id.AccountID); err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusNoContent, nil)
}

func (ctrl *controller) viewElder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	elder, err := ctrl.svc.LinkedElder(ctx, id.AccountID)
	if err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, ElderView{}.From(elder))
}

func (ctrl *controller) viewCaregiver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	caregiver, err := ctrl.svc.LinkedCaregiver(ctx, id.AccountID)
	if err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, CaregiverView{}.From(caregiver))
}

func (ctrl *controller) registerEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	var req struct {
		ExpoPushToken string `json:"expoPushToken"`
		Platform      string `json:"platform"`
		OSVersion     string `json:"osVersion"`
	}
	if !ctrl.decode(w, r, &req) {
		return
	}
	if req.ExpoPushToken == "" {
		ctrl.reject(w, http.StatusBadRequest, errors.New("expoPushToken is required"))
		return
	}
	if !ctrl.svc.SupportsPlatform(req.Platform) {
		ctrl.reject(w, http.StatusBadRequest, fmt.Errorf("unsupported platform %q", req.Platform))
		return
	}

	err := ctrl.svc.UpsertEndpoint(ctx, id.AccountID, req.ExpoPushToken, req.Platform, req.OSVersion)
	if err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusNoContent, nil)
}

func (ctrl *controller) removeEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFrom(ctx)

	if err := ctrl.svc.RemoveEndpoint(ctx, id.AccountID); err != nil {
		ctrl.fail(w, r, err)
		return
	}
	ctrl.resolve(w, http.StatusNoContent, nil)
}

func (ctrl *controller) decodeDeviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if !ctrl.decode(w, r, &req) {
		return "", false
	}
	if !deviceIDPattern.MatchString(req.DeviceID) {
		ctrl.reject(w, http.StatusBadRequest, errors.New("deviceId must be 8 alphanumeric characters"))
		return "", false
	}
	return req.DeviceID, true
}
