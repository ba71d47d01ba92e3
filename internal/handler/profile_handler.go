package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KC-99/workmatch/internal/middleware"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/policy"
	"github.com/KC-99/workmatch/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	CreateWorker(ctx context.Context, actor *model.Actor, in profile.CreateWorkerInput) (*model.WorkerProfile, error)
	OwnWorker(ctx context.Context, actor *model.Actor) (*model.WorkerProfile, error)
	WorkerByUserID(ctx context.Context, userID int64) (*model.WorkerProfile, error)
	ListWorkers(ctx context.Context, q string) ([]*model.WorkerProfile, error)
	UpdateWorker(ctx context.Context, actor *model.Actor, in profile.UpdateWorkerInput) (*model.WorkerProfile, error)

	CreateEmployer(ctx context.Context, actor *model.Actor, in profile.CreateEmployerInput) (*model.EmployerProfile, error)
	OwnEmployer(ctx context.Context, actor *model.Actor) (*model.EmployerProfile, error)
	EmployerByUserID(ctx context.Context, userID int64) (*model.EmployerProfile, error)
	UpdateEmployer(ctx context.Context, actor *model.Actor, in profile.UpdateEmployerInput) (*model.EmployerProfile, error)
}

// ProfileHandler はworker・employerプロフィールのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// CreateWorker はworkerプロフィールを作成する。
// POST /api/profiles/worker
func (h *ProfileHandler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.RequireWorker(actor, "Only workers can create worker profiles"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in profile.CreateWorkerInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.CreateWorker(r.Context(), actor, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkerProfileResponse(p))
}

// OwnWorker はログインユーザー自身のworkerプロフィールを返す。
// GET /api/profiles/worker
func (h *ProfileHandler) OwnWorker(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.OwnWorker(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerProfileResponse(p))
}

// WorkerByUserID は指定ユーザーのworkerプロフィールを返す。
// GET /api/profiles/worker/{userId}
func (h *ProfileHandler) WorkerByUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"), "user")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.WorkerByUserID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerProfileResponse(p))
}

// ListWorkers はworkerプロフィールの一覧を返す。?q= でタイトルとスキルを絞り込む。
// GET /api/profiles/workers
func (h *ProfileHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListWorkers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapList(list, toWorkerProfileResponse))
}

// UpdateWorker はログインユーザー自身のworkerプロフィールを部分更新する。
// PATCH /api/profiles/worker
func (h *ProfileHandler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.RequireWorker(actor, "Only workers can update worker profiles"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in profile.UpdateWorkerInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.UpdateWorker(r.Context(), actor, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerProfileResponse(p))
}

// CreateEmployer はemployerプロフィールを作成する。
// POST /api/profiles/employer
func (h *ProfileHandler) CreateEmployer(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.RequireEmployer(actor, "Only employers can create employer profiles"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in profile.CreateEmployerInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.CreateEmployer(r.Context(), actor, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployerProfileResponse(p))
}

// OwnEmployer はログインユーザー自身のemployerプロフィールを返す。
// GET /api/profiles/employer
func (h *ProfileHandler) OwnEmployer(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.OwnEmployer(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployerProfileResponse(p))
}

// EmployerByUserID は指定ユーザーのemployerプロフィールを返す。
// GET /api/profiles/employer/{userId}
func (h *ProfileHandler) EmployerByUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "userId"), "user")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.EmployerByUserID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployerProfileResponse(p))
}

// UpdateEmployer はログインユーザー自身のemployerプロフィールを部分更新する。
// PATCH /api/profiles/employer
func (h *ProfileHandler) UpdateEmployer(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.RequireEmployer(actor, "Only employers can update employer profiles"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in profile.UpdateEmployerInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	p, err := h.service.UpdateEmployer(r.Context(), actor, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployerProfileResponse(p))
}
