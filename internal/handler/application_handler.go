package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KC-99/workmatch/internal/application"
	"github.com/KC-99/workmatch/internal/middleware"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/policy"
)

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	Apply(ctx context.Context, actor *model.Actor, in application.ApplyInput) (*model.JobApplication, error)
	ListByJob(ctx context.Context, actor *model.Actor, jobID int64) ([]*model.JobApplication, error)
	ListOwn(ctx context.Context, actor *model.Actor) ([]*model.JobApplication, error)
	UpdateStatus(ctx context.Context, actor *model.Actor, id int64, status string) (*model.JobApplication, error)
}

// ApplicationHandler は応募のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler はApplicationHandlerを生成する。
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// updateStatusRequest は応募ステータス更新リクエストのボディ。
type updateStatusRequest struct {
	Status string `json:"status"`
}

// Apply は求人に応募する。
// POST /api/applications
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.RequireWorker(actor, "Only workers can apply to jobs"); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in application.ApplyInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	app, err := h.service.Apply(r.Context(), actor, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobApplicationResponse(app))
}

// ListByJob は求人の応募一覧を返す。掲載者は全件、workerは自分の応募のみ。
// GET /api/applications/job/{jobId}
func (h *ApplicationHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := parseID(chi.URLParam(r, "jobId"), "job")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	apps, err := h.service.ListByJob(r.Context(), middleware.ActorFromContext(r.Context()), jobID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapList(apps, toJobApplicationResponse))
}

// ListOwn はログインユーザー（worker）の応募一覧を返す。
// GET /api/applications/worker
func (h *ApplicationHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListOwn(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapList(apps, toJobApplicationResponse))
}

// UpdateStatus は応募の選考状態を更新する。
// PATCH /api/applications/{id}/status
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.RequireEmployer(actor, "Only employers can update application status"); err != nil {
		handleServiceError(w, r, err)
		return
	}
	id, err := parseID(chi.URLParam(r, "id"), "application")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	app, err := h.service.UpdateStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobApplicationResponse(app))
}
