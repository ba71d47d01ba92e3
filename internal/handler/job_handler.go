package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KC-99/workmatch/internal/job"
	"github.com/KC-99/workmatch/internal/middleware"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/policy"
)

// JobServiceInterface は求人ハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	Create(ctx context.Context, actor *model.Actor, in job.CreateInput) (*model.JobPosting, error)
	Get(ctx context.Context, id int64) (*model.JobPosting, error)
	List(ctx context.Context, q string) ([]*model.JobPosting, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]*model.JobPosting, error)
	MyPostings(ctx context.Context, actor *model.Actor) ([]*model.JobPosting, error)
	Update(ctx context.Context, actor *model.Actor, id int64, in job.UpdateInput) (*model.JobPosting, error)
	Delete(ctx context.Context, actor *model.Actor, id int64) error
	Authorize(ctx context.Context, actor *model.Actor, action policy.JobAction, id int64) error
}

// JobHandler は求人のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{service: service}
}

// Create は求人を作成する。employerIdは常にログインユーザーのIDになる。
// POST /api/jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.CreateJobPosting(actor); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in job.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	j, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobPostingResponse(j))
}

// List は求人一覧を作成順で返す。?q= でタイトル・会社名・スキルを絞り込む。
// GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapList(jobs, toJobPostingResponse))
}

// Get は求人詳細を返す。
// GET /api/jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "job")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	j, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobPostingResponse(j))
}

// ListByEmployer は指定employerの求人一覧を返す。
// GET /api/jobs/employer/{employerId}
func (h *JobHandler) ListByEmployer(w http.ResponseWriter, r *http.Request) {
	employerID, err := parseID(chi.URLParam(r, "employerId"), "employer")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	jobs, err := h.service.ListByEmployer(r.Context(), employerID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapList(jobs, toJobPostingResponse))
}

// MyPostings はログインユーザー（employer）が掲載した求人一覧を返す。
// GET /api/jobs/my-postings
func (h *JobHandler) MyPostings(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.MyPostings(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapList(jobs, toJobPostingResponse))
}

// Update は求人を部分更新する。
// ロール判定はIDの形式チェックより先に、ボディの形式エラーは存在・所有者の確認より後に返す。
// PATCH /api/jobs/{id}
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.JobRole(actor, policy.JobActionUpdate); err != nil {
		handleServiceError(w, r, err)
		return
	}
	id, err := parseID(chi.URLParam(r, "id"), "job")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var in job.UpdateInput
	if decodeErr := decodeJSON(w, r, &in); decodeErr != nil {
		if err := h.service.Authorize(r.Context(), actor, policy.JobActionUpdate, id); err != nil {
			handleServiceError(w, r, err)
			return
		}
		handleServiceError(w, r, decodeErr)
		return
	}
	j, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobPostingResponse(j))
}

// Delete は求人とその応募を削除する。
// DELETE /api/jobs/{id}
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if err := policy.JobRole(actor, policy.JobActionDelete); err != nil {
		handleServiceError(w, r, err)
		return
	}
	id, err := parseID(chi.URLParam(r, "id"), "job")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeMessage(w, "Job posting deleted successfully")
}
