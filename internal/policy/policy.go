// Package policy はリクエスト実行者と対象エンティティから操作可否を判定する。
//
// 各関数は副作用を持たず、許可する場合はnil、拒否する場合は*model.APIErrorを返す。
// 判定順は 認証 → ロール → 対象の存在 → 所有者 → 一意性 の順に固定する。
package policy

import "github.com/KC-99/workmatch/internal/model"

// Authenticated は有効なセッションがあることを要求する。
func Authenticated(actor *model.Actor) error {
	if actor == nil {
		return model.NewUnauthenticatedError()
	}
	return nil
}

// RequireWorker はworkerであることを要求する。deniedは拒否時のメッセージ。
func RequireWorker(actor *model.Actor, denied string) error {
	return requireRole(actor, model.UserTypeWorker, denied)
}

// RequireEmployer はemployerであることを要求する。
func RequireEmployer(actor *model.Actor, denied string) error {
	return requireRole(actor, model.UserTypeEmployer, denied)
}

func requireRole(actor *model.Actor, role model.UserType, denied string) error {
	if actor == nil {
		return model.NewUnauthenticatedError()
	}
	if actor.UserType != role {
		return model.NewForbiddenError(denied)
	}
	return nil
}

// CreateWorkerProfile はworkerプロフィールの作成可否を判定する。
// existingは実行者の既存プロフィール（なければnil）。
func CreateWorkerProfile(actor *model.Actor, existing *model.WorkerProfile) error {
	if err := RequireWorker(actor, "Only workers can create worker profiles"); err != nil {
		return err
	}
	if existing != nil {
		return model.NewConflictError(model.ErrCodeProfileExists, "Worker profile already exists")
	}
	return nil
}

// CreateEmployerProfile はemployerプロフィールの作成可否を判定する。
func CreateEmployerProfile(actor *model.Actor, existing *model.EmployerProfile) error {
	if err := RequireEmployer(actor, "Only employers can create employer profiles"); err != nil {
		return err
	}
	if existing != nil {
		return model.NewConflictError(model.ErrCodeProfileExists, "Employer profile already exists")
	}
	return nil
}

// UpdateWorkerProfile はworkerプロフィールの更新可否を判定する。
func UpdateWorkerProfile(actor *model.Actor, target *model.WorkerProfile) error {
	if err := RequireWorker(actor, "Only workers can update worker profiles"); err != nil {
		return err
	}
	if target == nil {
		return model.NewNotFoundError("Worker profile")
	}
	if target.UserID != actor.UserID {
		return model.NewForbiddenError("You do not have permission to update this profile")
	}
	return nil
}

// UpdateEmployerProfile はemployerプロフィールの更新可否を判定する。
func UpdateEmployerProfile(actor *model.Actor, target *model.EmployerProfile) error {
	if err := RequireEmployer(actor, "Only employers can update employer profiles"); err != nil {
		return err
	}
	if target == nil {
		return model.NewNotFoundError("Employer profile")
	}
	if target.UserID != actor.UserID {
		return model.NewForbiddenError("You do not have permission to update this profile")
	}
	return nil
}

// CreateJobPosting は求人の作成可否を判定する。
// employerIDは常に実行者のIDで上書きされる。
func CreateJobPosting(actor *model.Actor) error {
	return RequireEmployer(actor, "Only employers can create job postings")
}

// JobAction は求人に対する変更操作の種類。
type JobAction string

const (
	JobActionUpdate JobAction = "update"
	JobActionDelete JobAction = "delete"
)

// JobRole は求人の変更操作に必要なロールだけを判定する。
// 対象の取得前に呼び出し、ロール違反を存在確認より先に返すために使う。
func JobRole(actor *model.Actor, action JobAction) error {
	return RequireEmployer(actor, "Only employers can "+string(action)+" job postings")
}

// ModifyJobPosting は求人の更新・削除可否を判定する。
func ModifyJobPosting(actor *model.Actor, action JobAction, target *model.JobPosting) error {
	if err := JobRole(actor, action); err != nil {
		return err
	}
	if target == nil {
		return model.NewNotFoundError("Job posting")
	}
	if target.EmployerID != actor.UserID {
		return model.NewForbiddenError("You do not have permission to " + string(action) + " this job posting")
	}
	return nil
}

// ApplyToJob は応募の作成可否を判定する。
// jobは応募先（存在しなければnil）、priorは実行者の同一求人への既存応募（なければnil）。
func ApplyToJob(actor *model.Actor, job *model.JobPosting, prior *model.JobApplication) error {
	if err := RequireWorker(actor, "Only workers can apply to jobs"); err != nil {
		return err
	}
	if job == nil {
		return model.NewNotFoundError("Job posting")
	}
	if prior != nil {
		return model.NewConflictError(model.ErrCodeAlreadyApplied, "You have already applied to this job")
	}
	return nil
}

// UpdateApplicationStatus は応募ステータスの更新可否を判定する。
// jobは応募先の求人。
func UpdateApplicationStatus(actor *model.Actor, app *model.JobApplication, job *model.JobPosting) error {
	if err := RequireEmployer(actor, "Only employers can update application status"); err != nil {
		return err
	}
	if app == nil {
		return model.NewNotFoundError("Application")
	}
	if job == nil || job.EmployerID != actor.UserID {
		return model.NewForbiddenError("You do not have permission to update this application")
	}
	return nil
}

// StatusTransition は応募ステータスの遷移可否を判定する。
// pendingからaccepted/rejectedへの遷移と、同じ値の再設定のみ許可する。
func StatusTransition(from, to model.ApplicationStatus) error {
	if from == to {
		return nil
	}
	if from == model.ApplicationStatusPending &&
		(to == model.ApplicationStatusAccepted || to == model.ApplicationStatusRejected) {
		return nil
	}
	return model.NewConflictError(
		model.ErrCodeInvalidStatusTransition,
		"Cannot change application status from "+string(from)+" to "+string(to),
	)
}

// ApplicationScope は求人の応募一覧で閲覧できる範囲。
type ApplicationScope int

const (
	// ScopeAll は全応募を閲覧できる（求人の掲載者）。
	ScopeAll ApplicationScope = iota + 1
	// ScopeOwn は自分の応募のみ閲覧できる（worker）。
	ScopeOwn
)

// ViewJobApplications は求人の応募一覧の閲覧範囲を判定する。
func ViewJobApplications(actor *model.Actor, job *model.JobPosting) (ApplicationScope, error) {
	if actor == nil {
		return 0, model.NewUnauthenticatedError()
	}
	if job == nil {
		return 0, model.NewNotFoundError("Job posting")
	}
	if actor.IsWorker() {
		return ScopeOwn, nil
	}
	if job.EmployerID != actor.UserID {
		return 0, model.NewForbiddenError("You do not have permission to view these applications")
	}
	return ScopeAll, nil
}
