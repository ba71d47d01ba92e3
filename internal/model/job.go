package model

import "time"

// JobPosting はemployerが掲載する求人を表す。
type JobPosting struct {
	ID          int64
	EmployerID  int64
	Title       string
	Company     string
	Location    string
	Rate        string
	Type        string
	Duration    *string
	Skills      []string
	Description string
	CreatedAt   time.Time
}

// Clone はディープコピーを返す。
func (j *JobPosting) Clone() *JobPosting {
	if j == nil {
		return nil
	}
	c := *j
	c.Duration = cloneStringPtr(j.Duration)
	c.Skills = cloneStrings(j.Skills)
	return &c
}

// JobPostingPatch はJobPostingの部分更新を表す。EmployerIDは変更できない。
type JobPostingPatch struct {
	Title       *string
	Company     *string
	Location    *string
	Rate        *string
	Type        *string
	Duration    *string
	Skills      []string
	Description *string
}

// Apply はパッチを求人に浅くマージする。
func (p JobPostingPatch) Apply(dst *JobPosting) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Company != nil {
		dst.Company = *p.Company
	}
	if p.Location != nil {
		dst.Location = *p.Location
	}
	if p.Rate != nil {
		dst.Rate = *p.Rate
	}
	if p.Type != nil {
		dst.Type = *p.Type
	}
	if p.Duration != nil {
		dst.Duration = cloneStringPtr(p.Duration)
	}
	if p.Skills != nil {
		dst.Skills = cloneStrings(p.Skills)
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
}

// ApplicationStatus は応募の選考状態を表す。
type ApplicationStatus string

const (
	// ApplicationStatusPending は選考中。応募作成時の初期状態。
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusAccepted は採用。終端状態。
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusRejected は不採用。終端状態。
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ParseApplicationStatus は文字列をApplicationStatusに変換する。未知の値の場合はfalseを返す。
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	switch ApplicationStatus(s) {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected:
		return ApplicationStatus(s), true
	default:
		return "", false
	}
}

// JobApplication はworkerの求人への応募を表す。(JobID, WorkerID) の組で一意。
type JobApplication struct {
	ID          int64
	JobID       int64
	WorkerID    int64
	Status      ApplicationStatus
	CoverLetter *string
	CreatedAt   time.Time
}

// Clone はディープコピーを返す。
func (a *JobApplication) Clone() *JobApplication {
	if a == nil {
		return nil
	}
	c := *a
	c.CoverLetter = cloneStringPtr(a.CoverLetter)
	return &c
}
