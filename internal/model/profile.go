package model

// WorkerProfile はworkerのプロフィールを表す。1ユーザーにつき最大1件。
// RatingとReviewCountはシステム管理のフィールドで、公開の更新経路からは変更できない。
type WorkerProfile struct {
	ID           int64
	UserID       int64
	Title        string
	Skills       []string
	Experience   *string
	HourlyRate   int
	Availability string
	Location     *string
	Image        *string
	Rating       float64
	ReviewCount  int
}

// Clone はスライスとポインタを含めたディープコピーを返す。
func (p *WorkerProfile) Clone() *WorkerProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Skills = cloneStrings(p.Skills)
	c.Experience = cloneStringPtr(p.Experience)
	c.Location = cloneStringPtr(p.Location)
	c.Image = cloneStringPtr(p.Image)
	return &c
}

// WorkerProfilePatch はWorkerProfileの部分更新を表す。nilのフィールドは変更しない。
type WorkerProfilePatch struct {
	Title        *string
	Skills       []string
	Experience   *string
	HourlyRate   *int
	Availability *string
	Location     *string
	Image        *string
}

// Apply はパッチをプロフィールに浅くマージする。
func (p WorkerProfilePatch) Apply(dst *WorkerProfile) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Skills != nil {
		dst.Skills = cloneStrings(p.Skills)
	}
	if p.Experience != nil {
		dst.Experience = cloneStringPtr(p.Experience)
	}
	if p.HourlyRate != nil {
		dst.HourlyRate = *p.HourlyRate
	}
	if p.Availability != nil {
		dst.Availability = *p.Availability
	}
	if p.Location != nil {
		dst.Location = cloneStringPtr(p.Location)
	}
	if p.Image != nil {
		dst.Image = cloneStringPtr(p.Image)
	}
}

// EmployerProfile はemployerのプロフィールを表す。1ユーザーにつき最大1件。
type EmployerProfile struct {
	ID                 int64
	UserID             int64
	CompanyName        string
	CompanySize        *string
	Industry           string
	CompanyDescription *string
	Location           *string
}

// Clone はディープコピーを返す。
func (p *EmployerProfile) Clone() *EmployerProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.CompanySize = cloneStringPtr(p.CompanySize)
	c.CompanyDescription = cloneStringPtr(p.CompanyDescription)
	c.Location = cloneStringPtr(p.Location)
	return &c
}

// EmployerProfilePatch はEmployerProfileの部分更新を表す。
type EmployerProfilePatch struct {
	CompanyName        *string
	CompanySize        *string
	Industry           *string
	CompanyDescription *string
	Location           *string
}

// Apply はパッチをプロフィールに浅くマージする。
func (p EmployerProfilePatch) Apply(dst *EmployerProfile) {
	if p.CompanyName != nil {
		dst.CompanyName = *p.CompanyName
	}
	if p.CompanySize != nil {
		dst.CompanySize = cloneStringPtr(p.CompanySize)
	}
	if p.Industry != nil {
		dst.Industry = *p.Industry
	}
	if p.CompanyDescription != nil {
		dst.CompanyDescription = cloneStringPtr(p.CompanyDescription)
	}
	if p.Location != nil {
		dst.Location = cloneStringPtr(p.Location)
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
