package handler

import (
	"time"

	"github.com/KC-99/workmatch/internal/model"
)

// userResponse は公開可能なユーザー情報。パスワードハッシュは含めない。
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

type workerProfileResponse struct {
	ID           int64    `json:"id"`
	UserID       int64    `json:"userId"`
	Title        string   `json:"title"`
	Skills       []string `json:"skills"`
	Experience   *string  `json:"experience"`
	HourlyRate   int      `json:"hourlyRate"`
	Availability string   `json:"availability"`
	Location     *string  `json:"location"`
	Image        *string  `json:"image"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"reviewCount"`
}

type employerProfileResponse struct {
	ID                 int64   `json:"id"`
	UserID             int64   `json:"userId"`
	CompanyName        string  `json:"companyName"`
	CompanySize        *string `json:"companySize"`
	Industry           string  `json:"industry"`
	CompanyDescription *string `json:"companyDescription"`
	Location           *string `json:"location"`
}

type jobPostingResponse struct {
	ID          int64     `json:"id"`
	EmployerID  int64     `json:"employerId"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Rate        string    `json:"rate"`
	Type        string    `json:"type"`
	Duration    *string   `json:"duration"`
	Skills      []string  `json:"skills"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type jobApplicationResponse struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"jobId"`
	WorkerID    int64     `json:"workerId"`
	Status      string    `json:"status"`
	CoverLetter *string   `json:"coverLetter"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		UserType: string(u.UserType),
	}
}

func toWorkerProfileResponse(p *model.WorkerProfile) workerProfileResponse {
	return workerProfileResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Title:        p.Title,
		Skills:       nonNilStrings(p.Skills),
		Experience:   p.Experience,
		HourlyRate:   p.HourlyRate,
		Availability: p.Availability,
		Location:     p.Location,
		Image:        p.Image,
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
	}
}

func toEmployerProfileResponse(p *model.EmployerProfile) employerProfileResponse {
	return employerProfileResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		CompanyName:        p.CompanyName,
		CompanySize:        p.CompanySize,
		Industry:           p.Industry,
		CompanyDescription: p.CompanyDescription,
		Location:           p.Location,
	}
}

func toJobPostingResponse(j *model.JobPosting) jobPostingResponse {
	return jobPostingResponse{
		ID:          j.ID,
		EmployerID:  j.EmployerID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Rate:        j.Rate,
		Type:        j.Type,
		Duration:    j.Duration,
		Skills:      nonNilStrings(j.Skills),
		Description: j.Description,
		CreatedAt:   j.CreatedAt,
	}
}

func toJobApplicationResponse(a *model.JobApplication) jobApplicationResponse {
	return jobApplicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		WorkerID:    a.WorkerID,
		Status:      string(a.Status),
		CoverLetter: a.CoverLetter,
		CreatedAt:   a.CreatedAt,
	}
}

// mapList はエンティティのスライスをレスポンスに変換する。結果は空でもnilにならない。
func mapList[T, R any](items []*T, conv func(*T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, conv(item))
	}
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
