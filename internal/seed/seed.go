// Package seed はデモ用のサンプルデータを投入する。
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/KC-99/workmatch/internal/auth"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/repository"
)

// SamplePassword はサンプルユーザー共通のパスワード。
const SamplePassword = "password"

// Config はサンプルデータ投入の設定。
type Config struct {
	BcryptCost int // 0の場合はbcrypt.DefaultCost
}

type sampleWorker struct {
	username, email, name string
	profile               model.WorkerProfile
}

type sampleEmployer struct {
	username, email, name string
	profile               model.EmployerProfile
	jobs                  []model.JobPosting
}

func ptr(s string) *string { return &s }

func unsplash(photo string) *string {
	return ptr("https://images.unsplash.com/" + photo + "?ixlib=rb-1.2.1&auto=format&fit=crop&w=150&h=150&q=80")
}

var workers = []sampleWorker{
	{"worker1", "worker1@example.com", "Sarah Johnson", model.WorkerProfile{
		Title:        "Graphic Designer",
		Skills:       []string{"Adobe Photoshop", "Illustrator", "UI/UX"},
		Experience:   ptr("7 years of experience in graphic design and UI/UX"),
		HourlyRate:   35,
		Availability: "Immediate",
		Location:     ptr("New York, NY"),
		Image:        unsplash("photo-1494790108377-be9c29b29330"),
		Rating:       4.8,
		ReviewCount:  24,
	}},
	{"worker2", "worker2@example.com", "Michael Chen", model.WorkerProfile{
		Title:        "Web Developer",
		Skills:       []string{"React", "Node.js", "MongoDB"},
		Experience:   ptr("5 years of full-stack development experience"),
		HourlyRate:   45,
		Availability: "2 weeks",
		Location:     ptr("San Francisco, CA"),
		Image:        unsplash("photo-1507003211169-0a1dd7228f2d"),
		Rating:       4.9,
		ReviewCount:  31,
	}},
	{"worker3", "worker3@example.com", "Emily Rodriguez", model.WorkerProfile{
		Title:        "Content Writer",
		Skills:       []string{"SEO", "Blogging", "Copywriting"},
		Experience:   ptr("4 years of content creation for tech companies"),
		HourlyRate:   28,
		Availability: "Immediate",
		Location:     ptr("Chicago, IL"),
		Image:        unsplash("photo-1573497019940-1c28c88b4f3e"),
		Rating:       4.6,
		ReviewCount:  17,
	}},
	{"worker4", "worker4@example.com", "James Wilson", model.WorkerProfile{
		Title:        "Data Analyst",
		Skills:       []string{"Python", "SQL", "Tableau"},
		Experience:   ptr("6 years in data analysis and visualization"),
		HourlyRate:   40,
		Availability: "1 week",
		Location:     ptr("Austin, TX"),
		Image:        unsplash("photo-1500648767791-00dcc994a43e"),
		Rating:       4.7,
		ReviewCount:  22,
	}},
}

var employers = []sampleEmployer{
	{"employer1", "employer1@example.com", "TechSolutions Inc.", model.EmployerProfile{
		CompanyName:        "TechSolutions Inc.",
		CompanySize:        ptr("51-200"),
		Industry:           "Technology",
		CompanyDescription: ptr("Leading provider of innovative software solutions"),
		Location:           ptr("Remote"),
	}, []model.JobPosting{{
		Title:       "Front-end Developer Needed",
		Company:     "TechSolutions Inc.",
		Location:    "Remote",
		Rate:        "$40-50/hr",
		Type:        "Contract",
		Duration:    ptr("3 months"),
		Skills:      []string{"JavaScript", "React", "CSS"},
		Description: "Looking for an experienced front-end developer to help build a new web application. The ideal candidate should have strong expertise in React and modern CSS frameworks.",
	}}},
	{"employer2", "employer2@example.com", "Creative Studios", model.EmployerProfile{
		CompanyName:        "Creative Studios",
		CompanySize:        ptr("11-50"),
		Industry:           "Design",
		CompanyDescription: ptr("Award-winning design agency"),
		Location:           ptr("New York, NY"),
	}, []model.JobPosting{{
		Title:       "Graphic Designer for Brand Refresh",
		Company:     "Creative Studios",
		Location:    "New York, NY",
		Rate:        "$35-45/hr",
		Type:        "Part-time",
		Duration:    ptr("2 months"),
		Skills:      []string{"Adobe Creative Suite", "Branding", "Typography"},
		Description: "Our agency is seeking a talented graphic designer to assist with a complete brand refresh for one of our major clients. Must have strong typography skills and branding experience.",
	}}},
	{"employer3", "employer3@example.com", "Future Technologies", model.EmployerProfile{
		CompanyName:        "Future Technologies",
		CompanySize:        ptr("11-50"),
		Industry:           "Technology",
		CompanyDescription: ptr("Emerging tech company focused on innovation"),
		Location:           ptr("Remote"),
	}, []model.JobPosting{{
		Title:       "Content Writer for Tech Blog",
		Company:     "Future Technologies",
		Location:    "Remote",
		Rate:        "$25-35/hr",
		Type:        "Freelance",
		Duration:    ptr("Ongoing"),
		Skills:      []string{"SEO Writing", "Technical Knowledge", "Research"},
		Description: "We need a skilled content writer who can produce engaging articles about emerging technologies. The ideal candidate should have SEO knowledge and be able to explain complex technical concepts in an accessible way.",
	}}},
	{"employer4", "employer4@example.com", "Global Brands", model.EmployerProfile{
		CompanyName:        "Global Brands",
		CompanySize:        ptr("201-500"),
		Industry:           "Marketing",
		CompanyDescription: ptr("International marketing and branding company"),
		Location:           ptr("Chicago, IL"),
	}, []model.JobPosting{{
		Title:       "Social Media Manager",
		Company:     "Global Brands",
		Location:    "Chicago, IL",
		Rate:        "$30-40/hr",
		Type:        "Full-time",
		Duration:    ptr("Permanent"),
		Skills:      []string{"Social Media Strategy", "Content Creation", "Analytics"},
		Description: "Seeking an experienced social media manager to oversee our brand presence across multiple platforms. Responsibilities include content creation, community management, and performance analysis.",
	}}},
}

// Result は投入結果の件数。
type Result struct {
	Users    int
	Profiles int
	Jobs     int
}

// Run はサンプルデータを投入する。
// ユーザーが1人でも存在する場合は何もせず、ゼロ値のResultを返す。
// 評価値（rating/reviewCount）は通常の作成経路では0に固定されるため、UpdateRatingで設定する。
func Run(ctx context.Context, store *repository.Store, cfg Config) (Result, error) {
	var res Result

	existing, err := store.Users.List(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list users: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("sample data skipped", slog.Int("existing_users", len(existing)))
		return res, nil
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	hash, err := auth.HashPassword(SamplePassword, cfg.BcryptCost)
	if err != nil {
		return res, err
	}

	for _, w := range workers {
		user, err := createUser(ctx, store, w.username, w.email, w.name, model.UserTypeWorker, hash)
		if err != nil {
			return res, err
		}
		res.Users++

		p := w.profile.Clone()
		p.UserID = user.ID
		if err := store.WorkerProfiles.Create(ctx, p); err != nil {
			return res, fmt.Errorf("failed to create worker profile for %s: %w", w.username, err)
		}
		if _, err := store.WorkerProfiles.UpdateRating(ctx, p.ID, w.profile.Rating, w.profile.ReviewCount); err != nil {
			return res, fmt.Errorf("failed to set rating for %s: %w", w.username, err)
		}
		res.Profiles++
	}

	for _, e := range employers {
		user, err := createUser(ctx, store, e.username, e.email, e.name, model.UserTypeEmployer, hash)
		if err != nil {
			return res, err
		}
		res.Users++

		p := e.profile.Clone()
		p.UserID = user.ID
		if err := store.EmployerProfiles.Create(ctx, p); err != nil {
			return res, fmt.Errorf("failed to create employer profile for %s: %w", e.username, err)
		}
		res.Profiles++

		for _, j := range e.jobs {
			job := j.Clone()
			job.EmployerID = user.ID
			if err := store.JobPostings.Create(ctx, job); err != nil {
				return res, fmt.Errorf("failed to create job posting %q: %w", j.Title, err)
			}
			res.Jobs++
		}
	}

	slog.Info("sample data loaded",
		slog.Int("users", res.Users),
		slog.Int("profiles", res.Profiles),
		slog.Int("jobs", res.Jobs),
	)
	return res, nil
}

func createUser(ctx context.Context, store *repository.Store, username, email, name string, userType model.UserType, hash string) (*model.User, error) {
	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Name:         name,
		UserType:     userType,
	}
	if err := store.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return user, nil
}
