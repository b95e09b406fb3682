// Seeds the catalog and the bootstrap admin account. Safe to run
// repeatedly: existing rows are left untouched except the admin's
// password and role, which are re-enforced on every run.
package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	catdomain "github.com/Pankaj72885/care.xyz/internal/catalog/domain"
	catrepo "github.com/Pankaj72885/care.xyz/internal/catalog/repository"
	userdomain "github.com/Pankaj72885/care.xyz/internal/user/domain"
	userrepo "github.com/Pankaj72885/care.xyz/internal/user/repository"
	"github.com/Pankaj72885/care.xyz/pkg/config"
	"github.com/Pankaj72885/care.xyz/pkg/db"
)

const (
	adminEmail    = "admin@care.xyz"
	adminPassword = "Admin@123456" // change immediately in production
)

var services = []catdomain.Service{
	{
		Title:       "Elderly Care & Companionship",
		Slug:        "elderly-care",
		Description: "Compassionate in-home care for seniors. Our caregivers provide companionship, medication reminders, assistance with daily activities, and a friendly face to brighten the day.",
		Category:    "Elderly Care",
		BaseRate:    500,
		ImageURL:    "/services/elderly.jpg",
	},
	{
		Title:       "Childcare & Babysitting",
		Slug:        "childcare-babysitting",
		Description: "Trusted, verified babysitters for your peace of mind. Whether for a date night or daily support, our caregivers engage your children in safe, fun, and educational activities.",
		Category:    "Childcare",
		BaseRate:    400,
		ImageURL:    "/services/childcare.jpg",
	},
	{
		Title:       "Professional Nursing Care",
		Slug:        "professional-nursing",
		Description: "Skilled nursing care for post-operative recovery, wound dressing, vital monitoring, and injections. Bringing hospital-quality medical support to the comfort of your home.",
		Category:    "Nursing",
		BaseRate:    800,
		ImageURL:    "/services/nursing.jpg",
	},
	{
		Title:       "Physiotherapy & Rehab",
		Slug:        "physiotherapy-rehab",
		Description: "Expert physiotherapy sessions at home to help with mobility, injury recovery, and pain management. Personalized exercises designed for your specific needs.",
		Category:    "Therapy",
		BaseRate:    1000,
		ImageURL:    "/services/physio.jpg",
	},
	{
		Title:       "Palliative Care",
		Slug:        "palliative-care",
		Description: "Specialized care focused on providing relief from the symptoms and stress of a serious illness. Our goal is to improve quality of life for both the patient and the family.",
		Category:    "Nursing",
		BaseRate:    900,
		ImageURL:    "/services/nursing.jpg",
	},
	{
		Title:       "Full-time Nanny Service",
		Slug:        "full-time-nanny",
		Description: "Dedicated full-time nannies to support your growing family. Experienced in infant care, toddler activities, and maintaining a structured routine for your children.",
		Category:    "Childcare",
		BaseRate:    15000,
		ImageURL:    "/services/childcare.jpg",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	gdb := db.Open(cfg.DatabaseDSN)
	catalog := catrepo.NewServiceRepo(gdb)
	users := userrepo.NewUserRepo(gdb)
	if err := catalog.Migrate(); err != nil {
		log.Fatal(err)
	}
	if err := users.Migrate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	log.Println("[seed] seeding database")

	for i := range services {
		svc := services[i]
		if _, err := catalog.BySlug(ctx, svc.Slug); err == nil {
			log.Printf("[seed] service exists: %s", svc.Slug)
			continue
		} else if !errors.Is(err, apperr.ErrNotFound) {
			log.Fatal(err)
		}
		svc.Active = true
		if err := catalog.Create(ctx, &svc); err != nil {
			log.Fatal(err)
		}
		log.Printf("[seed] created service: %s", svc.Title)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	if existing, err := users.ByEmail(ctx, adminEmail); err == nil {
		// re-enforce credentials and role on every run
		if _, err := users.UpdateFields(ctx, existing.ID, map[string]any{
			"password_hash": string(hash),
			"role":          userdomain.RoleAdmin,
		}); err != nil {
			log.Fatal(err)
		}
		log.Printf("[seed] admin refreshed: %s", adminEmail)
	} else if errors.Is(err, apperr.ErrNotFound) {
		admin := &userdomain.User{
			Name:         "System Admin",
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         userdomain.RoleAdmin,
			Contact:      "01700000000",
		}
		if err := users.Create(ctx, admin); err != nil {
			log.Fatal(err)
		}
		log.Printf("[seed] created admin: %s", adminEmail)
	} else {
		log.Fatal(err)
	}

	log.Println("[seed] done")
}
