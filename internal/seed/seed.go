package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/scholarhub/internal/app/models"
	appRepos "github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/auth"
)

// Options controls what CreateDefaultData inserts
type Options struct {
	AdminUsername string
	AdminPassword string
	SampleData    bool
}

type sampleScholarship struct {
	scholarship  appModels.Scholarship
	requirements []string
}

var sampleRequirements = []appModels.Requirement{
	{Name: "Form 138", Description: "Latest report card or transcript of records"},
	{Name: "Certificate of Indigency", Description: "Issued by the barangay of residence"},
	{Name: "Certificate of Enrollment", Description: "Proof of enrollment for the current term"},
	{Name: "Valid ID", Description: "School or government issued identification"},
}

var sampleScholarships = []sampleScholarship{
	{
		scholarship: appModels.Scholarship{
			Name:                "Academic Excellence Grant",
			Type:                "Merit",
			Description:         "Full tuition for students with outstanding grades",
			Sponsor:             "University Foundation",
			EligibilityCriteria: "GWA of 1.75 or better with no failing grades",
		},
		requirements: []string{"Form 138", "Certificate of Enrollment", "Valid ID"},
	},
	{
		scholarship: appModels.Scholarship{
			Name:                "Financial Assistance Program",
			Type:                "Need-based",
			Description:         "Monthly stipend for students from low-income households",
			Sponsor:             "Provincial Government",
			EligibilityCriteria: "Household income below the poverty threshold",
		},
		requirements: []string{"Certificate of Indigency", "Certificate of Enrollment", "Valid ID"},
	},
}

// CreateDefaultData creates the admin account and, when asked, a sample catalog.
// Existing data is left untouched.
func CreateDefaultData(ctx context.Context, pool db.Pool, opts Options, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(pool)
	var finalErr error

	if err := createAdmin(ctx, repos, opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin user")
		finalErr = errors.Join(finalErr, err)
	}

	if opts.SampleData {
		if err := createSampleCatalog(ctx, pool, repos, lgr); err != nil {
			lgr.Error().Err(err).Msg("Error creating sample catalog")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, repos *appRepos.Repositories, opts Options, lgr zerolog.Logger) error {
	if opts.AdminUsername == "" || opts.AdminPassword == "" {
		lgr.Warn().Msg("No default admin credentials configured, skipping admin creation")
		return nil
	}

	exists, err := repos.UserRepository.UsernameExists(ctx, opts.AdminUsername)
	if err != nil {
		return err
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}

	adminID, err := repos.UserRepository.CreateUserAccount(ctx, &appModels.UserAccount{
		Username:     opts.AdminUsername,
		PasswordHash: hash,
		Role:         appModels.RoleAdmin,
	})
	if err != nil {
		return err
	}

	lgr.Info().Int64("adminID", adminID).Str("username", opts.AdminUsername).Msg("Default admin user created successfully")
	return nil
}

func createSampleCatalog(ctx context.Context, pool db.Pool, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	count, err := repos.ScholarshipRepository.CountScholarships(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		lgr.Debug().Int64("scholarships", count).Msg("Catalog not empty, skipping sample data")
		return nil
	}

	return db.WithTransaction(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		txRepos := repos.WithTx(tx)

		existing, err := txRepos.RequirementRepository.ListRequirementSummaries(ctx)
		if err != nil {
			return err
		}
		ids := make(map[string]int64, len(existing))
		for _, r := range existing {
			ids[r.Name] = r.ID
		}

		for _, req := range sampleRequirements {
			if _, ok := ids[req.Name]; ok {
				continue
			}
			req := req
			id, err := txRepos.RequirementRepository.CreateRequirement(ctx, &req)
			if err != nil {
				return err
			}
			ids[req.Name] = id
		}

		for _, sample := range sampleScholarships {
			s := sample.scholarship
			scholarshipID, err := txRepos.ScholarshipRepository.CreateScholarship(ctx, &s)
			if err != nil {
				return err
			}
			reqIDs := make([]int64, 0, len(sample.requirements))
			for _, name := range sample.requirements {
				reqIDs = append(reqIDs, ids[name])
			}
			if err := txRepos.ScholarshipRepository.LinkRequirements(ctx, scholarshipID, reqIDs); err != nil {
				return err
			}
			lgr.Info().Str("scholarship", s.Name).Msg("Sample scholarship created")
		}
		return nil
	})
}
