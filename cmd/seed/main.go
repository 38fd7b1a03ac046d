package main

import (
	"context"
	"flag"
	"math"
	"math/rand/v2"
	"time"

	randomdata "github.com/Pallinder/go-randomdata"
	"github.com/optihealth/platform/pkg/common/database"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/patients"
	"github.com/optihealth/platform/pkg/risk"
)

var (
	zones      = []string{"Home Care A", "Home Care B", "North Wing", "Cardiac Unit", "ICU Remote"}
	conditions = []string{"COPD", "CHF", "Pneumonia", "Sepsis", "Hypertension"}
)

func main() {
	logger.Init()

	count := flag.Int("count", 1000, "patients to generate")
	batch := flag.Int("batch", 500, "insert batch size")
	days := flag.Int("days", 60, "spread admissions over this many trailing days")
	flag.Parse()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres()

	repo := patients.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate patients")
	}

	engine := risk.NewEngine(nil)
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	seen := make(map[string]struct{}, *count)
	rows := make([]patients.Patient, 0, *count)
	for len(rows) < *count {
		p := synthetic(today, *days)
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}

		result := engine.Score(p.Vitals())
		p.RiskScore = result.RiskScore
		p.RiskLevel = result.RiskLevel
		rows = append(rows, p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := repo.CreateBatch(ctx, rows, *batch); err != nil {
		logger.Log.WithError(err).Fatal("Failed to insert patients")
	}

	logger.Log.WithFields(map[string]interface{}{
		"count": len(rows),
		"days":  *days,
	}).Info("Seeded patients")
}

// synthetic draws correlated vitals: older, heavier patients skew hypertensive.
func synthetic(today time.Time, days int) patients.Patient {
	gender := randomdata.StringSample("M", "F")
	nameGender := randomdata.Male
	if gender == "F" {
		nameGender = randomdata.Female
	}
	age := randomdata.Number(18, 90)
	bmi := clamp(normal(26.5, 5), 16, 45)
	hypertensive := (age > 50 && bmi > 30) || rand.Float64() < 0.2

	sys := normal(120, 10)
	dia := normal(80, 8)
	if hypertensive {
		sys += 20
		dia += 10
	}
	admitted := today.AddDate(0, 0, -randomdata.Number(0, max(days, 1)))

	return patients.Patient{
		ID:                patients.NewPatientID(),
		Name:              randomdata.FirstName(nameGender) + " " + randomdata.LastName(),
		Age:               age,
		Gender:            gender,
		Condition:         randomdata.StringSample(conditions...),
		Zone:              randomdata.StringSample(zones...),
		AdmissionDate:     admitted,
		SystolicBP:        int(sys),
		DiastolicBP:       int(dia),
		HeartRate:         int(normal(72, 12)),
		SpO2:              float64(randomdata.Number(88, 101)),
		Temp:              round1(normal(36.8, 0.4)),
		BMI:               round1(bmi),
		PriorReadmissions: randomdata.Number(0, 4),
		CreatedAt:         admitted,
	}
}

func normal(mean, stddev float64) float64 {
	return mean + rand.NormFloat64()*stddev
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
