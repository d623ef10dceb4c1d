package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/safedine/safedine-backend/config"
	"github.com/safedine/safedine-backend/internal/app/model"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Column layout of the establishment import sheet:
//
//	0 name | 1 address | 2 city | 3 latitude | 4 longitude
//	5 phone | 6 website | 7 place_id | 8 cuisine_types (comma separated)
const expectedColumns = 9

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	estRepo := repository.NewEstablishmentRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	establishments, err := readEstablishmentsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total establishments to import: %d\n", len(establishments))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := estRepo.BulkCreate(establishments, batchSize); err != nil {
		log.Fatal("Failed to bulk create establishments:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total establishments imported: %d\n", len(establishments))
}

func readEstablishmentsFromXLSX(filePath string) ([]model.Establishment, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var establishments []model.Establishment
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		// first row is the header
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 3 {
			skippedCount++
			continue
		}

		// pad short rows so the optional columns index safely
		for len(row) < expectedColumns {
			row = append(row, "")
		}

		name := strings.TrimSpace(row[0])
		address := strings.TrimSpace(row[1])
		city := strings.TrimSpace(row[2])

		if name == "" || city == "" {
			skippedCount++
			continue
		}

		var latitude, longitude *float64
		if lat, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64); err == nil && lat != 0 {
			latitude = &lat
		}
		if lng, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64); err == nil && lng != 0 {
			longitude = &lng
		}

		var placeID *string
		if value := strings.TrimSpace(row[7]); value != "" {
			placeID = &value
		}

		var cuisineTypes pq.StringArray
		for _, cuisine := range strings.Split(row[8], ",") {
			if cuisine = strings.TrimSpace(cuisine); cuisine != "" {
				cuisineTypes = append(cuisineTypes, cuisine)
			}
		}

		// dedupe on name+city+address
		key := fmt.Sprintf("%s|%s|%s", name, city, address)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		establishments = append(establishments, model.Establishment{
			Name:         name,
			Address:      address,
			City:         city,
			Latitude:     latitude,
			Longitude:    longitude,
			Phone:        strings.TrimSpace(row[5]),
			Website:      strings.TrimSpace(row[6]),
			PlaceID:      placeID,
			CuisineTypes: cuisineTypes,
		})

		if len(establishments)%1000 == 0 {
			fmt.Printf("Processed %d establishments...\n", len(establishments))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid establishments: %d\n", len(establishments))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return establishments, nil
}
