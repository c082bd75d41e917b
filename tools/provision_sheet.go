package main

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/mnas4716/Vapi-medical-assistant/internal/config"
	"github.com/mnas4716/Vapi-medical-assistant/internal/service"
)

// patientHeaders is the canonical column order of the patient directory.
var patientHeaders = []string{"fullName", "dob", "mobileNumber", "email", "notes"}

// Provisioning helper: creates the patient spreadsheet with the canonical
// header row and verifies that the service account can reach the appointment
// calendar. Run once per deployment.
//
//	GOOGLE_CREDENTIALS_JSON=... go run ./tools
func main() {
	ctx := context.Background()
	config.Load()

	creds, err := service.GetGoogleCredentials(ctx)
	if err != nil {
		log.Fatalf("Failed to load Google credentials: %v", err)
	}
	fmt.Printf("Service account: %s\n", creds.Email())

	sheetsService, err := sheets.NewService(ctx, creds.ClientOption())
	if err != nil {
		log.Fatalf("Failed to create sheets service: %v", err)
	}

	spreadsheet, err := sheetsService.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: config.SpreadsheetTitle,
		},
	}).Context(ctx).Do()
	if err != nil {
		log.Fatalf("Failed to create spreadsheet: %v", err)
	}

	header := make([]interface{}, len(patientHeaders))
	for i, h := range patientHeaders {
		header[i] = h
	}
	_, err = sheetsService.Spreadsheets.Values.
		Update(spreadsheet.SpreadsheetId, config.WorksheetRange+"!1:1", &sheets.ValueRange{
			Values: [][]interface{}{header},
		}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		log.Fatalf("Failed to write header row: %v", err)
	}

	fmt.Printf("Created spreadsheet %q\n", config.SpreadsheetTitle)
	fmt.Printf("Set SPREADSHEET_ID=%s in the service environment\n", spreadsheet.SpreadsheetId)
	fmt.Println("Note: share the spreadsheet with clinic staff; the service account owns it.")

	calendarService, err := calendar.NewService(ctx, creds.ClientOption())
	if err != nil {
		log.Fatalf("Failed to create calendar service: %v", err)
	}

	cal, err := calendarService.Calendars.Get(config.CalendarID).Context(ctx).Do()
	if err != nil {
		log.Fatalf("Calendar %q not reachable: %v", config.CalendarID, err)
	}
	fmt.Printf("Calendar OK: %s (%s)\n", cal.Summary, config.CalendarID)
}
