package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/mnas4716/Vapi-medical-assistant/internal/config"
	"github.com/mnas4716/Vapi-medical-assistant/internal/model"
)

// SheetsClient is the patient directory backed by a Google Sheet. The first
// row of the worksheet holds the column headers; every following row is one
// patient record.
type SheetsClient struct {
	sheets *sheets.Service
	drive  *drive.Service

	spreadsheetTitle string
	worksheetRange   string

	// Resolved lazily from config.SpreadsheetID or a Drive title lookup.
	spreadsheetID string
	idMu          sync.Mutex
}

// NewSheetsClient creates the patient directory client.
func NewSheetsClient(ctx context.Context) (*SheetsClient, error) {
	creds, err := GetGoogleCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials for Sheets: %w", err)
	}

	sheetsService, err := sheets.NewService(ctx, creds.ClientOption())
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	driveService, err := drive.NewService(ctx, creds.ClientOption())
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &SheetsClient{
		sheets:           sheetsService,
		drive:            driveService,
		spreadsheetTitle: config.SpreadsheetTitle,
		worksheetRange:   config.WorksheetRange,
		spreadsheetID:    config.SpreadsheetID,
	}, nil
}

// FindPatient looks a patient up by mobile number + DOB, or by DOB + initials
// when no mobile number was captured. Returns nil when no record matches.
func (c *SheetsClient) FindPatient(ctx context.Context, query model.PatientQuery) (*model.Patient, error) {
	patients, err := c.allPatients(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range patients {
		if matchesQuery(p, query) {
			log.Printf("Found patient: %s", p.FullName)
			return p, nil
		}
	}

	log.Printf("Patient not found (dob=%s)", query.DOB)
	return nil, nil
}

// RegisterPatient appends a new row, placing each detail under its header
// column. Details without a matching header are dropped, matching columns
// without a detail stay empty.
func (c *SheetsClient) RegisterPatient(ctx context.Context, details map[string]string) error {
	spreadsheetID, err := c.resolveSpreadsheetID(ctx)
	if err != nil {
		return err
	}

	headers, err := c.headerRow(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = details[h]
	}

	_, err = c.sheets.Spreadsheets.Values.
		Append(spreadsheetID, c.worksheetRange, &sheets.ValueRange{
			Values: [][]interface{}{row},
		}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append patient row: %w", err)
	}

	log.Printf("Registered patient: %s", details["fullName"])
	return nil
}

// allPatients reads the worksheet and maps every data row against the header
// row. Short rows are padded; an empty sheet yields no patients.
func (c *SheetsClient) allPatients(ctx context.Context) ([]*model.Patient, error) {
	spreadsheetID, err := c.resolveSpreadsheetID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.sheets.Spreadsheets.Values.
		Get(spreadsheetID, c.worksheetRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read patient sheet: %w", err)
	}

	if len(resp.Values) < 2 {
		return nil, nil
	}

	headers := stringRow(resp.Values[0])
	patients := make([]*model.Patient, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		patients = append(patients, patientFromRow(headers, stringRow(raw)))
	}
	return patients, nil
}

// headerRow reads the first row of the worksheet.
func (c *SheetsClient) headerRow(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.sheets.Spreadsheets.Values.
		Get(spreadsheetID, c.worksheetRange+"!1:1").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return nil, fmt.Errorf("patient sheet has no header row")
	}
	return stringRow(resp.Values[0]), nil
}

// resolveSpreadsheetID returns the configured spreadsheet ID, resolving the
// configured title through Drive on first use when no ID is set.
func (c *SheetsClient) resolveSpreadsheetID(ctx context.Context) (string, error) {
	c.idMu.Lock()
	defer c.idMu.Unlock()

	if c.spreadsheetID != "" {
		return c.spreadsheetID, nil
	}

	query := fmt.Sprintf(
		"name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(c.spreadsheetTitle, "'", `\'`),
	)
	list, err := c.drive.Files.List().
		Q(query).
		PageSize(1).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to resolve spreadsheet %q: %w", c.spreadsheetTitle, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found", c.spreadsheetTitle)
	}

	c.spreadsheetID = list.Files[0].Id
	log.Printf("Resolved spreadsheet %q to %s", c.spreadsheetTitle, c.spreadsheetID)
	return c.spreadsheetID, nil
}

// matchesQuery applies the verification rules: mobile+DOB when a mobile
// number is present, DOB+initials otherwise.
func matchesQuery(p *model.Patient, query model.PatientQuery) bool {
	if query.DOB == "" || p.DOB != query.DOB {
		return false
	}

	if query.MobileNumber != "" {
		return normalizeMobile(p.MobileNumber) == normalizeMobile(query.MobileNumber)
	}

	if query.Initials != "" {
		initials := p.Initials()
		return initials != "" && initials == strings.ToUpper(query.Initials)
	}

	return false
}

// normalizeMobile strips formatting characters so "04 1234-5678" and
// "(04) 12345678" compare equal. A leading "+" stays significant.
func normalizeMobile(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func patientFromRow(headers, row []string) *model.Patient {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(row) {
			fields[h] = row[i]
		} else {
			fields[h] = ""
		}
	}
	return &model.Patient{
		FullName:     fields["fullName"],
		DOB:          fields["dob"],
		MobileNumber: fields["mobileNumber"],
		Fields:       fields,
	}
}

func stringRow(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
