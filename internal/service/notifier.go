package service

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mnas4716/Vapi-medical-assistant/internal/model"
)

// DiscordNotifier posts booking activity to a Discord webhook so front-desk
// staff see what the voice agent did. All methods are no-ops on a nil
// receiver and never propagate failures.
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordNotifier creates the notifier. Returns nil when no URL is configured.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	if webhookURL == "" {
		return nil
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

const (
	colorRed   = 0xFF0000
	colorBlue  = 0x3366FF
	colorGreen = 0x00CC00
)

// NotifyScheduled announces a new appointment.
func (d *DiscordNotifier) NotifyScheduled(patient *model.Patient, start time.Time) {
	if d == nil {
		return
	}

	embed := discordEmbed{
		Title: "Appointment scheduled",
		Color: colorGreen,
		Fields: []discordField{
			{Name: "Patient", Value: patient.FullName, Inline: true},
			{Name: "Time", Value: start.Format("Monday, January 02 at 3:04 PM"), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	d.send(discordPayload{Embeds: []discordEmbed{embed}})
}

// NotifyCancelled announces a cancelled appointment.
func (d *DiscordNotifier) NotifyCancelled(patient *model.Patient, start time.Time) {
	if d == nil {
		return
	}

	embed := discordEmbed{
		Title: "Appointment cancelled",
		Color: colorRed,
		Fields: []discordField{
			{Name: "Patient", Value: patient.FullName, Inline: true},
			{Name: "Time", Value: start.Format("Monday, January 02 at 3:04 PM"), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	d.send(discordPayload{Embeds: []discordEmbed{embed}})
}

// NotifyRegistered announces a new patient registration.
func (d *DiscordNotifier) NotifyRegistered(fullName string) {
	if d == nil {
		return
	}

	embed := discordEmbed{
		Title:       "New patient registered",
		Description: truncate(fullName, 1024),
		Color:       colorBlue,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	d.send(discordPayload{Embeds: []discordEmbed{embed}})
}

func (d *DiscordNotifier) send(payload discordPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Discord notification: JSON encode failed: %v", err)
		return
	}

	resp, err := d.httpClient.Post(d.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Discord notification: send failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("Discord notification: HTTP error: %d", resp.StatusCode)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
