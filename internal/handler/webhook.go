package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mnas4716/Vapi-medical-assistant/internal/model"
	"github.com/mnas4716/Vapi-medical-assistant/internal/service"
)

// confirmationLayout is how confirmed appointment times are spoken back to
// the agent, e.g. "Monday, January 02 at 3:04 PM".
const confirmationLayout = "Monday, January 02 at 3:04 PM"

// ClinicService is the slice of the clinic orchestrator the webhook needs.
type ClinicService interface {
	FindPatient(ctx context.Context, query model.PatientQuery) (*model.Patient, error)
	RegisterPatient(ctx context.Context, details map[string]string) error
	CheckAvailability(ctx context.Context, isoDateTime string) (string, error)
	ScheduleAppointment(ctx context.Context, isoDateTime, mobileNumber, dob string) (time.Time, error)
	CancelAppointment(ctx context.Context, isoDateTime, mobileNumber, dob string) (bool, error)
}

// WebhookHandler serves the Vapi function-call webhook.
type WebhookHandler struct {
	clinic ClinicService
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(clinic ClinicService) *WebhookHandler {
	return &WebhookHandler{clinic: clinic}
}

// Root is the liveness endpoint.
func (h *WebhookHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is live"})
}

// HandleFunctionCall dispatches a Vapi function-call message. Execution
// failures are reported in the body with HTTP 200: the voice agent reads the
// payload, not the status code.
func (h *WebhookHandler) HandleFunctionCall(c *gin.Context) {
	var payload model.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.Message == nil || payload.Message.Type != "function-call" {
		c.JSON(http.StatusOK, gin.H{"message": "Ignored non-function-call"})
		return
	}

	fn := payload.Message.FunctionCall.Name
	params := payload.Message.FunctionCall.Parameters
	log.Printf("Received function call: %s", fn)

	switch fn {
	case "findPatient":
		h.findPatient(c, params)
	case "registerNewPatient":
		h.registerNewPatient(c, params)
	case "checkAvailability":
		h.checkAvailability(c, params)
	case "scheduleAppointment":
		h.scheduleAppointment(c, params)
	case "cancelAppointment":
		h.cancelAppointment(c, params)
	default:
		c.JSON(http.StatusOK, gin.H{"error": fmt.Sprintf("Unknown function: %s", fn)})
	}
}

func (h *WebhookHandler) findPatient(c *gin.Context, params model.Parameters) {
	patient, err := h.clinic.FindPatient(c.Request.Context(), model.PatientQuery{
		MobileNumber: params.String("mobileNumber"),
		DOB:          params.String("dob"),
		Initials:     params.String("initials"),
	})
	if err != nil {
		executionError(c, err)
		return
	}

	name := "Not Found"
	if patient != nil {
		name = patient.FirstName()
	}
	c.JSON(http.StatusOK, gin.H{"patientName": name})
}

func (h *WebhookHandler) registerNewPatient(c *gin.Context, params model.Parameters) {
	details := make(map[string]string, len(params))
	for key := range params {
		details[key] = params.String(key)
	}

	if err := h.clinic.RegisterPatient(c.Request.Context(), details); err != nil {
		log.Printf("Registration failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": "Failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Success"})
}

func (h *WebhookHandler) checkAvailability(c *gin.Context, params model.Parameters) {
	result, err := h.clinic.CheckAvailability(c.Request.Context(), params.String("dateTime"))
	if err != nil {
		executionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *WebhookHandler) scheduleAppointment(c *gin.Context, params model.Parameters) {
	start, err := h.clinic.ScheduleAppointment(c.Request.Context(),
		params.String("dateTime"),
		params.String("mobileNumber"),
		params.String("dob"),
	)
	if errors.Is(err, service.ErrPatientNotFound) {
		c.JSON(http.StatusOK, gin.H{"confirmationTime": "Failure"})
		return
	}
	if err != nil {
		executionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmationTime": start.Format(confirmationLayout)})
}

func (h *WebhookHandler) cancelAppointment(c *gin.Context, params model.Parameters) {
	cancelled, err := h.clinic.CancelAppointment(c.Request.Context(),
		params.String("dateTime"),
		params.String("mobileNumber"),
		params.String("dob"),
	)
	if errors.Is(err, service.ErrPatientNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": "Not Found"})
		return
	}
	if err != nil {
		executionError(c, err)
		return
	}

	status := "Not Found"
	if cancelled {
		status = "Success"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GenericWebhook accepts any other Vapi event for logging. Empty and
// non-JSON bodies are fine.
func (h *WebhookHandler) GenericWebhook(c *gin.Context) {
	path := c.Param("path")

	var data map[string]interface{}
	if body, err := io.ReadAll(c.Request.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			data = nil
		}
	}

	log.Printf("Received webhook on %s: %v", path, data)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func executionError(c *gin.Context, err error) {
	log.Printf("Exception during function execution: %v", err)
	c.JSON(http.StatusOK, gin.H{"error": fmt.Sprintf("Exception: %v", err)})
}
