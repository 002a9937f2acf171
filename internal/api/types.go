package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/booking"
	"github.com/clinicore/clinic-scheduling/internal/queue"
)

type BookAppointmentRequest struct {
	DoctorID     string  `json:"doctor_id"`
	DoctorName   string  `json:"doctor_name,omitempty"`
	PatientID    string  `json:"patient_id,omitempty"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	SelectedDate string  `json:"selected_date"`
	SelectedTime string  `json:"selected_time"`
	ServiceName  string  `json:"service_name,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	NewStatus string `json:"new_status"`
}

type CheckInRequest struct {
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
}

type AppointmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	DoctorID     uuid.UUID  `json:"doctor_id"`
	DoctorName   string     `json:"doctor_name"`
	PatientID    *uuid.UUID `json:"patient_id,omitempty"`
	PatientName  string     `json:"patient_name"`
	PatientEmail *string    `json:"patient_email,omitempty"`
	PatientPhone *string    `json:"patient_phone,omitempty"`
	ServiceName  string     `json:"service_name,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Status       string     `json:"status"`
	VideoLink    string     `json:"video_link"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type QueueEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	PatientName string     `json:"patient_name"`
	DoctorName  string     `json:"doctor_name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

type QueuePositionResponse struct {
	Position int `json:"position"`
	Total    int `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		DoctorID:     a.DoctorID,
		DoctorName:   a.DoctorName,
		PatientID:    a.PatientID,
		PatientName:  a.PatientName,
		PatientEmail: a.PatientEmail,
		PatientPhone: a.PatientPhone,
		ServiceName:  a.ServiceName,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Status:       string(a.Status),
		VideoLink:    a.VideoLink,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
	}
}

func toQueueEntryResponse(e *queue.Entry) QueueEntryResponse {
	return QueueEntryResponse{
		ID:          e.ID,
		PatientID:   e.PatientID,
		PatientName: e.PatientName,
		DoctorName:  e.DoctorName,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}
