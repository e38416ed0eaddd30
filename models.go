package session

import "time"

// UserProfile is the cached view of the authenticated user. It may be stale
// relative to server truth; CurrentUser refreshes it on demand.
type UserProfile struct {
	ID         string      `json:"id,omitempty"`
	Email      string      `json:"email,omitempty"`
	Role       Role        `json:"role,omitempty"`
	Name       string      `json:"name,omitempty"`
	FirstName  string      `json:"first_name,omitempty"`
	LastName   string      `json:"last_name,omitempty"`
	Department *Department `json:"department,omitempty"`
}

// HasRole checks if the user holds a specific role
func (u *UserProfile) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	return u.Role == role
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (u *UserProfile) IsAtLeast(minRole Role) bool {
	if u == nil {
		return false
	}
	return u.Role.IsAtLeast(minRole)
}

// Department groups staff members inside the center
type Department struct {
	ID    string        `json:"id,omitempty"`
	Name  string        `json:"name,omitempty"`
	Staff []UserProfile `json:"staff,omitempty"`
}

// AppointmentStatus is the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentApproved  AppointmentStatus = "approved"
	AppointmentRejected  AppointmentStatus = "rejected"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a patient visit request handled by staff
type Appointment struct {
	ID        string            `json:"id,omitempty"`
	PatientID string            `json:"patient_id,omitempty"`
	StaffID   string            `json:"staff_id,omitempty"`
	Datetime  time.Time         `json:"datetime,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Status    AppointmentStatus `json:"status,omitempty"`
	Patient   *UserProfile      `json:"patient,omitempty"`
	Staff     *UserProfile      `json:"staff,omitempty"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// MedicalRecord is a consultation entry in a patient's file
type MedicalRecord struct {
	ID         string       `json:"id,omitempty"`
	PatientID  string       `json:"patient_id,omitempty"`
	DoctorID   string       `json:"doctor_id,omitempty"`
	Symptoms   string       `json:"symptoms,omitempty"`
	Diagnosis  string       `json:"diagnosis,omitempty"`
	Treatment  string       `json:"treatment,omitempty"`
	Finalized  bool         `json:"finalized,omitempty"`
	LabResults []LabResult  `json:"lab_results,omitempty"`
	Patient    *UserProfile `json:"patient,omitempty"`
	Doctor     *UserProfile `json:"doctor,omitempty"`
	CreatedAt  *time.Time   `json:"created_at,omitempty"`
	UpdatedAt  *time.Time   `json:"updated_at,omitempty"`
}

// LabResult is an uploaded file attached to a medical record
type LabResult struct {
	ID         string    `json:"id,omitempty"`
	RecordID   string    `json:"record_id,omitempty"`
	FileURL    string    `json:"file_url,omitempty"`
	FileType   string    `json:"file_type,omitempty"`
	Name       string    `json:"name,omitempty"`
	Size       int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

// Notification is a per-user message shown in the console header
type Notification struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	Read      bool      `json:"read,omitempty"`
	Type      string    `json:"type,omitempty"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Page is the envelope the backend uses for list endpoints
type Page[T any] struct {
	Data  []T `json:"data"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}
