package notification

import (
	"fmt"
	"time"

	notifDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/notification"
)

type Type string

const (
	TypeSolicitudCreada    Type = "solicitud_creada"
	TypeSolicitudAprobada  Type = "solicitud_aprobada"
	TypeSolicitudRechazada Type = "solicitud_rechazada"
	TypeSolicitudEjecutada Type = "solicitud_ejecutada"
	TypeRecordatorio       Type = "recordatorio"
)

const ReferencePaymentRequest = "payment_request"

type Notification struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"`
	Type           Type      `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ReferenceType  string    `json:"reference_type"`
	ReferenceID    int64     `json:"reference_id"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func FromDataModel(n *notifDatamodel.Notification) *Notification {
	return &Notification{
		ID:             n.ID,
		OrganizationID: n.OrganizationID,
		UserID:         n.UserID,
		Type:           Type(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		ReferenceType:  n.ReferenceType,
		ReferenceID:    n.ReferenceID,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}

func FromDataModelSlice(rows []*notifDatamodel.Notification) []*Notification {
	result := make([]*Notification, len(rows))
	for i, n := range rows {
		result[i] = FromDataModel(n)
	}
	return result
}

// FanOut builds one row per recipient for a single event. Recipient
// resolution happens at the caller, inside the same database transaction as
// the event itself.
func FanOut(orgID int64, typ Type, refType string, refID int64, recipients []int64, title, message string) []*notifDatamodel.Notification {
	now := time.Now()
	rows := make([]*notifDatamodel.Notification, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, &notifDatamodel.Notification{
			OrganizationID: orgID,
			UserID:         userID,
			Type:           string(typ),
			Title:          title,
			Message:        message,
			ReferenceType:  refType,
			ReferenceID:    refID,
			IsRead:         false,
			CreatedAt:      now,
		})
	}
	return rows
}

// Message builders for the payment request lifecycle. Rejection embeds the
// presidente's comment so the creator sees the reason in the inbox itself.

func SubmittedFanOut(orgID, requestID int64, beneficiary string, amount int64, recipients []int64) []*notifDatamodel.Notification {
	return FanOut(orgID, TypeSolicitudCreada, ReferencePaymentRequest, requestID, recipients,
		"Nueva solicitud de pago",
		fmt.Sprintf("Se ha creado una solicitud de pago de $%d para %s, pendiente de aprobación.", amount, beneficiary))
}

func ApprovedFanOut(orgID, requestID int64, beneficiary string, amount int64, recipients []int64) []*notifDatamodel.Notification {
	return FanOut(orgID, TypeSolicitudAprobada, ReferencePaymentRequest, requestID, recipients,
		"Solicitud de pago aprobada",
		fmt.Sprintf("La solicitud de pago de $%d para %s fue aprobada y espera ejecución.", amount, beneficiary))
}

func RejectedFanOut(orgID, requestID int64, comment string, recipients []int64) []*notifDatamodel.Notification {
	return FanOut(orgID, TypeSolicitudRechazada, ReferencePaymentRequest, requestID, recipients,
		"Solicitud de pago rechazada",
		fmt.Sprintf("Tu solicitud de pago fue rechazada: %s", comment))
}

func ExecutedFanOut(orgID, requestID int64, beneficiary string, amount int64, recipients []int64) []*notifDatamodel.Notification {
	return FanOut(orgID, TypeSolicitudEjecutada, ReferencePaymentRequest, requestID, recipients,
		"Solicitud de pago ejecutada",
		fmt.Sprintf("La solicitud de pago de $%d para %s fue ejecutada y registrada en el libro.", amount, beneficiary))
}

func ReminderFanOut(orgID, requestID int64, beneficiary string, amount int64, recipients []int64) []*notifDatamodel.Notification {
	return FanOut(orgID, TypeRecordatorio, ReferencePaymentRequest, requestID, recipients,
		"Solicitud de pago pendiente",
		fmt.Sprintf("La solicitud de pago de $%d para %s sigue pendiente de aprobación.", amount, beneficiary))
}
