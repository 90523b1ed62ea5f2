package dto

import (
	"time"

	"github.com/merchhub/merch-api/internal/domain/entity"
)

// ReconcileRequest conjunto deseado de contrapartes para un sujeto. Los
// duplicados colapsan; la lista vacía significa "quitar todos los vínculos".
type ReconcileRequest struct {
	TargetIDs []string `json:"targetIds" validate:"omitempty,dive,required"`
}

// LinkResponse salida de una fila de vínculo.
type LinkResponse struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subjectId"`
	TargetID  string    `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReconcileResponse cambios netos de una reconciliación: filas insertadas y
// filas resucitadas. Lo que ya estaba activo no se reporta.
type ReconcileResponse struct {
	Added   []LinkResponse `json:"added"`
	Updated []LinkResponse `json:"updated"`
}

// ChildAssignmentRequest conjunto deseado de hijos para un producto padre.
type ChildAssignmentRequest struct {
	ChildIDs []string `json:"childIds" validate:"omitempty,dive,required"`
}

// ChildAssignmentResponse cambios netos de una asignación de hijos.
type ChildAssignmentResponse struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// ToLinkResponse mapea la entidad a su salida.
func ToLinkResponse(l *entity.Link) LinkResponse {
	return LinkResponse{
		ID:        l.ID,
		SubjectID: l.SubjectID,
		TargetID:  l.TargetID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// ToReconcileResponse mapea el resultado del reconciliador.
func ToReconcileResponse(added, updated []*entity.Link) ReconcileResponse {
	out := ReconcileResponse{Added: []LinkResponse{}, Updated: []LinkResponse{}}
	for _, l := range added {
		out.Added = append(out.Added, ToLinkResponse(l))
	}
	for _, l := range updated {
		out.Updated = append(out.Updated, ToLinkResponse(l))
	}
	return out
}
