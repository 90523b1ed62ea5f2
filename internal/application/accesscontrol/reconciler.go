package accesscontrol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/merchhub/merch-api/internal/domain"
	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

// TxRunner ejecuta el callback dentro de una transacción con un repositorio
// de vínculos atado a ella. O se confirma todo el conjunto de escrituras de
// una reconciliación, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(links repository.LinkRepository) error) error
}

// Result cambios netos de una reconciliación. Added son filas insertadas,
// Updated filas resucitadas; lo que ya estaba activo y sigue activo no se
// reporta, y las filas borradas en el paso de poda tampoco.
type Result struct {
	Added   []*entity.Link
	Updated []*entity.Link
}

// Reconciler iguala el conjunto vivo de vínculos de un sujeto al conjunto
// deseado con el mínimo de escrituras. El mismo algoritmo sirve para las
// siete aristas N:M del modelo; el único punto de variación es qué clase de
// entidad se valida en cada extremo (ver entity.LinkKind).
//
// Llamadas concurrentes sobre el mismo sujeto no se excluyen entre sí: gana
// la última transacción confirmada. Cada llamada es idempotente respecto de
// su propio conjunto deseado, así que es una limitación aceptada.
type Reconciler struct {
	tx       TxRunner
	entities repository.EntityRepository
}

// NewReconciler construye el reconciliador.
func NewReconciler(tx TxRunner, entities repository.EntityRepository) *Reconciler {
	return &Reconciler{tx: tx, entities: entities}
}

// Reconcile aplica la partición insertar/resucitar/borrar. Valida sujeto y
// contrapartes antes de abrir la transacción: si algo no existe, no hay
// escrituras parciales.
func (r *Reconciler) Reconcile(ctx context.Context, kind entity.LinkKind, subjectID string, desired []string) (*Result, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de vínculo desconocido %q", domain.ErrValidation, kind)
	}
	if subjectID == "" {
		return nil, fmt.Errorf("%w: sujeto requerido", domain.ErrValidation)
	}

	missing, err := r.entities.Missing(kind.SubjectKind(), []string{subjectID})
	if err != nil {
		return nil, fmt.Errorf("validar sujeto: %w", err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind.SubjectKind(), subjectID)
	}

	// Colapsar duplicados preservando el orden de llegada.
	want := make([]string, 0, len(desired))
	inWant := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		if _, ok := inWant[id]; ok || id == "" {
			continue
		}
		inWant[id] = struct{}{}
		want = append(want, id)
	}

	if len(want) > 0 {
		missing, err = r.entities.Missing(kind.TargetKind(), want)
		if err != nil {
			return nil, fmt.Errorf("validar contrapartes: %w", err)
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s [%s]", domain.ErrNotFound, kind.TargetKind(), strings.Join(missing, ", "))
		}
	}

	res := &Result{Added: []*entity.Link{}, Updated: []*entity.Link{}}
	now := time.Now()

	err = r.tx.Run(ctx, func(links repository.LinkRepository) error {
		existing, err := links.FindBySubject(kind, subjectID, true)
		if err != nil {
			return fmt.Errorf("cargar vínculos existentes: %w", err)
		}
		byTarget := make(map[string]*entity.Link, len(existing))
		for _, l := range existing {
			byTarget[l.TargetID] = l
		}

		for _, targetID := range want {
			current, ok := byTarget[targetID]
			switch {
			case !ok:
				link := &entity.Link{
					ID:        uuid.New().String(),
					Kind:      kind,
					SubjectID: subjectID,
					TargetID:  targetID,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := links.Insert(link); err != nil {
					return fmt.Errorf("insertar vínculo: %w", err)
				}
				res.Added = append(res.Added, link)
			case !current.Active():
				if err := links.Restore(kind, current.ID, now); err != nil {
					return fmt.Errorf("resucitar vínculo: %w", err)
				}
				current.DeletedAt = nil
				current.UpdatedAt = now
				res.Updated = append(res.Updated, current)
			default:
				// Ya activo: no-op, no se reporta.
			}
		}

		for _, l := range existing {
			if !l.Active() {
				continue
			}
			if _, ok := inWant[l.TargetID]; ok {
				continue
			}
			if err := links.SoftDelete(kind, l.ID, now); err != nil {
				return fmt.Errorf("borrar vínculo: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
