package http

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/merchhub/merch-api/internal/application/accesscontrol"
	"github.com/merchhub/merch-api/internal/application/dto"
	"github.com/merchhub/merch-api/internal/domain"
	"github.com/merchhub/merch-api/internal/domain/entity"
)

// AccessHandler maneja la edición de vínculos del grafo de acceso y la
// consulta del alcance propio.
type AccessHandler struct {
	reconciler *accesscontrol.Reconciler
	resolver   *accesscontrol.Resolver
	validate   *validator.Validate
}

// NewAccessHandler construye el handler.
func NewAccessHandler(reconciler *accesscontrol.Reconciler, resolver *accesscontrol.Resolver) *AccessHandler {
	return &AccessHandler{reconciler: reconciler, resolver: resolver, validate: validator.New()}
}

// Reconcile devuelve el handler de reconciliación para una arista concreta.
// El sujeto va en la ruta; el cuerpo trae el conjunto deseado de contrapartes.
func (h *AccessHandler) Reconcile(kind entity.LinkKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.ReconcileRequest
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
		if err := h.validate.Struct(in); err != nil {
			return respondError(c, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error()))
		}
		res, err := h.reconciler.Reconcile(c.Context(), kind, c.Params("id"), in.TargetIDs)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.ToReconcileResponse(res.Added, res.Updated))
	}
}

// Scope devuelve el alcance de la identidad autenticada: centinela de
// administrador o conjunto de etiquetas visibles.
func (h *AccessHandler) Scope(c *fiber.Ctx) error {
	scope, err := h.resolver.Resolve(GetIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"unrestricted": scope.Unrestricted,
		"tagIds":       scope.TagIDs,
	})
}
