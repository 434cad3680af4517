package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/api/middleware"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

func pharmacyIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.PharmacyIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "pharmacy context missing")
	}
	pharmacyID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid pharmacy id")
	}
	return pharmacyID, nil
}
