package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
)

type AuditReader interface {
	List(ctx context.Context, actor auth.Actor, filter audit.Filter) ([]audit.EntryResponse, error)
}

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	audit AuditReader
}

func NewAuditHandler(reader AuditReader) AuditHandler {
	return &auditHandlerImpl{audit: reader}
}

func (h *auditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	invalid := map[string]string{}
	for _, key := range []string{"entity_id", "actor_id"} {
		if v := q.Get(key); v != "" && !validator.IsValidUUID(v) {
			invalid[key] = key + " must be a valid UUID"
		}
	}
	if len(invalid) > 0 {
		response.ValidationError(w, invalid)
		return
	}

	entries, err := h.audit.List(r.Context(), actor, audit.Filter{
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		ActorID:    q.Get("actor_id"),
		Limit:      getIntQueryParam(r, "limit", 100),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}
