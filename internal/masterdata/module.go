// Package masterdata wires the client, staff, beneficiary, contract and
// industry resources under one router.
package masterdata

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/masterdata/beneficiaries"
	"github.com/eapdesk/eapdesk/internal/masterdata/clients"
	"github.com/eapdesk/eapdesk/internal/masterdata/contracts"
	"github.com/eapdesk/eapdesk/internal/masterdata/industries"
	"github.com/eapdesk/eapdesk/internal/masterdata/staff"
	"github.com/eapdesk/eapdesk/internal/rbac"
	core "github.com/eapdesk/eapdesk/internal/shared"
)

// Module groups the master data handlers and the services other packages use.
type Module struct {
	Contracts *contracts.Service

	guard         rbac.Guard
	industries    *industries.Handler
	clients       *clients.Handler
	staff         *staff.Handler
	beneficiaries *beneficiaries.Handler
	contracts     *contracts.Handler
}

// NewModule builds every master data resource on top of pool.
func NewModule(pool *pgxpool.Pool, auditor core.Auditor, guard rbac.Guard, logger *slog.Logger) *Module {
	contractService := contracts.NewService(contracts.NewRepository(pool), auditor)
	return &Module{
		Contracts:     contractService,
		guard:         guard,
		industries:    industries.NewHandler(logger, industries.NewService(industries.NewRepository(pool), auditor), guard),
		clients:       clients.NewHandler(logger, clients.NewService(clients.NewRepository(pool), auditor), guard),
		staff:         staff.NewHandler(logger, staff.NewService(staff.NewRepository(pool), auditor), guard),
		beneficiaries: beneficiaries.NewHandler(logger, beneficiaries.NewService(beneficiaries.NewRepository(pool), auditor), guard),
		contracts:     contracts.NewHandler(logger, contractService, guard),
	}
}

// MountRoutes registers the resources below r.
func (m *Module) MountRoutes(r chi.Router) {
	r.Route("/industries", m.industries.MountRoutes)
	r.Route("/clients", func(r chi.Router) {
		m.clients.MountRoutes(r)
		r.With(m.guard.Require(core.PermBeneficiaryRead)).Get("/{id}/beneficiaries", m.beneficiaries.ListForClient)
	})
	r.Route("/staff", m.staff.MountRoutes)
	r.Route("/beneficiaries", m.beneficiaries.MountRoutes)
	r.Route("/contracts", m.contracts.MountRoutes)
}
