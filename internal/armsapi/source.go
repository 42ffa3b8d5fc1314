package armsapi

import "context"

// Source is the fetch surface the aggregation pipelines consume. The
// production implementation is PGSource; HTTPSource talks to a legacy
// upstream backend that still owns the data in some deployments.
type Source interface {
	ListClients(ctx context.Context) ([]Client, error)
	ListPaymentsForClient(ctx context.Context, clientID string) ([]Payment, error)
	ListInstallmentsForPayment(ctx context.Context, paymentID string) ([]Installment, error)
	ListWeaponAssignmentsForClient(ctx context.Context, clientID string) ([]WeaponAssignment, error)
	GetSystemConfig(ctx context.Context) (SystemConfig, error)
}
