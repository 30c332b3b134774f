package services

import "gorm.io/gorm"

// Services bundles every domain service built on one database handle.
type Services struct {
	Pool         *PoolService
	Reservations *ReservationService
	Verification *VerificationService
	Proofs       *ProofService
	Assignments  *AssignmentService
	Payments     *PaymentService
	Users        *UserService
	Settings     *SettingsService
	Stats        *StatsService
	Admins       *AdminService
}

func New(db *gorm.DB) *Services {
	return &Services{
		Pool:         NewPoolService(db),
		Reservations: NewReservationService(db),
		Verification: NewVerificationService(db),
		Proofs:       NewProofService(db),
		Assignments:  NewAssignmentService(db),
		Payments:     NewPaymentService(db),
		Users:        NewUserService(db),
		Settings:     NewSettingsService(db),
		Stats:        NewStatsService(db),
		Admins:       NewAdminService(db),
	}
}
