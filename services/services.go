// Package services holds the application workflows behind the HTTP
// controllers. Every method returns an *apperr.Error whose message is safe to
// show to clients; underlying causes are logged here.
package services

import (
	"coursemaster/config"
	"coursemaster/logger"
	"coursemaster/payment"
	"coursemaster/store"
	"coursemaster/utils"
)

type Services struct {
	Auth       *AuthService
	Users      *UserService
	Courses    *CourseService
	Checkout   *CheckoutService
	Reconciler *Reconciler
	Progress   *ProgressService
	Assignment *AssignmentService
}

func New(cfg *config.Config, st store.Store, provider payment.Provider, mailer utils.Mailer, log *logger.Logger) *Services {
	return &Services{
		Auth:       NewAuthService(st, mailer, cfg.JWTKey, cfg.SaltRound, log),
		Users:      NewUserService(st, log),
		Courses:    NewCourseService(st, log),
		Checkout:   NewCheckoutService(st, provider, cfg.ClientURL, cfg.CheckoutCurrency, log),
		Reconciler: NewReconciler(st, mailer, cfg.StrictCheckoutIntents, log),
		Progress:   NewProgressService(st, log),
		Assignment: NewAssignmentService(st, log),
	}
}
