// Package server assembles the fiber application from its dependencies.
package server

import (
	"errors"
	"strings"

	"coursemaster/config"
	assignmentController "coursemaster/controllers/assignment"
	authController "coursemaster/controllers/auth"
	courseController "coursemaster/controllers/course"
	paymentController "coursemaster/controllers/payment"
	progressController "coursemaster/controllers/progress"
	userController "coursemaster/controllers/userControllers"
	"coursemaster/logger"
	"coursemaster/middleware"
	"coursemaster/payment"
	"coursemaster/routers/assignmentRoutes"
	"coursemaster/routers/authRoutes"
	"coursemaster/routers/courseRoutes"
	"coursemaster/routers/paymentRoutes"
	"coursemaster/routers/progressRoutes"
	"coursemaster/routers/userRoutes"
	"coursemaster/services"
	"coursemaster/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Options struct {
	Config   *config.Config
	Store    store.Store
	Provider payment.Provider
	Services *services.Services
	Log      *logger.Logger

	// AccessLog enables the per-request log line.
	AccessLog bool
}

func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Course Master",
		ErrorHandler: errorHandler(opts.Log),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(opts.Config.ClientURL),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: true,
	}))

	if opts.AccessLog {
		// Enable the built-in logger middleware to log all requests
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Server is Running...")
	})

	jwt := middleware.JWTMiddleware(opts.Config.JWTKey)
	admin := middleware.RequireAdmin(opts.Store)
	svc := opts.Services

	progress := progressController.NewHandler(svc.Progress)

	authRoutes.SetupAuthRoutes(app, authController.NewHandler(svc.Auth), jwt)
	userRoutes.SetupUserRoutes(app, userController.NewHandler(svc.Users), progress, jwt, opts.Store)
	courseRoutes.SetupCourseRoutes(app, courseController.NewHandler(svc.Courses), jwt, admin)
	paymentRoutes.SetupPaymentRoutes(app, paymentController.NewHandler(svc.Checkout, svc.Reconciler, opts.Provider, opts.Log), jwt)
	progressRoutes.SetupProgressRoutes(app, progress, jwt)
	assignmentRoutes.SetupAssignmentRoutes(app, assignmentController.NewHandler(svc.Assignment), jwt, admin)

	return app
}

func allowedOrigins(clientURL string) string {
	origins := []string{"http://localhost:5173"}
	if clientURL != "" && clientURL != origins[0] {
		origins = append(origins, clientURL)
	}
	return strings.Join(origins, ",")
}

// errorHandler renders errors that escape a handler in the JSON envelope.
func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return middleware.JsonResponse(c, fiberErr.Code, false, fiberErr.Message, nil)
		}
		log.Error("Unhandled error", "path", c.Path(), "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error!", nil)
	}
}
